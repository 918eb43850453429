package places

import "strings"

// Tag is one entry of the interest or food vocabulary offered by the search form.
type Tag string

// Option pairs a tag with the label shown next to its checkbox.
type Option struct {
	Tag   Tag
	Label string
}

// Destination is a named place with fixed coordinates.
type Destination struct {
	Name string
	Lat  float64
	Lon  float64
}

// Destinations is the enumerated set the search form offers, in display order.
var Destinations = []Destination{
	{Name: "Miami", Lat: 25.761681, Lon: -80.191788},
	{Name: "New York", Lat: 40.712776, Lon: -74.005974},
	{Name: "Los Angeles", Lat: 34.052235, Lon: -118.243683},
	{Name: "Chicago", Lat: 41.878113, Lon: -87.629799},
	{Name: "San Francisco", Lat: 37.774929, Lon: -122.419418},
	{Name: "Las Vegas", Lat: 36.169941, Lon: -115.139832},
	{Name: "Orlando", Lat: 28.538336, Lon: -81.379234},
	{Name: "Anaheim", Lat: 33.835293, Lon: -117.914505},
	{Name: "Washington D.C.", Lat: 38.907192, Lon: -77.036873},
	{Name: "Honolulu", Lat: 21.306944, Lon: -157.858337},
}

var InterestOptions = []Option{
	{Tag: "nature", Label: "Nature"},
	{Tag: "sports", Label: "Sports"},
	{Tag: "amusement", Label: "Amusement parks"},
	{Tag: "history", Label: "History"},
	{Tag: "culture", Label: "Culture"},
	{Tag: "museums", Label: "Museums"},
	{Tag: "architecture", Label: "Architecture"},
	{Tag: "religion", Label: "Religious sites"},
	{Tag: "beaches", Label: "Beaches"},
}

var FoodOptions = []Option{
	{Tag: "restaurant", Label: "Restaurants"},
	{Tag: "cafe", Label: "Cafes"},
	{Tag: "fast_food", Label: "Fast food"},
	{Tag: "bar", Label: "Bars"},
	{Tag: "pub", Label: "Pubs"},
	{Tag: "food_court", Label: "Food courts"},
	{Tag: "picnic", Label: "Picnic spots"},
}

// provider category codes ("kinds")
var interestCategories = map[Tag]string{
	"nature":       "natural",
	"sports":       "sport",
	"amusement":    "amusements",
	"history":      "historic",
	"culture":      "cultural",
	"museums":      "museums",
	"architecture": "architecture",
	"religion":     "religion",
	"beaches":      "beaches",
}

var foodCategories = map[Tag]string{
	"restaurant": "restaurants",
	"cafe":       "cafes",
	"fast_food":  "fast_food",
	"bar":        "bars",
	"pub":        "pubs",
	"food_court": "food_courts",
	"picnic":     "picnic_site",
}

// LookupDestination finds a destination by name, ignoring case and surrounding space.
func LookupDestination(name string) (Destination, bool) {
	name = strings.TrimSpace(name)
	for _, d := range Destinations {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Destination{}, false
}

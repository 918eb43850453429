package places

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wanderlist/wanderlist/pkg/logger"
)

// ErrUnknownDestination is returned for a destination outside the coordinate table.
var ErrUnknownDestination = errors.New("unknown destination")

// DefaultRadiusMeters is used when the builder is created with a non-positive radius.
const DefaultRadiusMeters = 20000

// Query describes one places lookup.
type Query struct {
	Lat          float64
	Lon          float64
	RadiusMeters int
	// Categories is a comma-joined list of provider codes; empty means no filter.
	Categories string
}

// Queries holds the attraction and food lookups for one search.
type Queries struct {
	Destination Destination
	Attractions Query
	Food        Query
}

// Builder translates a selection into provider queries.
type Builder struct {
	radius int
}

func NewBuilder(radiusMeters int) *Builder {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	return &Builder{radius: radiusMeters}
}

// Build resolves destination coordinates and maps the selected tags to category filters.
func (b *Builder) Build(destination string, interests, food []string) (Queries, error) {
	d, ok := LookupDestination(destination)
	if !ok {
		return Queries{}, fmt.Errorf("%w: %q", ErrUnknownDestination, destination)
	}
	return Queries{
		Destination: d,
		Attractions: Query{Lat: d.Lat, Lon: d.Lon, RadiusMeters: b.radius, Categories: categoryFilter("interest", interests, interestCategories)},
		Food:        Query{Lat: d.Lat, Lon: d.Lon, RadiusMeters: b.radius, Categories: categoryFilter("food", food, foodCategories)},
	}, nil
}

// categoryFilter joins the provider codes for tags in first-seen order.
// Unmapped tags mean the form and the mapping table disagree, so they are logged and skipped.
func categoryFilter(kind string, tags []string, dict map[Tag]string) string {
	codes := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		code, ok := dict[Tag(t)]
		if !ok {
			logger.Warnf("places: dropping unmapped %s tag %q", kind, t)
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return strings.Join(codes, ",")
}

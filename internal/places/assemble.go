package places

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Place is a presentable point of interest.
type Place struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Distance float64  `json:"distance"`
	Kinds    []string `json:"kinds,omitempty"`
}

// Results is the bounded display set for one search.
type Results struct {
	Attractions []Place `json:"attractions"`
	Food        []Place `json:"food"`
}

// Assembler filters raw features and samples a bounded set without replacement.
type Assembler struct {
	attractionCap int
	foodCap       int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssembler creates an assembler; a nil rng is seeded from the clock.
func NewAssembler(attractionCap, foodCap int, rng *rand.Rand) *Assembler {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return &Assembler{attractionCap: attractionCap, foodCap: foodCap, rng: rng}
}

func (a *Assembler) Assemble(attractions, food []Feature) Results {
	return Results{
		Attractions: a.sample(Named(attractions), a.attractionCap),
		Food:        a.sample(Named(food), a.foodCap),
	}
}

// Named converts features to places, dropping those without a name.
func Named(features []Feature) []Place {
	out := make([]Place, 0, len(features))
	for _, f := range features {
		name := strings.TrimSpace(f.Properties.Name)
		if name == "" {
			continue
		}
		p := Place{ID: f.Properties.XID, Name: name, Distance: f.Properties.Dist}
		if p.ID == "" {
			p.ID = f.ID
		}
		if len(f.Geometry.Coordinates) >= 2 {
			p.Lon, p.Lat = f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		}
		if f.Properties.Kinds != "" {
			p.Kinds = strings.Split(f.Properties.Kinds, ",")
		}
		out = append(out, p)
	}
	return out
}

// sample returns up to n distinct entries of pool; the whole pool when it is smaller.
func (a *Assembler) sample(pool []Place, n int) []Place {
	if n <= 0 {
		return []Place{}
	}
	if len(pool) <= n {
		return pool
	}
	picked := append([]Place(nil), pool...)
	a.mu.Lock()
	defer a.mu.Unlock()
	// partial Fisher-Yates: the first n slots end up a uniform sample
	for i := 0; i < n; i++ {
		j := i + a.rng.IntN(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:n]
}

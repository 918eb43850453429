package places

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func feature(name string) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: []float64{-80.1, 25.7}},
		Properties: Properties{XID: "x-" + name, Name: name, Kinds: "foods,cafes"},
	}
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(42, 7)) }

func TestAssemble_DropsUnnamed(t *testing.T) {
	a := NewAssembler(5, 3, seeded())
	res := a.Assemble([]Feature{feature("Vizcaya Museum"), feature("")}, nil)
	require.Len(t, res.Attractions, 1)
	require.Equal(t, "Vizcaya Museum", res.Attractions[0].Name)
	require.Equal(t, 25.7, res.Attractions[0].Lat)
	require.Equal(t, -80.1, res.Attractions[0].Lon)
	require.Equal(t, []string{"foods", "cafes"}, res.Attractions[0].Kinds)
	require.Empty(t, res.Food)
}

func TestAssemble_WhitespaceNameDropped(t *testing.T) {
	res := NewAssembler(5, 3, seeded()).Assemble([]Feature{feature("   ")}, nil)
	require.Empty(t, res.Attractions)
}

func TestAssemble_SamplesWithoutReplacement(t *testing.T) {
	food := make([]Feature, 10)
	for i := range food {
		food[i] = feature(fmt.Sprintf("Cafe %d", i))
	}
	a := NewAssembler(5, 3, seeded())

	for round := 0; round < 50; round++ {
		res := a.Assemble(nil, food)
		require.Len(t, res.Food, 3)
		seen := map[string]bool{}
		for _, p := range res.Food {
			require.False(t, seen[p.Name], "duplicate %q in round %d", p.Name, round)
			seen[p.Name] = true
			require.Regexp(t, `^Cafe [0-9]$`, p.Name)
		}
	}
}

func TestAssemble_PoolSmallerThanCap(t *testing.T) {
	res := NewAssembler(5, 3, seeded()).Assemble(
		[]Feature{feature("A"), feature("B")},
		[]Feature{feature("C")},
	)
	require.Len(t, res.Attractions, 2)
	require.Len(t, res.Food, 1)
}

func TestAssemble_DeterministicWithSeed(t *testing.T) {
	pool := make([]Feature, 20)
	for i := range pool {
		pool[i] = feature(fmt.Sprintf("P%d", i))
	}
	r1 := NewAssembler(5, 3, seeded()).Assemble(pool, pool)
	r2 := NewAssembler(5, 3, seeded()).Assemble(pool, pool)
	require.Equal(t, r1, r2)
}

func TestAssemble_ZeroCap(t *testing.T) {
	res := NewAssembler(0, 0, nil).Assemble([]Feature{feature("A")}, []Feature{feature("B")})
	require.Empty(t, res.Attractions)
	require.Empty(t, res.Food)
}

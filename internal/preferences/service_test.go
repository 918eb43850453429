package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSave_RequiresInterests(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	err := svc.Save(ctx, &Preference{UserID: 1, Destination: "Miami"})
	require.ErrorIs(t, err, ErrNoInterests)
	require.ErrorIs(t, err, ErrValidation)

	// nothing persisted
	p, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestSave_RequiresDestination(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	err := svc.Save(context.Background(), &Preference{UserID: 1, Interests: []string{"nature"}})
	require.ErrorIs(t, err, ErrNoDestination)
}

func TestSave_Persists(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	require.NoError(t, svc.Save(ctx, &Preference{UserID: 7, Destination: "Miami", Interests: []string{"nature"}, Food: []string{"cafe"}}))

	p, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "Miami", p.Destination)
	require.Equal(t, []string{"cafe"}, p.Food)
}

func TestTagHelpers(t *testing.T) {
	require.Equal(t, "nature, sports", JoinTags([]string{"nature", "sports"}))
	require.Equal(t, []string{"nature", "sports"}, UniqueTags([]string{"nature", " sports", "nature", "", "sports"}))
	require.Nil(t, UniqueTags(nil))
	require.True(t, Has([]string{"a", "b"}, "b"))
	require.False(t, Has(nil, "b"))
}

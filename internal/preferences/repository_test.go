package preferences

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/models"
)

func newGormRepo(t *testing.T) (*GormRepository, *gorm.DB, uint) {
	t.Helper()
	db, err := database.OpenSQL("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	u := models.User{Name: "Pat", Email: "pat@example.com"}
	require.NoError(t, db.Create(&u).Error)
	return NewGormRepository(db), db, u.ID
}

func countRows(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.PreferenceRecord{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestGormRepository_GetMissing(t *testing.T) {
	repo, _, uid := newGormRepo(t)
	p, err := repo.Get(context.Background(), uid)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestGormRepository_UpsertThenGet(t *testing.T) {
	repo, db, uid := newGormRepo(t)
	ctx := context.Background()

	in := &Preference{UserID: uid, Destination: "Miami", Interests: []string{"sports", "nature"}, Food: []string{"cafe"}}
	require.NoError(t, repo.Upsert(ctx, in))

	got, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Miami", got.Destination)
	require.Equal(t, []string{"sports", "nature"}, got.Interests)
	require.Equal(t, []string{"cafe"}, got.Food)
	require.Equal(t, int64(1), countRows(t, db, uid))
}

func TestGormRepository_UpsertOverwrites(t *testing.T) {
	repo, db, uid := newGormRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &Preference{UserID: uid, Destination: "Miami", Interests: []string{"nature"}, Food: []string{"cafe", "bar"}}))
	require.NoError(t, repo.Upsert(ctx, &Preference{UserID: uid, Destination: "Chicago", Interests: []string{"history"}}))

	got, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, "Chicago", got.Destination)
	require.Equal(t, []string{"history"}, got.Interests)
	require.Empty(t, got.Food)
	require.Equal(t, int64(1), countRows(t, db, uid))

	var tags int64
	require.NoError(t, db.Model(&models.PreferenceTag{}).Count(&tags).Error)
	require.Equal(t, int64(1), tags)
}

func TestGormRepository_ConcurrentUpsertsKeepOneRow(t *testing.T) {
	repo, db, uid := newGormRepo(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Upsert(ctx, &Preference{
				UserID:      uid,
				Destination: fmt.Sprintf("dest-%d", i),
				Interests:   []string{"nature", "sports"},
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, int64(1), countRows(t, db, uid))
	got, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, []string{"nature", "sports"}, got.Interests)
}

func TestGormRepository_UnknownUserIsConstraintViolation(t *testing.T) {
	repo, _, _ := newGormRepo(t)
	err := repo.Upsert(context.Background(), &Preference{UserID: 9999, Destination: "Miami", Interests: []string{"nature"}})
	require.ErrorIs(t, err, ErrConstraintViolation)
}

func TestMemoryRepository_UpsertGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, got)

	in := &Preference{UserID: 1, Destination: "Miami", Interests: []string{"nature"}}
	require.NoError(t, repo.Upsert(ctx, in))
	in.Interests[0] = "mutated"

	got, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"nature"}, got.Interests)
	require.False(t, got.UpdatedAt.IsZero())
}

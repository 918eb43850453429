package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/models"
)

type fakeRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	creates int
	nextID  uint
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email], nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEmail == nil {
		f.byEmail = map[string]*models.User{}
	}
	for _, existing := range f.byEmail {
		if existing.Name == u.Name || existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.creates++
	f.byEmail[u.Email] = u
	return nil
}

func TestResolve_CreatesOnceThenReturnsSameUser(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	p := models.Principal{Subject: "sub-1", Email: "x@example.com", Name: "X User"}

	u1, err := svc.Resolve(ctx, p)
	require.NoError(t, err)
	require.NotZero(t, u1.ID)
	require.Equal(t, "X User", u1.Name)

	u2, err := svc.Resolve(ctx, p)
	require.NoError(t, err)
	require.Equal(t, u1.ID, u2.ID)
	require.Equal(t, 1, repo.creates)
}

func TestResolve_MissingEmail(t *testing.T) {
	svc := NewService(&fakeRepo{})
	_, err := svc.Resolve(context.Background(), models.Principal{Name: "nobody"})
	require.ErrorIs(t, err, ErrMissingEmail)
}

func TestResolve_NameCollision(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()
	_, err := svc.Resolve(ctx, models.Principal{Email: "a@example.com", Name: "Sam"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, models.Principal{Email: "b@example.com", Name: "Sam"})
	require.ErrorIs(t, err, ErrConstraintViolation)
}

type errRepo struct{ fakeRepo }

func (e *errRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errors.New("db down")
}

func TestResolve_LookupErrorPropagates(t *testing.T) {
	svc := NewService(&errRepo{})
	_, err := svc.Resolve(context.Background(), models.Principal{Email: "a@example.com", Name: "A"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrConstraintViolation)
}

func newGormService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQL("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(NewGormUserRepository(db)), db
}

func TestResolve_Gorm_Idempotent(t *testing.T) {
	svc, db := newGormService(t)
	ctx := context.Background()
	p := models.Principal{Email: "ada@example.com", Name: "Ada"}

	first, err := svc.Resolve(ctx, p)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := svc.Resolve(ctx, p)
		require.NoError(t, err)
		require.Equal(t, first.ID, again.ID)
	}

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", p.Email).Count(&count).Error)
	require.Equal(t, int64(1), count)

	byID, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", byID.Email)
}

func TestResolve_Gorm_NameCollision(t *testing.T) {
	svc, _ := newGormService(t)
	ctx := context.Background()
	_, err := svc.Resolve(ctx, models.Principal{Email: "one@example.com", Name: "Twin"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, models.Principal{Email: "two@example.com", Name: "Twin"})
	require.ErrorIs(t, err, ErrConstraintViolation)
}

func TestResolve_Gorm_ConcurrentFirstLogin(t *testing.T) {
	svc, db := newGormService(t)
	ctx := context.Background()
	p := models.Principal{Email: "race@example.com", Name: "Racer"}

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.Resolve(ctx, p)
			errs[i] = err
			if u != nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

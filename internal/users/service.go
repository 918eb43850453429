package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/pkg/logger"
)

var (
	// ErrConstraintViolation is returned when the display name already belongs to another email.
	ErrConstraintViolation = errors.New("user constraint violation")
	ErrMissingEmail        = errors.New("principal has no email")
)

// Service resolves authenticated principals to durable user records
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Resolve returns the user owning p.Email, creating it on first sight.
func (s *Service) Resolve(ctx context.Context, p models.Principal) (*models.User, error) {
	if p.Email == "" {
		return nil, ErrMissingEmail
	}
	u, err := s.repo.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u != nil {
		return u, nil
	}

	u = &models.User{Name: p.Name, Email: p.Email}
	err = s.repo.Create(ctx, u)
	if err == nil {
		logger.Infof("user created: id=%d email=%s", u.ID, u.Email)
		return u, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create user: %w", err)
	}
	// a concurrent login may have inserted the same email first
	existing, lerr := s.repo.GetByEmail(ctx, p.Email)
	if lerr != nil {
		return nil, fmt.Errorf("lookup user: %w", lerr)
	}
	if existing != nil {
		return existing, nil
	}
	logger.Errorf("user name %q already taken by another email (email=%s)", p.Name, p.Email)
	return nil, fmt.Errorf("%w: name %q is taken: %v", ErrConstraintViolation, p.Name, err)
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

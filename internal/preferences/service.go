package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is wrapped by every presence-check failure.
	ErrValidation    = errors.New("invalid preference")
	ErrNoInterests   = fmt.Errorf("%w: select at least one interest", ErrValidation)
	ErrNoDestination = fmt.Errorf("%w: choose a destination", ErrValidation)
)

// Service wraps the repository with the submission presence checks.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func (s *Service) Get(ctx context.Context, userID uint) (*Preference, error) {
	return s.repo.Get(ctx, userID)
}

// Validate performs the presence checks without touching the store.
func Validate(p *Preference) error {
	if strings.TrimSpace(p.Destination) == "" {
		return ErrNoDestination
	}
	if len(p.Interests) == 0 {
		return ErrNoInterests
	}
	return nil
}

// Save validates p and upserts it as the user's only preference.
func (s *Service) Save(ctx context.Context, p *Preference) error {
	if err := Validate(p); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, p)
}

package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wanderlist/wanderlist/internal/models"
)

var (
	// ErrLoginNotFound is returned when the callback refers to no pending login.
	ErrLoginNotFound = errors.New("login session not found or expired")
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// Service wraps repository operations with business logic
type Service struct {
	repo     Repository
	ttl      time.Duration
	loginTTL time.Duration
}

func NewService(r Repository, ttl, loginTTL time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if loginTTL <= 0 {
		loginTTL = 10 * time.Minute
	}
	return &Service{repo: r, ttl: ttl, loginTTL: loginTTL}
}

// BeginLogin stores a short-lived pending login carrying a fresh state and nonce.
func (s *Service) BeginLogin(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		State:     uuid.NewString(),
		Nonce:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.loginTTL),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// PendingLogin returns the login started under loginID after checking state.
func (s *Service) PendingLogin(ctx context.Context, loginID, state string) (*Session, error) {
	if loginID == "" {
		return nil, ErrLoginNotFound
	}
	sess, err := s.repo.Get(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.State == "" {
		return nil, ErrLoginNotFound
	}
	if state == "" || sess.State != state {
		return nil, ErrStateMismatch
	}
	return sess, nil
}

// Authenticate replaces the pending login with a new authenticated session.
// The session id changes so a pre-login id cannot be reused.
func (s *Service) Authenticate(ctx context.Context, loginID string, p models.Principal, userID uint) (*Session, error) {
	if loginID != "" {
		if err := s.repo.Delete(ctx, loginID); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Principal: &p,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Lookup returns the session if it exists and is not expired
func (s *Service) Lookup(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(time.Now().UTC()) {
		// cleanup expired session
		_ = s.repo.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) TTL() time.Duration      { return s.ttl }
func (s *Service) LoginTTL() time.Duration { return s.loginTTL }

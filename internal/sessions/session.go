package sessions

import (
	"time"

	"github.com/wanderlist/wanderlist/internal/models"
)

// Session is either a pending login (State and Nonce set, no Principal) or an
// authenticated browser session.
type Session struct {
	ID        string            `bson:"_id,omitempty" json:"id"`
	Principal *models.Principal `bson:"principal,omitempty" json:"principal,omitempty"`
	UserID    uint              `bson:"userId,omitempty" json:"userId,omitempty"`
	State     string            `bson:"state,omitempty" json:"state,omitempty"`
	Nonce     string            `bson:"nonce,omitempty" json:"nonce,omitempty"`
	ExpiresAt time.Time         `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Principal != nil && s.UserID != 0
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

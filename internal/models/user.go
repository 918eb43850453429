package models

import "time"

// User is the durable identity record, created on the first login for an email.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Principal is the authenticated identity attached to a session.
type Principal struct {
	Subject string `json:"sub" bson:"sub"`
	Email   string `json:"email" bson:"email"`
	Name    string `json:"name" bson:"name"`
}

// PrincipalFromClaims extracts a principal from OIDC ID token claims.
// ok is false when the email claim is missing.
func PrincipalFromClaims(claims map[string]interface{}) (Principal, bool) {
	p := Principal{}
	p.Subject, _ = claims["sub"].(string)
	p.Email, _ = claims["email"].(string)
	p.Name, _ = claims["name"].(string)
	if p.Name == "" {
		p.Name = p.Email
	}
	return p, p.Email != ""
}

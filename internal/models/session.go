package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a live login holding a snapshot of the signed-in user.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// JWTClaims is the access token payload.
type JWTClaims struct {
	IndexNumber  string       `json:"index_number"`
	Role         Role         `json:"role"`
	Capabilities []Capability `json:"capabilities,omitempty"`
	SessionID    string       `json:"sid"`
	jwt.RegisteredClaims
}

// HasCapability reports whether the token grants c.
func (c *JWTClaims) HasCapability(capability Capability) bool {
	for _, held := range c.Capabilities {
		if held == capability {
			return true
		}
	}
	return false
}

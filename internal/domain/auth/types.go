package auth

import (
	"time"

	"github.com/google/uuid"
)

// Config drives token verification. Issuer and Audience are checked only when set.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
}

// Claims are extracted from a verified access token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	ExpiresAt time.Time
}

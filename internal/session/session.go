package session

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenNotFound   = errors.New("api token not found")
	ErrTokenInvalid    = errors.New("api token invalid")
)

// LoginSession records one successful login. It is bookkeeping only;
// access tokens are stateless and never validated against this table.
type LoginSession struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TenantID   string    `json:"tenantId"`
	Device     string    `json:"device"`
	IPAddress  string    `json:"ipAddress"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

// APIToken is a long-lived opaque bearer token a user creates for
// automation. Only the SHA-256 of the token is stored; the plaintext is
// shown exactly once at creation.
type APIToken struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	// TokenHash never leaves the server.
	TokenHash string     `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
}

// SessionRepository defines the interface for login-session persistence
type SessionRepository interface {
	Create(ctx context.Context, sess *LoginSession) error
	ListForUser(ctx context.Context, userID string) ([]*LoginSession, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	DeleteForUser(ctx context.Context, userID string) error
}

// TokenRepository defines the interface for API-token persistence
type TokenRepository interface {
	Create(ctx context.Context, token *APIToken) error
	GetByHash(ctx context.Context, tokenHash string) (*APIToken, error)
	ListForUser(ctx context.Context, userID string) ([]*APIToken, error)
	Delete(ctx context.Context, userID, tokenID string) error
	TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error
}

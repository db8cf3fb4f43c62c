// Copyright 2026 The cks-api Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth issues and verifies the bearer tokens that carry a user's
// identity, tenant and primary role between requests. Tokens are stateless:
// verification is a pure signature and expiry check, with no store access.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is fixed at issuance and not configurable at runtime.
const TokenLifetime = 8 * time.Hour

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Config holds the signing material injected at construction. There is no
// package-level signing state.
type Config struct {
	Secret   string
	Issuer   string
	Audience string

	// CheckStatusAtLogin refuses tokens to suspended or inactive accounts.
	CheckStatusAtLogin bool
}

// Claims are the token claims every verifier sees.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"accessToken"`
	// RefreshToken is a reserved placeholder; refresh tokens are not issued.
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// Authenticator resolves credentials to a user. Implemented by the
// identity service.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*identity.User, error)
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}

// Issuer authenticates credentials and mints signed HS256 tokens.
type Issuer struct {
	cfg         Config
	ids         Authenticator
	auditLogger audit.Logger
	now         func() time.Time
}

// NewIssuer creates a token issuer with the given signing configuration.
func NewIssuer(cfg Config, ids Authenticator, auditLogger audit.Logger) *Issuer {
	return &Issuer{
		cfg:         cfg,
		ids:         ids,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Authenticate validates credentials and returns a signed token. Unknown
// email and wrong password are indistinguishable (both
// identity.ErrInvalidCredentials). When the status policy is enabled,
// suspended and inactive accounts are refused with their own errors; the
// HTTP layer collapses all of these into an opaque 401.
func (i *Issuer) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	user, err := i.ids.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if i.cfg.CheckStatusAtLogin {
		switch user.Status {
		case identity.StatusSuspended:
			return nil, identity.ErrAccountSuspended
		case identity.StatusInactive:
			return nil, identity.ErrAccountInactive
		}
	}

	token, err := i.Issue(user)
	if err != nil {
		return nil, err
	}

	if err := i.ids.RecordLogin(ctx, user.ID, i.now()); err != nil {
		// Last-login is informational; the issued token stands.
		_ = err
	}

	i.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTokenIssued,
		TenantID: user.TenantID,
		ActorID:  user.ID,
		Resource: "access_token",
	})

	return token, nil
}

// Issue mints a token for an already-authenticated user. exp is exactly
// iat + TokenLifetime.
func (i *Issuer) Issue(user *identity.User) (*Token, error) {
	now := i.now()
	expiresAt := now.Add(TokenLifetime)

	claims := &Claims{
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken:  signed,
		RefreshToken: "",
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

// Verify checks signature, expiry, issuer and audience. It touches no
// shared state and is safe for concurrent use.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return []byte(i.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

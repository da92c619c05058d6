package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xelth-com/finflowgo/internal/config"
	"github.com/xelth-com/finflowgo/internal/models"
)

// SessionIssuer is the iss claim expected on session tokens
const SessionIssuer = "finflow-identity"

// SessionClaims are the identity claims carried by a session token
type SessionClaims struct {
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts the claims into the fields synced onto the user record.
// Empty claims stay nil so an upsert leaves the stored value alone.
func (c *SessionClaims) Identity() models.UserIdentity {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return models.UserIdentity{
		ID:              c.Subject,
		Email:           opt(c.Email),
		FirstName:       opt(c.FirstName),
		LastName:        opt(c.LastName),
		ProfileImageURL: opt(c.ProfileImageURL),
		CompanyName:     opt(c.CompanyName),
	}
}

// GenerateSessionToken signs a session for identity; used by the dev token tool and tests
func GenerateSessionToken(identity models.UserIdentity, cfg config.SessionConfig) (string, error) {
	if identity.ID == "" {
		return "", errors.New("identity subject is required")
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	now := time.Now()
	claims := SessionClaims{
		Email:           deref(identity.Email),
		FirstName:       deref(identity.FirstName),
		LastName:        deref(identity.LastName),
		ProfileImageURL: deref(identity.ProfileImageURL),
		CompanyName:     deref(identity.CompanyName),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    SessionIssuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken parses and validates a session token
func ValidateToken(tokenString string, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(SessionIssuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

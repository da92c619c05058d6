package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/utils"
)

type contextKey string

const identityContextKey contextKey = "identity"

// ErrUnauthenticated is returned when a request carries no valid session
var ErrUnauthenticated = errors.New("authentication required")

// UserSyncer makes sure the session's user exists before owned records reference it
type UserSyncer interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, identity models.UserIdentity) (*models.User, error)
}

// Authenticator verifies session tokens issued by the identity provider
type Authenticator struct {
	secret     string
	cookieName string
	users      UserSyncer
	log        logrus.FieldLogger
}

// NewAuthenticator creates an Authenticator. Tokens are read from the
// Authorization bearer header first, then from the session cookie.
func NewAuthenticator(secret, cookieName string, users UserSyncer, log logrus.FieldLogger) *Authenticator {
	return &Authenticator{secret: secret, cookieName: cookieName, users: users, log: log}
}

// Middleware rejects unauthenticated requests and stores the session claims in the context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := a.tokenFromRequest(r)
		if tokenString == "" {
			unauthorized(w)
			return
		}

		claims, err := utils.ValidateToken(tokenString, a.secret)
		if err != nil {
			a.log.WithField("path", r.URL.Path).WithError(err).Debug("Rejected session token")
			unauthorized(w)
			return
		}

		// first request of a new identity creates the user row
		if _, err := a.users.Get(r.Context(), claims.Subject); err != nil {
			if _, err := a.users.Upsert(r.Context(), claims.Identity()); err != nil {
				a.log.WithFields(logrus.Fields{"module": "auth", "userId": claims.Subject}).WithError(err).Error("Failed to sync user")
				http.Error(w, `{"message":"Failed to sync user"}`, http.StatusInternalServerError)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
	})
}

func (a *Authenticator) tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(a.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// WithIdentity stores session claims in ctx
func WithIdentity(ctx context.Context, claims *utils.SessionClaims) context.Context {
	return context.WithValue(ctx, identityContextKey, claims)
}

// IdentityFromContext returns the authenticated session or ErrUnauthenticated
func IdentityFromContext(ctx context.Context) (*utils.SessionClaims, error) {
	claims, ok := ctx.Value(identityContextKey).(*utils.SessionClaims)
	if !ok || claims == nil || claims.Subject == "" {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
}

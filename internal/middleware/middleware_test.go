package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xelth-com/finflowgo/internal/config"
	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/utils"
)

type fakeUsers struct {
	known    map[string]bool
	upserted []string
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	if f.known[id] {
		return &models.User{ID: id}, nil
	}
	return nil, ErrUnauthenticated
}

func (f *fakeUsers) Upsert(_ context.Context, identity models.UserIdentity) (*models.User, error) {
	f.upserted = append(f.upserted, identity.ID)
	f.known[identity.ID] = true
	return &models.User{ID: identity.ID}, nil
}

const testSecret = "middleware-secret"

func newAuth(users *fakeUsers) *Authenticator {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return NewAuthenticator(testSecret, "finflow_session", users, log)
}

func token(t *testing.T, id string) string {
	t.Helper()
	tok, err := utils.GenerateSessionToken(models.UserIdentity{ID: id}, config.SessionConfig{Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tok
}

func echoSubject(w http.ResponseWriter, r *http.Request) {
	claims, err := IdentityFromContext(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(claims.Subject))
}

func TestAuthMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	h := newAuth(&fakeUsers{known: map[string]bool{}}).Middleware(http.HandlerFunc(echoSubject))

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-token",
		"scheme":  "Basic abc",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rr.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["message"] != "Unauthorized" {
			t.Errorf("%s: unexpected body %q", name, rr.Body.String())
		}
	}
}

func TestAuthMiddlewareAcceptsBearerAndCookie(t *testing.T) {
	users := &fakeUsers{known: map[string]bool{"alice": true}}
	h := newAuth(users).Middleware(http.HandlerFunc(echoSubject))

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "alice"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "alice" {
		t.Errorf("Bearer: got %d %q", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.AddCookie(&http.Cookie{Name: "finflow_session", Value: token(t, "alice")})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "alice" {
		t.Errorf("Cookie: got %d %q", rr.Code, rr.Body.String())
	}

	if len(users.upserted) != 0 {
		t.Errorf("Known user should not be upserted, got %v", users.upserted)
	}
}

func TestAuthMiddlewareSyncsNewUser(t *testing.T) {
	users := &fakeUsers{known: map[string]bool{}}
	h := newAuth(users).Middleware(http.HandlerFunc(echoSubject))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "newbie"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if len(users.upserted) != 1 || users.upserted[0] != "newbie" {
		t.Errorf("Expected newbie to be upserted, got %v", users.upserted)
	}
}

func TestIdentityFromContextWithoutSession(t *testing.T) {
	if _, err := IdentityFromContext(context.Background()); err != ErrUnauthenticated {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/invoices", nil))

	id := rr.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("Expected a request id header")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["requestId"] != id || entry["status"] != float64(http.StatusCreated) || entry["path"] != "/api/invoices" {
		t.Errorf("Unexpected log entry: %v", entry)
	}
}

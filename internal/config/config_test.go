package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without SESSION_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_PROVIDER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != "3001" {
		t.Errorf("Expected default port 3001, got %s", cfg.HTTP.Port)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("Expected local storage provider, got %s", cfg.Storage.Provider)
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("Unexpected session TTL %s", cfg.Session.TTL)
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SESSION_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject an unparsable SESSION_TTL")
	}
}

package documents

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xelth-com/finflowgo/internal/config"
)

func TestObjectKeySanitizesFileName(t *testing.T) {
	key := ObjectKey("user-1", "pan", "../../etc/My PAN card.pdf")
	if !strings.HasPrefix(key, "kyc/user-1/pan/") {
		t.Errorf("Unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, "-My_PAN_card.pdf") {
		t.Errorf("File name not sanitized: %s", key)
	}
	if !ValidKey(key) {
		t.Errorf("Generated key should be valid: %s", key)
	}
}

func TestValidKey(t *testing.T) {
	tests := map[string]bool{
		"kyc/u/pan/a.pdf": true,
		"":                false,
		"/abs/path":       false,
		"kyc/../secret":   false,
		"kyc//double":     false,
		`kyc\win`:         false,
	}
	for key, want := range tests {
		if got := ValidKey(key); got != want {
			t.Errorf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestLocalProviderSignAndSave(t *testing.T) {
	dir := t.TempDir()
	p := NewLocalProvider(dir, "/uploads/", time.Minute)

	up, err := p.SignUpload(context.Background(), UploadRequest{
		OwnerID: "alice", DocumentType: "aadhaar", FileName: "aadhaar.pdf", ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("SignUpload failed: %v", err)
	}
	if up.Method != "PUT" || up.UploadURL != up.FileURL || up.UploadURL != "/uploads/"+up.ObjectKey {
		t.Errorf("Unexpected upload target: %+v", up)
	}
	if up.Headers["Content-Type"] != "application/pdf" {
		t.Errorf("Content-Type header missing: %v", up.Headers)
	}

	n, err := p.Save(up.ObjectKey, strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != 8 {
		t.Errorf("Expected 8 bytes written, got %d", n)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(up.ObjectKey)))
	if err != nil || string(data) != "%PDF-1.4" {
		t.Errorf("Stored file mismatch: %q (%v)", data, err)
	}
}

func TestLocalProviderRejectsOversizeAndBadKeys(t *testing.T) {
	p := NewLocalProvider(t.TempDir(), "/uploads", time.Minute)
	p.MaxSize = 4

	if _, err := p.Save("kyc/a/pan/x.pdf", strings.NewReader("too large")); err == nil {
		t.Error("Expected oversize upload to fail")
	}
	if _, err := p.Save("../escape", strings.NewReader("x")); err != ErrInvalidKey {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestGCSProviderSignsWithPrivateKey(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rsaKey)})

	p, err := NewProvider(context.Background(), config.StorageConfig{
		Provider:    "gcs",
		Bucket:      "finflow-kyc",
		SignerEmail: "signer@finflow.iam.gserviceaccount.com",
		SignerKey:   string(pemKey),
		UploadTTL:   5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	up, err := p.SignUpload(context.Background(), UploadRequest{OwnerID: "alice", DocumentType: "pan", FileName: "pan.png", ContentType: "image/png"})
	if err != nil {
		t.Fatalf("SignUpload failed: %v", err)
	}

	u, err := url.Parse(up.UploadURL)
	if err != nil {
		t.Fatalf("Upload URL does not parse: %v", err)
	}
	if u.Query().Get("X-Goog-Signature") == "" || u.Query().Get("X-Goog-Algorithm") != "GOOG4-RSA-SHA256" {
		t.Errorf("Expected a V4 signed URL, got %s", up.UploadURL)
	}
	if !strings.Contains(up.UploadURL, up.ObjectKey) {
		t.Errorf("Signed URL does not address the object: %s", up.UploadURL)
	}
	if up.FileURL != "https://storage.googleapis.com/finflow-kyc/"+up.ObjectKey {
		t.Errorf("Unexpected file URL %s", up.FileURL)
	}
}

func TestNewProviderRejectsUnknown(t *testing.T) {
	if _, err := NewProvider(context.Background(), config.StorageConfig{Provider: "s3"}); err == nil {
		t.Error("Expected unknown provider to fail")
	}
	if _, err := NewProvider(context.Background(), config.StorageConfig{Provider: "gcs"}); err == nil {
		t.Error("Expected gcs without bucket to fail")
	}
}

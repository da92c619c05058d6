// Package documents issues upload targets for KYC documents.
package documents

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xelth-com/finflowgo/internal/config"
)

// Storage providers
const (
	ProviderLocal = "local"
	ProviderGCS   = "gcs"
)

// UploadRequest describes the file a user is about to upload
type UploadRequest struct {
	OwnerID      string
	DocumentType string
	FileName     string
	ContentType  string
}

// SignedUpload tells the client where to send the file and where it will be readable afterwards
type SignedUpload struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ObjectKey string            `json:"objectKey"`
	FileURL   string            `json:"fileUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// StorageProvider hands out upload targets. The file URL it returns is what
// the client stores on the KYC document record.
type StorageProvider interface {
	SignUpload(ctx context.Context, req UploadRequest) (*SignedUpload, error)
}

// NewProvider builds the provider selected by cfg.Provider
func NewProvider(ctx context.Context, cfg config.StorageConfig) (StorageProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderLocal:
		return NewLocalProvider(cfg.LocalDir, cfg.AccessBaseURL, cfg.UploadTTL), nil
	case ProviderGCS:
		return NewGCSProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds kyc/<owner>/<type>/<uuid>-<name>; only the file name part is user controlled
func ObjectKey(ownerID, documentType, fileName string) string {
	name := unsafeNameChars.ReplaceAllString(path.Base(strings.TrimSpace(fileName)), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "document"
	}
	return OwnerPrefix(ownerID) + path.Join(documentType, uuid.NewString()+"-"+name)
}

// OwnerPrefix is the folder holding every object of ownerID, with a trailing slash
func OwnerPrefix(ownerID string) string {
	return "kyc/" + unsafeNameChars.ReplaceAllString(ownerID, "_") + "/"
}

// ValidKey rejects keys that could escape the storage root
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

// accessURL joins base and key the way STORAGE_ACCESS_BASE_URL is documented:
// a {objectKey} placeholder is substituted, otherwise the key is appended as a path
func accessURL(base, key string) string {
	base = strings.TrimSpace(base)
	if strings.Contains(base, "{objectKey}") {
		return strings.ReplaceAll(base, "{objectKey}", key)
	}
	return strings.TrimRight(base, "/") + "/" + key
}

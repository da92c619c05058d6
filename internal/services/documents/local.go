package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidKey is returned for object keys outside the storage root
var ErrInvalidKey = errors.New("invalid object key")

// LocalProvider stores uploads on disk below Dir and serves them under BaseURL.
// Uploads are PUT to the same URL they are later read from.
type LocalProvider struct {
	Dir     string
	BaseURL string
	TTL     time.Duration
	MaxSize int64
}

// NewLocalProvider creates a LocalProvider with a 10 MiB upload limit
func NewLocalProvider(dir, baseURL string, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &LocalProvider{Dir: dir, BaseURL: baseURL, TTL: ttl, MaxSize: 10 << 20}
}

// SignUpload implements StorageProvider
func (p *LocalProvider) SignUpload(ctx context.Context, req UploadRequest) (*SignedUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := ObjectKey(req.OwnerID, req.DocumentType, req.FileName)
	url := accessURL(p.BaseURL, key)

	headers := map[string]string{}
	if req.ContentType != "" {
		headers["Content-Type"] = req.ContentType
	}
	return &SignedUpload{
		UploadURL: url,
		Method:    "PUT",
		Headers:   headers,
		ObjectKey: key,
		FileURL:   url,
		ExpiresAt: time.Now().UTC().Add(p.TTL),
	}, nil
}

// Save writes an uploaded object, refusing anything larger than MaxSize
func (p *LocalProvider) Save(key string, r io.Reader) (int64, error) {
	if !ValidKey(key) {
		return 0, ErrInvalidKey
	}
	dst := filepath.Join(p.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, p.MaxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write upload: %w", err)
	}
	if n > p.MaxSize {
		return 0, fmt.Errorf("upload exceeds %d bytes", p.MaxSize)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("store upload: %w", err)
	}
	return n, nil
}

// Path returns the file on disk for key
func (p *LocalProvider) Path(key string) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(p.Dir, filepath.FromSlash(key)), nil
}

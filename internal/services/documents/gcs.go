package documents

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iamcredentials/v1"
	"google.golang.org/api/option"

	"github.com/xelth-com/finflowgo/internal/config"
)

// GCSProvider issues V4 signed PUT URLs for a Cloud Storage bucket.
// With a configured private key the URL is signed locally, otherwise
// signing goes through the IAM credentials API for the signer account.
type GCSProvider struct {
	Bucket        string
	AccessBaseURL string
	TTL           time.Duration

	accessID  string
	key       []byte
	signBytes func([]byte) ([]byte, error)
}

// NewGCSProvider resolves the signer from cfg or from the runtime service account
func NewGCSProvider(ctx context.Context, cfg config.StorageConfig) (*GCSProvider, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	p := &GCSProvider{
		Bucket:        bucket,
		AccessBaseURL: cfg.AccessBaseURL,
		TTL:           cfg.UploadTTL,
	}
	if p.AccessBaseURL == "" || p.AccessBaseURL == "/uploads" {
		p.AccessBaseURL = "https://storage.googleapis.com/" + bucket
	}
	if p.TTL <= 0 {
		p.TTL = 15 * time.Minute
	}

	email := strings.TrimSpace(cfg.SignerEmail)
	if key := strings.TrimSpace(cfg.SignerKey); email != "" && key != "" {
		p.accessID = email
		p.key = []byte(strings.ReplaceAll(key, "\\n", "\n"))
		return p, nil
	}

	email, sign, err := iamSigner(ctx, email)
	if err != nil {
		return nil, err
	}
	p.accessID = email
	p.signBytes = sign
	return p, nil
}

// SignUpload implements StorageProvider
func (p *GCSProvider) SignUpload(ctx context.Context, req UploadRequest) (*SignedUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := ObjectKey(req.OwnerID, req.DocumentType, req.FileName)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "PUT",
		Expires:        time.Now().Add(p.TTL),
		ContentType:    contentType,
		GoogleAccessID: p.accessID,
		PrivateKey:     p.key,
		SignBytes:      p.signBytes,
	}
	signed, err := storage.SignedURL(p.Bucket, key, opts)
	if err != nil {
		return nil, fmt.Errorf("sign upload for %s: %w", key, err)
	}

	return &SignedUpload{
		UploadURL: signed,
		Method:    opts.Method,
		Headers:   map[string]string{"Content-Type": contentType},
		ObjectKey: key,
		FileURL:   accessURL(p.AccessBaseURL, key),
		ExpiresAt: opts.Expires.UTC(),
	}, nil
}

func iamSigner(ctx context.Context, email string) (string, func([]byte) ([]byte, error), error) {
	if email == "" && metadata.OnGCE() {
		defaultEmail, err := metadata.Email("default")
		if err != nil {
			return "", nil, fmt.Errorf("failed to get default service account email: %w", err)
		}
		email = defaultEmail
	}
	if email == "" {
		return "", nil, errors.New("GCS_SIGNER_EMAIL is required when no private key is provided")
	}

	creds, err := google.FindDefaultCredentials(ctx, iamcredentials.CloudPlatformScope)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load ADC credentials: %w", err)
	}
	svc, err := iamcredentials.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create iamcredentials service: %w", err)
	}

	resource := "projects/-/serviceAccounts/" + email
	sign := func(data []byte) ([]byte, error) {
		resp, err := svc.Projects.ServiceAccounts.SignBlob(resource, &iamcredentials.SignBlobRequest{
			Payload: base64.StdEncoding.EncodeToString(data),
		}).Do()
		if err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(resp.SignedBlob)
	}
	return email, sign, nil
}

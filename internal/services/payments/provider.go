// Package payments generates collection links for UPI payment requests.
package payments

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// Request describes the money to be collected
type Request struct {
	Amount      decimal.Decimal
	Description string
}

// Link is what a provider hands back for a payment request
type Link struct {
	Reference string // provider-side id
	URL       string // shareable payment page
	QRCode    string // image the payer scans, as a data URI
}

// LinkProvider issues payment links. Implementations may call a gateway;
// the store only persists what they return.
type LinkProvider interface {
	CreateLink(ctx context.Context, req Request) (Link, error)
}

// UPIProvider builds placeholder links locally: a PAY_<uuid> page under BaseURL
// and a QR code carrying a upi://pay intent for PayeeVPA.
type UPIProvider struct {
	BaseURL   string
	PayeeVPA  string
	PayeeName string
	QRSize    int
}

// NewUPIProvider creates a UPIProvider with a 256px QR code
func NewUPIProvider(baseURL, payeeVPA, payeeName string) *UPIProvider {
	return &UPIProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		PayeeVPA:  payeeVPA,
		PayeeName: payeeName,
		QRSize:    256,
	}
}

// CreateLink implements LinkProvider
func (p *UPIProvider) CreateLink(ctx context.Context, req Request) (Link, error) {
	if err := ctx.Err(); err != nil {
		return Link{}, err
	}
	if !req.Amount.IsPositive() {
		return Link{}, fmt.Errorf("payment amount must be positive, got %s", req.Amount)
	}

	ref := "PAY_" + uuid.NewString()
	png, err := qrcode.Encode(p.Intent(ref, req), qrcode.Medium, p.QRSize)
	if err != nil {
		return Link{}, fmt.Errorf("encode payment qr: %w", err)
	}

	return Link{
		Reference: ref,
		URL:       p.BaseURL + "/" + ref,
		QRCode:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Intent is the upi://pay URI encoded into the QR code
func (p *UPIProvider) Intent(ref string, req Request) string {
	q := url.Values{}
	q.Set("pa", p.PayeeVPA)
	if p.PayeeName != "" {
		q.Set("pn", p.PayeeName)
	}
	q.Set("am", req.Amount.StringFixed(2))
	q.Set("cu", "INR")
	q.Set("tr", ref)
	if req.Description != "" {
		q.Set("tn", req.Description)
	}
	return "upi://pay?" + q.Encode()
}

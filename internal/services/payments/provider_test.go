package payments

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUPIProviderCreateLink(t *testing.T) {
	p := NewUPIProvider("https://pay.example.com/", "shop@upi", "Shop")

	link, err := p.CreateLink(context.Background(), Request{
		Amount:      decimal.RequireFromString("1499.5"),
		Description: "Invoice INV-2026-000001",
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if !strings.HasPrefix(link.Reference, "PAY_") {
		t.Errorf("Expected PAY_ reference, got %q", link.Reference)
	}
	if link.URL != "https://pay.example.com/"+link.Reference {
		t.Errorf("Unexpected link URL %q", link.URL)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(link.QRCode, prefix) {
		t.Fatalf("Expected PNG data URI, got %.40q", link.QRCode)
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(link.QRCode, prefix))
	if err != nil {
		t.Fatalf("QR payload is not base64: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("QR payload is not a PNG image")
	}
}

func TestUPIProviderIntent(t *testing.T) {
	p := NewUPIProvider("https://pay.example.com", "shop@upi", "Shop")

	intent := p.Intent("PAY_1", Request{Amount: decimal.NewFromInt(250), Description: "Advance"})
	u, err := url.Parse(intent)
	if err != nil {
		t.Fatalf("Intent is not a URI: %v", err)
	}
	if u.Scheme != "upi" || u.Host != "pay" {
		t.Errorf("Expected upi://pay, got %s://%s", u.Scheme, u.Host)
	}

	q := u.Query()
	checks := map[string]string{"pa": "shop@upi", "pn": "Shop", "am": "250.00", "tr": "PAY_1", "tn": "Advance", "cu": "INR"}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestUPIProviderRejectsNonPositiveAmount(t *testing.T) {
	p := NewUPIProvider("https://pay.example.com", "shop@upi", "")
	if _, err := p.CreateLink(context.Background(), Request{Amount: decimal.Zero}); err == nil {
		t.Error("Expected error for zero amount")
	}
}

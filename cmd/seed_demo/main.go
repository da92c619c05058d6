package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/finflowgo/internal/config"
	"github.com/xelth-com/finflowgo/internal/database"
	"github.com/xelth-com/finflowgo/internal/logging"
	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/services/payments"
	"github.com/xelth-com/finflowgo/internal/store"
	"github.com/xelth-com/finflowgo/internal/utils"
)

func main() {
	userID := flag.String("user", "demo-user", "identity subject to seed data for")
	email := flag.String("email", "demo@finflow.app", "email for the demo user")
	flag.Parse()

	fmt.Println("🌱 FinFlow Demo Data Seeder")
	fmt.Println("=" + string(make([]rune, 60)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database, logging.New(cfg.Logging))
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("🔨 Running database migrations...")
	if err := database.Migrate(db.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	ctx := context.Background()
	st := store.New(db.DB, payments.NewUPIProvider(cfg.Payments.BaseURL, cfg.Payments.PayeeVPA, cfg.Payments.PayeeName))

	company := "Demo Traders Pvt Ltd"
	identity := models.UserIdentity{ID: *userID, Email: email, CompanyName: &company}
	if _, err := st.Users.Upsert(ctx, identity); err != nil {
		log.Fatalf("❌ Failed to create user: %v", err)
	}
	fmt.Printf("👤 User ready: %s\n\n", *userID)

	// 1. Invoices
	fmt.Println("🧾 Creating invoices...")
	now := time.Now().UTC()
	invoices := []struct {
		number, client, amount string
		status                 models.InvoiceStatus
		due                    time.Time
	}{
		{"INV-DEMO-001", "Sharma Textiles", "45000.00", models.InvoiceStatusPaid, now.AddDate(0, 0, -20)},
		{"INV-DEMO-002", "Gupta Electronics", "125500.50", models.InvoiceStatusPaid, now.AddDate(0, 0, -10)},
		{"INV-DEMO-003", "Mehta Foods", "75000.00", models.InvoiceStatusPending, now.AddDate(0, 0, 15)},
		{"INV-DEMO-004", "Rao Logistics", "18250.00", models.InvoiceStatusOverdue, now.AddDate(0, 0, -3)},
	}
	for _, inv := range invoices {
		amount := decimal.RequireFromString(inv.amount)
		status := inv.status
		_, err := st.Invoices.Create(ctx, *userID, store.InvoiceInput{
			InvoiceNumber: strPtr(inv.number),
			ClientName:    strPtr(inv.client),
			Amount:        &amount,
			Status:        &status,
			DueDate:       &inv.due,
		})
		var conflict *store.ConflictError
		switch {
		case errors.As(err, &conflict):
			fmt.Printf("   • Skipped existing invoice %s\n", inv.number)
		case err != nil:
			log.Printf("⚠️  Failed to create invoice %s: %v", inv.number, err)
		default:
			fmt.Printf("   ✓ Created invoice: %s (%s)\n", inv.number, inv.amount)
		}
	}
	fmt.Println()

	// 2. GST filings
	fmt.Println("📅 Creating GST filings...")
	period := now.AddDate(0, -1, 0).Format("2006-01")
	filings := []struct {
		kind string
		due  time.Time
	}{
		{"GSTR-1", now.AddDate(0, 0, 5)},
		{"GSTR-3B", now.AddDate(0, 0, 12)},
	}
	for _, f := range filings {
		if _, err := st.Filings.Create(ctx, *userID, store.FilingInput{
			FilingType: strPtr(f.kind),
			Period:     strPtr(period),
			DueDate:    &f.due,
		}); err != nil {
			log.Printf("⚠️  Failed to create filing %s: %v", f.kind, err)
			continue
		}
		fmt.Printf("   ✓ Created filing: %s for %s\n", f.kind, period)
	}
	fmt.Println()

	// 3. Draft loan application
	fmt.Println("💰 Creating loan application draft...")
	loanAmount := decimal.NewFromInt(500000)
	step := 1
	if _, err := st.Loans.Create(ctx, *userID, store.LoanInput{
		Amount: &loanAmount,
		Step:   &step,
		Action: store.LoanActionSaveDraft,
	}); err != nil {
		log.Printf("⚠️  Failed to create loan draft: %v", err)
	} else {
		fmt.Println("   ✓ Created draft for 500000")
	}
	fmt.Println()

	// 4. Session token for local testing
	token, err := utils.GenerateSessionToken(identity, cfg.Session)
	if err != nil {
		log.Fatalf("❌ Failed to sign session token: %v", err)
	}
	fmt.Println("🔑 Session token (Authorization: Bearer ...):")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("✅ Demo data ready")
}

func strPtr(s string) *string { return &s }

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/xelth-com/finflowgo/internal/config"
	"github.com/xelth-com/finflowgo/internal/database"
	"github.com/xelth-com/finflowgo/internal/handlers"
	"github.com/xelth-com/finflowgo/internal/logging"
	"github.com/xelth-com/finflowgo/internal/metrics"
	"github.com/xelth-com/finflowgo/internal/middleware"
	"github.com/xelth-com/finflowgo/internal/services/documents"
	"github.com/xelth-com/finflowgo/internal/services/payments"
	"github.com/xelth-com/finflowgo/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.Logging)

	// 2. Initialize database (embedded PostgreSQL when no password is configured)
	db, err := database.Connect(cfg.Database, log.WithField("module", "database"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Synchronize schema
	log.Info("Synchronizing database schema...")
	if err := database.Migrate(db.DB); err != nil {
		_ = db.Close()
		log.Fatalf("Migration failed: %v", err)
	}
	log.Info("Schema synchronized successfully")

	// 4. Services
	upi := payments.NewUPIProvider(cfg.Payments.BaseURL, cfg.Payments.PayeeVPA, cfg.Payments.PayeeName)
	st := store.New(db.DB, upi)

	uploads, err := documents.NewProvider(context.Background(), cfg.Storage)
	if err != nil {
		_ = db.Close()
		log.Fatalf("Failed to initialize document storage: %v", err)
	}
	local, _ := uploads.(*documents.LocalProvider)
	log.WithField("provider", cfg.Storage.Provider).Info("Document storage ready")

	// 5. HTTP router
	router := handlers.NewRouter(handlers.Options{
		DB:           db,
		Store:        st,
		Metrics:      metrics.NewAggregator(st, log.WithField("module", "metrics")),
		Auth:         middleware.NewAuthenticator(cfg.Session.Secret, cfg.Session.CookieName, st.Users, log.WithField("module", "auth")),
		Uploads:      uploads,
		LocalUploads: local,
		UPI:          upi,
		IssuerName:   cfg.Payments.PayeeName,
		Log:          log.WithField("module", "http"),
	})

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("env", cfg.NodeEnv).Infof("Server starting on port %s", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Warnf("Received signal %v, shutting down gracefully", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Info("Closing database connection...")
	if err := db.Close(); err != nil {
		log.Errorf("Database close error: %v", err)
	}

	log.Info("Shutdown complete")
}

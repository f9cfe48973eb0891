package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"villas-backend/config"
	"villas-backend/controllers"
	"villas-backend/mailer"
	"villas-backend/routes"
	"villas-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	gin.SetMode(cfg.App.GinMode)

	// Connect database (migrates and seeds the catalog)
	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Println("✅ Database connection established and catalog seeded.")

	m, err := mailer.New(cfg.Email)
	if err != nil {
		log.Fatalf("❌ Mailer setup failed: %v", err)
	}
	log.Printf("✅ Email provider: %s", cfg.Email.Provider)
	if !cfg.Email.ConfirmationToCustomer {
		log.Printf("⚠️  Confirmation emails go to %s for manual forwarding; set CONFIRMATION_TO_CUSTOMER=true to send them to customers directly.", cfg.Email.OperatorEmail)
	}

	var store services.IdempotencyStore
	if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		store = services.NewRedisIdempotencyStore(rdb)
		log.Printf("✅ Redis idempotency store at %s", cfg.Redis.Addr)
	} else {
		store = services.NewMemoryIdempotencyStore()
		log.Println("⚠️  Redis not configured; submissions are de-duplicated in memory only.")
	}

	// Initialize services
	catalogService := services.NewCatalogService(db)
	inquiryService := services.NewInquiryService(m, services.EmailSettings{
		From:                   cfg.Email.FromAddress(),
		OperatorAddress:        cfg.Email.OperatorEmail,
		ResortName:             cfg.App.Name,
		ConfirmationToCustomer: cfg.Email.ConfirmationToCustomer,
	}, store, cfg.Idempotency.TTL)

	// Initialize controllers
	catalogController := controllers.NewCatalogController(catalogService)
	inquiryController := controllers.NewInquiryController(inquiryService)
	formController := controllers.NewFormController(inquiryService, catalogService)

	// Build router
	router := routes.SetupRouter(cfg.CORS, catalogController, inquiryController, formController)

	addr := ":" + cfg.App.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// two sequential provider calls may sit behind one request
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server stopped gracefully")
}

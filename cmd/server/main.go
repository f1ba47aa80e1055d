package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/aperia-group/vendor-onboarding/internal/client"
	"github.com/aperia-group/vendor-onboarding/internal/config"
	"github.com/aperia-group/vendor-onboarding/internal/handler"
	"github.com/aperia-group/vendor-onboarding/internal/health"
	"github.com/aperia-group/vendor-onboarding/internal/logger"
	"github.com/aperia-group/vendor-onboarding/internal/middleware"
	"github.com/aperia-group/vendor-onboarding/internal/repository"
	"github.com/aperia-group/vendor-onboarding/internal/service"
	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

// approverLastnameAllowList is the static data-quality filter applied to the
// contact directory when populating approver dropdowns.
var approverLastnameAllowList = []string{}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Environment: cfg.Service.Environment,
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	})

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("environment", cfg.Service.Environment).
		Msg("Starting Vendor Onboarding Service")

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize warehouse client
	wh := warehouse.New(cfg.Warehouse.Endpoint(), cfg.Warehouse.Timeout)
	log.Info().
		Str("workspace_id", cfg.Warehouse.WorkspaceID).
		Msg("Warehouse client initialized")

	// Initialize NATS notifier (optional)
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable; workflow notifications disabled")
		} else {
			defer natsConn.Close()
			log.Info().Str("url", cfg.NATS.URL).Msg("NATS connection established")
		}
	}
	notifier := client.NewNotifier(natsConn, log.Logger)

	// Initialize repositories
	vendorRepo := repository.NewVendorRepository(wh)
	matrixRepo := repository.NewMatrixRepository(wh)
	contactRepo := repository.NewContactRepository(wh, approverLastnameAllowList)
	supplierRepo := repository.NewSupplierFormRepository(wh)
	bookingRepo := repository.NewBookingRepository(wh)
	historyRepo := repository.NewHistoryRepository(wh)
	referenceRepo, err := repository.NewReferenceRepository(wh, cfg.Cache.ReferenceTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create reference cache")
	}
	defer referenceRepo.Close()

	// Initialize services
	vendorService := service.NewVendorService(vendorRepo, supplierRepo, historyRepo, notifier, log)
	approvalService := service.NewApprovalService(vendorRepo, matrixRepo, historyRepo, notifier, log)
	matrixService := service.NewMatrixService(matrixRepo, contactRepo, log)
	bookingService := service.NewBookingService(bookingRepo, log)

	// Start warehouse health monitor
	monitor := health.NewMonitor(wh, cfg.Health.Interval, log.Logger)
	go monitor.Run(ctx)

	// Setup HTTP routes
	httpHandler := handler.NewHTTPHandler(vendorService, approvalService, matrixService, bookingService, referenceRepo, log)
	api := http.NewServeMux()

	// Vendor routes
	api.HandleFunc("/api/v1/vendors", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListVendors(w, r)
		case http.MethodPost:
			httpHandler.CreateVendor(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	api.HandleFunc("/api/v1/vendors/get", httpHandler.GetVendor)
	api.HandleFunc("/api/v1/vendors/approve", httpHandler.ApproveVendor)
	api.HandleFunc("/api/v1/vendors/decline", httpHandler.DeclineVendor)
	api.HandleFunc("/api/v1/vendors/resubmit", httpHandler.ResubmitVendor)
	api.HandleFunc("/api/v1/vendors/delete", httpHandler.DeleteVendor)
	api.HandleFunc("/api/v1/vendors/history", httpHandler.VendorHistory)

	// Supplier form routes
	api.HandleFunc("/api/v1/suppliers/submit", httpHandler.SubmitSupplierForm)
	api.HandleFunc("/api/v1/suppliers/lookup", httpHandler.LookupSupplierForm)

	// Approver matrix routes
	api.HandleFunc("/api/v1/approver-matrix", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListMatrix(w, r)
		case http.MethodPost:
			httpHandler.UpsertMatrix(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	api.HandleFunc("/api/v1/approver-matrix/delete", httpHandler.DeleteMatrix)
	api.HandleFunc("/api/v1/contacts", httpHandler.ListContacts)

	// Booking routes
	api.HandleFunc("/api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			httpHandler.ListBookings(w, r)
		case http.MethodPost:
			httpHandler.CreateBooking(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	api.HandleFunc("/api/v1/bookings/get", httpHandler.GetBooking)

	// Reference data routes
	api.HandleFunc("/api/v1/reference/stores", httpHandler.Reference(repository.RefStores))
	api.HandleFunc("/api/v1/reference/accounts", httpHandler.Reference(repository.RefGLAccounts))
	api.HandleFunc("/api/v1/reference/categories", httpHandler.Reference(repository.RefCategories))

	// API routes require a session; health does not.
	root := http.NewServeMux()
	root.Handle("/api/v1/", middleware.Auth(cfg.Auth.JWTSecret)(api))
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		state, checkedAt := monitor.Status()
		status := http.StatusOK
		if state == health.StateDown {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     string(state),
			"checked_at": checkedAt,
		})
	})

	// Apply middleware
	var h http.Handler = root
	h = middleware.RequestID(h)
	h = middleware.Logger(&log.Logger)(h)
	h = middleware.Recovery(&log.Logger)(h)
	h = middleware.CORS([]string{"*"})(h)
	h = middleware.Timeout(cfg.Server.WriteTimeout)(h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

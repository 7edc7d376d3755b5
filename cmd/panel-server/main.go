package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patientpanel/patientpanel/internal/config"
	"github.com/patientpanel/patientpanel/internal/domain/booking"
	"github.com/patientpanel/patientpanel/internal/domain/directory"
	"github.com/patientpanel/patientpanel/internal/domain/identity"
	"github.com/patientpanel/patientpanel/internal/domain/messaging"
	"github.com/patientpanel/patientpanel/internal/domain/payments"
	"github.com/patientpanel/patientpanel/internal/domain/queue"
	"github.com/patientpanel/patientpanel/internal/domain/records"
	"github.com/patientpanel/patientpanel/internal/domain/symptoms"
	"github.com/patientpanel/patientpanel/internal/platform/auth"
	"github.com/patientpanel/patientpanel/internal/platform/db"
	"github.com/patientpanel/patientpanel/internal/platform/middleware"
	"github.com/patientpanel/patientpanel/internal/platform/ws"
)

// DirectoryAdapter exposes the doctor directory to the booking domain,
// avoiding a direct import between the two packages.
type DirectoryAdapter struct {
	svc *directory.Service
}

func (a *DirectoryAdapter) Profile(ctx context.Context, doctorID uuid.UUID) (*booking.DoctorSummary, error) {
	d, err := a.svc.Profile(ctx, doctorID)
	if err != nil {
		if errors.Is(err, directory.ErrDoctorNotFound) {
			return nil, booking.ErrDoctorNotFound
		}
		return nil, err
	}
	return &booking.DoctorSummary{
		ID:              d.ID,
		Name:            d.Name,
		Specialty:       d.Specialty,
		ConsultationFee: d.ConsultationFee,
	}, nil
}

// OwnershipAdapter lets the queue tracker resolve who an appointment
// belongs to.
type OwnershipAdapter struct {
	svc *booking.Service
}

func (a *OwnershipAdapter) Owner(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error) {
	owner, err := a.svc.Owner(ctx, appointmentID)
	if errors.Is(err, booking.ErrNotFound) {
		return uuid.Nil, queue.ErrNotFound
	}
	return owner, err
}

// ChargeAdapter resolves the fee snapshot for the payments gateway. The fee
// comes from the stored appointment, never from the client request.
type ChargeAdapter struct {
	svc *booking.Service
}

func (a *ChargeAdapter) Charge(ctx context.Context, appointmentID, patientID uuid.UUID) (*payments.Charge, error) {
	appt, err := a.svc.Get(ctx, appointmentID, patientID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, payments.ErrNotFound
		}
		return nil, err
	}
	description := "Consultation"
	if appt.Doctor != nil {
		description = fmt.Sprintf("Consultation with Dr. %s", appt.Doctor.Name)
	}
	return &payments.Charge{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		Fee:           appt.ConsultationFee,
		Description:   description,
	}, nil
}

// MarkerAdapter lets the webhook finalize payments through the booking
// domain.
type MarkerAdapter struct {
	svc *booking.Service
}

func (a *MarkerAdapter) MarkPaid(ctx context.Context, appointmentID uuid.UUID) error {
	return a.svc.MarkPaid(ctx, appointmentID)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "panel-server",
		Short: "Patient panel API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "Stripe-Signature"},
	}))

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// API groups: everything under /api is rate limited and deadline bound;
	// the authed subgroup additionally requires a bearer token.
	api := e.Group("/api")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.RequestTimeout(30 * time.Second))

	authed := e.Group("/api")
	authed.Use(middleware.RateLimit(rateLimitCfg))
	authed.Use(middleware.RequestTimeout(30 * time.Second))
	authed.Use(auth.Middleware(cfg.JWTSecret))

	// Realtime hub. The websocket group carries no request timeout: the
	// connections are long-lived by design.
	hub := ws.NewHub()
	wsHandler := ws.NewHandler(hub)
	wsGroup := e.Group("/api/ws")
	wsGroup.Use(middleware.RateLimit(rateLimitCfg))
	wsHandler.RegisterRoutes(wsGroup)

	authorizer := auth.NewRoleAuthorizer()

	// Identity
	userRepo := identity.NewUserRepoPG(pool)
	identitySvc := identity.NewService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(api, authed)

	// Doctor directory
	doctorRepo := directory.NewDoctorRepoPG(pool)
	directorySvc := directory.NewService(doctorRepo)
	directoryHandler := directory.NewHandler(directorySvc)
	directoryHandler.RegisterRoutes(authed)

	// Booking
	apptRepo := booking.NewAppointmentRepoPG(pool)
	allocator := booking.NewAllocator(cfg.QueueAllocator, cfg.QueueMax)
	bookingSvc := booking.NewService(apptRepo, &DirectoryAdapter{svc: directorySvc}, allocator, logger)
	bookingHandler := booking.NewHandler(bookingSvc)
	bookingHandler.RegisterRoutes(authed)

	// Queue tracking
	entryRepo := queue.NewEntryRepoPG(pool)
	queueSvc := queue.NewService(entryRepo, &OwnershipAdapter{svc: bookingSvc}, authorizer, hub, logger)
	queueHandler := queue.NewHandler(queueSvc)
	queueHandler.RegisterRoutes(authed)

	// Payments
	checkout := payments.NewStripeCheckout(cfg.StripeSecretKey, cfg.PaymentTimeout)
	paymentsSvc := payments.NewService(checkout, &ChargeAdapter{svc: bookingSvc},
		&MarkerAdapter{svc: bookingSvc}, cfg.StripeWebhookSecret, logger)
	paymentsHandler := payments.NewHandler(paymentsSvc)
	paymentsHandler.RegisterRoutes(api, authed)

	// Messaging
	messageRepo := messaging.NewMessageRepoPG(pool)
	messagingSvc := messaging.NewService(messageRepo, hub, logger)
	messagingHandler := messaging.NewHandler(messagingSvc)
	messagingHandler.RegisterRoutes(authed)

	// Health records and prescriptions
	recordRepo := records.NewRecordRepoPG(pool)
	prescriptionRepo := records.NewPrescriptionRepoPG(pool)
	recordsSvc := records.NewService(recordRepo, prescriptionRepo, authorizer, logger)
	recordsHandler := records.NewHandler(recordsSvc)
	recordsHandler.RegisterRoutes(authed)

	// Symptom checker
	symptomsHandler := symptoms.NewHandler(symptoms.NewChecker())
	symptomsHandler.RegisterRoutes(authed)

	// Serve with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gameskins-co/intake/cmd/mainconfig"
	"github.com/gameskins-co/intake/internal/api/router"
	"github.com/gameskins-co/intake/internal/catalog"
	appconfig "github.com/gameskins-co/intake/internal/config"
	"github.com/gameskins-co/intake/internal/http/handlers"
	"github.com/gameskins-co/intake/internal/intake"
	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/internal/media"
	"github.com/gameskins-co/intake/internal/notify"
	"github.com/gameskins-co/intake/internal/observability/metrics"
	"github.com/gameskins-co/intake/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting skins intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	cat := catalog.Default()
	if cfg.ComboCatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.ComboCatalogPath)
		if err != nil {
			logger.Error("failed to load combo catalog", "error", err, "path", cfg.ComboCatalogPath)
			os.Exit(1)
		}
		cat = loaded
		logger.Info("combo catalog loaded from file", "path", cfg.ComboCatalogPath)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	leadsRepo := leads.NewPostgresRepository(pool)
	var galleryRepo catalog.GalleryRepository = catalog.NewPostgresGalleryRepository(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		galleryRepo = catalog.NewCachedGalleryRepository(galleryRepo, redisClient, 5*time.Minute, logger)
		logger.Info("gallery cache enabled", "addr", cfg.RedisAddr)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s3Client := mainconfig.NewS3Client(awsCfg, cfg.AWSEndpointOverride != "")
	store := media.NewS3Store(s3Client, logger)
	ingestor := media.NewIngestor(store, cfg.StorageBucket, cfg.StoragePublicBaseURL, cfg.MaxImageBytes(), logger)

	sender := buildEmailSender(cfg, awsCfg, logger)
	notifier := notify.NewService(sender, cfg.BusinessEmailTo, logger)
	if !notifier.Enabled() {
		logger.Warn("lead notifications disabled: no email provider configured")
	}

	intakeMetrics := metrics.NewIntakeMetrics(nil)

	intakeService := intake.NewService(leadsRepo, cat, ingestor, notifier, intake.Options{
		Fields: intake.FieldPolicy{
			RequireEmail:    cfg.RequireEmail,
			RequireShipping: cfg.RequireShipping,
		},
		Images:  intake.ParseImagePolicy(cfg.ImagePolicy),
		Details: intake.ParseDetailPolicy(cfg.DetailPolicy),
		Notify:  intake.ParseNotifyPolicy(cfg.NotifyPolicy),
		Metrics: intakeMetrics,
	}, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		HomeHandler:        handlers.NewHomeHandler(cat, cfg.BusinessWhatsAppNumber, cfg.MaxImageMB, logger),
		CatalogHandler:     catalog.NewHandler(cat, galleryRepo, logger),
		IntakeHandler:      intake.NewHandler(intakeService, logger),
		LeadsHandler:       leads.NewHandler(leadsRepo, logger),
		MetricsHandler:     promhttp.Handler(),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight lead notifications drain before exit.
	intakeService.Wait()
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the notification provider. "auto" takes the first
// configured of SMTP, SES, SendGrid. The nil checks stay on the concrete
// types; a typed nil inside the interface would read as configured.
func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	smtpSender := func() *notify.SMTPSender {
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
	}
	sesSender := func() *notify.SESSender {
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	}
	sendGridSender := func() *notify.SendGridSender {
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFrom,
			FromName:  cfg.SendGridFromName,
		}, logger)
	}

	switch cfg.EmailProvider {
	case "smtp":
		if s := smtpSender(); s != nil {
			return s
		}
	case "ses":
		if s := sesSender(); s != nil {
			return s
		}
	case "sendgrid":
		if s := sendGridSender(); s != nil {
			return s
		}
	case "stub":
		return notify.NewStubEmailSender(logger)
	default: // auto
		if s := smtpSender(); s != nil {
			logger.Info("email provider selected", "provider", "smtp")
			return s
		}
		if s := sesSender(); s != nil {
			logger.Info("email provider selected", "provider", "ses")
			return s
		}
		if s := sendGridSender(); s != nil {
			logger.Info("email provider selected", "provider", "sendgrid")
			return s
		}
	}
	return nil
}

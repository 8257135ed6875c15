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

	"github.com/chilisites/postsapi/blog/application"
	"github.com/chilisites/postsapi/blog/persistence"
	"github.com/chilisites/postsapi/internal/config"
	"github.com/chilisites/postsapi/internal/logging"
	"github.com/chilisites/postsapi/internal/metrics"
	"github.com/chilisites/postsapi/internal/middleware"
	"github.com/chilisites/postsapi/internal/rest"
	napplication "github.com/chilisites/postsapi/notification/application"
	"github.com/chilisites/postsapi/notification/domain"
	"github.com/chilisites/postsapi/notification/provider"
	"github.com/chilisites/postsapi/notification/templates"
	"github.com/chilisites/postsapi/shared/db/factory"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	shutdownTimeout = 5 * time.Second
	connectTimeout  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	database, err := factory.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure database")
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), connectTimeout)
	err = database.Connect(connectCtx)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	postRepo := persistence.NewPostRepository(database.DB(), database.Dialect())
	postService := application.NewPostService(postRepo, application.WithLegacyCoverFreeze(cfg.LegacyFreezeCover))

	sender, err := newSender(cfg.Email)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure email provider")
	}
	dispatcher := napplication.NewDispatcher(
		templates.NewDirStore(cfg.Email.TemplateDir),
		sender,
		napplication.Config{
			From:               cfg.Email.From,
			InternalRecipients: cfg.Email.InternalRecipients,
			SendTimeout:        cfg.Email.SendTimeout,
		},
	)

	m, metricsHandler := metrics.Setup()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(m))
	r.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(r, postService, dispatcher,
		rest.WithMetrics(metricsHandler, m),
		rest.WithEmailRateLimit(cfg.Security.EmailRateRPM, m.RecordRateLimited),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.CORS(cfg.Security.AllowedOrigins)(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Email.SendTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.HTTPAddr).
			Str("env", cfg.Env).
			Str("email_provider", cfg.Email.Provider).
			Str("database", string(database.Dialect())).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

func newSender(cfg config.EmailConfig) (domain.Sender, error) {
	switch cfg.Provider {
	case config.ProviderResend:
		return provider.NewResendSender(cfg.ResendAPIKey)
	case config.ProviderSMTP:
		return provider.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword)
	case config.ProviderLog:
		log.Warn().Msg("Emails are logged, not sent")
		return provider.LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// Package app assembles the service from configuration and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/config"
	"github.com/router-for-me/AppSubscriptions/internal/db"
	"github.com/router-for-me/AppSubscriptions/internal/http/api"
	"github.com/router-for-me/AppSubscriptions/internal/identity"
	"github.com/router-for-me/AppSubscriptions/internal/mail"
	"github.com/router-for-me/AppSubscriptions/internal/ratelimit"
	"github.com/router-for-me/AppSubscriptions/internal/store"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// Server holds the components built from configuration.
type Server struct {
	Router  *gin.Engine
	conn    *gorm.DB
	limiter *ratelimit.Manager
}

// ConfigureLogging applies the configured log level. Debug mode forces the
// debug level and gin's debug mode.
func ConfigureLogging(cfg config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
	level, errLevel := log.ParseLevel(cfg.LogLevel)
	if errLevel != nil {
		log.Warnf("unknown log level %q, using %s", cfg.LogLevel, config.DefaultLogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Build opens and migrates the database, seeds the plan catalog and wires the router.
func Build(cfg config.Config) (*Server, error) {
	conn, errOpen := db.Open(cfg.DSN())
	if errOpen != nil {
		return nil, errOpen
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return nil, fmt.Errorf("app: sql handle: %w", errDB)
	}
	if errMigrate := db.Migrate(conn, db.MigrateOptions{UniqueEmail: cfg.Account.EmailUnique()}); errMigrate != nil {
		_ = sqlDB.Close()
		return nil, errMigrate
	}
	seeded, errSeed := db.SeedPlans(conn, cfg.Plans)
	if errSeed != nil {
		_ = sqlDB.Close()
		return nil, errSeed
	}
	if seeded > 0 {
		log.Infof("seeded %d plan(s)", seeded)
	}

	mailer, errMailer := mail.NewSender(cfg.Mail)
	if errMailer != nil {
		_ = sqlDB.Close()
		return nil, errMailer
	}

	stores := store.New(conn)
	accounts := identity.NewService(stores.Users, stores.Tokens, mailer, identity.OptionsFromConfig(cfg))
	limiter := ratelimit.NewManager(ratelimit.SettingsFromConfig(cfg.RateLimit), ratelimit.Options{})

	router := api.NewRouter(api.Dependencies{
		DB:          sqlDB,
		Stores:      stores,
		Accounts:    accounts,
		RateLimiter: limiter,
		Metrics:     cfg.Metrics.IsEnabled(),
	})
	return &Server{Router: router, conn: conn, limiter: limiter}, nil
}

// Close releases the rate limiter backend and the database handle.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if errLimiter := s.limiter.Close(); errLimiter != nil {
		errs = append(errs, errLimiter)
	}
	if s.conn != nil {
		if sqlDB, errDB := s.conn.DB(); errDB == nil {
			if errClose := sqlDB.Close(); errClose != nil {
				errs = append(errs, errClose)
			}
		}
	}
	return errors.Join(errs...)
}

// RunServer serves the API until ctx is cancelled or the process receives
// SIGINT or SIGTERM. port overrides cfg.Port when positive.
func RunServer(ctx context.Context, cfg config.Config, port int) error {
	ConfigureLogging(cfg)
	if port > 0 {
		cfg.Port = port
	}
	if info, errDescribe := db.DescribeDSN(cfg.DSN()); errDescribe == nil {
		log.WithFields(info.Fields()).Info("database configured")
	}

	srv, errBuild := Build(cfg)
	if errBuild != nil {
		return errBuild
	}
	defer func() {
		if errClose := srv.Close(); errClose != nil {
			log.WithError(errClose).Warn("server cleanup failed")
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errServe := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s with config=%s", httpServer.Addr, cfg.ConfigPath)
		if errListen := httpServer.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
			errServe <- errListen
		}
		close(errServe)
	}()

	select {
	case errListen, ok := <-errServe:
		if ok {
			return errListen
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := httpServer.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("app: shutdown: %w", errShutdown)
	}
	return nil
}

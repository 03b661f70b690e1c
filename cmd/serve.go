package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/endpoint"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	userCacheTTL    = time.Minute
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// setupLogger installs the process logger from configuration.
func setupLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	util.SetLogger(logger)
	return logger, nil
}

// jwtSecret returns the configured signing key, or a random one when JWTSECRET is unset.
func jwtSecret(cfg *config.Config, logger *zap.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	logger.Warn("JWTSECRET is not set; using a random key, tokens will not survive a restart")
	return []byte(hex.EncodeToString(key)), nil
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.LoadConfig()
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectDatabase()
	if err != nil {
		logger.Error("failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
		return err
	}
	if err := model.Migrate(db); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return err
	}
	logger.Info("connected to database", zap.String("driver", db.Dialector.Name()))

	if rdb, err := config.ConnectRedis(); err != nil {
		logger.Warn("redis unavailable; token revocation and rate limiting are disabled", zap.Error(err))
	} else if rdb != nil {
		logger.Info("connected to redis")
	}

	if err := util.InitGeoIP(cfg.GeoIPPath); err != nil {
		logger.Warn("geoip lookups disabled", zap.String("path", cfg.GeoIPPath), zap.Error(err))
	}
	defer util.CloseGeoIP()

	util.InitUserCache(userCacheTTL)
	util.SetSecurityLoggerDB(db)

	secret, err := jwtSecret(cfg, logger)
	if err != nil {
		return err
	}
	svc := service.New(repository.NewGormStore(db), util.NewTokenIssuer(secret, cfg.TokenTTL))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           endpoint.SetupRouter(cfg, db, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

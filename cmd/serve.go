package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"civicconnect-be/accesscode"
	"civicconnect-be/config"
	"civicconnect-be/controllers"
	"civicconnect-be/routes"
	"civicconnect-be/services"
	authUtils "civicconnect-be/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CivicConnect API server",
	Long:  "Start the HTTP API.\nBy default it listens on port 8080. Use --port or PORT to change it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := config.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	rdb, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	tokens, err := authUtils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	var codes accesscode.Validator = accesscode.Disabled{}
	if cfg.AuthorityCodeURL != "" {
		codes = accesscode.NewHTTPValidator(cfg.AuthorityCodeURL, cfg.AuthorityCodeAPIKey, cfg.RequestTimeout)
	} else {
		ui.Warning("AUTHORITY_CODE_URL is not set: authority registration is disabled")
	}

	logger := slog.Default()
	auth := services.NewAuthService(store, store, codes, tokens, authUtils.NewRedisRevocationList(rdb, "revoked_token"), logger)
	issues := services.NewIssueService(store, logger)

	router := routes.NewRouter(routes.Services{
		Auth:     auth,
		Resolver: auth,
		Issues:   issues,
	}, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Cookies:        controllers.CookieSettings{Production: cfg.Production(), Domain: cfg.Domain},
		Redis:          rdb,
		LimitPrefix:    cfg.IssueLimitPrefix,
		DailyLimit:     cfg.IssueDailyLimit,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ui.Success("Serving API at http://localhost%s (store: %s)", srv.Addr, cfg.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	ui.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/application"
	appanalysis "github.com/bryanwahyu/cyberrisk-advisor/internal/application/analysis"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/config"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/infra/ai/openai"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/infra/httpserver"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/logger"
	"github.com/bryanwahyu/cyberrisk-advisor/internal/middleware"
)

var configPath string

func main() {
	// .env is optional, same as running without one
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "api",
		Short:         "CyberRisk Advisor: AGI-powered security log analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config.yaml (optional)")
	root.AddCommand(newAnalyzeCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil {
		logger.Errorf("%v", err)
	}
	logger.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func loadConfig(logOutput ...string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Development, logOutput...); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func newService(cfg *config.Config) *appanalysis.Service {
	return &appanalysis.Service{
		Client:  openai.NewClient(cfg.AGI.APIKey, cfg.AGI.BaseURL, cfg.AGI.Model, nil),
		Timeout: cfg.AGI.Timeout,
		Clock:   application.SystemClock{},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AGI.APIKey == "" {
		logger.Warnf("AGI_API_KEY is not set; /analyze_logs will fail until it is configured")
	}

	metrics := middleware.NewMetrics()
	svc := newService(cfg)
	svc.Metrics = metrics

	handler := httpserver.NewRouter(svc, httpserver.Options{
		APIKeys: cfg.Server.APIKeys,
		Checkers: map[string]middleware.HealthChecker{
			"agi_credential": middleware.CredentialChecker{APIKey: cfg.AGI.APIKey},
		},
		Metrics: metrics,
	})

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// must outlive the AGI timeout, or slow analyses get cut off mid-response
		WriteTimeout: cfg.AGI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("server listening on %s base_url=%s model=%s", srv.Addr, cfg.AGI.BaseURL, cfg.AGI.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown error: %v", err)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/howzat/howzat/engine/classifier"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/infra/monitoring"
	"github.com/howzat/howzat/engine/infra/server"
	"github.com/howzat/howzat/engine/orchestrator"
	"github.com/howzat/howzat/engine/pipeline"
	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/engine/router"
	"github.com/howzat/howzat/engine/tool/builtin"
	"github.com/howzat/howzat/pkg/config"
	"github.com/howzat/howzat/pkg/logger"
)

// ServeCmd starts the HTTP query service.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query service",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := setupLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)

	c, err := cache.Setup(ctx, buildCacheConfig(cfg))
	if err != nil {
		return fmt.Errorf("setting up cache: %w", err)
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			log.Warn("failed to close cache", "error", closeErr)
		}
	}()

	reg := registry.New()
	if err := builtin.RegisterAll(ctx, reg, func(name string) builtin.ClientConfig {
		tc := cfg.Tools.Resolve(name)
		return builtin.ClientConfig{
			BaseURL: tc.BaseURL,
			APIKey:  tc.APIKey.Value(),
			Timeout: tc.Timeout,
		}
	}); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	nlu, err := classifier.NewLangChainNLU(classifier.ProviderConfig{
		Model:       cfg.Classifier.Model,
		APIKey:      cfg.Classifier.APIKey.Value(),
		BaseURL:     cfg.Classifier.BaseURL,
		Temperature: cfg.Classifier.Temperature,
		MaxTokens:   cfg.Classifier.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("setting up classifier: %w", err)
	}

	mon := monitoring.NewServiceWithFallback(ctx, &monitoring.Config{
		Enabled: cfg.Monitoring.Enabled,
		Path:    cfg.Monitoring.Path,
	})
	defer func() {
		if shutdownErr := mon.Shutdown(context.Background()); shutdownErr != nil {
			log.Warn("failed to shut down monitoring", "error", shutdownErr)
		}
	}()

	orch := orchestrator.New(reg, c, &orchestrator.Config{
		MaxConcurrent: cfg.Orchestrator.MaxConcurrent,
		GlobalTimeout: cfg.Orchestrator.GlobalTimeout,
		ToolTimeouts:  cfg.Orchestrator.ToolTimeouts,
		MaxRetries:    cfg.Orchestrator.MaxRetries,
	})
	svc := pipeline.NewService(
		classifier.New(nlu, classifier.WithMemoWindow(cfg.Classifier.MemoWindow)),
		router.New(reg),
		orch,
		pipeline.WithMetrics(mon.Metrics()),
		pipeline.WithBatchConcurrency(cfg.Orchestrator.BatchConcurrency),
	)

	srv, err := server.NewServer(ctx, cfg, server.Deps{
		Pipeline:   svc,
		Registry:   reg,
		Cache:      c,
		Monitoring: mon,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// setupLogger applies flag overrides on top of the configured log settings.
func setupLogger(cmd *cobra.Command, cfg *config.Config) logger.Logger {
	level, json, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return logger.Setup(cfg.Log.Level, cfg.Log.JSON)
	}
	if !cmd.Flags().Changed("log-level") {
		level = cfg.Log.Level
	}
	if !cmd.Flags().Changed("log-json") {
		json = cfg.Log.JSON
	}
	return logger.Setup(level, json)
}

func buildCacheConfig(cfg *config.Config) *cache.Config {
	return &cache.Config{
		Driver:         cache.Driver(cfg.Cache.Driver),
		URL:            cfg.Cache.URL.Value(),
		Host:           cfg.Cache.Host,
		Port:           strconv.Itoa(cfg.Cache.Port),
		Password:       cfg.Cache.Password.Value(),
		DB:             cfg.Cache.DB,
		PingTimeout:    cfg.Cache.PingTimeout,
		MemoryCapacity: cfg.Cache.MemoryCapacity,
		GraceFactor:    cfg.Cache.GraceFactor,
		Durations: cache.Durations{
			Realtime: cfg.Cache.TTLRealtime,
			Short:    cfg.Cache.TTLShort,
			Medium:   cfg.Cache.TTLMedium,
			Long:     cfg.Cache.TTLLong,
		},
	}
}

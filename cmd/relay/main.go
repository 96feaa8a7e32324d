// Package main 中继服务入口，持有上游凭证并转发聊天补全请求
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"layr-ai-api/internal/config"
	"layr-ai-api/internal/wire"
	"layr-ai-api/pkg/logger"
	"layr-ai-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var Version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithOutput(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
		cfg.Observability.Logging.Output,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	if cfg.Relay.APIKey == "" {
		// 仍然启动，/api/chat 会返回 API configuration error
		log.Warn("relay upstream api key is not set")
	}

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName:    cfg.App.Name + "-relay",
		ServiceVersion: Version,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	app, cleanupApp, err := wire.InitializeRelay(ctx, cfg, wire.Version(Version))
	if err != nil {
		logger.Fatal(ctx, "failed to initialize relay", err)
	}
	defer cleanupApp()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Relay.Host, cfg.Server.Relay.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Engine(),
		ReadTimeout:  cfg.Server.Relay.ReadTimeout,
		WriteTimeout: cfg.Server.Relay.WriteTimeout,
		IdleTimeout:  cfg.Server.Relay.IdleTimeout,
	}

	go func() {
		log.Info("relay server starting", "addr", addr, "upstream", cfg.Relay.UpstreamURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("relay server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down relay...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("relay forced to shutdown", "error", err)
	}
}

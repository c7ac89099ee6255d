package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codebuddy/server/internal/adapter/llm"
	"github.com/codebuddy/server/internal/auth"
	"github.com/codebuddy/server/internal/config"
	"github.com/codebuddy/server/internal/generator"
	"github.com/codebuddy/server/internal/hub"
	"github.com/codebuddy/server/internal/logger"
	"github.com/codebuddy/server/internal/metrics"
	"github.com/codebuddy/server/internal/service"
	"github.com/codebuddy/server/internal/store"
	transporthttp "github.com/codebuddy/server/internal/transport/http"
	"github.com/codebuddy/server/internal/transport/ws"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "codebuddy",
		Short:         "CodeBuddy interview preparation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "codebuddy.yaml", "path to config file")

	root.AddCommand(serve)
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Setup(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log.Info().Int("port", cfg.HTTPPort).Str("database", cfg.DatabaseURL).Msg("starting codebuddy server")

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	llmClient := llm.NewClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if cfg.LLMAPIKey == "" {
		log.Warn().Msg("no LLM api key configured, running on the fallback generator")
	}
	gen := generator.New(llmClient, cfg.LLMModel, m)

	h := hub.New()
	go h.Run()

	authManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	svc := service.New(db, gen, h, m, cfg, authManager)

	wsServer := ws.NewServer(h, svc, m)
	e := transporthttp.NewServer(svc, authManager, m, registry, wsServer.HandleWebSocket)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.HTTPPort).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
	}
	log.Info().Msg("server stopped")
	return nil
}

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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"seo_article_writer/config"
	"seo_article_writer/generator"
	"seo_article_writer/search"
	"seo_article_writer/server"
)

var rootCmd = &cobra.Command{
	Use:   "seowriter",
	Short: "Local SEO article writer",
	Long: `seowriter serves a local web UI that researches a keyword with Serper,
drafts a structured article with Gemini, and lets you edit or regenerate
individual sections before exporting HTML, JSON-LD and llm.txt.

Configuration is read from the environment or a .env file:
  SERPER_API_KEY, GEMINI_API_KEY (required)
  GENERATION_PROVIDER, GENERATION_MODEL, GENERATION_BASE_URL,
  GENERATION_TIMEOUT, ARTICLE_LANGUAGE, SEARCH_RESULT_COUNT, LOG_LEVEL`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := buildLLM(ctx, cfg)
	if err != nil {
		return err
	}
	searcher, err := search.New(cfg.SerperAPIKey, cfg.Language, nil, logger)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm, searcher, generator.AgentOptions{
		ResultCount: cfg.ResultCount,
		Language:    cfg.Language,
		Model:       cfg.LLM.Model,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := server.New(agent, server.Options{Logger: logger, Timeout: cfg.LLM.Timeout})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting web server",
			zap.String("addr", "http://"+cfg.ServerAddr),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
		)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

func buildLLM(ctx context.Context, cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	switch cfg.LLM.Provider {
	case "gemini":
		return generator.NewGenAILLM(ctx, settings)
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

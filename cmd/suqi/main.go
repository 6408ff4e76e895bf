// SPDX-License-Identifier: Apache-2.0

// Command suqi serves the conversational analytics pipeline over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suqilabs/suqi/pkg/audit"
	"github.com/suqilabs/suqi/pkg/config"
	"github.com/suqilabs/suqi/pkg/executor"
	"github.com/suqilabs/suqi/pkg/httpapi"
	"github.com/suqilabs/suqi/pkg/llm"
	"github.com/suqilabs/suqi/pkg/pipeline"
	"github.com/suqilabs/suqi/pkg/planner"
	"github.com/suqilabs/suqi/pkg/registry"
	"github.com/suqilabs/suqi/pkg/scorer"
	"github.com/suqilabs/suqi/pkg/telemetry"
	"github.com/suqilabs/suqi/pkg/tools"
)

const (
	serviceName     = "suqi"
	serviceVersion  = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	catalogPath := flag.String("catalog", "", "path to a YAML capability catalog override")
	addr := flag.String("addr", "", "listen address, overrides config")
	flag.Parse()

	if err := run(*configPath, *catalogPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "suqi:", err)
		os.Exit(1)
	}
}

func run(configPath, catalogPath, addrOverride string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
	}

	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	shutdownTelemetry, err := telemetry.InitWithConfig(serviceName, serviceVersion, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	reg := registry.New()
	if catalogPath != "" {
		reg, err = registry.LoadFile(catalogPath)
		if err != nil {
			return fmt.Errorf("load capability catalog: %w", err)
		}
	}

	store, closeStore, err := openAuditStore(cfg.Audit)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer closeStore()

	metrics, err := telemetry.NewPipelineMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("build llm provider: %w", err)
	}
	if provider == nil {
		slog.Warn("no language model configured, planning is rule-based only")
	}

	toolset := tools.NewHTTPToolSet(tools.Endpoints{
		SemanticQuery: cfg.Tools.SemanticQueryURL,
		GeoExport:     cfg.Tools.GeoExportURL,
		ParityCheck:   cfg.Tools.ParityCheckURL,
		AutoSyncFlat:  cfg.Tools.AutoSyncURL,
		CatalogQA:     cfg.Tools.CatalogQAURL,
	}, time.Duration(cfg.Tools.TimeoutSeconds)*time.Second)

	pl := planner.New(provider, scorer.New(reg), reg, planner.Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})
	recorder := audit.NewRecorder(store)
	pipe := pipeline.New(pl, executor.New(toolset), recorder, metrics)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewHandler(pipe, reg, store).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	pipe.Flush()
	return nil
}

func openAuditStore(cfg config.AuditConfig) (audit.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return audit.NewMemoryStore(), func() {}, nil
	case "", "sqlite":
		db, err := sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, err := audit.NewSQLiteStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return llm.NewOllama(cfg.BaseURL), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return llm.NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Package main provides the pilot CLI: it drives the browser automation
// agent loop against a single task from the command line.
//
// Usage:
//
//	pilot --config pilot.yaml --task "Go to example.test and search for hello"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrenlab/pilot/internal/agentloop"
	"github.com/wrenlab/pilot/internal/browser"
	"github.com/wrenlab/pilot/internal/config"
	"github.com/wrenlab/pilot/internal/controller"
	"github.com/wrenlab/pilot/internal/dom"
	"github.com/wrenlab/pilot/internal/domreport"
	"github.com/wrenlab/pilot/internal/messagemgr"
	"github.com/wrenlab/pilot/internal/modelclient"
	"github.com/wrenlab/pilot/internal/modelmanager"
	"github.com/wrenlab/pilot/internal/pluginmgr"
	"github.com/wrenlab/pilot/pkg/endpoint"
)

func main() {
	configPath := flag.String("config", "", "path to a pilot.yaml config file (defaults applied when omitted)")
	task := flag.String("task", "", "the task to hand the agent")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on (empty disables it)")
	debugHTML := flag.String("debug-html", "", "write an HTML dump of the final DOM snapshot to this path (empty disables it)")
	flag.Parse()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				slog.Error("pilot: metrics server stopped", "error", err)
			}
		}()
	}

	if *task == "" {
		fmt.Fprintln(os.Stderr, "pilot: --task is required")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("pilot: failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := run(ctx, cfg, *task, *debugHTML)
	if err != nil {
		slog.Error("pilot: run failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("pilot: failed to encode result", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, task, debugHTMLPath string) (agentloop.Result, error) {
	pool, err := browser.NewPool(browser.PoolConfig{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.Viewport.Width,
		ViewportHeight: cfg.Browser.Viewport.Height,
	})
	if err != nil {
		return agentloop.Result{}, fmt.Errorf("pilot: start browser pool: %w", err)
	}
	defer pool.Close()

	session, err := browser.NewSession(ctx, pool)
	if err != nil {
		return agentloop.Result{}, fmt.Errorf("pilot: acquire browser session: %w", err)
	}
	defer session.Close()

	plugins := pluginmgr.NewManager()
	ctrl := controller.New(session, plugins)

	models, err := buildModelManager(cfg)
	if err != nil {
		return agentloop.Result{}, err
	}

	messages := messagemgr.New(messagemgr.Config{
		MaxHistorySteps: cfg.Agent.MemorySize,
	})

	loop := agentloop.New(agentloop.Config{
		MaxSteps:               cfg.Agent.MaxSteps,
		MaxConsecutiveFailures: cfg.Agent.MaxConsecutiveFailures,
		MaxSimilarActions:      cfg.Agent.MaxSimilarActions,
		EnableLoopDetection:    cfg.Agent.EnableLoopDetection,
		UseVision:              cfg.Agent.UseVision,
		MemorySize:             cfg.Agent.MemorySize,
	}, ctrl, models, messages, plugins, uuid.NewString(), uuid.NewString())

	result, err := loop.Run(ctx, task)
	if debugHTMLPath != "" {
		if dumpErr := dumpDebugHTML(ctrl, debugHTMLPath); dumpErr != nil {
			slog.Warn("pilot: failed to write debug HTML dump", "path", debugHTMLPath, "error", dumpErr)
		}
	}
	return result, err
}

// dumpDebugHTML writes an HTML table of the final DOM snapshot for offline
// inspection, when the --debug-html flag names a path.
func dumpDebugHTML(ctrl *controller.Controller, path string) error {
	state, err := ctrl.DOMState(dom.Options{})
	if err != nil {
		return fmt.Errorf("pilot: snapshot for debug dump: %w", err)
	}
	rendered, err := domreport.Render(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(rendered), 0o644)
}

// buildModelManager wires every configured endpoint to its provider flavor
// client, per spec.md section 6's three known flavors.
func buildModelManager(cfg config.Config) (*modelmanager.Manager, error) {
	pairs := make(map[*endpoint.Endpoint]modelclient.Client, len(cfg.Model.Endpoints))
	for _, ec := range cfg.Model.Endpoints {
		if !ec.Enabled {
			continue
		}
		client, err := buildClient(ec)
		if err != nil {
			return nil, err
		}
		ep := &endpoint.Endpoint{
			ID:       uuid.NewString(),
			Provider: ec.Provider,
			APIKey:   ec.APIKey,
			BaseURL:  ec.BaseURL,
			Model:    ec.Model,
			Priority: ec.Priority,
			Weight:   ec.Weight,
			Enabled:  ec.Enabled,
		}
		pairs[ep] = client
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("pilot: no enabled model endpoints configured")
	}

	metrics := modelmanager.NewMetrics(prometheus.DefaultRegisterer)
	return modelmanager.New(modelmanager.Config{
		Strategy:          modelmanager.Strategy(cfg.Model.Strategy),
		Temperature:       cfg.Model.Temperature,
		MaxTokens:         cfg.Model.MaxTokens,
		MaxRetries:        cfg.Model.MaxRetries,
		RetryDelay:        cfg.Model.RetryDelay,
		Timeout:           cfg.Model.Timeout,
		FailureThreshold:  cfg.Model.LoadBalance.FailureThreshold,
		RecoveryThreshold: cfg.Model.LoadBalance.RecoveryThreshold,
		HealthCheckWindow: cfg.Model.LoadBalance.Window,

		DisableHealthCheck: cfg.Model.UserControl.DisableHealthCheck,
		EnableFallbackMode: cfg.Model.UserControl.EnableFallbackMode,
		AlwaysRetryAll:     cfg.Model.UserControl.AlwaysRetryAll,
	}, metrics, pairs), nil
}

func buildClient(ec config.EndpointConfig) (modelclient.Client, error) {
	switch ec.Provider {
	case "openai":
		return modelclient.NewOpenAIClient(ec.APIKey, ec.BaseURL, ec.Model), nil
	case "google":
		return modelclient.NewGoogleClient(ec.APIKey, ec.BaseURL, ec.Model), nil
	case "anthropic":
		return modelclient.NewAnthropicClient(ec.APIKey, ec.Model), nil
	default:
		return nil, fmt.Errorf("pilot: unknown model provider %q", ec.Provider)
	}
}

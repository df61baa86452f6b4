package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/deskd/deskd/internal/agents"
	"github.com/deskd/deskd/internal/api"
	"github.com/deskd/deskd/internal/config"
	"github.com/deskd/deskd/internal/faq"
	"github.com/deskd/deskd/internal/gemini"
	"github.com/deskd/deskd/internal/pipeline"
	"github.com/deskd/deskd/internal/responselog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deskd server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running deskd server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deskd system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

// The PID file lives next to the response log, which sits in the data
// directory by default.
func pidFilePath(cfg config.Config) string {
	return filepath.Join(filepath.Dir(cfg.ResponseLog.File), "deskd.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch {
	case strings.EqualFold(level, "debug"):
		logLevel = slog.LevelDebug
	case strings.EqualFold(level, "warn"):
		logLevel = slog.LevelWarn
	case strings.EqualFold(level, "error"):
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "deskd version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg.Log.Level)

	// Ensure the API bearer token exists in the platform secret store.
	token, err := config.APIToken()
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Refuse to start a second instance.
	pidPath := pidFilePath(cfg)
	healthURL := fmt.Sprintf("http://%s:%d/api/support/health", cfg.Server.Host, cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("deskd is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("deskd is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// FAQ knowledge base. A missing or malformed file degrades to an empty
	// store; the server still answers, just without FAQ context.
	store := faq.Load(cfg.FAQ.File)
	engine := faq.NewEngine(store)
	slog.Info("FAQ store loaded", "file", cfg.FAQ.File, "entries", store.Len())

	gem := gemini.New(cfg.Gemini.BaseURL, cfg.Gemini.APIKey)
	if !gem.Ready() {
		slog.Warn("no Gemini API key configured; inquiries will be rejected until one is set")
	}

	settings := agents.Settings{
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		CallTimeout: cfg.Pipeline.Timeout(),
	}

	respLog := responselog.New(cfg.ResponseLog.File)

	orch := pipeline.New(
		agents.NewClassifier(gem, settings),
		agents.NewResearcher(gem, engine, settings, cfg.Pipeline.TopK),
		agents.NewWriter(gem, settings),
		agents.NewValidator(gem, settings, cfg.Pipeline.MaxRetries+1),
		respLog,
		cfg.Pipeline.MaxRetries,
	)

	stats := api.NewStats()
	limiter := api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	handler := api.NewHandler(api.Deps{
		Pipeline:  orch,
		Search:    engine,
		Responses: respLog,
		Stats:     stats,
		Ready:     gem.Ready,
		FAQCount:  store.Len,
		TopK:      cfg.Pipeline.TopK,
		Token:     token,
		Limiter:   limiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Pipeline:  orch,
		Search:    engine,
		Responses: respLog,
		Stats:     stats,
		Ready:     gem.Ready,
		TopK:      cfg.Pipeline.TopK,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "deskd listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("MCP server started (stdio transport)")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("deskd is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop deskd (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to deskd (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/api/support/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		var health struct {
			Status           string `json:"status"`
			GeminiConfigured bool   `json:"gemini_configured"`
			FAQEntries       int    `json:"faq_entries"`
		}
		decodeErr := decodeJSON(resp, &health)
		if decodeErr != nil {
			printStatus("Server", "error (%v)", decodeErr)
		} else {
			running = true
			printStatus("Server", "%s on port %d", health.Status, cfg.Server.Port)
			printStatus("Gemini", "configured=%t, model %s", health.GeminiConfigured, cfg.Gemini.Model)
			printStatus("FAQ entries", "%d", health.FAQEntries)
		}
	}

	if running {
		apiClient, err := newAPIClient()
		if err == nil {
			statsResp, err := apiClient.get(ctx, "/api/support/stats")
			if err == nil {
				var stats struct {
					TotalInquiries int     `json:"total_inquiries"`
					UptimeSeconds  float64 `json:"uptime_seconds"`
				}
				if decodeJSON(statsResp, &stats) == nil {
					printStatus("Inquiries", "%d", stats.TotalInquiries)
					printStatus("Uptime", "%s", (time.Duration(stats.UptimeSeconds) * time.Second).String())
				}
			}
		}
	}

	printStatus("FAQ file", "%s", cfg.FAQ.File)
	printStatus("Response log", "%s", cfg.ResponseLog.File)
	return nil
}

// Command quietcutd is the HTTP service: it loads configuration, wires the
// job registry to an encoder driver, starts the registry sweeper, and
// serves the API until signalled to stop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/quietcut/quietcut/internal/api"
	"github.com/quietcut/quietcut/internal/config"
	"github.com/quietcut/quietcut/internal/encoder"
	"github.com/quietcut/quietcut/internal/history"
	"github.com/quietcut/quietcut/internal/jobs"
	"github.com/quietcut/quietcut/internal/logger"
	"github.com/quietcut/quietcut/internal/util"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config/quietcut.yaml)")
	port := flag.Int("port", 0, "override listen_port from config")
	flag.Parse()

	cfgPath := *configPath
	if cfgPath == "" {
		if envPath := os.Getenv("QUIETCUT_CONFIG"); envPath != "" {
			cfgPath = envPath
		} else {
			cfgPath = "config/quietcut.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("warning: could not load config from %s: %v\n", cfgPath, err)
		cfg = config.DefaultConfig()
	}
	if *port != 0 {
		cfg.ListenPort = *port
	}

	logger.Init(cfg.LogLevel)

	printBanner(cfg, cfgPath)

	if err := checkEncoderBinary(cfg.EncoderBinary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, dir := range []string{cfg.InputsDir, cfg.OutputsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	driver := encoder.New(cfg.EncoderBinary)
	registry := jobs.NewRegistry(driver, cfg.InputsDir, cfg.OutputsDir, cfg.Retention())

	handler := api.NewHandler(registry, cfg.MaxInputBytes)

	if cfg.HistoryDBPath != "" {
		ledger, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			logger.Error("failed to open history ledger", "error", err)
			os.Exit(1)
		}
		defer ledger.Close()
		registry.OnSwept(func(j *jobs.Job) {
			if err := ledger.Record(j); err != nil {
				logger.Warn("failed to record job outcome", "job", j.ID.String(), "error", err)
			}
		})
		handler = handler.WithHistory(ledger)
	}

	stopSweeper := make(chan struct{})
	go registry.RunSweeper(cfg.SweepInterval(), stopSweeper)
	defer close(stopSweeper)

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ListenPort),
		Handler: router,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("listening", "port", cfg.ListenPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

// checkEncoderBinary fails fast with a clear message rather than letting
// the first job's Analyse call surface an opaque exec error.
func checkEncoderBinary(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("encoder binary %q not found on PATH: %w", binary, err)
	}
	return nil
}

func printBanner(cfg *config.Config, cfgPath string) {
	fmt.Println("quietcut: silence-trimming encoder service")
	fmt.Printf("  config:       %s\n", cfgPath)
	fmt.Printf("  inputs dir:   %s\n", cfg.InputsDir)
	fmt.Printf("  outputs dir:  %s\n", cfg.OutputsDir)
	fmt.Printf("  encoder:      %s\n", cfg.EncoderBinary)
	fmt.Printf("  max input:    %s\n", util.Bytes(cfg.MaxInputBytes))
	fmt.Printf("  retention:    %s\n", cfg.Retention())
	fmt.Printf("  sweeps every: %s\n", util.Duration(cfg.SweepInterval()))
	fmt.Printf("  listen port:  %d\n", cfg.ListenPort)
	fmt.Println()
}

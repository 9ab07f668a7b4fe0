// Package main - Entry point for the wallethub event plane worker: the
// outbox dispatcher, the saga coordinator's timeout reaper, and the
// inbound bus subscriptions that drive saga transitions.
//
// Пример запуска:
//
//	# Development (defaults)
//	go run cmd/eventworker/main.go
//
//	# With config file
//	go run cmd/eventworker/main.go -config ./configs
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wallethub/eventcore/internal/config"
	"github.com/wallethub/eventcore/internal/container"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "./configs", "Path to config directory")
	configName := flag.String("config-name", "config", "Config file name (without extension)")
	envOnly := flag.Bool("env-only", false, "Load config only from environment variables")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("wallethub event worker\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		os.Exit(0)
	}

	var cfg *config.Config
	var err error
	if *envOnly {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath, *configName)
	}
	if err != nil {
		log.Printf("Warning: Failed to load config: %v", err)
		log.Printf("Using development defaults...")
		cfg = config.Development()
	}
	cfg.App.Version = version
	cfg.App.BuildTime = buildTime
	cfg.App.GitCommit = gitCommit

	c := container.New(cfg)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	if err := c.Initialize(initCtx); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	if err := c.InitializeEventPlane(initCtx); err != nil {
		log.Fatalf("Failed to initialize event plane: %v", err)
	}

	runCtx := context.Background()
	if err := c.StartEventPlane(runCtx); err != nil {
		log.Fatalf("Failed to start event plane: %v", err)
	}

	c.Logger().Info("event worker running",
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"bus_url", cfg.EventPlane.Bus.URL,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	c.Logger().Info("received shutdown signal", "signal", sig.String())

	c.StopEventPlane()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := c.Shutdown(shutdownCtx); err != nil {
		c.Logger().Error("shutdown error", "error", err)
		os.Exit(1)
	}

	c.Logger().Info("event worker stopped gracefully")
}

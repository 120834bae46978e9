package main

import (
	"context"
	"fmt"
	"os"

	"github.com/croplabs/segmentd/internal/config"
	"github.com/croplabs/segmentd/internal/logging"
	"github.com/croplabs/segmentd/internal/model"
	"github.com/croplabs/segmentd/internal/model/colorseg"
	"github.com/croplabs/segmentd/internal/segmentation"
	"github.com/croplabs/segmentd/internal/server"
	"github.com/croplabs/segmentd/internal/session"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("segmentd %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("segmentd - interactive image segmentation sessions")
			fmt.Println()
			fmt.Println("Usage: segmentd [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SEGMENTD_LOG_LEVEL=debug        Enable debug logging")
			fmt.Println("  SEGMENTD_BACKEND=color          Select the segmentation backend")
			fmt.Println("  SEGMENTD_MAX_LINE_BYTES=1048576 Cap the request line size")
			fmt.Println()
			fmt.Println("The service speaks newline-delimited JSON commands over")
			fmt.Println("stdin/stdout; diagnostics go to stderr.")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "segmentd: %v\n", err)
		os.Exit(1)
	}

	// Stdout carries the response stream, so diagnostics go to stderr.
	log := logging.New(os.Stderr, cfg.LogLevel)

	backend, err := newBackend(cfg.Backend)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}

	svc := segmentation.New(session.NewMemoryStore(), backend, log)
	srv := server.New(svc, log)
	srv.SetMaxLineBytes(cfg.MaxLineBytes)

	log.Debug("starting", "version", Version, "backend", cfg.Backend)
	if err := srv.Run(context.Background()); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newBackend(name string) (model.Model, error) {
	switch name {
	case "color":
		return colorseg.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

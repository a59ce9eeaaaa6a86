package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/foodcar/internal/shell"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
)

const version = "v0.1.0"

func main() {
	cfg, err := shell.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slogx.New(slogx.Config{
		Service: "foodcar",
		Version: version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A signal cancels ctx; the open page returns and the session store is
	// closed before exit.
	if err := shell.Launch(ctx, cfg, os.Stdin, os.Stdout, logger); err != nil {
		log.Fatalf("foodcar: %v", err)
	}
}

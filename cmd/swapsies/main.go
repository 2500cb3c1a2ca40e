package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/mcintyre94/swapsies/internal/app"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(*configPath)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if err := application.Run(rootCtx); err != nil {
		log.Fatalf("swapsies exited with error: %v", err)
	}
}

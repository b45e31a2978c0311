package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	driver := flag.String("store", cfg.Store.Driver, "Store driver (memory, file, sqlite, postgres, s3)")
	seedDir := flag.String("seed-dir", cfg.Store.SeedDir, "Directory of seed fixtures")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Logging.Development = *dev
	cfg.Store.Driver = *driver
	cfg.Store.SeedDir = *seedDir
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}

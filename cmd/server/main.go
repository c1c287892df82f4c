package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/config"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/server"
)

func main() {
	configFile := flag.String("config", "", "Path to TOML config file")
	flag.Parse()

	var cfg *config.Config
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}

package main

import (
	"context"
	"log"

	"ai-scorestudio/internal/bootstrap"
	"ai-scorestudio/internal/config"
	"ai-scorestudio/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()
	defer container.Bus.Close()

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting WebSocket Hub...")
		container.Hub.Run(context.Background())
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}

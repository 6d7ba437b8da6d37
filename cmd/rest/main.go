package main

import (
	"context"
	"log"

	"support-assistant-be/internal/bootstrap"
	"support-assistant-be/internal/config"
	"support-assistant-be/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	// 3. Load the shared knowledge base before accepting traffic
	if err := container.KnowledgeService.LoadDefaultData(context.Background()); err != nil {
		log.Fatalf("Failed to load default data: %v", err)
	}

	// Drop conversation state left over from before the restart window.
	container.Memory.Sweep()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}

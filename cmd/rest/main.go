package main

import (
	"context"
	"log"

	"github.com/Ntrakiyski/rag-chat-api/internal/bootstrap"
	"github.com/Ntrakiyski/rag-chat-api/internal/config"
	"github.com/Ntrakiyski/rag-chat-api/internal/server"
	"github.com/Ntrakiyski/rag-chat-api/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Worker
	// The API and the worker run in one process; the queue backend decides
	// whether tasks can also be picked up by other instances.
	if err := container.WorkerService.Start(context.Background()); err != nil {
		log.Fatalf("Unable to start background worker: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}

package main

import (
	"context"
	"log"

	"voteboard/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config and select the storage backend.
// 2) Build app wiring (ports + adapters + vote module).
// 3) Start HTTP server.
func main() {
	log.Println("voteboard api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("voteboard api stopped with error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"voteboard/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config and connect the queue source and the relational sink.
// 2) Drain queued votes into the votes table until interrupted.
func main() {
	log.Println("voteboard worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("voteboard worker stopped with error: %v", err)
	}
	log.Println("voteboard worker stopped")
}

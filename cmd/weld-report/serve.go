package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/weld.report/internal/api"
	"github.com/banshee-data/weld.report/internal/config"
	"github.com/banshee-data/weld.report/internal/db"
	"github.com/banshee-data/weld.report/internal/ingest"
	"github.com/banshee-data/weld.report/internal/view"
)

// cacheSweepInterval is how often stale layer snapshots are dropped.
const cacheSweepInterval = time.Minute

type serveOptions struct {
	Listen   string
	DBPath   string
	SpoolDir string
}

func runServe(ctx context.Context, cfg *config.DashboardConfig, opts serveOptions) error {
	vc, err := viewConfig(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	database, err := db.NewDB(opts.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	worker := ingest.NewWorker(ingest.NewIngester(database, scanTransform(cfg)), database, ingest.WorkerConfig{
		SpoolDir: opts.SpoolDir,
	})
	cache := view.NewSnapshotCache(database, nil, view.DefaultSnapshotTTL)
	server := api.NewServer(database, worker, cache, api.Options{
		View:           vc,
		Timezone:       cfg.GetTimezone(),
		MaxUploadBytes: cfg.GetMaxUploadBytes(),
	})

	// Create a wait group for the HTTP server, ingest worker, and cache sweeper
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
		log.Print("ingest worker terminated")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		cache.Run(ctx, cacheSweepInterval)
		log.Print("snapshot sweeper terminated")
	}()

	mux := server.ServeMux()
	database.AttachAdminRoutes(mux)
	srv := &http.Server{
		Addr:    opts.Listen,
		Handler: api.LoggingMiddleware(mux),
	}

	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()

		go func() {
			log.Printf("listening on %s (db %s)", opts.Listen, opts.DBPath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := srv.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}
		log.Printf("HTTP server routine stopped")
	}()

	var runErr error
	select {
	case runErr = <-serveErr:
		cancel()
	case <-ctx.Done():
	}
	wg.Wait()
	log.Printf("Graceful shutdown complete")
	return runErr
}

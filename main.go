package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelDen/internal/pkg/cache"
	"github.com/ManuelReschke/PixelDen/internal/pkg/env"
	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/PixelDen/internal/pkg/jobqueue"
	"github.com/ManuelReschke/PixelDen/internal/pkg/storage"
)

func main() {
	manager, err := NewApplication()
	if err != nil {
		log.Fatalf("[PixelDen] Startup failed: %v", err)
	}

	manager.Start()
	log.Info("[PixelDen] Worker daemon running")

	// Block until asked to shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("[PixelDen] Received %s, shutting down", sig)

	manager.Stop()
	storage.StopHealthMonitor()
}

// NewApplication wires config, cache, pipeline and queue into a manager that
// is ready to start
func NewApplication() (*jobqueue.Manager, error) {
	env.SetupEnvFile()
	cache.SetupCache()

	cfg, err := imageprocessor.LoadConfig()
	if err != nil {
		return nil, err
	}

	pipeline, err := imageprocessor.NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Init(); err != nil {
		return nil, err
	}

	storage.StartHealthMonitor(cfg.StorageRoot)

	queue := jobqueue.NewQueue(cfg.MaxWorkers, pipeline)
	return jobqueue.NewManager(queue), nil
}

package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/PixelDen/internal/pkg/metrics/counter"
)

// Manager owns the job queue lifecycle and its periodic background tasks
type Manager struct {
	queue       *Queue
	statsTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

// NewManager wraps a queue with lifecycle management. Callers construct one
// manager per process and keep the handle; there is no package-level instance.
func NewManager(queue *Queue) *Manager {
	return &Manager{
		queue:  queue,
		stopCh: make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Feed per-size render failures into the operation counters
	imageprocessor.VariantFailureHook = func(sizeName string) {
		if err := counter.AddVariantFailure(sizeName); err != nil {
			log.Errorf("[JobQueue Manager] Failed to count variant failure for %s: %v", sizeName, err)
		}
	}

	// Start the job queue
	m.queue.Start()

	// Periodic queue depth logging
	m.statsTicker = time.NewTicker(5 * time.Minute)
	m.wg.Add(1)
	go m.statsWorker(m.stopCh)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.statsTicker != nil {
		m.statsTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	imageprocessor.VariantFailureHook = nil

	log.Info("[JobQueue Manager] Stopped successfully")
}

// statsWorker periodically logs queue depth so stalled workers show up in the logs
func (m *Manager) statsWorker(stopCh chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Stats worker stopping")
			return
		case <-m.statsTicker.C:
			ctx := context.Background()
			pending, err := m.queue.GetQueueSize(ctx)
			if err != nil {
				log.Errorf("[JobQueue Manager] Failed to read queue size: %v", err)
				continue
			}
			processing, err := m.queue.GetProcessingSize(ctx)
			if err != nil {
				log.Errorf("[JobQueue Manager] Failed to read processing size: %v", err)
				continue
			}
			log.Infof("[JobQueue Manager] Queue depth: %d pending, %d processing", pending, processing)
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

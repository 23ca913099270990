package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelDen/internal/pkg/cache"
)

// health monitor state
var (
	healthStopCh chan struct{}
)

// RootHealth represents cached health data for the storage root
type RootHealth struct {
	Root      string    `json:"root"`
	Healthy   bool      `json:"healthy"`
	Writable  bool      `json:"writable"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

const healthCacheKey = "storage_health:root"

// StartHealthMonitor starts a lightweight heartbeat that caches storage root
// health in Redis
func StartHealthMonitor(root string) {
	if healthStopCh != nil {
		return
	}
	healthStopCh = make(chan struct{})
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		log.Info("[StorageHealth] Monitor started (interval: 60s)")

		// run once immediately
		runHealthCheckOnce(root)

		for {
			select {
			case <-healthStopCh:
				log.Info("[StorageHealth] Monitor stopped")
				return
			case <-ticker.C:
				runHealthCheckOnce(root)
			}
		}
	}()
}

// StopHealthMonitor stops the heartbeat
func StopHealthMonitor() {
	if healthStopCh != nil {
		close(healthStopCh)
		healthStopCh = nil
	}
}

// CheckRoot probes the storage root for existence and writability.
func CheckRoot(root string) RootHealth {
	health := RootHealth{
		Root:      root,
		CheckedAt: time.Now(),
	}

	info, err := os.Stat(root)
	if err != nil {
		health.Message = fmt.Sprintf("storage root not accessible: %v", err)
		return health
	}
	if !info.IsDir() {
		health.Message = "storage root is not a directory"
		return health
	}

	// Write probe: the root counts as healthy only if we can create files in it
	probe, err := os.CreateTemp(root, ".healthcheck-*")
	if err != nil {
		health.Message = fmt.Sprintf("storage root not writable: %v", err)
		return health
	}
	probePath := probe.Name()
	probe.Close()
	os.Remove(probePath)

	health.Healthy = true
	health.Writable = true
	return health
}

func runHealthCheckOnce(root string) {
	health := CheckRoot(root)
	if !health.Healthy {
		log.Warnf("[StorageHealth] %s", health.Message)
	}

	b, _ := json.Marshal(health)
	if err := cache.Set(healthCacheKey, string(b), 2*time.Minute); err != nil {
		log.Errorf("[StorageHealth] Cache set failed: %v", err)
	}
}

// GetCachedRootHealth returns the last health snapshot the monitor cached.
func GetCachedRootHealth() (*RootHealth, error) {
	raw, err := cache.Get(healthCacheKey)
	if err != nil {
		return nil, err
	}
	var health RootHealth
	if err := json.Unmarshal([]byte(raw), &health); err != nil {
		return nil, err
	}
	return &health, nil
}

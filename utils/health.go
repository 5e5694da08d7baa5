package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything whose liveness can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	Healthy   bool            `json:"healthy"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor periodically pings dependencies and keeps the latest snapshot.
type HealthMonitor struct {
	targets  map[string]Pinger
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(targets map[string]Pinger, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		targets:  targets,
		interval: interval,
		logger:   logger,
	}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check pings every target once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Services:  make(map[string]bool, len(m.targets)),
		Healthy:   true,
		CheckedAt: time.Now(),
	}
	for name, target := range m.targets {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := target.Ping(pingCtx)
		cancel()
		if err != nil {
			m.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
			status.Healthy = false
		}
		status.Services[name] = err == nil
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start runs checks until ctx is cancelled.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

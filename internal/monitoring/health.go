package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/conneroisu/pageforge/internal/build"
	"github.com/conneroisu/pageforge/internal/logging"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

// HealthCheck represents a single health check
type HealthCheck struct {
	Name     string         `json:"name"`
	Status   HealthStatus   `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration time.Duration  `json:"duration"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Critical bool           `json:"critical"`
}

// HealthChecker defines the interface for health check functions
type HealthChecker interface {
	Check(ctx context.Context) HealthCheck
	Name() string
	IsCritical() bool
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc struct {
	name     string
	checkFn  func(ctx context.Context) HealthCheck
	critical bool
}

// Check executes the health check function
func (h *HealthCheckFunc) Check(ctx context.Context) HealthCheck {
	result := h.checkFn(ctx)
	result.Name = h.name
	result.Critical = h.critical
	return result
}

// Name returns the health check name
func (h *HealthCheckFunc) Name() string {
	return h.name
}

// IsCritical returns whether this check is critical
func (h *HealthCheckFunc) IsCritical() bool {
	return h.critical
}

// NewHealthCheckFunc creates a new health check function
func NewHealthCheckFunc(
	name string,
	critical bool,
	checkFn func(ctx context.Context) HealthCheck,
) *HealthCheckFunc {
	return &HealthCheckFunc{
		name:     name,
		checkFn:  checkFn,
		critical: critical,
	}
}

// HealthResponse is the body served by the health endpoint.
type HealthResponse struct {
	Status    HealthStatus  `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version,omitempty"`
	Uptime    string        `json:"uptime"`
	Checks    []HealthCheck `json:"checks"`
}

// HealthMonitor runs registered checks on demand.
type HealthMonitor struct {
	checks  map[string]HealthChecker
	mutex   sync.RWMutex
	logger  logging.Logger
	timeout time.Duration
	version string
	started time.Time
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor(logger logging.Logger, version string) *HealthMonitor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HealthMonitor{
		checks:  make(map[string]HealthChecker),
		logger:  logger.WithComponent("health"),
		timeout: 5 * time.Second,
		version: version,
		started: time.Now(),
	}
}

// RegisterCheck registers a health check
func (hm *HealthMonitor) RegisterCheck(checker HealthChecker) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()
	hm.checks[checker.Name()] = checker
}

// GetHealth runs every check concurrently and aggregates the results.
func (hm *HealthMonitor) GetHealth(ctx context.Context) HealthResponse {
	hm.mutex.RLock()
	checkers := make([]HealthChecker, 0, len(hm.checks))
	for _, c := range hm.checks {
		checkers = append(checkers, c)
	}
	hm.mutex.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, hm.timeout)
	defer cancel()

	results := make([]HealthCheck, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			result := checker.Check(ctx)
			result.Duration = time.Since(start)
			results[i] = result
		}(i, checker)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	for _, r := range results {
		if r.Status != HealthStatusHealthy {
			hm.logger.Warn(ctx, nil, "Health check failed",
				"name", r.Name,
				"status", string(r.Status),
				"message", r.Message)
		}
	}

	return HealthResponse{
		Status:    overallStatus(results),
		Timestamp: time.Now().UTC(),
		Version:   hm.version,
		Uptime:    time.Since(hm.started).Round(time.Second).String(),
		Checks:    results,
	}
}

func overallStatus(checks []HealthCheck) HealthStatus {
	status := HealthStatusHealthy
	for _, check := range checks {
		switch {
		case check.Status == HealthStatusUnhealthy && check.Critical:
			return HealthStatusUnhealthy
		case check.Status != HealthStatusHealthy:
			status = HealthStatusDegraded
		}
	}
	return status
}

// HTTPHandler returns an HTTP handler for health checks
func (hm *HealthMonitor) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.GetHealth(r.Context())

		body, err := json.MarshalIndent(health, "", "  ")
		if err != nil {
			hm.logger.Error(r.Context(), err, "Failed to encode health response")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_, _ = w.Write(body)
	}
}

// ReadyHealthChecker reports whether a compiled project is installed. In
// development a missing build is only degraded since a rebuild is expected.
func ReadyHealthChecker(ready func() bool, dev bool) HealthChecker {
	return NewHealthCheckFunc("build", !dev, func(ctx context.Context) HealthCheck {
		if ready() {
			return HealthCheck{Status: HealthStatusHealthy, Message: "Build installed"}
		}
		if dev {
			return HealthCheck{Status: HealthStatusDegraded, Message: "Waiting for the first build"}
		}
		return HealthCheck{Status: HealthStatusUnhealthy, Message: "No build installed"}
	})
}

// RebuildHealthChecker reports development rebuilds. A failed last rebuild
// is degraded: the previous project keeps serving.
func RebuildHealthChecker(stats func() build.BuildStats) HealthChecker {
	return NewHealthCheckFunc("rebuild", false, func(ctx context.Context) HealthCheck {
		s := stats()
		check := HealthCheck{
			Status:  HealthStatusHealthy,
			Message: fmt.Sprintf("%d rebuilds", s.TotalBuilds),
			Metadata: map[string]any{
				"total":            s.TotalBuilds,
				"failed":           s.FailedBuilds,
				"coalesced":        s.Coalesced,
				"success_rate":     s.SuccessRate(),
				"average_duration": s.AverageDuration.String(),
			},
		}
		if s.LastError != nil {
			check.Status = HealthStatusDegraded
			check.Message = "Last rebuild failed"
			check.Metadata["last_error"] = s.LastError.Error()
		}
		return check
	})
}

// HotReloadHealthChecker reports the connected hot reload clients.
func HotReloadHealthChecker(clients func() int) HealthChecker {
	return NewHealthCheckFunc("hot_reload", false, func(ctx context.Context) HealthCheck {
		return HealthCheck{
			Status:   HealthStatusHealthy,
			Metadata: map[string]any{"clients": clients()},
		}
	})
}

// DirectoryHealthChecker checks that a directory exists and is readable.
func DirectoryHealthChecker(name, path string, critical bool) HealthChecker {
	return NewHealthCheckFunc(name, critical, func(ctx context.Context) HealthCheck {
		entries, err := os.ReadDir(path)
		if err != nil {
			return HealthCheck{
				Status:  HealthStatusUnhealthy,
				Message: fmt.Sprintf("Cannot read %s: %v", path, err),
			}
		}
		return HealthCheck{
			Status:   HealthStatusHealthy,
			Metadata: map[string]any{"path": path, "entries": len(entries)},
		}
	})
}

// GoroutineHealthChecker checks for goroutine leaks
func GoroutineHealthChecker() HealthChecker {
	return NewHealthCheckFunc("goroutines", false, func(ctx context.Context) HealthCheck {
		goroutines := runtime.NumGoroutine()

		status := HealthStatusHealthy
		message := "Goroutine count is normal"
		if goroutines > 10000 {
			status = HealthStatusDegraded
			message = fmt.Sprintf("High goroutine count: %d", goroutines)
		}

		return HealthCheck{
			Status:   status,
			Message:  message,
			Metadata: map[string]any{"count": goroutines},
		}
	})
}

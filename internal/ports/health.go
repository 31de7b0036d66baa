package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned when attempting to register a health checker
// with a name that is already registered.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// Adapters register themselves with the HealthRegistry at startup.
type HealthChecker interface {
	// Name returns a unique identifier for this health check.
	Name() string

	// Check performs the health check and returns an error if unhealthy.
	// A nil return indicates the component is healthy.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	// Register adds a critical health checker.
	// A failing critical check makes the whole service unhealthy.
	Register(checker HealthChecker) error

	// RegisterOptional adds a non-critical health checker.
	// A failing optional check only degrades the service. The remote quote
	// server is optional: the store keeps serving while it is unreachable.
	RegisterOptional(checker HealthChecker) error

	// CheckAll runs all registered health checks concurrently.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates only optional checks failed.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy indicates a critical check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Critical bool          `json:"critical"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

type registration struct {
	checker  HealthChecker
	critical bool
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu            sync.RWMutex
	registrations []registration
}

// NewHealthRegistry creates a new health registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		registrations: make([]registration, 0),
	}
}

// Register adds a critical health checker to the registry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	return r.add(checker, true)
}

// RegisterOptional adds a non-critical health checker to the registry.
func (r *DefaultHealthRegistry) RegisterOptional(checker HealthChecker) error {
	return r.add(checker, false)
}

func (r *DefaultHealthRegistry) add(checker HealthChecker, critical bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, reg := range r.registrations {
		if reg.checker.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.registrations = append(r.registrations, registration{checker: checker, critical: critical})

	return nil
}

// CheckAll runs all registered health checks concurrently.
// Unhealthy wins over degraded, which wins over healthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	regs := make([]registration, len(r.registrations))
	copy(regs, r.registrations)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(regs)),
		Timestamp: time.Now(),
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	for _, reg := range regs {
		g.Go(func() error {
			start := time.Now()
			err := reg.checker.Check(ctx)

			cr := &CheckResult{
				Status:   HealthStatusHealthy,
				Critical: reg.critical,
				Duration: time.Since(start),
			}

			if err != nil {
				cr.Message = err.Error()
				cr.Status = HealthStatusDegraded

				if reg.critical {
					cr.Status = HealthStatusUnhealthy
				}
			}

			mu.Lock()
			defer mu.Unlock()

			result.Checks[reg.checker.Name()] = cr
			result.Status = worse(result.Status, cr.Status)

			return nil
		})
	}

	_ = g.Wait()

	return result
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{
		HealthStatusHealthy:   0,
		HealthStatusDegraded:  1,
		HealthStatusUnhealthy: 2,
	}

	if rank[b] > rank[a] {
		return b
	}

	return a
}

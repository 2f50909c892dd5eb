// Package health aggregates component health checks.
package health

import "context"

// Pinger checks a component's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over named components.
type Service struct {
	components map[string]Pinger
}

// New creates a Service. Nil pingers are skipped.
func New(components map[string]Pinger) *Service {
	checks := make(map[string]Pinger, len(components))
	for name, p := range components {
		if p != nil {
			checks[name] = p
		}
	}
	return &Service{components: checks}
}

// Check runs health checks against all registered components.
// The service itself is healthy with zero components; backends degrade, they
// do not fail, so only explicit dependencies (e.g. the page cache) register.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	status := Healthy
	for name, p := range s.components {
		if err := p.Ping(ctx); err != nil {
			checks[name] = CheckError
			status = Degraded
		} else {
			checks[name] = CheckOK
		}
	}
	return Report{Status: status, Checks: checks}
}

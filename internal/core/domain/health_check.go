package domain

import (
	"time"

	"github.com/google/uuid"
)

// CheckType says what triggered a probe
type CheckType string

// Probe triggers
const (
	CheckPriority CheckType = "priority"
	CheckRandom   CheckType = "random"
	CheckManual   CheckType = "manual"
)

// HealthCheck is an append-only probe record. Write once, never mutated.
type HealthCheck struct {
	ID             uuid.UUID
	DomainID       uuid.UUID
	StatusCode     *int
	ResponseTimeMs *int
	CheckType      CheckType
	BadgeDetected  bool
	CreatedAt      time.Time
}

// ProbeResult is the outcome of a single HTTP probe against a domain root.
type ProbeResult struct {
	StatusCode     *int
	ResponseTimeMs *int
	BadgeDetected  bool
}

// Alive reports whether the probe response counts as a live site (2xx-3xx).
func (p ProbeResult) Alive() bool {
	return p.StatusCode != nil && *p.StatusCode >= 200 && *p.StatusCode < 400
}

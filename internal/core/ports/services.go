package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/pkg/pubsub"
)

// ArchaeologyService resolves and records a domain's earliest web presence.
type ArchaeologyService interface {
	// Resolve runs the cache cascade: fast cache, durable store, external
	// archive. Transient archive failures surface as
	// services.ErrArchiveUnavailable and are never cached.
	Resolve(ctx context.Context, domainName string) (*domain.Lookup, error)
	// Refresh purges every cached view and stored record of a domain so the
	// next Resolve re-discovers it. Guarded by a cooldown; returns
	// services.ErrRefreshCooldown while the guard is active.
	Refresh(ctx context.Context, domainName string) error
}

// HealthService probes a domain and applies the lifecycle state machine.
type HealthService interface {
	Check(ctx context.Context, domainID uuid.UUID, domainName string, checkType domain.CheckType) error
}

// SchedulerService selects and runs the daily probe working set.
type SchedulerService interface {
	RunDailyCycle(ctx context.Context) error
}

// VerificationInstructions is returned by Init with the method specific
// setup steps.
type VerificationInstructions struct {
	Token        string `json:"token"`
	Instructions string `json:"instructions"`
}

// CheckOutcome is the result of a verification check attempt.
type CheckOutcome struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// ManageView is the owner-facing management snapshot of a domain.
type ManageView struct {
	Domain             string                    `json:"domain"`
	BirthAt            *time.Time                `json:"birth_at"`
	VerifiedBirthAt    *time.Time                `json:"verified_birth_at"`
	Status             domain.Status             `json:"status"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
	Email              string                    `json:"email"`
	Evidence           []domain.Evidence         `json:"evidence"`
}

// VerificationService coordinates the ownership challenge protocol.
type VerificationService interface {
	Init(ctx context.Context, domainName, email string, method domain.VerificationMethod) (*VerificationInstructions, error)
	Check(ctx context.Context, domainName, token string) (*CheckOutcome, error)
	Resend(ctx context.Context, domainName, email string) (*CheckOutcome, error)
	Manage(ctx context.Context, domainName, magicKey string) (*ManageView, error)
	// SubmitEvidence records an owner birth date claim. The magic key is the
	// authorization; the claim lands in pending until an admin reviews it.
	SubmitEvidence(ctx context.Context, domainName, magicKey string, claim domain.Evidence) (uuid.UUID, error)
}

// RankingService maintains and serves the percentile boundary table.
type RankingService interface {
	Rebuild(ctx context.Context) error
	// Rank returns the age percentile for a birth date, or nil when no table
	// is cached. It never triggers a synchronous rebuild.
	Rank(ctx context.Context, birthAt time.Time) *int
}

// StatsService persists periodic stats snapshots.
type StatsService interface {
	RebuildSnapshot(ctx context.Context) error
}

// NotificationService consumes verification events and delivers credentials.
type NotificationService interface {
	SendMagicLinkNotification(ctx context.Context, payload pubsub.Message) error
}

package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
)

// DomainsRepository defines the available methods for the domains repository
type DomainsRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Domain, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Domain, error)
	// GetOrCreate inserts the candidate row ignoring conflicts and returns the
	// row stored under the domain name. The returned row is authoritative: a
	// concurrent caller may have won the insert race with different values.
	GetOrCreate(ctx context.Context, candidate *domain.Domain) (*domain.Domain, error)
	// SetAlive resets the failure counter, clears death_at and refreshes the
	// liveness timestamps.
	SetAlive(ctx context.Context, id uuid.UUID, badgeEmbedded bool) error
	// SetUnreachable marks the domain unreachable without touching the
	// failure counter.
	SetUnreachable(ctx context.Context, id uuid.UUID) error
	// SetFailures persists a new consecutive failure count.
	SetFailures(ctx context.Context, id uuid.UUID, failures int) error
	// Tombstone marks the domain dead, recording death_at and the final
	// failure count.
	Tombstone(ctx context.Context, id uuid.UUID, failures int) error
	// Reactivate is the administrative escape from the dead state.
	Reactivate(ctx context.Context, id uuid.UUID) error
	SetVerificationStatus(ctx context.Context, id uuid.UUID, status domain.VerificationStatus) error
	SetVerifiedBirth(ctx context.Context, id uuid.UUID, birthAt time.Time) error
	// Delete removes a domain row entirely, forcing re-discovery.
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int, error)
	// GetAllLiving returns every non-dead domain with the fields the
	// scheduler needs for scoring.
	GetAllLiving(ctx context.Context) ([]domain.Domain, error)
	// EffectiveBirthDates returns the birth date (verified preferred) for
	// every non-dead domain with a known one.
	EffectiveBirthDates(ctx context.Context) ([]time.Time, error)
}

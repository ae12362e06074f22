package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
)

// VerificationsRepository defines the available methods for the verifications repository
type VerificationsRepository interface {
	Save(ctx context.Context, verification *domain.Verification) (uuid.UUID, error)
	// GetLatestPending returns the most recent pending challenge matching the
	// domain name and token.
	GetLatestPending(ctx context.Context, domainName, token string) (*domain.Verification, error)
	SetLastAttempt(ctx context.Context, id uuid.UUID, at time.Time) error
	// MarkVerified transitions a challenge to verified, storing its freshly
	// issued magic key.
	MarkVerified(ctx context.Context, id uuid.UUID, magicKey string, at time.Time) error
	// GetLatestVerified returns the most recent verified challenge for the
	// exact domain/email pair.
	GetLatestVerified(ctx context.Context, domainName, email string) (*domain.Verification, error)
	// SetMagicKey rotates the management credential without touching the
	// verification state.
	SetMagicKey(ctx context.Context, id uuid.UUID, magicKey string) error
	// GetByMagicKey returns the verified challenge matching a management key.
	GetByMagicKey(ctx context.Context, domainName, magicKey string) (*domain.Verification, error)
}

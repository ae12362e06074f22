package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
)

// HealthChecksRepository stores the append-only probe trail
type HealthChecksRepository interface {
	Save(ctx context.Context, check *domain.HealthCheck) (uuid.UUID, error)
}

// CdxQueriesRepository stores the append-only archive lookup trail
type CdxQueriesRepository interface {
	Save(ctx context.Context, query *domain.CdxQuery) (uuid.UUID, error)
	GetLatestByDomain(ctx context.Context, domainName string) (*domain.CdxQuery, error)
	DeleteByDomain(ctx context.Context, domainName string) error
}

// EvidenceRepository stores owner submitted birth date claims
type EvidenceRepository interface {
	Save(ctx context.Context, evidence *domain.Evidence) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Evidence, error)
	GetByDomainID(ctx context.Context, domainID uuid.UUID) ([]domain.Evidence, error)
	Review(ctx context.Context, id uuid.UUID, status domain.EvidenceStatus) error
}

// StatsRepository stores rebuildable stats snapshots
type StatsRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *domain.StatsSnapshot) (uuid.UUID, error)
	GetLatestSnapshot(ctx context.Context) (*domain.StatsSnapshot, error)
}

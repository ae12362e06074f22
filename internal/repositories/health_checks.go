package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/db"
)

// HealthChecksRepository is the postgres repository for the probe audit trail
type HealthChecksRepository struct {
	conn db.Querier
}

// NewHealthChecks creates a new HealthChecksRepository
func NewHealthChecks(conn db.Storage) ports.HealthChecksRepository {
	return &HealthChecksRepository{conn: conn.Pgx}
}

// Save appends an immutable probe record
func (r *HealthChecksRepository) Save(ctx context.Context, check *domain.HealthCheck) (uuid.UUID, error) {
	sql := `INSERT INTO health_checks (domain_id, status_code, response_time_ms, check_type, badge_detected)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`
	var id uuid.UUID
	err := r.conn.QueryRow(ctx, sql, check.DomainID, check.StatusCode, check.ResponseTimeMs,
		check.CheckType, check.BadgeDetected).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

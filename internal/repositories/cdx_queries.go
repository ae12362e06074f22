package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/db"
)

// ErrCdxQueryNotFound is returned when a domain has no recorded archive lookups
var ErrCdxQueryNotFound = errors.New("cdx query not found")

// CdxQueriesRepository is the postgres repository for the archive lookup audit trail
type CdxQueriesRepository struct {
	conn db.Querier
}

// NewCdxQueries creates a new CdxQueriesRepository
func NewCdxQueries(conn db.Storage) ports.CdxQueriesRepository {
	return &CdxQueriesRepository{conn: conn.Pgx}
}

// Save appends an archive lookup audit row
func (r *CdxQueriesRepository) Save(ctx context.Context, query *domain.CdxQuery) (uuid.UUID, error) {
	sql := `INSERT INTO cdx_queries (domain, earliest_timestamp, snapshot_count)
			VALUES ($1, $2, $3)
			RETURNING id`
	var id uuid.UUID
	err := r.conn.QueryRow(ctx, sql, query.Domain, query.EarliestTimestamp, query.SnapshotCount).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetLatestByDomain returns the most recent archive lookup for a domain
func (r *CdxQueriesRepository) GetLatestByDomain(ctx context.Context, domainName string) (*domain.CdxQuery, error) {
	sql := `SELECT id, domain, earliest_timestamp, snapshot_count, created_at
			FROM cdx_queries
			WHERE domain = $1
			ORDER BY created_at DESC
			LIMIT 1`
	var q domain.CdxQuery
	err := r.conn.QueryRow(ctx, sql, domainName).Scan(&q.ID, &q.Domain, &q.EarliestTimestamp, &q.SnapshotCount, &q.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "no rows in result set") {
			return nil, ErrCdxQueryNotFound
		}
		return nil, err
	}
	return &q, nil
}

// DeleteByDomain removes the audit rows of a domain. Used by forced refresh only.
func (r *CdxQueriesRepository) DeleteByDomain(ctx context.Context, domainName string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM cdx_queries WHERE domain = $1`, domainName)
	return err
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/db"
)

// ErrSnapshotNotFound is returned when no stats snapshot exists yet
var ErrSnapshotNotFound = errors.New("stats snapshot not found")

// StatsRepository is the postgres repository for stats snapshots
type StatsRepository struct {
	conn db.Querier
}

// NewStats creates a new StatsRepository
func NewStats(conn db.Storage) ports.StatsRepository {
	return &StatsRepository{conn: conn.Pgx}
}

// SaveSnapshot appends a snapshot row
func (r *StatsRepository) SaveSnapshot(ctx context.Context, snapshot *domain.StatsSnapshot) (uuid.UUID, error) {
	data, err := json.Marshal(snapshot.PercentileData)
	if err != nil {
		return uuid.Nil, err
	}
	sql := `INSERT INTO stats_snapshots (total_domains, percentile_data)
			VALUES ($1, $2)
			RETURNING id`
	var id uuid.UUID
	if err := r.conn.QueryRow(ctx, sql, snapshot.TotalDomains, data).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetLatestSnapshot returns the most recent snapshot
func (r *StatsRepository) GetLatestSnapshot(ctx context.Context) (*domain.StatsSnapshot, error) {
	sql := `SELECT id, total_domains, percentile_data, created_at
			FROM stats_snapshots
			ORDER BY created_at DESC
			LIMIT 1`
	var s domain.StatsSnapshot
	var data []byte
	err := r.conn.QueryRow(ctx, sql).Scan(&s.ID, &s.TotalDomains, &data, &s.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "no rows in result set") {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.PercentileData); err != nil {
		return nil, err
	}
	return &s, nil
}

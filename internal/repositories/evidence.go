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

// ErrEvidenceNotFound is returned when an evidence row is not found
var ErrEvidenceNotFound = errors.New("evidence not found")

// EvidenceRepository is the postgres repository for birth date claims
type EvidenceRepository struct {
	conn db.Querier
}

// NewEvidence creates a new EvidenceRepository
func NewEvidence(conn db.Storage) ports.EvidenceRepository {
	return &EvidenceRepository{conn: conn.Pgx}
}

// Save stores a new claim
func (r *EvidenceRepository) Save(ctx context.Context, evidence *domain.Evidence) (uuid.UUID, error) {
	sql := `INSERT INTO evidence (domain_id, type, claimed_at, description, url, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`
	var id uuid.UUID
	err := r.conn.QueryRow(ctx, sql, evidence.DomainID, evidence.Type, evidence.ClaimedAt,
		evidence.Description, evidence.URL, evidence.Status).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByID returns a claim by primary key
func (r *EvidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evidence, error) {
	sql := `SELECT id, domain_id, type, claimed_at, description, url, status, created_at, reviewed_at
			FROM evidence WHERE id = $1`
	var e domain.Evidence
	err := r.conn.QueryRow(ctx, sql, id).Scan(&e.ID, &e.DomainID, &e.Type, &e.ClaimedAt,
		&e.Description, &e.URL, &e.Status, &e.CreatedAt, &e.ReviewedAt)
	if err != nil {
		if strings.Contains(err.Error(), "no rows in result set") {
			return nil, ErrEvidenceNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByDomainID returns all claims of a domain, newest first
func (r *EvidenceRepository) GetByDomainID(ctx context.Context, domainID uuid.UUID) ([]domain.Evidence, error) {
	sql := `SELECT id, domain_id, type, claimed_at, description, url, status, created_at, reviewed_at
			FROM evidence
			WHERE domain_id = $1
			ORDER BY created_at DESC`
	rows, err := r.conn.Query(ctx, sql, domainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []domain.Evidence
	for rows.Next() {
		var e domain.Evidence
		if err := rows.Scan(&e.ID, &e.DomainID, &e.Type, &e.ClaimedAt, &e.Description, &e.URL,
			&e.Status, &e.CreatedAt, &e.ReviewedAt); err != nil {
			return nil, err
		}
		claims = append(claims, e)
	}
	return claims, rows.Err()
}

// Review stores the outcome of an administrative claim review
func (r *EvidenceRepository) Review(ctx context.Context, id uuid.UUID, status domain.EvidenceStatus) error {
	sql := `UPDATE evidence SET status = $2, reviewed_at = now() WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, status)
	return err
}

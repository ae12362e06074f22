package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/db"
)

// ErrVerificationNotFound is returned when no verification row matches
var ErrVerificationNotFound = errors.New("verification not found")

const verificationFields = `v.id, v.domain_id, v.email, v.method, v.token, v.magic_key, v.status,
	v.last_attempt_at, v.verified_at, v.expires_at, v.created_at`

// VerificationsRepository is the postgres repository for ownership challenges
type VerificationsRepository struct {
	conn db.Querier
}

// NewVerifications creates a new VerificationsRepository
func NewVerifications(conn db.Storage) ports.VerificationsRepository {
	return &VerificationsRepository{conn: conn.Pgx}
}

// Save stores a new challenge row
func (r *VerificationsRepository) Save(ctx context.Context, verification *domain.Verification) (uuid.UUID, error) {
	sql := `INSERT INTO verifications (domain_id, email, method, token, status, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`
	var id uuid.UUID
	err := r.conn.QueryRow(ctx, sql, verification.DomainID, verification.Email, verification.Method,
		verification.Token, verification.Status, verification.ExpiresAt).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetLatestPending returns the most recent pending challenge for a domain name and token
func (r *VerificationsRepository) GetLatestPending(ctx context.Context, domainName, token string) (*domain.Verification, error) {
	sql := `SELECT ` + verificationFields + `
			FROM verifications v
			JOIN domains d ON v.domain_id = d.id
			WHERE d.domain = $1 AND v.token = $2 AND v.status = 'pending'
			ORDER BY v.created_at DESC
			LIMIT 1`
	return r.scanOne(r.conn.QueryRow(ctx, sql, domainName, token))
}

// SetLastAttempt records the timestamp of a check attempt
func (r *VerificationsRepository) SetLastAttempt(ctx context.Context, id uuid.UUID, at time.Time) error {
	sql := `UPDATE verifications SET last_attempt_at = $2 WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, at)
	return err
}

// MarkVerified transitions a challenge to verified and stores its magic key
func (r *VerificationsRepository) MarkVerified(ctx context.Context, id uuid.UUID, magicKey string, at time.Time) error {
	sql := `UPDATE verifications SET status = 'verified', verified_at = $2, magic_key = $3 WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, at, magicKey)
	return err
}

// GetLatestVerified returns the most recent verified challenge for the exact domain/email pair
func (r *VerificationsRepository) GetLatestVerified(ctx context.Context, domainName, email string) (*domain.Verification, error) {
	sql := `SELECT ` + verificationFields + `
			FROM verifications v
			JOIN domains d ON v.domain_id = d.id
			WHERE d.domain = $1 AND v.email = $2 AND v.status = 'verified'
			ORDER BY v.verified_at DESC
			LIMIT 1`
	return r.scanOne(r.conn.QueryRow(ctx, sql, domainName, email))
}

// SetMagicKey rotates the management credential of a challenge
func (r *VerificationsRepository) SetMagicKey(ctx context.Context, id uuid.UUID, magicKey string) error {
	sql := `UPDATE verifications SET magic_key = $2 WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, magicKey)
	return err
}

// GetByMagicKey returns the verified challenge matching a management key
func (r *VerificationsRepository) GetByMagicKey(ctx context.Context, domainName, magicKey string) (*domain.Verification, error) {
	sql := `SELECT ` + verificationFields + `
			FROM verifications v
			JOIN domains d ON v.domain_id = d.id
			WHERE d.domain = $1 AND v.magic_key = $2 AND v.status = 'verified'
			LIMIT 1`
	return r.scanOne(r.conn.QueryRow(ctx, sql, domainName, magicKey))
}

func (r *VerificationsRepository) scanOne(row interface{ Scan(...interface{}) error }) (*domain.Verification, error) {
	var v domain.Verification
	err := row.Scan(&v.ID, &v.DomainID, &v.Email, &v.Method, &v.Token, &v.MagicKey, &v.Status,
		&v.LastAttemptAt, &v.VerifiedAt, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "no rows in result set") {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return &v, nil
}

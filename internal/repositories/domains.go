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

// ErrDomainNotFound is returned when a domain row is not found
var ErrDomainNotFound = errors.New("domain not found")

const domainFields = `id, domain, birth_at, verified_birth_at, death_at, status, verification_status,
	consecutive_failures, badge_embedded, last_checked_at, last_alive_at, created_at, updated_at`

// DomainsRepository is the postgres repository for tracked domains
type DomainsRepository struct {
	conn db.Querier
}

// NewDomains creates a new DomainsRepository
func NewDomains(conn db.Storage) ports.DomainsRepository {
	return &DomainsRepository{conn: conn.Pgx}
}

// GetByName returns a domain row by canonical name
func (r *DomainsRepository) GetByName(ctx context.Context, name string) (*domain.Domain, error) {
	sql := `SELECT ` + domainFields + ` FROM domains WHERE domain = $1`
	return r.scanOne(r.conn.QueryRow(ctx, sql, name))
}

// GetByID returns a domain row by primary key
func (r *DomainsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Domain, error) {
	sql := `SELECT ` + domainFields + ` FROM domains WHERE id = $1`
	return r.scanOne(r.conn.QueryRow(ctx, sql, id))
}

// GetOrCreate inserts the candidate ignoring a conflicting concurrent insert,
// then re-reads the stored row. The reread is authoritative: the race loser
// must observe the winner's values.
func (r *DomainsRepository) GetOrCreate(ctx context.Context, candidate *domain.Domain) (*domain.Domain, error) {
	sql := `INSERT INTO domains (domain, birth_at, status, verification_status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (domain) DO NOTHING`
	if _, err := r.conn.Exec(ctx, sql, candidate.Domain, candidate.BirthAt, candidate.Status, candidate.VerificationStatus); err != nil {
		return nil, err
	}
	return r.GetByName(ctx, candidate.Domain)
}

// SetAlive records a successful probe: the failure streak is broken and any
// previous death is cleared.
func (r *DomainsRepository) SetAlive(ctx context.Context, id uuid.UUID, badgeEmbedded bool) error {
	sql := `UPDATE domains SET
				status = 'active',
				consecutive_failures = 0,
				badge_embedded = $2,
				death_at = NULL,
				last_checked_at = now(),
				last_alive_at = now(),
				updated_at = now()
			WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, badgeEmbedded)
	return err
}

// SetUnreachable records an HTTP failure with DNS still resolving. The
// failure counter is deliberately left alone.
func (r *DomainsRepository) SetUnreachable(ctx context.Context, id uuid.UUID) error {
	sql := `UPDATE domains SET
				status = 'unreachable',
				last_checked_at = now(),
				updated_at = now()
			WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id)
	return err
}

// SetFailures persists a new consecutive failure count
func (r *DomainsRepository) SetFailures(ctx context.Context, id uuid.UUID, failures int) error {
	sql := `UPDATE domains SET
				consecutive_failures = $2,
				last_checked_at = now(),
				updated_at = now()
			WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, failures)
	return err
}

// Tombstone transitions a domain to the terminal dead state
func (r *DomainsRepository) Tombstone(ctx context.Context, id uuid.UUID, failures int) error {
	sql := `UPDATE domains SET
				status = 'dead',
				death_at = now(),
				consecutive_failures = $2,
				last_checked_at = now(),
				updated_at = now()
			WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, failures)
	return err
}

// Reactivate is the administrative reset out of the dead state
func (r *DomainsRepository) Reactivate(ctx context.Context, id uuid.UUID) error {
	sql := `UPDATE domains SET
				status = 'active',
				death_at = NULL,
				consecutive_failures = 0,
				updated_at = now()
			WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id)
	return err
}

// SetVerificationStatus updates the ownership state of a domain
func (r *DomainsRepository) SetVerificationStatus(ctx context.Context, id uuid.UUID, status domain.VerificationStatus) error {
	sql := `UPDATE domains SET verification_status = $2, updated_at = now() WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, status)
	return err
}

// SetVerifiedBirth stores an owner asserted, reviewed birth date
func (r *DomainsRepository) SetVerifiedBirth(ctx context.Context, id uuid.UUID, birthAt time.Time) error {
	sql := `UPDATE domains SET verified_birth_at = $2, updated_at = now() WHERE id = $1`
	_, err := r.conn.Exec(ctx, sql, id, birthAt)
	return err
}

// Delete removes a domain row, forcing re-discovery on the next lookup
func (r *DomainsRepository) Delete(ctx context.Context, name string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM domains WHERE domain = $1`, name)
	return err
}

// Count returns the total number of tracked domains
func (r *DomainsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM domains`).Scan(&count)
	return count, err
}

// GetAllLiving returns every non-dead domain
func (r *DomainsRepository) GetAllLiving(ctx context.Context) ([]domain.Domain, error) {
	sql := `SELECT ` + domainFields + ` FROM domains WHERE status != 'dead'`
	rows, err := r.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []domain.Domain
	for rows.Next() {
		var d domain.Domain
		if err := rows.Scan(&d.ID, &d.Domain, &d.BirthAt, &d.VerifiedBirthAt, &d.DeathAt, &d.Status,
			&d.VerificationStatus, &d.ConsecutiveFailures, &d.BadgeEmbedded, &d.LastCheckedAt,
			&d.LastAliveAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// EffectiveBirthDates returns the birth date of every non-dead domain with a
// known one, preferring the verified date, ordered ascending.
func (r *DomainsRepository) EffectiveBirthDates(ctx context.Context) ([]time.Time, error) {
	sql := `SELECT COALESCE(verified_birth_at, birth_at) AS birth
			FROM domains
			WHERE birth_at IS NOT NULL AND status != 'dead'
			ORDER BY birth ASC`
	rows, err := r.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var births []time.Time
	for rows.Next() {
		var birth time.Time
		if err := rows.Scan(&birth); err != nil {
			return nil, err
		}
		births = append(births, birth)
	}
	return births, rows.Err()
}

func (r *DomainsRepository) scanOne(row interface{ Scan(...interface{}) error }) (*domain.Domain, error) {
	var d domain.Domain
	err := row.Scan(&d.ID, &d.Domain, &d.BirthAt, &d.VerifiedBirthAt, &d.DeathAt, &d.Status,
		&d.VerificationStatus, &d.ConsecutiveFailures, &d.BadgeEmbedded, &d.LastCheckedAt,
		&d.LastAliveAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "no rows in result set") {
			return nil, ErrDomainNotFound
		}
		return nil, err
	}
	return &d, nil
}

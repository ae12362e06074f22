package db

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Storage holds the postgres connection pool shared by every repository and
// by the liveness endpoint's pinger.
type Storage struct {
	Pgx *pgxpool.Pool
}

// NewStorage connects a pool to the configured database URL
// (SITEAGE_DATABASE_URL). Pool sizing is left to the pgxpool connection
// string parameters.
func NewStorage(connectionString string) (*Storage, error) {
	pgxConn, err := pgxpool.Connect(context.Background(), connectionString)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Pgx: pgxConn,
	}, nil
}

// Close releases every pooled connection
func (s *Storage) Close() error {
	s.Pgx.Close()
	return nil
}

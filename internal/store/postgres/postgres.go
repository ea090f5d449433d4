// Package postgres is the pgx-backed store. The selection path relies on the
// database: conditional status updates keyed by id carry the compare-and-swap,
// and WithinTx wraps the coordinator's writes in a single transaction.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jubaworks/juba/internal/store"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// works inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	q    querier
}

// New wraps a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Jobs() store.JobRepository                 { return &jobRepo{q: s.q} }
func (s *Store) Applications() store.ApplicationRepository { return &appRepo{q: s.q} }
func (s *Store) Ledger() store.TransactionRepository       { return &txRepo{q: s.q} }
func (s *Store) Profiles() store.ProfileRepository         { return &profileRepo{q: s.q} }

// WithinTx runs fn against a store view bound to one database transaction.
// Nested calls reuse the already-open transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	if _, nested := s.q.(pgx.Tx); nested {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// mapErr translates driver errors into the store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}

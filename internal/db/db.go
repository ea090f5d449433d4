package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates missing tables and indexes at boot.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureUsersTable(ctx, pool); err != nil {
		return err
	}
	if err := ensureProfilesTable(ctx, pool); err != nil {
		return err
	}
	if err := ensureJobsTable(ctx, pool); err != nil {
		return err
	}
	if err := ensureApplicationsTable(ctx, pool); err != nil {
		return err
	}
	if err := ensureTransactionsTable(ctx, pool); err != nil {
		return err
	}
	return nil
}

func ensureUsersTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'client' CHECK (role IN ('client','freelancer','admin')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return fmt.Errorf("ensure users table: %w", err)
	}
	return nil
}

func ensureProfilesTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS freelancer_profiles (
            user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            skills TEXT NOT NULL DEFAULT '',
            bio TEXT NOT NULL DEFAULT '',
            hourly_rate NUMERIC NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return fmt.Errorf("ensure freelancer_profiles table: %w", err)
	}
	return nil
}

func ensureJobsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS jobs (
            id UUID PRIMARY KEY,
            client_id UUID NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            location TEXT NOT NULL,
            timeline TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'posted' CHECK (status IN ('posted','in_progress','completed','cancelled')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            completion_date TIMESTAMP WITH TIME ZONE NULL,
            archive_date TIMESTAMP WITH TIME ZONE NULL
        )`)
	if err != nil {
		return fmt.Errorf("ensure jobs table: %w", err)
	}
	// One active job per client. The index is what decides concurrent posts.
	_, err = pool.Exec(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_jobs_one_active_per_client
        ON jobs(client_id) WHERE status IN ('posted','in_progress')`)
	if err != nil {
		return fmt.Errorf("ensure jobs active index: %w", err)
	}
	_, err = pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON jobs(status, created_at DESC)`)
	if err != nil {
		return fmt.Errorf("ensure jobs status index: %w", err)
	}
	return nil
}

func ensureApplicationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS job_applications (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
            freelancer_id UUID NOT NULL REFERENCES users(id),
            proposed_rate NUMERIC NOT NULL CHECK (proposed_rate > 0),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
            applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            UNIQUE (job_id, freelancer_id)
        )`)
	if err != nil {
		return fmt.Errorf("ensure job_applications table: %w", err)
	}
	// At most one accepted application per job.
	_, err = pool.Exec(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_applications_one_accepted_per_job
        ON job_applications(job_id) WHERE status = 'accepted'`)
	if err != nil {
		return fmt.Errorf("ensure applications accepted index: %w", err)
	}
	_, err = pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_applications_job ON job_applications(job_id, applied_at)`)
	if err != nil {
		return fmt.Errorf("ensure applications job index: %w", err)
	}
	return nil
}

func ensureTransactionsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS transactions (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL UNIQUE REFERENCES jobs(id),
            client_id UUID NOT NULL REFERENCES users(id),
            freelancer_id UUID NOT NULL REFERENCES users(id),
            amount NUMERIC NOT NULL CHECK (amount > 0),
            payment_status TEXT NOT NULL DEFAULT 'pending' CHECK (payment_status IN ('pending','completed','refunded','disputed')),
            payment_date TIMESTAMP WITH TIME ZONE NULL,
            payment_reference TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return fmt.Errorf("ensure transactions table: %w", err)
	}
	return nil
}

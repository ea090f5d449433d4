package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

type jobRepo struct {
	q querier
}

const jobColumns = `id, client_id, title, description, location, timeline, status, created_at, completion_date, archive_date`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &j.Location, &j.Timeline,
		&j.Status, &j.CreatedAt, &j.CompletionDate, &j.ArchiveDate)
	if err != nil {
		return nil, mapErr(err)
	}
	return &j, nil
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	// The partial unique index on jobs(client_id) for active statuses turns a
	// concurrent second posting into a unique violation.
	_, err := r.q.Exec(ctx, `
		INSERT INTO jobs (id, client_id, title, description, location, timeline, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.ClientID, job.Title, job.Description, job.Location, job.Timeline, job.Status, job.CreatedAt,
	)
	return mapErr(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	return scanJob(r.q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

func (r *jobRepo) List(ctx context.Context, filter store.JobFilter, page store.Page) ([]*models.Job, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.TitleSubstring != "" {
		args = append(args, "%"+filter.TitleSubstring+"%")
		where += fmt.Sprintf(` AND title ILIKE $%d`, len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	limit := page.Limit
	if limit <= 0 {
		limit = total
	}
	args = append(args, limit, page.Offset())
	rows, err := r.q.Query(ctx, `SELECT `+jobColumns+` FROM jobs`+where+
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return jobs, total, mapErr(rows.Err())
}

func (r *jobRepo) ListByClient(ctx context.Context, clientID string) ([]*models.Job, error) {
	rows, err := r.q.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, mapErr(rows.Err())
}

func (r *jobRepo) Transition(ctx context.Context, jobID string, from, to models.JobStatus) error {
	res, err := r.q.Exec(ctx, `UPDATE jobs SET status = $3 WHERE id = $1 AND status = $2`, jobID, from, to)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}
	// Matched no row: either the job is gone or its status moved under us.
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, jobID).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStaleStatus
}

func (r *jobRepo) SetCompletion(ctx context.Context, jobID string, completed, archive time.Time) error {
	res, err := r.q.Exec(ctx,
		`UPDATE jobs SET completion_date = $2, archive_date = $3 WHERE id = $1`,
		jobID, completed, archive)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, mapErr(err)
}

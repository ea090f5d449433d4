package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

type appRepo struct {
	q querier
}

const appColumns = `id, job_id, freelancer_id, proposed_rate, status, applied_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.JobID, &a.FreelancerID, &a.ProposedRate, &a.Status, &a.AppliedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *appRepo) Create(ctx context.Context, app *models.Application) error {
	// unique (job_id, freelancer_id) turns a concurrent duplicate into 23505.
	_, err := r.q.Exec(ctx, `
		INSERT INTO job_applications (id, job_id, freelancer_id, proposed_rate, status, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.JobID, app.FreelancerID, app.ProposedRate, app.Status, app.AppliedAt,
	)
	return mapErr(err)
}

func (r *appRepo) GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID string) (*models.Application, error) {
	return scanApplication(r.q.QueryRow(ctx,
		`SELECT `+appColumns+` FROM job_applications WHERE job_id = $1 AND freelancer_id = $2`,
		jobID, freelancerID))
}

func (r *appRepo) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	return r.list(ctx, `SELECT `+appColumns+` FROM job_applications WHERE job_id = $1 ORDER BY applied_at ASC, id ASC`, jobID)
}

func (r *appRepo) ListByFreelancer(ctx context.Context, freelancerID string) ([]*models.Application, error) {
	return r.list(ctx, `SELECT `+appColumns+` FROM job_applications WHERE freelancer_id = $1 ORDER BY applied_at ASC, id ASC`, freelancerID)
}

func (r *appRepo) list(ctx context.Context, sql string, arg any) ([]*models.Application, error) {
	rows, err := r.q.Query(ctx, sql, arg)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, mapErr(rows.Err())
}

func (r *appRepo) Resolve(ctx context.Context, jobID, acceptedFreelancerID string) error {
	res, err := r.q.Exec(ctx, `
		UPDATE job_applications SET status = $3 WHERE job_id = $1 AND freelancer_id = $2`,
		jobID, acceptedFreelancerID, models.ApplicationAccepted)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	_, err = r.q.Exec(ctx, `
		UPDATE job_applications SET status = $3 WHERE job_id = $1 AND freelancer_id <> $2`,
		jobID, acceptedFreelancerID, models.ApplicationRejected)
	return mapErr(err)
}

func (r *appRepo) RejectPending(ctx context.Context, jobID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE job_applications SET status = $2 WHERE job_id = $1 AND status = $3`,
		jobID, models.ApplicationRejected, models.ApplicationPending)
	return mapErr(err)
}

func (r *appRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications`).Scan(&n)
	return n, mapErr(err)
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

type txRepo struct {
	q querier
}

const txColumns = `id, job_id, client_id, freelancer_id, amount, payment_status, payment_date, payment_reference, created_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	var ref *string
	err := row.Scan(&t.ID, &t.JobID, &t.ClientID, &t.FreelancerID, &t.Amount,
		&t.PaymentStatus, &t.PaymentDate, &ref, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if ref != nil {
		t.PaymentReference = *ref
	}
	return &t, nil
}

func (r *txRepo) Create(ctx context.Context, tr *models.Transaction) error {
	// unique job_id enforces one transaction per job at the schema level.
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (id, job_id, client_id, freelancer_id, amount, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tr.ID, tr.JobID, tr.ClientID, tr.FreelancerID, tr.Amount, tr.PaymentStatus, tr.CreatedAt,
	)
	return mapErr(err)
}

func (r *txRepo) GetByJob(ctx context.Context, jobID string) (*models.Transaction, error) {
	return scanTransaction(r.q.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE job_id = $1`, jobID))
}

func (r *txRepo) SetStatus(ctx context.Context, jobID string, from, to models.PaymentStatus, paymentDate *time.Time, reference string) error {
	res, err := r.q.Exec(ctx, `
		UPDATE transactions
		SET payment_status = $3,
		    payment_date = COALESCE($4, payment_date),
		    payment_reference = COALESCE(NULLIF($5, ''), payment_reference)
		WHERE job_id = $1 AND payment_status = $2`,
		jobID, from, to, paymentDate, reference)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE job_id = $1)`, jobID).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStaleStatus
}

func (r *txRepo) List(ctx context.Context) ([]*models.Transaction, error) {
	rows, err := r.q.Query(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

func (r *txRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, mapErr(err)
}

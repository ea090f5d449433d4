package postgres

import (
	"context"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

type profileRepo struct {
	q querier
}

func (r *profileRepo) Upsert(ctx context.Context, p *models.FreelancerProfile) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO freelancer_profiles (user_id, skills, bio, hourly_rate, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET skills = EXCLUDED.skills, bio = EXCLUDED.bio, hourly_rate = EXCLUDED.hourly_rate, status = EXCLUDED.status`,
		p.UserID, p.Skills, p.Bio, p.HourlyRate, p.Status, p.CreatedAt,
	)
	return mapErr(err)
}

func (r *profileRepo) GetByUser(ctx context.Context, userID string) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	err := r.q.QueryRow(ctx, `
		SELECT user_id, skills, bio, hourly_rate, status, created_at
		FROM freelancer_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Skills, &p.Bio, &p.HourlyRate, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *profileRepo) SetStatus(ctx context.Context, userID string, status models.ProfileStatus) error {
	res, err := r.q.Exec(ctx, `UPDATE freelancer_profiles SET status = $2 WHERE user_id = $1`, userID, status)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

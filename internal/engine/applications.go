package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jubaworks/juba/internal/metrics"
	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

// ApplicationRegistry owns freelancer applications: eligibility checks on
// apply and per-job listings. The accepted/rejected split is produced only by
// the matching coordinator's transaction.
type ApplicationRegistry struct {
	store      store.Store
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewApplicationRegistry(st store.Store, d Dispatcher, log zerolog.Logger) *ApplicationRegistry {
	return &ApplicationRegistry{store: st, dispatcher: d, log: log.With().Str("component", "applications").Logger()}
}

// Apply records a pending application. Preconditions: the job is still
// posted, the freelancer holds an approved profile, and they have not applied
// to this job before.
func (r *ApplicationRegistry) Apply(ctx context.Context, jobID, freelancerID string, proposedRate float64) (*models.Application, error) {
	if proposedRate <= 0 {
		return nil, &ValidationError{Field: "proposed_rate", Reason: "must be positive"}
	}

	job, err := r.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "job", ID: jobID}
		}
		return nil, err
	}
	if job.Status != models.JobPosted {
		return nil, &JobNotOpenError{JobID: jobID}
	}

	profile, err := r.store.Profiles().GetByUser(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ProfileNotApprovedError{FreelancerID: freelancerID}
		}
		return nil, err
	}
	if profile.Status != models.ProfileApproved {
		return nil, &ProfileNotApprovedError{FreelancerID: freelancerID}
	}

	app := &models.Application{
		ID:           uuid.New().String(),
		JobID:        jobID,
		FreelancerID: freelancerID,
		ProposedRate: proposedRate,
		Status:       models.ApplicationPending,
		AppliedAt:    time.Now().UTC(),
	}
	if err := r.store.Applications().Create(ctx, app); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &DuplicateApplicationError{JobID: jobID, FreelancerID: freelancerID}
		}
		return nil, err
	}
	metrics.ApplicationsCreated.Inc()
	if err := r.dispatcher.ApplicationReceived(ctx, job, app); err != nil {
		r.log.Warn().Err(err).Str("job_id", jobID).Msg("application.created dispatch failed")
	}
	return app, nil
}

// ListByJob returns the job's applications in the order they were received.
func (r *ApplicationRegistry) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	if _, err := r.store.Jobs().GetByID(ctx, jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "job", ID: jobID}
		}
		return nil, err
	}
	return r.store.Applications().ListByJob(ctx, jobID)
}

// ListByFreelancer returns the freelancer's applications across jobs.
func (r *ApplicationRegistry) ListByFreelancer(ctx context.Context, freelancerID string) ([]*models.Application, error) {
	return r.store.Applications().ListByFreelancer(ctx, freelancerID)
}

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

// MatchingCoordinator owns selection: the one operation that touches jobs,
// applications and the ledger together. The job's posted -> in_progress swap
// is the serialization point; whichever caller lands it proceeds, everyone
// else gets a clean AlreadyInProgressError with no partial effect.
type MatchingCoordinator struct {
	store      store.Store
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewMatchingCoordinator(st store.Store, d Dispatcher, log zerolog.Logger) *MatchingCoordinator {
	return &MatchingCoordinator{store: st, dispatcher: d, log: log.With().Str("component", "matching").Logger()}
}

// SelectFreelancer accepts the (jobID, freelancerID) application, rejects its
// siblings, moves the job to in_progress and opens a pending transaction.
//
// All four effects run inside one store transaction scope: the conditional
// status update carries the compare-and-swap, and a failure in either
// dependent write rolls the swap back. The system never surfaces a job that
// is in_progress without exactly one accepted application and one pending
// transaction.
func (c *MatchingCoordinator) SelectFreelancer(ctx context.Context, jobID, freelancerID, actorID string) (*models.Transaction, error) {
	var (
		job      *models.Job
		accepted *models.Application
		created  *models.Transaction
	)
	err := c.store.WithinTx(ctx, func(st store.Store) error {
		j, err := st.Jobs().GetByID(ctx, jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &NotFoundError{Entity: "job", ID: jobID}
			}
			return err
		}
		if j.ClientID != actorID {
			return &NotOwnerError{JobID: jobID, ActorID: actorID}
		}
		// A caller that arrives after a winner committed sees the moved
		// status here. The conditional update below stays the authority for
		// writers racing inside overlapping transactions.
		if j.Status != models.JobPosted {
			if j.Status == models.JobInProgress {
				return &AlreadyInProgressError{JobID: jobID}
			}
			return &InvalidTransitionError{Entity: "job", From: string(j.Status), To: string(models.JobInProgress)}
		}

		app, err := st.Applications().GetByJobAndFreelancer(ctx, jobID, freelancerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &NotFoundError{Entity: "application", ID: jobID + "/" + freelancerID}
			}
			return err
		}
		if app.Status != models.ApplicationPending {
			return &NotFoundError{Entity: "application", ID: jobID + "/" + freelancerID}
		}

		// The compare-and-swap. Under Postgres a concurrent winner's commit
		// makes this conditional update match zero rows; in memory the store
		// mutex serializes callers and the status check fails the same way.
		if err := st.Jobs().Transition(ctx, jobID, models.JobPosted, models.JobInProgress); err != nil {
			return c.mapSwapErr(ctx, st, jobID, err)
		}

		if err := st.Applications().Resolve(ctx, jobID, freelancerID); err != nil {
			return err
		}

		tr := &models.Transaction{
			ID:            uuid.New().String(),
			JobID:         jobID,
			ClientID:      j.ClientID,
			FreelancerID:  freelancerID,
			Amount:        app.ProposedRate,
			PaymentStatus: models.PaymentPending,
			CreatedAt:     time.Now().UTC(),
		}
		if err := st.Ledger().Create(ctx, tr); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return &ConflictError{Msg: "transaction already exists for job " + jobID}
			}
			return err
		}

		job, accepted, created = j, app, tr
		return nil
	})
	if err != nil {
		var lost *AlreadyInProgressError
		if errors.As(err, &lost) {
			metrics.Selections.WithLabelValues("lost").Inc()
		}
		return nil, err
	}

	metrics.Selections.WithLabelValues("won").Inc()
	if derr := c.dispatcher.FreelancerSelected(ctx, job, accepted); derr != nil {
		c.log.Warn().Err(derr).Str("job_id", jobID).Msg("freelancer.selected dispatch failed")
	}
	return created, nil
}

// mapSwapErr classifies a failed swap: an in_progress job means a lost race,
// a terminal job means the selection window is simply over.
func (c *MatchingCoordinator) mapSwapErr(ctx context.Context, st store.Store, jobID string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "job", ID: jobID}
	}
	if !errors.Is(err, store.ErrStaleStatus) {
		return err
	}
	j, getErr := st.Jobs().GetByID(ctx, jobID)
	if getErr != nil {
		return &NotFoundError{Entity: "job", ID: jobID}
	}
	if j.Status == models.JobInProgress {
		return &AlreadyInProgressError{JobID: jobID}
	}
	return &InvalidTransitionError{Entity: "job", From: string(j.Status), To: string(models.JobInProgress)}
}

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

// JobStore owns job postings: creation under the one-active-job rule, the
// status transition authority, listing, completion and cancellation.
type JobStore struct {
	store      store.Store
	dispatcher Dispatcher
	retention  time.Duration
	log        zerolog.Logger
}

// NewJobStore wires a JobStore. retention is the window between completion
// and archive eligibility.
func NewJobStore(st store.Store, d Dispatcher, retention time.Duration, log zerolog.Logger) *JobStore {
	return &JobStore{store: st, dispatcher: d, retention: retention, log: log.With().Str("component", "jobstore").Logger()}
}

// Create posts a new job for the client. Field validation beyond presence is
// the boundary's concern; the engine enforces only the active-job invariant.
func (s *JobStore) Create(ctx context.Context, clientID, title, description, location, timeline string) (*models.Job, error) {
	job := &models.Job{
		ID:          uuid.New().String(),
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Location:    location,
		Timeline:    timeline,
		Status:      models.JobPosted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Jobs().Create(ctx, job); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Msg: "client already has an active job"}
		}
		return nil, err
	}
	metrics.JobsCreated.Inc()
	s.dispatch(ctx, "job.posted", func() error { return s.dispatcher.JobPosted(ctx, job) })
	return job, nil
}

// GetByID returns the job or a typed NotFoundError.
func (s *JobStore) GetByID(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "job", ID: jobID}
		}
		return nil, err
	}
	return job, nil
}

// List returns a page of jobs, newest first. The read may lag concurrent
// writers; it is never used for authorization.
func (s *JobStore) List(ctx context.Context, filter store.JobFilter, page store.Page) ([]*models.Job, int, error) {
	return s.store.Jobs().List(ctx, filter, page)
}

// ListByClient returns the client's jobs, newest first.
func (s *JobStore) ListByClient(ctx context.Context, clientID string) ([]*models.Job, error) {
	return s.store.Jobs().ListByClient(ctx, clientID)
}

// Transition is the single authority for status moves. It rejects pairs the
// state machine does not permit before touching the store.
func (s *JobStore) Transition(ctx context.Context, jobID string, from, to models.JobStatus) error {
	if !models.ValidJobTransition(from, to) {
		return &InvalidTransitionError{Entity: "job", From: string(from), To: string(to)}
	}
	if err := s.store.Jobs().Transition(ctx, jobID, from, to); err != nil {
		return s.mapTransitionErr(ctx, s.store, jobID, from, to, err)
	}
	return nil
}

// Complete moves the job to completed and stamps completion and archive
// dates. Only the owning client may complete, and only from in_progress.
func (s *JobStore) Complete(ctx context.Context, jobID, actorID string) (*models.Job, error) {
	var job *models.Job
	var freelancerID string
	err := s.store.WithinTx(ctx, func(st store.Store) error {
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
		if err := st.Jobs().Transition(ctx, jobID, models.JobInProgress, models.JobCompleted); err != nil {
			return s.mapTransitionErr(ctx, st, jobID, models.JobInProgress, models.JobCompleted, err)
		}
		completed := time.Now().UTC()
		archive := completed.Add(s.retention)
		if err := st.Jobs().SetCompletion(ctx, jobID, completed, archive); err != nil {
			return err
		}
		j.Status = models.JobCompleted
		j.CompletionDate = &completed
		j.ArchiveDate = &archive

		apps, err := st.Applications().ListByJob(ctx, jobID)
		if err != nil {
			return err
		}
		for _, a := range apps {
			if a.Status == models.ApplicationAccepted {
				freelancerID = a.FreelancerID
			}
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.JobsCompleted.Inc()
	s.dispatch(ctx, "job.completed", func() error { return s.dispatcher.JobCompleted(ctx, job, freelancerID) })
	return job, nil
}

// Cancel withdraws a posted job and rejects its pending applications in the
// same unit of work. A matched job cannot be cancelled by the client; the
// admin surface uses CancelInProgress for that.
func (s *JobStore) Cancel(ctx context.Context, jobID, actorID string) error {
	return s.store.WithinTx(ctx, func(st store.Store) error {
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
		if err := st.Jobs().Transition(ctx, jobID, models.JobPosted, models.JobCancelled); err != nil {
			return s.mapTransitionErr(ctx, st, jobID, models.JobPosted, models.JobCancelled, err)
		}
		return st.Applications().RejectPending(ctx, jobID)
	})
}

// CancelInProgress is the admin override for an in-progress job. Any still
// pending transaction is left for the payment collaborator's failure path.
func (s *JobStore) CancelInProgress(ctx context.Context, jobID string) error {
	return s.store.WithinTx(ctx, func(st store.Store) error {
		if err := st.Jobs().Transition(ctx, jobID, models.JobInProgress, models.JobCancelled); err != nil {
			return s.mapTransitionErr(ctx, st, jobID, models.JobInProgress, models.JobCancelled, err)
		}
		return st.Applications().RejectPending(ctx, jobID)
	})
}

// mapTransitionErr turns store sentinels from a conditional status write into
// typed errors, re-reading the current status when the condition failed.
func (s *JobStore) mapTransitionErr(ctx context.Context, st store.Store, jobID string, from, to models.JobStatus, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "job", ID: jobID}
	}
	if errors.Is(err, store.ErrStaleStatus) {
		j, getErr := st.Jobs().GetByID(ctx, jobID)
		if getErr != nil {
			return &NotFoundError{Entity: "job", ID: jobID}
		}
		return &InvalidTransitionError{Entity: "job", From: string(j.Status), To: string(to)}
	}
	return err
}

func (s *JobStore) dispatch(ctx context.Context, event string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("event dispatch failed")
	}
}

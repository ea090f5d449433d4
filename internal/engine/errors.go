package engine

import "fmt"

// ValidationError reports an argument the boundary let through that the engine
// still refuses (e.g. a non-positive rate).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports an invariant violation: a second active job for a
// client, or a second transaction for a job.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotOwnerError reports an actor trying to manage a job they did not post.
type NotOwnerError struct {
	JobID   string
	ActorID string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("actor %s does not own job %s", e.ActorID, e.JobID)
}

// InvalidTransitionError reports a status move the state machine does not permit.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// JobNotOpenError reports an application against a job that is no longer posted.
type JobNotOpenError struct {
	JobID string
}

func (e *JobNotOpenError) Error() string {
	return fmt.Sprintf("job %s is not open for applications", e.JobID)
}

// ProfileNotApprovedError reports an applicant without an approved freelancer profile.
type ProfileNotApprovedError struct {
	FreelancerID string
}

func (e *ProfileNotApprovedError) Error() string {
	return fmt.Sprintf("freelancer %s has no approved profile", e.FreelancerID)
}

// DuplicateApplicationError reports a second application by the same
// freelancer for the same job.
type DuplicateApplicationError struct {
	JobID        string
	FreelancerID string
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("freelancer %s already applied to job %s", e.FreelancerID, e.JobID)
}

// AlreadyInProgressError is the clean loss of a selection race: another call
// won the posted -> in_progress swap first.
type AlreadyInProgressError struct {
	JobID string
}

func (e *AlreadyInProgressError) Error() string {
	return fmt.Sprintf("job %s already has a selected freelancer", e.JobID)
}

// PaymentFailedError surfaces a payment collaborator failure unchanged.
type PaymentFailedError struct {
	JobID string
	Err   error
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment for job %s failed: %v", e.JobID, e.Err)
}

func (e *PaymentFailedError) Unwrap() error { return e.Err }

package models

import "time"

// JobStatus is the lifecycle state of a job posting.
type JobStatus string

const (
	JobPosted     JobStatus = "posted"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Active reports whether the status counts against the one-active-job-per-client limit.
func (s JobStatus) Active() bool {
	return s == JobPosted || s == JobInProgress
}

// jobTransitions is the full set of permitted status moves. Everything else is rejected.
var jobTransitions = map[JobStatus][]JobStatus{
	JobPosted:     {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
}

// ValidJobTransition reports whether from -> to is a permitted status move.
func ValidJobTransition(from, to JobStatus) bool {
	for _, t := range jobTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Job is a unit of work posted by a client.
type Job struct {
	ID             string     `json:"id"`
	ClientID       string     `json:"client_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	Timeline       string     `json:"timeline,omitempty"`
	Status         JobStatus  `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	ArchiveDate    *time.Time `json:"archive_date,omitempty"`
}

// ApplicationStatus is the lifecycle state of a freelancer's application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a freelancer's bid on a job.
type Application struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id"`
	FreelancerID string            `json:"freelancer_id"`
	ProposedRate float64           `json:"proposed_rate"`
	Status       ApplicationStatus `json:"status"`
	AppliedAt    time.Time         `json:"applied_at"`
}

// PaymentStatus is the state of a job's payment record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentDisputed  PaymentStatus = "disputed"
)

// Transaction is the single payment record tied to a job's accepted application.
type Transaction struct {
	ID               string        `json:"id"`
	JobID            string        `json:"job_id"`
	ClientID         string        `json:"client_id"`
	FreelancerID     string        `json:"freelancer_id"`
	Amount           float64       `json:"amount"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentDate      *time.Time    `json:"payment_date,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ProfileStatus is the review state of a freelancer profile.
type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "pending"
	ProfileApproved ProfileStatus = "approved"
	ProfileRejected ProfileStatus = "rejected"
)

// FreelancerProfile holds the reviewable freelancer data. An approved profile
// is the precondition for applying to jobs.
type FreelancerProfile struct {
	UserID     string        `json:"user_id"`
	Skills     string        `json:"skills,omitempty"`
	Bio        string        `json:"bio,omitempty"`
	HourlyRate float64       `json:"hourly_rate,omitempty"`
	Status     ProfileStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

package notify

import "time"

// Task type constants, one per lifecycle event.
const (
	TaskJobPosted          = "event:job_posted"
	TaskApplicationCreated = "event:application_created"
	TaskFreelancerSelected = "event:freelancer_selected"
	TaskPaymentCompleted   = "event:payment_completed"
	TaskJobCompleted       = "event:job_completed"
)

// JobPostedPayload announces a new posting to interested freelancers.
type JobPostedPayload struct {
	JobID    string    `json:"job_id"`
	ClientID string    `json:"client_id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	SentAt   time.Time `json:"sent_at"`
}

// ApplicationCreatedPayload tells the client someone applied.
type ApplicationCreatedPayload struct {
	JobID        string    `json:"job_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	JobTitle     string    `json:"job_title"`
	ProposedRate float64   `json:"proposed_rate"`
	SentAt       time.Time `json:"sent_at"`
}

// FreelancerSelectedPayload tells the freelancer they won the job.
type FreelancerSelectedPayload struct {
	JobID        string    `json:"job_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	JobTitle     string    `json:"job_title"`
	Amount       float64   `json:"amount"`
	SentAt       time.Time `json:"sent_at"`
}

// PaymentCompletedPayload tells both parties the payment settled.
type PaymentCompletedPayload struct {
	JobID        string    `json:"job_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	Amount       float64   `json:"amount"`
	Reference    string    `json:"reference"`
	SentAt       time.Time `json:"sent_at"`
}

// JobCompletedPayload tells the freelancer the client closed the job.
type JobCompletedPayload struct {
	JobID        string    `json:"job_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	JobTitle     string    `json:"job_title"`
	SentAt       time.Time `json:"sent_at"`
}

// Package notify delivers lifecycle events out of the engine. The asynq
// dispatcher queues one task per event on Redis; the log dispatcher is the
// fallback for development and tests. Either way delivery is best-effort:
// the engine never waits on it.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jubaworks/juba/internal/models"
)

// AsynqDispatcher enqueues events as asynq tasks on the "events" queue.
type AsynqDispatcher struct {
	client *asynq.Client
}

// NewAsynqDispatcher connects an enqueue-only client to Redis.
func NewAsynqDispatcher(redisAddr string) *AsynqDispatcher {
	return &AsynqDispatcher{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// Close releases the client.
func (d *AsynqDispatcher) Close() error { return d.client.Close() }

func (d *AsynqDispatcher) enqueue(taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = d.client.Enqueue(asynq.NewTask(taskType, b), asynq.Queue("events"))
	return err
}

func (d *AsynqDispatcher) JobPosted(_ context.Context, job *models.Job) error {
	return d.enqueue(TaskJobPosted, JobPostedPayload{
		JobID: job.ID, ClientID: job.ClientID, Title: job.Title, Location: job.Location, SentAt: time.Now(),
	})
}

func (d *AsynqDispatcher) ApplicationReceived(_ context.Context, job *models.Job, app *models.Application) error {
	return d.enqueue(TaskApplicationCreated, ApplicationCreatedPayload{
		JobID: job.ID, ClientID: job.ClientID, FreelancerID: app.FreelancerID,
		JobTitle: job.Title, ProposedRate: app.ProposedRate, SentAt: time.Now(),
	})
}

func (d *AsynqDispatcher) FreelancerSelected(_ context.Context, job *models.Job, app *models.Application) error {
	return d.enqueue(TaskFreelancerSelected, FreelancerSelectedPayload{
		JobID: job.ID, ClientID: job.ClientID, FreelancerID: app.FreelancerID,
		JobTitle: job.Title, Amount: app.ProposedRate, SentAt: time.Now(),
	})
}

func (d *AsynqDispatcher) PaymentCompleted(_ context.Context, tr *models.Transaction) error {
	return d.enqueue(TaskPaymentCompleted, PaymentCompletedPayload{
		JobID: tr.JobID, ClientID: tr.ClientID, FreelancerID: tr.FreelancerID,
		Amount: tr.Amount, Reference: tr.PaymentReference, SentAt: time.Now(),
	})
}

func (d *AsynqDispatcher) JobCompleted(_ context.Context, job *models.Job, freelancerID string) error {
	return d.enqueue(TaskJobCompleted, JobCompletedPayload{
		JobID: job.ID, ClientID: job.ClientID, FreelancerID: freelancerID,
		JobTitle: job.Title, SentAt: time.Now(),
	})
}

// LogDispatcher writes events to the log instead of a queue.
type LogDispatcher struct {
	Log zerolog.Logger
}

func (d LogDispatcher) JobPosted(_ context.Context, job *models.Job) error {
	d.Log.Info().Str("event", "job.posted").Str("job_id", job.ID).Str("client_id", job.ClientID).Msg("dispatch")
	return nil
}

func (d LogDispatcher) ApplicationReceived(_ context.Context, job *models.Job, app *models.Application) error {
	d.Log.Info().Str("event", "application.created").Str("job_id", job.ID).
		Str("freelancer_id", app.FreelancerID).Msg("dispatch")
	return nil
}

func (d LogDispatcher) FreelancerSelected(_ context.Context, job *models.Job, app *models.Application) error {
	d.Log.Info().Str("event", "freelancer.selected").Str("job_id", job.ID).
		Str("freelancer_id", app.FreelancerID).Msg("dispatch")
	return nil
}

func (d LogDispatcher) PaymentCompleted(_ context.Context, tr *models.Transaction) error {
	d.Log.Info().Str("event", "payment.completed").Str("job_id", tr.JobID).
		Str("reference", tr.PaymentReference).Msg("dispatch")
	return nil
}

func (d LogDispatcher) JobCompleted(_ context.Context, job *models.Job, freelancerID string) error {
	d.Log.Info().Str("event", "job.completed").Str("job_id", job.ID).
		Str("freelancer_id", freelancerID).Msg("dispatch")
	return nil
}

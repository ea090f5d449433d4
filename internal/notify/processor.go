package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker consumes event tasks and turns them into outbound notifications.
// Handlers only format and hand off to the mailer; a send failure makes asynq
// retry the task, never the engine operation that produced it.
type Worker struct {
	server *asynq.Server
	mailer *Mailer
	log    zerolog.Logger
}

// NewWorker builds a worker bound to the Redis address.
func NewWorker(redisAddr string, mailer *Mailer, log zerolog.Logger) *Worker {
	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"events": 10},
	})
	return &Worker{server: server, mailer: mailer, log: log.With().Str("component", "notify").Logger()}
}

// Run starts consuming; it blocks until Shutdown.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskJobPosted, w.handleJobPosted)
	mux.HandleFunc(TaskApplicationCreated, w.handleApplicationCreated)
	mux.HandleFunc(TaskFreelancerSelected, w.handleFreelancerSelected)
	mux.HandleFunc(TaskPaymentCompleted, w.handlePaymentCompleted)
	mux.HandleFunc(TaskJobCompleted, w.handleJobCompleted)
	return w.server.Run(mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() { w.server.Shutdown() }

func (w *Worker) handleJobPosted(_ context.Context, t *asynq.Task) error {
	var p JobPostedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	w.log.Info().Str("job_id", p.JobID).Msg("job posted")
	return w.mailer.Send(p.ClientID,
		"Your job is live",
		fmt.Sprintf("Job %q is now visible to freelancers.", p.Title))
}

func (w *Worker) handleApplicationCreated(_ context.Context, t *asynq.Task) error {
	var p ApplicationCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	w.log.Info().Str("job_id", p.JobID).Str("freelancer_id", p.FreelancerID).Msg("application received")
	return w.mailer.Send(p.ClientID,
		"New application received",
		fmt.Sprintf("A freelancer applied to %q at a rate of %.2f.", p.JobTitle, p.ProposedRate))
}

func (w *Worker) handleFreelancerSelected(_ context.Context, t *asynq.Task) error {
	var p FreelancerSelectedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	w.log.Info().Str("job_id", p.JobID).Str("freelancer_id", p.FreelancerID).Msg("freelancer selected")
	return w.mailer.Send(p.FreelancerID,
		"You were selected",
		fmt.Sprintf("You were selected for %q. Agreed amount: %.2f.", p.JobTitle, p.Amount))
}

func (w *Worker) handlePaymentCompleted(_ context.Context, t *asynq.Task) error {
	var p PaymentCompletedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	w.log.Info().Str("job_id", p.JobID).Str("reference", p.Reference).Msg("payment completed")
	return w.mailer.Send(p.FreelancerID,
		"Payment completed",
		fmt.Sprintf("Payment of %.2f for job %s settled (reference %s).", p.Amount, p.JobID, p.Reference))
}

func (w *Worker) handleJobCompleted(_ context.Context, t *asynq.Task) error {
	var p JobCompletedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	w.log.Info().Str("job_id", p.JobID).Msg("job completed")
	return w.mailer.Send(p.FreelancerID,
		"Job closed",
		fmt.Sprintf("The client marked %q as completed.", p.JobTitle))
}

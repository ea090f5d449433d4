package engine

import (
	"context"

	"github.com/jubaworks/juba/internal/models"
)

// Dispatcher receives lifecycle events. Delivery is fire-and-forget: the
// engine logs a failed dispatch and moves on, it never rolls back state for
// one.
type Dispatcher interface {
	JobPosted(ctx context.Context, job *models.Job) error
	ApplicationReceived(ctx context.Context, job *models.Job, app *models.Application) error
	FreelancerSelected(ctx context.Context, job *models.Job, app *models.Application) error
	PaymentCompleted(ctx context.Context, tr *models.Transaction) error
	JobCompleted(ctx context.Context, job *models.Job, freelancerID string) error
}

// NopDispatcher drops every event.
type NopDispatcher struct{}

func (NopDispatcher) JobPosted(context.Context, *models.Job) error { return nil }
func (NopDispatcher) ApplicationReceived(context.Context, *models.Job, *models.Application) error {
	return nil
}
func (NopDispatcher) FreelancerSelected(context.Context, *models.Job, *models.Application) error {
	return nil
}
func (NopDispatcher) PaymentCompleted(context.Context, *models.Transaction) error { return nil }
func (NopDispatcher) JobCompleted(context.Context, *models.Job, string) error     { return nil }

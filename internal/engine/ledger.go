package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jubaworks/juba/internal/metrics"
	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

// TransactionLedger owns the single payment record per job. The record is
// created only by the matching coordinator; the ledger records payment
// outcomes reported by the external collaborator and never moves the money
// itself.
type TransactionLedger struct {
	store      store.Store
	dispatcher Dispatcher
	log        zerolog.Logger
}

func NewTransactionLedger(st store.Store, d Dispatcher, log zerolog.Logger) *TransactionLedger {
	return &TransactionLedger{store: st, dispatcher: d, log: log.With().Str("component", "ledger").Logger()}
}

// GetByJob returns the job's transaction or a typed NotFoundError.
func (l *TransactionLedger) GetByJob(ctx context.Context, jobID string) (*models.Transaction, error) {
	tr, err := l.store.Ledger().GetByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "transaction", ID: jobID}
		}
		return nil, err
	}
	return tr, nil
}

// List returns all transactions, newest first. Admin surface only.
func (l *TransactionLedger) List(ctx context.Context) ([]*models.Transaction, error) {
	return l.store.Ledger().List(ctx)
}

// MarkCompleted records a successful payment. Repeating the call with the
// reference already recorded is a no-op success, so a caller that timed out
// can safely re-report after re-querying.
func (l *TransactionLedger) MarkCompleted(ctx context.Context, jobID, paymentReference string) (*models.Transaction, error) {
	tr, err := l.GetByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if tr.PaymentStatus == models.PaymentCompleted && tr.PaymentReference == paymentReference {
		return tr, nil
	}
	if tr.PaymentStatus != models.PaymentPending {
		return nil, &InvalidTransitionError{Entity: "transaction", From: string(tr.PaymentStatus), To: string(models.PaymentCompleted)}
	}

	now := time.Now().UTC()
	err = l.store.Ledger().SetStatus(ctx, jobID, models.PaymentPending, models.PaymentCompleted, &now, paymentReference)
	if errors.Is(err, store.ErrStaleStatus) {
		// Lost a race with another report; re-read and apply the idempotency rule.
		cur, getErr := l.GetByJob(ctx, jobID)
		if getErr != nil {
			return nil, getErr
		}
		if cur.PaymentStatus == models.PaymentCompleted && cur.PaymentReference == paymentReference {
			return cur, nil
		}
		return nil, &InvalidTransitionError{Entity: "transaction", From: string(cur.PaymentStatus), To: string(models.PaymentCompleted)}
	}
	if err != nil {
		return nil, err
	}

	tr.PaymentStatus = models.PaymentCompleted
	tr.PaymentDate = &now
	tr.PaymentReference = paymentReference
	metrics.PaymentsCompleted.Inc()
	if derr := l.dispatcher.PaymentCompleted(ctx, tr); derr != nil {
		l.log.Warn().Err(derr).Str("job_id", jobID).Msg("payment.completed dispatch failed")
	}
	return tr, nil
}

// MarkRefunded records a payment reversal. Permitted only from completed.
func (l *TransactionLedger) MarkRefunded(ctx context.Context, jobID string) error {
	return l.setFromCompleted(ctx, jobID, models.PaymentRefunded)
}

// MarkDisputed records a dispute opened against a completed payment.
func (l *TransactionLedger) MarkDisputed(ctx context.Context, jobID string) error {
	return l.setFromCompleted(ctx, jobID, models.PaymentDisputed)
}

func (l *TransactionLedger) setFromCompleted(ctx context.Context, jobID string, to models.PaymentStatus) error {
	err := l.store.Ledger().SetStatus(ctx, jobID, models.PaymentCompleted, to, nil, "")
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "transaction", ID: jobID}
	}
	if errors.Is(err, store.ErrStaleStatus) {
		cur, getErr := l.GetByJob(ctx, jobID)
		if getErr != nil {
			return getErr
		}
		return &InvalidTransitionError{Entity: "transaction", From: string(cur.PaymentStatus), To: string(to)}
	}
	return err
}

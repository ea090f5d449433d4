package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jubaworks/juba/internal/engine"
	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

func TestSelectFreelancerHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	f.approveFreelancer(t, "freelancer-2")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 200)
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, job.ID, "freelancer-2", 150)
	require.NoError(t, err)

	tr, err := f.coord.SelectFreelancer(ctx, job.ID, "freelancer-2", "client-1")
	require.NoError(t, err)
	require.Equal(t, "freelancer-2", tr.FreelancerID)
	require.Equal(t, "client-1", tr.ClientID)
	require.Equal(t, 150.0, tr.Amount)
	require.Equal(t, models.PaymentPending, tr.PaymentStatus)

	got, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobInProgress, got.Status)

	apps, err := f.apps.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	for _, a := range apps {
		switch a.FreelancerID {
		case "freelancer-2":
			require.Equal(t, models.ApplicationAccepted, a.Status)
		default:
			require.Equal(t, models.ApplicationRejected, a.Status)
		}
	}
}

func TestSelectFreelancerOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)

	_, err = f.coord.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-2")
	var notOwner *engine.NotOwnerError
	require.ErrorAs(t, err, &notOwner)

	// Nothing moved.
	got, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobPosted, got.Status)
}

func TestSelectFreelancerMissingApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")

	_, err := f.coord.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-1")
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "application", notFound.Entity)
}

func TestSelectFreelancerSecondCallLosesCleanly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	f.approveFreelancer(t, "freelancer-2")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, job.ID, "freelancer-2", 90)
	require.NoError(t, err)

	_, err = f.coord.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-1")
	require.NoError(t, err)

	_, err = f.coord.SelectFreelancer(ctx, job.ID, "freelancer-2", "client-1")
	var lost *engine.AlreadyInProgressError
	require.ErrorAs(t, err, &lost)

	// The winner's effects are untouched.
	tr, err := f.ledger.GetByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, "freelancer-1", tr.FreelancerID)
}

func TestSelectFreelancerConcurrentExactlyOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 16

	job := f.postJob(t, "client-1")
	freelancers := make([]string, n)
	for i := range freelancers {
		freelancers[i] = fmt.Sprintf("freelancer-%d", i)
		f.approveFreelancer(t, freelancers[i])
		_, err := f.apps.Apply(ctx, job.ID, freelancers[i], float64(100+i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := range freelancers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.coord.SelectFreelancer(ctx, job.ID, freelancers[i], "client-1")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var lost *engine.AlreadyInProgressError
		require.ErrorAs(t, err, &lost)
	}
	require.Equal(t, 1, wins)

	apps, err := f.apps.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	accepted := 0
	for _, a := range apps {
		if a.Status == models.ApplicationAccepted {
			accepted++
		} else {
			require.Equal(t, models.ApplicationRejected, a.Status)
		}
	}
	require.Equal(t, 1, accepted)

	tr, err := f.ledger.GetByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentPending, tr.PaymentStatus)
}

// failingLedgerStore mimics a ledger write blowing up mid-selection.
type failingLedgerStore struct {
	store.Store
}

func (f *failingLedgerStore) Ledger() store.TransactionRepository {
	return &failingTxRepo{TransactionRepository: f.Store.Ledger()}
}

func (f *failingLedgerStore) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	return f.Store.WithinTx(ctx, func(st store.Store) error {
		return fn(&failingLedgerStore{Store: st})
	})
}

type failingTxRepo struct {
	store.TransactionRepository
}

func (r *failingTxRepo) Create(ctx context.Context, tr *models.Transaction) error {
	return errors.New("ledger write failed")
}

func TestSelectFreelancerRollsBackOnLedgerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	f.approveFreelancer(t, "freelancer-2")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, job.ID, "freelancer-2", 90)
	require.NoError(t, err)

	broken := engine.NewMatchingCoordinator(&failingLedgerStore{Store: f.store}, engine.NopDispatcher{}, zerolog.Nop())
	_, err = broken.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-1")
	require.Error(t, err)

	// The swap and the sibling rejections were rolled back together.
	got, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobPosted, got.Status)

	apps, err := f.apps.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	for _, a := range apps {
		require.Equal(t, models.ApplicationPending, a.Status)
	}

	_, err = f.ledger.GetByJob(ctx, job.ID)
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// A clean retry still succeeds.
	_, err = f.coord.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-1")
	require.NoError(t, err)
}

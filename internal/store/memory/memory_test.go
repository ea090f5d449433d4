package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
	"github.com/jubaworks/juba/internal/store/memory"
)

func seedJob(t *testing.T, st *memory.Store, id, clientID string, status models.JobStatus) {
	t.Helper()
	err := st.Jobs().Create(context.Background(), &models.Job{
		ID:        id,
		ClientID:  clientID,
		Title:     "job " + id,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestJobCreateEnforcesOneActivePerClient(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	seedJob(t, st, "j1", "c1", models.JobPosted)

	err := st.Jobs().Create(ctx, &models.Job{ID: "j2", ClientID: "c1", Status: models.JobPosted})
	require.ErrorIs(t, err, store.ErrDuplicate)

	// A terminal job frees the slot.
	require.NoError(t, st.Jobs().Transition(ctx, "j1", models.JobPosted, models.JobCancelled))
	require.NoError(t, st.Jobs().Create(ctx, &models.Job{ID: "j3", ClientID: "c1", Status: models.JobPosted}))
}

func TestJobTransitionConditional(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	seedJob(t, st, "j1", "c1", models.JobPosted)

	require.ErrorIs(t, st.Jobs().Transition(ctx, "missing", models.JobPosted, models.JobInProgress), store.ErrNotFound)
	require.ErrorIs(t, st.Jobs().Transition(ctx, "j1", models.JobInProgress, models.JobCompleted), store.ErrStaleStatus)
	require.NoError(t, st.Jobs().Transition(ctx, "j1", models.JobPosted, models.JobInProgress))
}

func TestApplicationUniquePerJobAndFreelancer(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	seedJob(t, st, "j1", "c1", models.JobPosted)

	app := &models.Application{ID: "a1", JobID: "j1", FreelancerID: "f1", ProposedRate: 100, Status: models.ApplicationPending}
	require.NoError(t, st.Applications().Create(ctx, app))

	dup := &models.Application{ID: "a2", JobID: "j1", FreelancerID: "f1", ProposedRate: 90, Status: models.ApplicationPending}
	require.ErrorIs(t, st.Applications().Create(ctx, dup), store.ErrDuplicate)
}

func TestTransactionUniquePerJob(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	tr := &models.Transaction{ID: "t1", JobID: "j1", Amount: 100, PaymentStatus: models.PaymentPending}
	require.NoError(t, st.Ledger().Create(ctx, tr))
	require.ErrorIs(t, st.Ledger().Create(ctx, &models.Transaction{ID: "t2", JobID: "j1"}), store.ErrDuplicate)
}

func TestWithinTxRollsBackEveryWrite(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	seedJob(t, st, "j1", "c1", models.JobPosted)
	require.NoError(t, st.Applications().Create(ctx, &models.Application{
		ID: "a1", JobID: "j1", FreelancerID: "f1", ProposedRate: 100, Status: models.ApplicationPending,
	}))

	boom := errors.New("boom")
	err := st.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.Jobs().Transition(ctx, "j1", models.JobPosted, models.JobInProgress); err != nil {
			return err
		}
		if err := tx.Applications().Resolve(ctx, "j1", "f1"); err != nil {
			return err
		}
		if err := tx.Ledger().Create(ctx, &models.Transaction{ID: "t1", JobID: "j1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	job, err := st.Jobs().GetByID(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, models.JobPosted, job.Status)

	app, err := st.Applications().GetByJobAndFreelancer(ctx, "j1", "f1")
	require.NoError(t, err)
	require.Equal(t, models.ApplicationPending, app.Status)

	_, err = st.Ledger().GetByJob(ctx, "j1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	seedJob(t, st, "j1", "c1", models.JobPosted)

	err := st.WithinTx(ctx, func(tx store.Store) error {
		return tx.Jobs().Transition(ctx, "j1", models.JobPosted, models.JobInProgress)
	})
	require.NoError(t, err)

	job, err := st.Jobs().GetByID(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, models.JobInProgress, job.Status)
}

func TestListNewestFirstWithPaging(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := st.Jobs().Create(ctx, &models.Job{
			ID:        string(rune('a' + i)),
			ClientID:  "c" + string(rune('a'+i)),
			Title:     "job",
			Status:    models.JobPosted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	jobs, total, err := st.Jobs().List(ctx, store.JobFilter{}, store.Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, jobs, 2)
	require.Equal(t, "e", jobs[0].ID)
	require.Equal(t, "d", jobs[1].ID)

	jobs, _, err = st.Jobs().List(ctx, store.JobFilter{}, store.Page{Number: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "a", jobs[0].ID)

	// Past the end.
	jobs, _, err = st.Jobs().List(ctx, store.JobFilter{}, store.Page{Number: 4, Limit: 2})
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestProfileUpsertAndStatus(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	require.ErrorIs(t, st.Profiles().SetStatus(ctx, "f1", models.ProfileApproved), store.ErrNotFound)

	p := &models.FreelancerProfile{UserID: "f1", Skills: "welding", Status: models.ProfilePending}
	require.NoError(t, st.Profiles().Upsert(ctx, p))
	require.NoError(t, st.Profiles().SetStatus(ctx, "f1", models.ProfileApproved))

	got, err := st.Profiles().GetByUser(ctx, "f1")
	require.NoError(t, err)
	require.Equal(t, models.ProfileApproved, got.Status)

	// Upsert replaces content.
	p2 := &models.FreelancerProfile{UserID: "f1", Skills: "plumbing", Status: models.ProfilePending}
	require.NoError(t, st.Profiles().Upsert(ctx, p2))
	got, err = st.Profiles().GetByUser(ctx, "f1")
	require.NoError(t, err)
	require.Equal(t, "plumbing", got.Skills)
	require.Equal(t, models.ProfilePending, got.Status)
}

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jubaworks/juba/internal/engine"
	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

func TestCreateJobSecondActiveConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.postJob(t, "client-1")

	_, err := f.jobs.Create(ctx, "client-1", "Second job", "desc", "Juba", "")
	var conflict *engine.ConflictError
	require.ErrorAs(t, err, &conflict)

	// A different client is unaffected.
	_, err = f.jobs.Create(ctx, "client-2", "Other job", "desc", "Juba", "")
	require.NoError(t, err)
}

func TestCreateJobAllowedAfterTerminalStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	require.NoError(t, f.jobs.Cancel(ctx, job.ID, "client-1"))

	_, err := f.jobs.Create(ctx, "client-1", "Next job", "desc", "Juba", "")
	require.NoError(t, err)
}

func TestTransitionRejectsInvalidPairs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")

	cases := []struct {
		from, to models.JobStatus
	}{
		{models.JobPosted, models.JobCompleted},
		{models.JobCompleted, models.JobPosted},
		{models.JobCancelled, models.JobInProgress},
		{models.JobCompleted, models.JobCancelled},
	}
	for _, tc := range cases {
		err := f.jobs.Transition(ctx, job.ID, tc.from, tc.to)
		var invalid *engine.InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "%s -> %s must be rejected", tc.from, tc.to)
	}

	got, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobPosted, got.Status)
}

func TestTransitionStaleStatusReportsActualState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")

	// Job is posted, so an in_progress -> completed move matches nothing.
	err := f.jobs.Transition(ctx, job.ID, models.JobInProgress, models.JobCompleted)
	var invalid *engine.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, string(models.JobPosted), invalid.From)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.jobs.GetByID(context.Background(), "no-such-job")
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.postJob(t, "client-1")
	f.postJob(t, "client-2")
	job3, err := f.jobs.Create(ctx, "client-3", "Paint the fence", "desc", "Juba", "")
	require.NoError(t, err)
	require.NoError(t, f.jobs.Cancel(ctx, job3.ID, "client-3"))

	jobs, total, err := f.jobs.List(ctx, store.JobFilter{Status: models.JobPosted}, store.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, jobs, 2)

	jobs, total, err = f.jobs.List(ctx, store.JobFilter{TitleSubstring: "fence"}, store.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Paint the fence", jobs[0].Title)

	jobs, total, err = f.jobs.List(ctx, store.JobFilter{}, store.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, jobs, 1)
}

func TestCompleteStampsRetentionWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 120)
	require.NoError(t, err)
	_, err = f.coord.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-1")
	require.NoError(t, err)

	completed, err := f.jobs.Complete(ctx, job.ID, "client-1")
	require.NoError(t, err)
	require.Equal(t, models.JobCompleted, completed.Status)
	require.NotNil(t, completed.CompletionDate)
	require.NotNil(t, completed.ArchiveDate)
	require.Equal(t, completed.CompletionDate.Add(retention), *completed.ArchiveDate)
}

func TestCompleteRequiresOwnerAndInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")

	_, err := f.jobs.Complete(ctx, job.ID, "client-2")
	var notOwner *engine.NotOwnerError
	require.ErrorAs(t, err, &notOwner)

	// Still posted, so completion is out of order.
	_, err = f.jobs.Complete(ctx, job.ID, "client-1")
	var invalid *engine.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestCancelRejectsPendingApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	f.approveFreelancer(t, "freelancer-2")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, job.ID, "freelancer-2", 90)
	require.NoError(t, err)

	require.NoError(t, f.jobs.Cancel(ctx, job.ID, "client-1"))

	apps, err := f.apps.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	for _, a := range apps {
		require.Equal(t, models.ApplicationRejected, a.Status)
	}
}

func TestCancelMatchedJobRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)
	_, err = f.coord.SelectFreelancer(ctx, job.ID, "freelancer-1", "client-1")
	require.NoError(t, err)

	err = f.jobs.Cancel(ctx, job.ID, "client-1")
	var invalid *engine.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	// The admin override can still cancel it.
	require.NoError(t, f.jobs.CancelInProgress(ctx, job.ID))
	got, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobCancelled, got.Status)
}

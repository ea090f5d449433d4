package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jubaworks/juba/internal/engine"
	"github.com/jubaworks/juba/internal/models"
)

func TestApplyHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")

	app, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 150)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationPending, app.Status)
	require.Equal(t, 150.0, app.ProposedRate)
	require.NotEmpty(t, app.ID)
}

func TestApplyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")

	for _, rate := range []float64{0, -5} {
		_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", rate)
		var validation *engine.ValidationError
		require.ErrorAs(t, err, &validation, "rate %v", rate)
	}
}

func TestApplyJobMissingOrClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approveFreelancer(t, "freelancer-1")

	_, err := f.apps.Apply(ctx, "no-such-job", "freelancer-1", 100)
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)

	job := f.postJob(t, "client-1")
	require.NoError(t, f.jobs.Cancel(ctx, job.ID, "client-1"))

	_, err = f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	var notOpen *engine.JobNotOpenError
	require.ErrorAs(t, err, &notOpen)
}

func TestApplyRequiresApprovedProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")

	// No profile at all.
	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	var notApproved *engine.ProfileNotApprovedError
	require.ErrorAs(t, err, &notApproved)

	// Pending profile.
	require.NoError(t, f.store.Profiles().Upsert(ctx, &models.FreelancerProfile{
		UserID:    "freelancer-1",
		Status:    models.ProfilePending,
		CreatedAt: time.Now().UTC(),
	}))
	_, err = f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.ErrorAs(t, err, &notApproved)

	// Approval unlocks applying.
	require.NoError(t, f.store.Profiles().SetStatus(ctx, "freelancer-1", models.ProfileApproved))
	_, err = f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)
}

func TestApplyTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")
	f.approveFreelancer(t, "freelancer-1")

	_, err := f.apps.Apply(ctx, job.ID, "freelancer-1", 100)
	require.NoError(t, err)

	_, err = f.apps.Apply(ctx, job.ID, "freelancer-1", 80)
	var duplicate *engine.DuplicateApplicationError
	require.ErrorAs(t, err, &duplicate)
}

func TestListByJobPreservesArrivalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.postJob(t, "client-1")

	freelancers := []string{"freelancer-1", "freelancer-2", "freelancer-3"}
	for i, id := range freelancers {
		f.approveFreelancer(t, id)
		_, err := f.apps.Apply(ctx, job.ID, id, float64(100+i))
		require.NoError(t, err)
	}

	apps, err := f.apps.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	for i, a := range apps {
		require.Equal(t, freelancers[i], a.FreelancerID)
	}
}

func TestListByFreelancerSpansJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approveFreelancer(t, "freelancer-1")

	job1 := f.postJob(t, "client-1")
	job2 := f.postJob(t, "client-2")
	_, err := f.apps.Apply(ctx, job1.ID, "freelancer-1", 100)
	require.NoError(t, err)
	_, err = f.apps.Apply(ctx, job2.ID, "freelancer-1", 110)
	require.NoError(t, err)

	apps, err := f.apps.ListByFreelancer(ctx, "freelancer-1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
}

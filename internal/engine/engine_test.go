package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jubaworks/juba/internal/engine"
	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store/memory"
)

// fixture wires every engine service against a fresh in-memory store.
type fixture struct {
	store  *memory.Store
	jobs   *engine.JobStore
	apps   *engine.ApplicationRegistry
	ledger *engine.TransactionLedger
	coord  *engine.MatchingCoordinator
}

const retention = 24 * time.Hour

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	log := zerolog.Nop()
	return &fixture{
		store:  st,
		jobs:   engine.NewJobStore(st, engine.NopDispatcher{}, retention, log),
		apps:   engine.NewApplicationRegistry(st, engine.NopDispatcher{}, log),
		ledger: engine.NewTransactionLedger(st, engine.NopDispatcher{}, log),
		coord:  engine.NewMatchingCoordinator(st, engine.NopDispatcher{}, log),
	}
}

func (f *fixture) approveFreelancer(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	err := f.store.Profiles().Upsert(ctx, &models.FreelancerProfile{
		UserID:    userID,
		Skills:    "carpentry",
		Status:    models.ProfileApproved,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func (f *fixture) postJob(t *testing.T, clientID string) *models.Job {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), clientID, "Fix the roof", "Replace broken sheets", "Juba", "2 weeks")
	require.NoError(t, err)
	return job
}

// Package store defines the persistence boundary for the job lifecycle
// engine. Backends live in store/postgres and store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jubaworks/juba/internal/models"
)

// Sentinel errors the engine translates into its typed taxonomy.
var (
	// ErrNotFound means the entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate means a uniqueness invariant blocked the write: a second
	// active job per client, a second (job, freelancer) application, or a
	// second transaction per job.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrStaleStatus means a conditional status write matched no row because
	// the current status differs from the expected one.
	ErrStaleStatus = errors.New("store: status changed")
)

// JobFilter narrows List results.
type JobFilter struct {
	Status         models.JobStatus
	TitleSubstring string
}

// Page selects a window of results. Numbering starts at 1.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Store is the unit-of-work handle over all repositories. Writes issued
// through the Store passed to the WithinTx callback commit or roll back
// together; the coordinator's selection path depends on that.
type Store interface {
	Jobs() JobRepository
	Applications() ApplicationRepository
	Ledger() TransactionRepository
	Profiles() ProfileRepository

	// WithinTx runs fn against a transactional view of the store. If fn
	// returns an error every write made through the view is rolled back.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// JobRepository persists job postings. It is the sole writer of job status.
type JobRepository interface {
	// Create inserts a posted job. Returns ErrDuplicate when the client
	// already owns an active (posted or in_progress) job.
	Create(ctx context.Context, job *models.Job) error
	// GetByID returns ErrNotFound when the job does not exist. The read is
	// consistent with the most recent committed transition.
	GetByID(ctx context.Context, id string) (*models.Job, error)
	// List returns a page of jobs, newest first, with the total match count.
	List(ctx context.Context, filter JobFilter, page Page) ([]*models.Job, int, error)
	ListByClient(ctx context.Context, clientID string) ([]*models.Job, error)
	// Transition is a conditional status write keyed by job id: it succeeds
	// only when the current status equals from. ErrStaleStatus means the
	// condition did not hold; ErrNotFound means no such job.
	Transition(ctx context.Context, jobID string, from, to models.JobStatus) error
	// SetCompletion stamps the completion and archive dates.
	SetCompletion(ctx context.Context, jobID string, completed, archive time.Time) error
	Count(ctx context.Context) (int, error)
}

// ApplicationRepository persists freelancer applications per job.
type ApplicationRepository interface {
	// Create returns ErrDuplicate when the freelancer already applied to the job.
	Create(ctx context.Context, app *models.Application) error
	GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID string) (*models.Application, error)
	// ListByJob returns applications in insertion order.
	ListByJob(ctx context.Context, jobID string) ([]*models.Application, error)
	ListByFreelancer(ctx context.Context, freelancerID string) ([]*models.Application, error)
	// Resolve accepts the (jobID, freelancerID) application and rejects every
	// other application for the job, as one write. It is reachable only
	// through the matching coordinator's transaction.
	Resolve(ctx context.Context, jobID, acceptedFreelancerID string) error
	// RejectPending rejects all still-pending applications for the job.
	RejectPending(ctx context.Context, jobID string) error
	Count(ctx context.Context) (int, error)
}

// TransactionRepository persists the single payment record per job.
type TransactionRepository interface {
	// Create returns ErrDuplicate when a transaction already exists for the job.
	Create(ctx context.Context, tr *models.Transaction) error
	GetByJob(ctx context.Context, jobID string) (*models.Transaction, error)
	// SetStatus is a conditional payment-status write: it succeeds only when
	// the current status equals from. paymentDate and reference are written
	// when non-zero.
	SetStatus(ctx context.Context, jobID string, from, to models.PaymentStatus, paymentDate *time.Time, reference string) error
	List(ctx context.Context) ([]*models.Transaction, error)
	Count(ctx context.Context) (int, error)
}

// ProfileRepository persists freelancer profiles, the source of the
// approved-profile capability the application registry consults.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *models.FreelancerProfile) error
	GetByUser(ctx context.Context, userID string) (*models.FreelancerProfile, error)
	SetStatus(ctx context.Context, userID string, status models.ProfileStatus) error
}

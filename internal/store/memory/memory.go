// Package memory is an in-process store backend. It backs unit tests and
// single-node development runs; the mutex held across WithinTx is the
// compare-exchange serialization point for those deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jubaworks/juba/internal/models"
	"github.com/jubaworks/juba/internal/store"
)

// Store keeps all entities in maps guarded by one mutex. Insertion order is
// tracked separately so listings are deterministic.
type Store struct {
	mu sync.Mutex

	jobs     map[string]*models.Job
	jobOrder []string

	apps     map[string]*models.Application
	appOrder []string

	txs map[string]*models.Transaction // keyed by job id

	profiles map[string]*models.FreelancerProfile
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		jobs:     make(map[string]*models.Job),
		apps:     make(map[string]*models.Application),
		txs:      make(map[string]*models.Transaction),
		profiles: make(map[string]*models.FreelancerProfile),
	}
}

func (s *Store) Jobs() store.JobRepository                 { return &jobRepo{s: s, locked: false} }
func (s *Store) Applications() store.ApplicationRepository { return &appRepo{s: s, locked: false} }
func (s *Store) Ledger() store.TransactionRepository       { return &txRepo{s: s, locked: false} }
func (s *Store) Profiles() store.ProfileRepository         { return &profileRepo{s: s, locked: false} }

// WithinTx serializes on the store mutex and snapshots all entity maps before
// running fn. An error from fn restores the snapshot, so partial writes are
// never observable.
func (s *Store) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	view := &txView{s: s}
	if err := fn(view); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshotState struct {
	jobs     map[string]*models.Job
	jobOrder []string
	apps     map[string]*models.Application
	appOrder []string
	txs      map[string]*models.Transaction
	profiles map[string]*models.FreelancerProfile
}

func (s *Store) snapshot() snapshotState {
	snap := snapshotState{
		jobs:     make(map[string]*models.Job, len(s.jobs)),
		jobOrder: append([]string(nil), s.jobOrder...),
		apps:     make(map[string]*models.Application, len(s.apps)),
		appOrder: append([]string(nil), s.appOrder...),
		txs:      make(map[string]*models.Transaction, len(s.txs)),
		profiles: make(map[string]*models.FreelancerProfile, len(s.profiles)),
	}
	for id, j := range s.jobs {
		c := *j
		snap.jobs[id] = &c
	}
	for id, a := range s.apps {
		c := *a
		snap.apps[id] = &c
	}
	for id, t := range s.txs {
		c := *t
		snap.txs[id] = &c
	}
	for id, p := range s.profiles {
		c := *p
		snap.profiles[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.jobs = snap.jobs
	s.jobOrder = snap.jobOrder
	s.apps = snap.apps
	s.appOrder = snap.appOrder
	s.txs = snap.txs
	s.profiles = snap.profiles
}

// txView exposes the same data without re-locking; the WithinTx caller holds
// the mutex for the whole callback.
type txView struct {
	s *Store
}

func (v *txView) Jobs() store.JobRepository                 { return &jobRepo{s: v.s, locked: true} }
func (v *txView) Applications() store.ApplicationRepository { return &appRepo{s: v.s, locked: true} }
func (v *txView) Ledger() store.TransactionRepository       { return &txRepo{s: v.s, locked: true} }
func (v *txView) Profiles() store.ProfileRepository         { return &profileRepo{s: v.s, locked: true} }

func (v *txView) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	// Already inside the outer transaction scope.
	return fn(v)
}

// ---- jobs ----

type jobRepo struct {
	s      *Store
	locked bool
}

func (r *jobRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	defer r.lock()()
	for _, existing := range r.s.jobs {
		if existing.ClientID == job.ClientID && existing.Status.Active() {
			return store.ErrDuplicate
		}
	}
	c := *job
	r.s.jobs[job.ID] = &c
	r.s.jobOrder = append(r.s.jobOrder, job.ID)
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	defer r.lock()()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *j
	return &c, nil
}

func (r *jobRepo) List(ctx context.Context, filter store.JobFilter, page store.Page) ([]*models.Job, int, error) {
	defer r.lock()()
	var matched []*models.Job
	for _, id := range r.s.jobOrder {
		j := r.s.jobs[id]
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.TitleSubstring != "" &&
			!strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.TitleSubstring)) {
			continue
		}
		c := *j
		matched = append(matched, &c)
	}
	// Newest first.
	sort.SliceStable(matched, func(i, k int) bool {
		return matched[i].CreatedAt.After(matched[k].CreatedAt)
	})
	total := len(matched)
	off := page.Offset()
	if off >= total {
		return nil, total, nil
	}
	end := off + page.Limit
	if page.Limit <= 0 || end > total {
		end = total
	}
	return matched[off:end], total, nil
}

func (r *jobRepo) ListByClient(ctx context.Context, clientID string) ([]*models.Job, error) {
	defer r.lock()()
	var out []*models.Job
	for _, id := range r.s.jobOrder {
		j := r.s.jobs[id]
		if j.ClientID == clientID {
			c := *j
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

func (r *jobRepo) Transition(ctx context.Context, jobID string, from, to models.JobStatus) error {
	defer r.lock()()
	j, ok := r.s.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	if j.Status != from {
		return store.ErrStaleStatus
	}
	j.Status = to
	return nil
}

func (r *jobRepo) SetCompletion(ctx context.Context, jobID string, completed, archive time.Time) error {
	defer r.lock()()
	j, ok := r.s.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	c, a := completed, archive
	j.CompletionDate = &c
	j.ArchiveDate = &a
	return nil
}

func (r *jobRepo) Count(ctx context.Context) (int, error) {
	defer r.lock()()
	return len(r.s.jobs), nil
}

// ---- applications ----

type appRepo struct {
	s      *Store
	locked bool
}

func (r *appRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *appRepo) Create(ctx context.Context, app *models.Application) error {
	defer r.lock()()
	for _, existing := range r.s.apps {
		if existing.JobID == app.JobID && existing.FreelancerID == app.FreelancerID {
			return store.ErrDuplicate
		}
	}
	c := *app
	r.s.apps[app.ID] = &c
	r.s.appOrder = append(r.s.appOrder, app.ID)
	return nil
}

func (r *appRepo) GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID string) (*models.Application, error) {
	defer r.lock()()
	for _, a := range r.s.apps {
		if a.JobID == jobID && a.FreelancerID == freelancerID {
			c := *a
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *appRepo) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	defer r.lock()()
	var out []*models.Application
	for _, id := range r.s.appOrder {
		a := r.s.apps[id]
		if a.JobID == jobID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *appRepo) ListByFreelancer(ctx context.Context, freelancerID string) ([]*models.Application, error) {
	defer r.lock()()
	var out []*models.Application
	for _, id := range r.s.appOrder {
		a := r.s.apps[id]
		if a.FreelancerID == freelancerID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *appRepo) Resolve(ctx context.Context, jobID, acceptedFreelancerID string) error {
	defer r.lock()()
	found := false
	for _, a := range r.s.apps {
		if a.JobID != jobID {
			continue
		}
		if a.FreelancerID == acceptedFreelancerID {
			a.Status = models.ApplicationAccepted
			found = true
		} else {
			a.Status = models.ApplicationRejected
		}
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

func (r *appRepo) RejectPending(ctx context.Context, jobID string) error {
	defer r.lock()()
	for _, a := range r.s.apps {
		if a.JobID == jobID && a.Status == models.ApplicationPending {
			a.Status = models.ApplicationRejected
		}
	}
	return nil
}

func (r *appRepo) Count(ctx context.Context) (int, error) {
	defer r.lock()()
	return len(r.s.apps), nil
}

// ---- transactions ----

type txRepo struct {
	s      *Store
	locked bool
}

func (r *txRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *txRepo) Create(ctx context.Context, tr *models.Transaction) error {
	defer r.lock()()
	if _, ok := r.s.txs[tr.JobID]; ok {
		return store.ErrDuplicate
	}
	c := *tr
	r.s.txs[tr.JobID] = &c
	return nil
}

func (r *txRepo) GetByJob(ctx context.Context, jobID string) (*models.Transaction, error) {
	defer r.lock()()
	t, ok := r.s.txs[jobID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *txRepo) SetStatus(ctx context.Context, jobID string, from, to models.PaymentStatus, paymentDate *time.Time, reference string) error {
	defer r.lock()()
	t, ok := r.s.txs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	if t.PaymentStatus != from {
		return store.ErrStaleStatus
	}
	t.PaymentStatus = to
	if paymentDate != nil {
		d := *paymentDate
		t.PaymentDate = &d
	}
	if reference != "" {
		t.PaymentReference = reference
	}
	return nil
}

func (r *txRepo) List(ctx context.Context) ([]*models.Transaction, error) {
	defer r.lock()()
	out := make([]*models.Transaction, 0, len(r.s.txs))
	for _, t := range r.s.txs {
		c := *t
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

func (r *txRepo) Count(ctx context.Context) (int, error) {
	defer r.lock()()
	return len(r.s.txs), nil
}

// ---- profiles ----

type profileRepo struct {
	s      *Store
	locked bool
}

func (r *profileRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *profileRepo) Upsert(ctx context.Context, p *models.FreelancerProfile) error {
	defer r.lock()()
	c := *p
	r.s.profiles[p.UserID] = &c
	return nil
}

func (r *profileRepo) GetByUser(ctx context.Context, userID string) (*models.FreelancerProfile, error) {
	defer r.lock()()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *profileRepo) SetStatus(ctx context.Context, userID string, status models.ProfileStatus) error {
	defer r.lock()()
	p, ok := r.s.profiles[userID]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = status
	return nil
}

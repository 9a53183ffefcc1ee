package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/model"
	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/repository"
)

// fakeAccountRepo is an in-memory Account Store. CommitLink is atomic under mu, like a
// single conditional update, and enforces identity uniqueness like the unique index.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account

	getErr    error
	listErr   error
	commitErr error

	commitCalls int

	// listBarrier, when set, makes every List call wait until all expected callers listed.
	listBarrier *sync.WaitGroup
	// afterCommit runs after a successful commit, outside the lock.
	afterCommit func()
}

func newFakeAccountRepo(accounts ...model.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*model.Account)}
	for i := range accounts {
		a := accounts[i]
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Unix(int64(i), 0)
		}
		r.accounts[a.ID] = &a
	}
	return r
}

func (r *fakeAccountRepo) GetAccountByLinkedIdentity(_ context.Context, identity string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, a := range r.accounts {
		if a.LinkedIdentity != nil && *a.LinkedIdentity == identity {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepo) ListUnlinkedAccountsByPendingCode(_ context.Context, code string) ([]model.Account, error) {
	r.mu.Lock()
	if r.listErr != nil {
		r.mu.Unlock()
		return nil, r.listErr
	}
	var out []model.Account
	for _, a := range r.accounts {
		if a.LinkedIdentity == nil && a.PendingCode != nil && *a.PendingCode == code {
			out = append(out, *a)
		}
	}
	barrier := r.listBarrier
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > repository.MaxPendingCodeMatches {
		out = out[:repository.MaxPendingCodeMatches]
	}

	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	return out, nil
}

func (r *fakeAccountRepo) CommitLink(_ context.Context, accountID, code, identity string) error {
	r.mu.Lock()
	r.commitCalls++
	if r.commitErr != nil {
		r.mu.Unlock()
		return r.commitErr
	}
	a, ok := r.accounts[accountID]
	if !ok || a.LinkedIdentity != nil || a.PendingCode == nil || *a.PendingCode != code {
		r.mu.Unlock()
		return repository.ErrLinkNotApplied
	}
	for _, other := range r.accounts {
		if other.LinkedIdentity != nil && *other.LinkedIdentity == identity {
			r.mu.Unlock()
			return repository.ErrIdentityAlreadyLinked
		}
	}
	now := time.Now()
	linked := identity
	a.LinkedIdentity = &linked
	a.PendingCode = nil
	a.LinkedAt = &now
	a.UpdatedAt = now
	hook := r.afterCommit
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (r *fakeAccountRepo) Ping(context.Context) error {
	return r.getErr
}

func (r *fakeAccountRepo) account(id string) model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.accounts[id]
}

func (r *fakeAccountRepo) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitCalls
}

// linkedCount returns how many accounts are linked to identity.
func (r *fakeAccountRepo) linkedCount(identity string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.accounts {
		if a.LinkedIdentity != nil && *a.LinkedIdentity == identity {
			n++
		}
	}
	return n
}

type fakeRoleGateway struct {
	mu      sync.Mutex
	holders map[string]bool

	hasErr   error
	grantErr error
	// grantErrOnce fails the next GrantRole only.
	grantErrOnce error

	grantCalls   int
	grantCtxErrs []error
}

func newFakeRoleGateway() *fakeRoleGateway {
	return &fakeRoleGateway{holders: make(map[string]bool)}
}

func (g *fakeRoleGateway) HasRole(_ context.Context, identity string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hasErr != nil {
		return false, g.hasErr
	}
	return g.holders[identity], nil
}

func (g *fakeRoleGateway) GrantRole(ctx context.Context, identity string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grantCalls++
	g.grantCtxErrs = append(g.grantCtxErrs, ctx.Err())
	if g.grantErrOnce != nil {
		err := g.grantErrOnce
		g.grantErrOnce = nil
		return err
	}
	if g.grantErr != nil {
		return g.grantErr
	}
	g.holders[identity] = true
	return nil
}

func (g *fakeRoleGateway) has(identity string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holders[identity]
}

func (g *fakeRoleGateway) grants() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.grantCalls
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []Alert
}

func (a *recordingAlerter) Alert(_ context.Context, alert Alert) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
}

func (a *recordingAlerter) kinds() []AlertKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AlertKind, 0, len(a.alerts))
	for _, al := range a.alerts {
		out = append(out, al.Kind)
	}
	return out
}

func strPtr(s string) *string { return &s }

// Package ledger applies bill and stock mutations to the store and keeps the mirror in step.
//
// Every mutation runs under one writer lock and inside exactly one store transaction. The
// mirror is updated only after the transaction commits, so a failed operation leaves both
// the store and the mirror as they were.
package ledger

import (
	"context"
	"sync"
	"time"

	"billing/internal/domain"
	"billing/internal/mirror"
	"billing/internal/repository"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when a bill or item does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrConflict is returned when a write collides with an existing item key or bill number.
	ErrConflict = repository.ErrConflict
)

// Engine is the single writer for bills, stock, counters and the business profile.
type Engine struct {
	mu     sync.Mutex
	repo   *repository.Repository
	mirror *mirror.Mirror
	log    zerolog.Logger
	now    func() time.Time
}

// New returns an engine over repo. The mirror should already be loaded from the same store.
func New(repo *repository.Repository, m *mirror.Mirror, log zerolog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		mirror: m,
		log:    log,
		now:    time.Now,
	}
}

// Mirror exposes the in-memory state for read-only queries.
func (e *Engine) Mirror() *mirror.Mirror {
	return e.mirror
}

// Reload rebuilds the mirror from the store.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mirror.Reload(ctx, e.repo)
}

// Counter is the highest sequence number ever issued for kind.
func (e *Engine) Counter(kind domain.BillKind) int {
	return e.mirror.Counter(kind)
}

func (e *Engine) today() string {
	return e.now().Format(domain.DateLayout)
}

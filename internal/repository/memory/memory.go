// Package memory holds in-process implementations of every repository.
// It backs the service and handler tests and the DB-less development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type tables struct {
	companies map[string]company.Company
	admins    map[string]admin.Admin
	users     map[string]user.User
	doors     map[string]door.Door
	requests  map[string]access.PermissionRequest
	ledger    map[string]access.AccessEntry
	history   map[string]history.Entry
	messages  map[string]message.Message
	tokens    map[string]refreshToken
}

func newTables() tables {
	return tables{
		companies: make(map[string]company.Company),
		admins:    make(map[string]admin.Admin),
		users:     make(map[string]user.User),
		doors:     make(map[string]door.Door),
		requests:  make(map[string]access.PermissionRequest),
		ledger:    make(map[string]access.AccessEntry),
		history:   make(map[string]history.Entry),
		messages:  make(map[string]message.Message),
		tokens:    make(map[string]refreshToken),
	}
}

// clone copies every table. Rows are values whose pointer fields are
// replaced, never written through, so a shallow copy per row is enough.
func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.companies {
		c.companies[k] = v
	}
	for k, v := range t.admins {
		c.admins[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.doors {
		c.doors[k] = v
	}
	for k, v := range t.requests {
		c.requests[k] = v
	}
	for k, v := range t.ledger {
		c.ledger[k] = v
	}
	for k, v := range t.history {
		c.history[k] = v
	}
	for k, v := range t.messages {
		c.messages[k] = v
	}
	for k, v := range t.tokens {
		c.tokens[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data tables
	last time.Time
}

func New() *Store {
	return &Store{data: newTables()}
}

// now returns a strictly increasing UTC timestamp so list ordering is stable.
// Callers must hold s.mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func newID() string {
	return uuid.NewString()
}

type txKey struct{}

func inTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// lockWrite takes the locks for a mutation and returns their release.
// Outside a transaction it also takes txMu, so the write waits for any
// running transaction and no rollback snapshot can predate it.
func (s *Store) lockWrite(ctx context.Context) func() {
	if inTransaction(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type transactor struct {
	s *Store
}

// Transactor returns a database.Transactor that serializes units of work and
// rolls the store back to its prior state when fn fails. Writes made outside
// a transaction are serialized with it through lockWrite.
func (s *Store) Transactor() database.Transactor {
	return &transactor{s: s}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	snapshot := t.s.data.clone()
	t.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.mu.Lock()
		t.s.data = snapshot
		t.s.mu.Unlock()
		return err
	}
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	page, limit = validator.NormalizePage(page, limit)
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortNewestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func strPtr(s string) *string {
	return &s
}

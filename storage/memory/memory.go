// Package memory is an in-memory storage implementation, used in
// tests and for running the service without a database
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/bus/message"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"
)

// ErrCommitFailed is returned by commits failed through FailCommitsAfter
var ErrCommitFailed = errors.New("memory: commit failed")

// NewStore returns an empty in-memory store
func NewStore() *Store {
	return &Store{products: make(map[string]*domain.Product)}
}

// Store holds committed products. Units of work stage copies and
// write them back on commit, so a rolled back scope leaves no trace.
type Store struct {
	mx       sync.Mutex
	products map[string]*domain.Product

	commitSeq     int
	failAfter     int
	failRemaining int
}

// Begin opens a fresh unit of work. It satisfies bus.UnitOfWorkFactory.
func (s *Store) Begin(ctx context.Context) (bus.UnitOfWork, error) {
	return &UnitOfWork{
		store: s,
		repo: &Repository{
			store:  s,
			staged: make(map[string]*domain.Product),
		},
	}, nil
}

// FailCommitsAfter makes the n commits following the first `after`
// commits fail with ErrCommitFailed. Test support for exercising
// transient storage failures.
func (s *Store) FailCommitsAfter(after, n int) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.failAfter = s.commitSeq + after
	s.failRemaining = n
}

// Get returns a copy of a committed product, for test assertions
func (s *Store) Get(sku string) (*domain.Product, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	p, ok := s.products[sku]
	if !ok {
		return nil, false
	}
	return clone(p), true
}

func (s *Store) commit(staged []*domain.Product) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.commitSeq++
	if s.commitSeq > s.failAfter && s.failRemaining > 0 {
		s.failRemaining--
		return ErrCommitFailed
	}

	for _, p := range staged {
		s.products[p.SKU] = clone(p)
	}
	return nil
}

// clone deep-copies a product so scopes never share mutable state.
// Raised events stay with the original: the store keeps facts, not
// pending messages.
func clone(p *domain.Product) *domain.Product {
	batches := make([]*domain.Batch, len(p.Batches))
	for i, b := range p.Batches {
		batches[i] = domain.RestoreBatch(b.Ref, b.SKU, b.PurchasedQuantity(), b.ETA, b.Allocations())
	}
	c := domain.NewProduct(p.SKU, batches...)
	c.Version = p.Version
	return c
}

var _ storage.UnitOfWork = (*UnitOfWork)(nil)

type UnitOfWork struct {
	store     *Store
	repo      *Repository
	committed bool
}

func (u *UnitOfWork) Products() storage.ProductRepository {
	return u.repo
}

func (u *UnitOfWork) Commit() error {
	if err := u.store.commit(u.repo.Seen()); err != nil {
		return err
	}
	u.committed = true
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.committed {
		return nil
	}
	u.repo.staged = make(map[string]*domain.Product)
	u.repo.order = nil
	return nil
}

func (u *UnitOfWork) CollectNewEvents() []message.Message {
	var msgs []message.Message
	for _, p := range u.repo.Seen() {
		msgs = append(msgs, p.Release()...)
	}
	return msgs
}

var _ storage.ProductRepository = (*Repository)(nil)

// Repository stages copy-on-read products for one scope
type Repository struct {
	store  *Store
	staged map[string]*domain.Product
	order  []string
}

func (r *Repository) Add(p *domain.Product) error {
	r.stage(p)
	return nil
}

func (r *Repository) Get(sku string) (*domain.Product, error) {
	if p, ok := r.staged[sku]; ok {
		return p, nil
	}

	p, ok := r.store.Get(sku)
	if !ok {
		return nil, domain.UnknownSKUError{SKU: sku}
	}
	r.stage(p)
	return p, nil
}

func (r *Repository) GetByBatchRef(ref string) (*domain.Product, error) {
	for _, p := range r.staged {
		if p.BatchByRef(ref) != nil {
			return p, nil
		}
	}

	r.store.mx.Lock()
	var found string
	for sku, p := range r.store.products {
		if p.BatchByRef(ref) != nil {
			found = sku
			break
		}
	}
	r.store.mx.Unlock()

	if found == "" {
		return nil, domain.UnknownBatchError{Ref: ref}
	}
	return r.Get(found)
}

func (r *Repository) Seen() []*domain.Product {
	out := make([]*domain.Product, 0, len(r.order))
	for _, sku := range r.order {
		out = append(out, r.staged[sku])
	}
	return out
}

func (r *Repository) stage(p *domain.Product) {
	if _, ok := r.staged[p.SKU]; !ok {
		r.order = append(r.order, p.SKU)
	}
	r.staged[p.SKU] = p
}

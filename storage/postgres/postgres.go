// Package postgres is the production storage implementation: product
// aggregates persisted to PostgreSQL, one transaction per unit of
// work, with optimistic concurrency on the product version.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/bus/message"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"
)

// ErrConcurrentUpdate is returned when another scope committed the
// same product first. It is transient: event handlers retry it away.
var ErrConcurrentUpdate = errors.New("postgres: product was updated concurrently")

// Connect opens and pings a database connection
func Connect(dsn string) *sqlx.DB {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		panic(err)
	}
	return db
}

// New returns a store backed by db, creating the schema if needed
func New(db *sqlx.DB) *Store {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		panic(err)
	}
	return s
}

type Store struct {
	db *sqlx.DB
}

// Begin opens a transaction-scoped unit of work. It satisfies
// bus.UnitOfWorkFactory.
func (s *Store) Begin(ctx context.Context) (bus.UnitOfWork, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{
		tx: tx,
		repo: &Repository{
			tx:       tx,
			staged:   make(map[string]*domain.Product),
			versions: make(map[string]int64),
		},
	}, nil
}

var _ storage.UnitOfWork = (*UnitOfWork)(nil)

type UnitOfWork struct {
	tx        *sqlx.Tx
	repo      *Repository
	committed bool
}

func (u *UnitOfWork) Products() storage.ProductRepository {
	return u.repo
}

func (u *UnitOfWork) Commit() error {
	for _, p := range u.repo.Seen() {
		if err := u.repo.persist(p); err != nil {
			return err
		}
	}
	if err := u.tx.Commit(); err != nil {
		return err
	}
	u.committed = true
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.committed {
		return nil
	}
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (u *UnitOfWork) CollectNewEvents() []message.Message {
	var msgs []message.Message
	for _, p := range u.repo.Seen() {
		msgs = append(msgs, p.Release()...)
	}
	return msgs
}

type batchRow struct {
	Ref          string     `db:"ref"`
	SKU          string     `db:"sku"`
	PurchasedQty int        `db:"purchased_qty"`
	ETA          *time.Time `db:"eta"`
}

type allocationRow struct {
	BatchRef string `db:"batch_ref"`
	OrderID  string `db:"orderid"`
	SKU      string `db:"sku"`
	Qty      int    `db:"qty"`
}

var _ storage.ProductRepository = (*Repository)(nil)

// Repository loads product aggregates into one transaction's scope,
// remembering the version each was loaded at so commits can detect
// concurrent writers.
type Repository struct {
	tx       *sqlx.Tx
	staged   map[string]*domain.Product
	order    []string
	versions map[string]int64
}

func (r *Repository) Add(p *domain.Product) error {
	_, err := r.tx.Exec(`INSERT INTO products (sku, version) VALUES ($1, $2)`, p.SKU, p.Version)
	if err != nil {
		return err
	}
	r.stage(p, p.Version)
	return nil
}

func (r *Repository) Get(sku string) (*domain.Product, error) {
	if p, ok := r.staged[sku]; ok {
		return p, nil
	}

	var version int64
	err := r.tx.Get(&version, `SELECT version FROM products WHERE sku = $1`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.UnknownSKUError{SKU: sku}
	}
	if err != nil {
		return nil, err
	}

	batches, err := r.loadBatches(sku)
	if err != nil {
		return nil, err
	}

	p := domain.NewProduct(sku, batches...)
	p.Version = version
	r.stage(p, version)
	return p, nil
}

func (r *Repository) GetByBatchRef(ref string) (*domain.Product, error) {
	for _, p := range r.staged {
		if p.BatchByRef(ref) != nil {
			return p, nil
		}
	}

	var sku string
	err := r.tx.Get(&sku, `SELECT sku FROM batches WHERE ref = $1`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.UnknownBatchError{Ref: ref}
	}
	if err != nil {
		return nil, err
	}
	return r.Get(sku)
}

func (r *Repository) Seen() []*domain.Product {
	out := make([]*domain.Product, 0, len(r.order))
	for _, sku := range r.order {
		out = append(out, r.staged[sku])
	}
	return out
}

func (r *Repository) loadBatches(sku string) ([]*domain.Batch, error) {
	var rows []batchRow
	err := r.tx.Select(&rows, `SELECT ref, sku, purchased_qty, eta FROM batches WHERE sku = $1 ORDER BY ref`, sku)
	if err != nil {
		return nil, err
	}

	batches := make([]*domain.Batch, len(rows))
	for i, row := range rows {
		var lines []allocationRow
		err := r.tx.Select(&lines, `SELECT batch_ref, orderid, sku, qty FROM allocations WHERE batch_ref = $1 ORDER BY id`, row.Ref)
		if err != nil {
			return nil, err
		}

		allocations := make([]domain.OrderLine, len(lines))
		for j, line := range lines {
			allocations[j] = domain.OrderLine{OrderID: line.OrderID, SKU: line.SKU, Qty: line.Qty}
		}
		batches[i] = domain.RestoreBatch(row.Ref, row.SKU, row.PurchasedQty, row.ETA, allocations)
	}
	return batches, nil
}

// persist writes an aggregate back, checking that nobody else
// committed it since it was loaded
func (r *Repository) persist(p *domain.Product) error {
	res, err := r.tx.Exec(
		`UPDATE products SET version = $1 WHERE sku = $2 AND version = $3`,
		p.Version, p.SKU, r.versions[p.SKU],
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("%w: %s", ErrConcurrentUpdate, p.SKU)
	}

	if _, err := r.tx.Exec(`DELETE FROM batches WHERE sku = $1`, p.SKU); err != nil {
		return err
	}
	for _, b := range p.Batches {
		_, err := r.tx.Exec(
			`INSERT INTO batches (ref, sku, purchased_qty, eta) VALUES ($1, $2, $3, $4)`,
			b.Ref, b.SKU, b.PurchasedQuantity(), b.ETA,
		)
		if err != nil {
			return err
		}
		for _, line := range b.Allocations() {
			_, err := r.tx.Exec(
				`INSERT INTO allocations (batch_ref, orderid, sku, qty) VALUES ($1, $2, $3, $4)`,
				b.Ref, line.OrderID, line.SKU, line.Qty,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Repository) stage(p *domain.Product, version int64) {
	if _, ok := r.staged[p.SKU]; !ok {
		r.order = append(r.order, p.SKU)
	}
	r.staged[p.SKU] = p
	r.versions[p.SKU] = version
}

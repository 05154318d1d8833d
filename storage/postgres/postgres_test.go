// +build !unit

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"
	"github.com/allocd/allocd/views"
)

func testDSN() string {
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		return dsn
	}
	return "user=postgres password=postgres dbname=allocd_test host=localhost sslmode=disable"
}

type PostgresSuite struct {
	suite.Suite

	db    *sqlx.DB
	store *Store
}

func TestPostgres(t *testing.T) {
	db, err := sqlx.Connect("postgres", testDSN())
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	suite.Run(t, &PostgresSuite{db: db})
}

func (s *PostgresSuite) SetupTest() {
	s.store = New(s.db)
	s.db.MustExec("TRUNCATE products CASCADE")
}

func (s *PostgresSuite) TearDownSuite() {
	s.db.Close()
}

func (s *PostgresSuite) begin() storage.UnitOfWork {
	uow, err := s.store.Begin(context.Background())
	s.Require().NoError(err)
	return uow.(storage.UnitOfWork)
}

func (s *PostgresSuite) TestRoundTrip() {
	uow := s.begin()
	product := domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))
	s.Require().NoError(uow.Products().Add(product))
	s.Require().NoError(uow.Commit())

	uow = s.begin()
	defer uow.Rollback()
	got, err := uow.Products().Get("RETRO-CLOCK")
	s.Require().NoError(err)

	batch := got.BatchByRef("batch-001")
	s.Require().NotNil(batch)
	s.Equal(100, batch.AvailableQuantity())
	s.True(batch.InStock())
}

func (s *PostgresSuite) TestPersistsAllocations() {
	uow := s.begin()
	product := domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))
	s.Require().NoError(uow.Products().Add(product))
	_, err := product.Allocate(domain.OrderLine{OrderID: "order-001", SKU: "RETRO-CLOCK", Qty: 10})
	s.Require().NoError(err)
	s.Require().NoError(uow.Commit())

	uow = s.begin()
	defer uow.Rollback()
	got, err := uow.Products().Get("RETRO-CLOCK")
	s.Require().NoError(err)
	s.Equal(90, got.BatchByRef("batch-001").AvailableQuantity())

	rows, err := views.Allocations(context.Background(), s.db, "order-001")
	s.Require().NoError(err)
	s.Equal([]views.Allocation{{SKU: "RETRO-CLOCK", BatchRef: "batch-001"}}, rows)
}

func (s *PostgresSuite) TestRollbackDiscards() {
	uow := s.begin()
	s.Require().NoError(uow.Products().Add(domain.NewProduct("RETRO-CLOCK")))
	s.Require().NoError(uow.Rollback())

	uow = s.begin()
	defer uow.Rollback()
	_, err := uow.Products().Get("RETRO-CLOCK")
	s.Equal(domain.UnknownSKUError{SKU: "RETRO-CLOCK"}, err)
}

func (s *PostgresSuite) TestGetByBatchRef() {
	uow := s.begin()
	s.Require().NoError(uow.Products().Add(domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))))
	s.Require().NoError(uow.Commit())

	uow = s.begin()
	defer uow.Rollback()
	got, err := uow.Products().GetByBatchRef("batch-001")
	s.Require().NoError(err)
	s.Equal("RETRO-CLOCK", got.SKU)

	_, err = uow.Products().GetByBatchRef("batch-999")
	s.Equal(domain.UnknownBatchError{Ref: "batch-999"}, err)
}

func (s *PostgresSuite) TestConcurrentUpdateConflicts() {
	uow := s.begin()
	s.Require().NoError(uow.Products().Add(domain.NewProduct("RETRO-CLOCK", domain.NewBatch("batch-001", "RETRO-CLOCK", 100, nil))))
	s.Require().NoError(uow.Commit())

	first := s.begin()
	p1, err := first.Products().Get("RETRO-CLOCK")
	s.Require().NoError(err)

	second := s.begin()
	p2, err := second.Products().Get("RETRO-CLOCK")
	s.Require().NoError(err)

	_, err = p1.Allocate(domain.OrderLine{OrderID: "order-001", SKU: "RETRO-CLOCK", Qty: 10})
	s.Require().NoError(err)
	s.Require().NoError(first.Commit())

	_, err = p2.Allocate(domain.OrderLine{OrderID: "order-002", SKU: "RETRO-CLOCK", Qty: 10})
	s.Require().NoError(err)
	err = second.Commit()
	second.Rollback()
	s.Require().ErrorIs(err, ErrConcurrentUpdate)

	check := s.begin()
	defer check.Rollback()
	got, err := check.Products().Get("RETRO-CLOCK")
	s.Require().NoError(err)
	s.Equal(90, got.BatchByRef("batch-001").AvailableQuantity())
}

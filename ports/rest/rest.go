// Package rest is the HTTP entry point: it turns requests into
// commands, dispatches them, and translates the outcome for callers.
package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/errors"
	"github.com/allocd/allocd/handlers"
	"github.com/allocd/allocd/views"
)

// NewServer returns the allocation API server
func NewServer(b *bus.Bus, db *sqlx.DB) *Server {
	s := &Server{bus: b, db: db, router: gin.Default()}
	s.router.POST("/batches", s.addBatch)
	s.router.POST("/allocate", s.allocate)
	s.router.GET("/allocations/:orderid", s.allocations)
	return s
}

type Server struct {
	bus    *bus.Bus
	db     *sqlx.DB
	router *gin.Engine
}

// Run implements ports.Port, serving until the context cancels
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{Addr: ":8080", Handler: s.router}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	}
}

func (s *Server) addBatch(c *gin.Context) {
	var cmd handlers.CreateBatch
	if MustBind(c, &cmd) != nil {
		return
	}
	if err := cmd.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	results, err := s.bus.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"batchref": results[0].ID})
}

func (s *Server) allocate(c *gin.Context) {
	var cmd handlers.Allocate
	if MustBind(c, &cmd) != nil {
		return
	}
	if err := cmd.Valid(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	results, err := s.bus.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"batchref": results[0].ID})
}

func (s *Server) allocations(c *gin.Context) {
	result, err := views.Allocations(c.Request.Context(), s.db, c.Param("orderid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(result) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// fail maps dispatch errors onto HTTP responses. Domain rejections
// are the caller's problem; everything else is hidden as a 500.
func (s *Server) fail(c *gin.Context, err error) {
	visible := translate(err)
	c.JSON(visible.Code, gin.H{"message": visible.Message})
}

func translate(err error) errors.Error {
	switch err.(type) {
	case domain.OutOfStockError:
		return errors.Invalid(err.Error())
	case domain.UnknownSKUError, domain.UnknownBatchError:
		return errors.NotFound(err.Error())
	}
	return errors.Block(err)
}

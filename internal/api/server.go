// Package api serves the ledger over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cleared-dev/propledger/internal/accounts"
	"github.com/cleared-dev/propledger/internal/journal"
	"github.com/cleared-dev/propledger/internal/metrics"
	"github.com/cleared-dev/propledger/internal/report"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API exposes.
type Deps struct {
	Accounts *accounts.Service
	Journal  *journal.Service
	Reports  *report.Service
	Store    Pinger
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	accounts *accounts.Service
	journal  *journal.Service
	reports  *report.Service
	store    Pinger
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// New creates a Server.
func New(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		accounts: d.Accounts,
		journal:  d.Journal,
		reports:  d.Reports,
		store:    d.Store,
		metrics:  d.Metrics,
		log:      log.Named("http"),
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(Logger(s.log))
	r.Use(Recovery(s.log))
	r.Use(Metrics(s.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	r.GET("/account-types", s.listAccountTypes)
	r.POST("/account-types", s.createAccountType)
	r.PUT("/account-types/:id", s.renameAccountType)
	r.DELETE("/account-types/:id", s.deleteAccountType)

	r.GET("/accounts", s.listAccounts)
	r.POST("/accounts", s.createAccount)
	r.GET("/accounts/:id", s.getAccount)
	r.PUT("/accounts/:id", s.updateAccount)
	r.DELETE("/accounts/:id", s.deleteAccount)

	r.PUT("/properties/:property_id/units/:unit_id", s.registerUnit)

	r.GET("/transactions", s.listTransactions)
	r.POST("/transactions", s.submitTransaction)
	r.GET("/transactions/:id", s.getTransaction)
	r.PUT("/transactions/:id", s.updateTransaction)
	r.DELETE("/transactions/:id", s.deleteTransaction)

	r.GET("/ledger", s.generalLedger)
	r.GET("/reports/income-expense", s.incomeExpense)

	return r
}

// HTTPServer wraps Router in an http.Server with the given timeouts.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) ready(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

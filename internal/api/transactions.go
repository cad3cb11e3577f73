package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleared-dev/propledger/internal/id"
	"github.com/cleared-dev/propledger/internal/model"
	"github.com/cleared-dev/propledger/internal/report"
)

func (s *Server) listTransactions(c *gin.Context) {
	q, err := parseQuery(c.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	txns, err := s.reports.GeneralLedger(c.Request.Context(), report.LedgerFilter{
		Start:     q.Start,
		End:       q.End,
		AccountID: q.AccountID,
		Order:     q.Order,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]transactionResponse, len(txns))
	for i, t := range txns {
		out[i] = toTransaction(t)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) submitTransaction(c *gin.Context) {
	draft, ok := s.bindDraft(c)
	if !ok {
		return
	}
	txn, err := s.journal.Submit(c.Request.Context(), draft)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Location", "/transactions/"+txn.ID)
	c.JSON(http.StatusCreated, toTransaction(txn))
}

func (s *Server) getTransaction(c *gin.Context) {
	txnID, ok := s.transactionID(c)
	if !ok {
		return
	}
	txn, err := s.journal.Get(c.Request.Context(), txnID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransaction(txn))
}

func (s *Server) updateTransaction(c *gin.Context) {
	txnID, ok := s.transactionID(c)
	if !ok {
		return
	}
	draft, ok := s.bindDraft(c)
	if !ok {
		return
	}
	txn, err := s.journal.Update(c.Request.Context(), txnID, draft)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransaction(txn))
}

func (s *Server) deleteTransaction(c *gin.Context) {
	txnID, ok := s.transactionID(c)
	if !ok {
		return
	}
	if err := s.journal.Delete(c.Request.Context(), txnID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) bindDraft(c *gin.Context) (model.TransactionDraft, bool) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid request body: %v", err))
		return model.TransactionDraft{}, false
	}
	draft, err := req.draft()
	if err != nil {
		s.fail(c, err)
		return model.TransactionDraft{}, false
	}
	return draft, true
}

// transactionID rejects malformed IDs as not found; no such transaction
// can exist.
func (s *Server) transactionID(c *gin.Context) (string, bool) {
	txnID := c.Param("id")
	if !id.Valid(txnID) {
		s.fail(c, fmt.Errorf("transaction %s: %w", txnID, model.ErrNotFound))
		return "", false
	}
	return txnID, true
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleared-dev/propledger/internal/report"
)

func (s *Server) generalLedger(c *gin.Context) {
	q, err := parseQuery(c.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	rows, err := s.reports.GeneralLedgerRows(c.Request.Context(), report.LedgerFilter{
		Start:     q.Start,
		End:       q.End,
		AccountID: q.AccountID,
		Order:     q.Order,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]ledgerRowResponse, len(rows))
	for i, r := range rows {
		out[i] = toLedgerRow(r)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) incomeExpense(c *gin.Context) {
	q, err := parseQuery(c.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	g := report.Monthly
	if raw := c.Query("granularity"); raw != "" {
		if g, err = report.ParseGranularity(raw); err != nil {
			s.fail(c, err)
			return
		}
	}
	series, err := s.reports.IncomeExpenseSeries(c.Request.Context(), q.Start, q.End, g)
	if err != nil {
		s.fail(c, err)
		return
	}
	if series == nil {
		series = []report.Period{}
	}
	c.JSON(http.StatusOK, series)
}

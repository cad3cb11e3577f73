package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleared-dev/propledger/internal/model"
)

func (s *Server) listAccountTypes(c *gin.Context) {
	types, err := s.accounts.ListAccountTypes(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]accountTypeResponse, len(types))
	for i, at := range types {
		out[i] = toAccountType(at)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createAccountType(c *gin.Context) {
	var req accountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid request body: %v", err))
		return
	}
	at, err := s.accounts.CreateAccountType(c.Request.Context(), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountType(at))
}

func (s *Server) renameAccountType(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req accountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid request body: %v", err))
		return
	}
	at, err := s.accounts.RenameAccountType(c.Request.Context(), id, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountType(at))
}

func (s *Server) deleteAccountType(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.accounts.DeleteAccountType(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listAccounts(c *gin.Context) {
	var (
		accts []model.Account
		err   error
	)
	if name, ok := c.GetQuery("category"); ok {
		var category model.Category
		if uerr := category.UnmarshalText([]byte(name)); uerr != nil {
			s.fail(c, badRequest("%v", uerr))
			return
		}
		accts, err = s.accounts.ListAccountsByCategory(c.Request.Context(), category)
	} else {
		accts, err = s.accounts.ListAccounts(c.Request.Context())
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]accountResponse, len(accts))
	for i, a := range accts {
		out[i] = toAccount(a)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid request body: %v", err))
		return
	}
	a, err := s.accounts.CreateAccount(c.Request.Context(), req.Name, req.AccountTypeID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccount(a))
}

func (s *Server) getAccount(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccount(a))
}

func (s *Server) updateAccount(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid request body: %v", err))
		return
	}
	a, err := s.accounts.UpdateAccount(c.Request.Context(), id, req.Name, req.AccountTypeID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccount(a))
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, err := parseID("id", c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.accounts.DeleteAccount(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) registerUnit(c *gin.Context) {
	propertyID, err := parseID("property_id", c.Param("property_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	unitID, err := parseID("unit_id", c.Param("unit_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.journal.RegisterUnit(c.Request.Context(), propertyID, unitID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_id": propertyID, "unit_id": unitID})
}

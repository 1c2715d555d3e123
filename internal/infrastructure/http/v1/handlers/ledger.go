package handlers

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/ledger"
	"retailcore/internal/infrastructure/http/v1/dto"
)

// LedgerHandler serves read-only ledger queries. The ledger has no write
// endpoints; postings happen only through document workflows.
type LedgerHandler struct {
	*BaseHandler
	repo     ledger.Repository
	balances *ledger.BalanceService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(repo ledger.Repository, balances *ledger.BalanceService) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: NewBaseHandler(),
		repo:        repo,
		balances:    balances,
	}
}

// Register mounts the ledger routes.
func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/ledger")
	g.GET("/accounts", h.ListAccounts)
	g.GET("/accounts/:code", h.GetAccount)
	g.GET("/accounts/:code/balance", h.Balance)
	g.GET("/accounts/:code/statement", h.Statement)
	g.GET("/transactions", h.ListByReference)
	g.GET("/transactions/:id", h.GetTransaction)
}

// ListAccounts handles GET /ledger/accounts with an optional type filter.
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	var accType *ledger.AccountType
	if raw := c.Query("type"); raw != "" {
		t := ledger.AccountType(raw)
		if !t.IsValid() {
			h.Error(c, apperror.NewValidation("unknown account type").
				WithDetail("value", raw))
			return
		}
		accType = &t
	}

	accounts, err := h.repo.ListAccounts(c.Request.Context(), accType)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, dto.FromAccount(&accounts[i]))
	}
	h.OK(c, out)
}

// GetAccount handles GET /ledger/accounts/:code.
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	account, err := h.repo.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAccount(account))
}

// Balance handles GET /ledger/accounts/:code/balance. The figure is derived
// from entries on demand and signed per the account type.
func (h *LedgerHandler) Balance(c *gin.Context) {
	code := c.Param("code")

	balance, err := h.balances.Balance(c.Request.Context(), code)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BalanceResponse{AccountCode: code, Balance: balance})
}

// Statement handles GET /ledger/accounts/:code/statement?from=...&to=...
func (h *LedgerHandler) Statement(c *gin.Context) {
	code := c.Param("code")

	var query dto.StatementQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if query.To.Before(query.From) {
		h.Error(c, apperror.NewValidation("statement range end precedes start").
			WithDetail("from", query.From).
			WithDetail("to", query.To))
		return
	}

	lines, err := h.balances.Statement(c.Request.Context(), code, query.From, query.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStatement(code, query.From, query.To, lines))
}

// ListByReference handles GET /ledger/transactions?referenceType=...&referenceId=...
func (h *LedgerHandler) ListByReference(c *gin.Context) {
	refType, err := ledger.ParseReferenceType(c.Query("referenceType"))
	if err != nil {
		h.Error(c, err)
		return
	}
	refID, err := id.Parse(c.Query("referenceId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reference id").
			WithDetail("value", c.Query("referenceId")))
		return
	}

	txns, err := h.repo.ListByReference(c.Request.Context(), ledger.NewReference(refType, refID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTransactions(txns))
}

// GetTransaction handles GET /ledger/transactions/:id.
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	txnID, ok := h.PathID(c)
	if !ok {
		return
	}

	txn, err := h.repo.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTransaction(txn))
}

package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bankbook/models"
	"bankbook/pkg/ledger"
)

// accountJSON shapes an account for responses, adding the display names the
// raw codes don't carry.
func accountJSON(a *models.Account) gin.H {
	return gin.H{
		"id":                   a.ID,
		"account_number":       a.AccountNumber,
		"bank_code":            a.BankCode,
		"bank_name":            ledger.BankName(a.BankCode),
		"account_type":         a.AccountType,
		"account_type_display": ledger.AccountTypeName(a.AccountType),
		"balance":              a.Balance,
		"is_deleted":           a.IsDeleted,
		"created_at":           a.CreatedAt,
	}
}

func listAccountsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	accts, err := ledgerSvc.ListAccounts(c.Request.Context(), user.ID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	out := make([]gin.H, 0, len(accts))
	for i := range accts {
		out = append(out, accountJSON(&accts[i]))
	}
	c.JSON(http.StatusOK, out)
}

func createAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		AccountNumber  string          `json:"account_number" binding:"required,max=20"`
		BankCode       string          `json:"bank_code" binding:"required"`
		AccountType    string          `json:"account_type"`
		OpeningBalance decimal.Decimal `json:"balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct, err := ledgerSvc.CreateAccount(c.Request.Context(), user.ID, ledger.CreateAccountInput{
		AccountNumber:  req.AccountNumber,
		BankCode:       req.BankCode,
		AccountType:    req.AccountType,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountJSON(acct))
}

// pathID parses the :id path parameter; 0 means invalid.
func pathID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func getAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id := pathID(c)
	if id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	acct, err := ledgerSvc.GetAccount(c.Request.Context(), user.ID, id)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountJSON(acct))
}

func updateAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id := pathID(c)
	if id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req struct {
		AccountNumber *string `json:"account_number"`
		BankCode      *string `json:"bank_code"`
		AccountType   *string `json:"account_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct, err := ledgerSvc.UpdateAccount(c.Request.Context(), user.ID, id, ledger.UpdateAccountInput{
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		AccountType:   req.AccountType,
	})
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountJSON(acct))
}

func deleteAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id := pathID(c)
	if id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := ledgerSvc.SoftDeleteAccount(c.Request.Context(), user.ID, id); err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

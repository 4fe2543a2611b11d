package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bankbook/models"
	"bankbook/pkg/ledger"
)

func transactionJSON(t *models.Transaction) gin.H {
	return gin.H{
		"id":                         t.ID,
		"account":                    t.AccountID,
		"account_number":             t.Account.AccountNumber,
		"transaction_amount":         t.Amount,
		"post_transaction_amount":    t.PostTransactionAmount,
		"transaction_details":        t.Details,
		"transaction_type":           t.Type,
		"transaction_type_display":   ledger.TransactionTypeName(t.Type),
		"transaction_method":         t.Method,
		"transaction_method_display": ledger.MethodName(t.Method),
		"transaction_timestamp":      t.Timestamp,
		"created_at":                 t.CreatedAt,
	}
}

func listTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var accountID uint
	if v := c.Query("account_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
			return
		}
		accountID = uint(parsed)
	}
	items, err := ledgerSvc.ListTransactions(c.Request.Context(), user.ID, accountID)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, transactionJSON(&items[i]))
	}
	c.JSON(http.StatusOK, out)
}

func createTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Account   uint            `json:"account" binding:"required"`
		Type      string          `json:"transaction_type" binding:"required"`
		Amount    decimal.Decimal `json:"transaction_amount"`
		Details   string          `json:"transaction_details"`
		Method    string          `json:"transaction_method"`
		Timestamp string          `json:"transaction_timestamp"` // optional RFC3339
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := ledger.RecordTransactionInput{
		AccountID: req.Account,
		Type:      req.Type,
		Amount:    req.Amount,
		Details:   req.Details,
		Method:    req.Method,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_timestamp", "field": "transaction_timestamp"})
			return
		}
		in.Timestamp = ts
	}
	rec, err := ledgerSvc.RecordTransaction(c.Request.Context(), user.ID, in)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionJSON(rec))
}

func getTransactionHandler(c *gin.Context) {
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
	rec, err := ledgerSvc.GetTransaction(c.Request.Context(), user.ID, id)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionJSON(rec))
}

func updateTransactionHandler(c *gin.Context) {
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
		Details   *string          `json:"transaction_details"`
		Method    *string          `json:"transaction_method"`
		Timestamp *string          `json:"transaction_timestamp"`
		Amount    *decimal.Decimal `json:"transaction_amount"`
		Type      *string          `json:"transaction_type"`
		Snapshot  *decimal.Decimal `json:"post_transaction_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// amount, type and snapshot are committed ledger facts
	if req.Amount != nil || req.Type != nil || req.Snapshot != nil {
		writeLedgerError(c, ledger.ErrImmutableTransaction)
		return
	}
	in := ledger.UpdateTransactionInput{
		Details: req.Details,
		Method:  req.Method,
	}
	if req.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_timestamp", "field": "transaction_timestamp"})
			return
		}
		in.Timestamp = &ts
	}
	rec, err := ledgerSvc.UpdateTransaction(c.Request.Context(), user.ID, id, in)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionJSON(rec))
}

func deleteTransactionHandler(c *gin.Context) {
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
	if err := ledgerSvc.DeleteTransaction(c.Request.Context(), user.ID, id); err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction deleted"})
}

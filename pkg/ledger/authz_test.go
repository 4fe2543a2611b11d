package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bankbook/models"
)

func TestAuthorizeWriteAccount(t *testing.T) {
	acct := models.Account{UserID: 7}
	assert.NoError(t, AuthorizeWrite(7, acct))
	assert.ErrorIs(t, AuthorizeWrite(8, acct), ErrForbidden)
}

func TestAuthorizeWriteTransactionViaParent(t *testing.T) {
	// a transaction resolves its owner through the parent account
	tx := models.Transaction{AccountID: 3, Account: models.Account{ID: 3, UserID: 7}}
	assert.NoError(t, AuthorizeWrite(7, tx))
	assert.ErrorIs(t, AuthorizeWrite(8, tx), ErrForbidden)
}

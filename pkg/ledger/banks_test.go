package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidBankCode(t *testing.T) {
	assert.True(t, ValidBankCode("088"))
	assert.True(t, ValidBankCode("090"))
	assert.True(t, ValidBankCode("000"))
	assert.False(t, ValidBankCode("999"))
	assert.False(t, ValidBankCode(""))
	assert.False(t, ValidBankCode("88")) // codes are zero-padded to 3 digits
}

func TestBankName(t *testing.T) {
	assert.Equal(t, "신한은행", BankName("088"))
	assert.Equal(t, "카카오뱅크", BankName("090"))
	assert.Equal(t, "", BankName("999"))
}

func TestEnumDisplayNames(t *testing.T) {
	assert.Equal(t, "입금", TransactionTypeName(TypeDeposit))
	assert.Equal(t, "출금", TransactionTypeName(TypeWithdraw))
	assert.Equal(t, "입출금", AccountTypeName(AccountTypeChecking))
	assert.Equal(t, "ATM 거래", MethodName(MethodATM))
	assert.Equal(t, "", MethodName("CASH"))
}

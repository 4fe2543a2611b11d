package ledger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bankbook/models"
)

// Integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
func newTestService(t *testing.T) (*Service, uint) {
	t.Helper()
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	dsn := os.Getenv("DB_DSN")
	require.NotEmpty(t, dsn, "DB_DSN must be set")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Account{}, &models.Transaction{}))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_active_number
		ON accounts(account_number) WHERE is_deleted = false`).Error)

	user := models.User{
		Email:          fmt.Sprintf("%s@test.local", uuid.NewString()[:8]),
		Nickname:       uuid.NewString()[:12],
		HashedPassword: []byte("x"),
		IsActive:       true,
	}
	require.NoError(t, db.Create(&user).Error)
	return NewService(db), user.ID
}

func testAccountNumber() string {
	return uuid.NewString()[:18]
}

func mustCreateAccount(t *testing.T, s *Service, owner uint, opening string) *models.Account {
	t.Helper()
	acct, err := s.CreateAccount(context.Background(), owner, CreateAccountInput{
		AccountNumber:  testAccountNumber(),
		BankCode:       "088",
		AccountType:    AccountTypeChecking,
		OpeningBalance: dec(opening),
	})
	require.NoError(t, err)
	return acct
}

func TestRecordTransactionScenario(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "100000")

	depositRec, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeDeposit, Amount: dec("5000"), Method: MethodTransfer,
	})
	require.NoError(t, err)
	assert.True(t, depositRec.PostTransactionAmount.Equal(dec("105000")))

	withdrawRec, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeWithdraw, Amount: dec("3000"), Method: MethodATM,
	})
	require.NoError(t, err)
	assert.True(t, withdrawRec.PostTransactionAmount.Equal(dec("102000")))

	_, err = s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeWithdraw, Amount: dec("200000"), Method: MethodATM,
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("102000")), "failed withdrawal must not move the balance, got %s", got.Balance)
}

// N concurrent deposits of A on balance B must end at B + N*A with an intact
// snapshot chain: the FOR UPDATE lock serializes the read-modify-write.
func TestConcurrentDepositsNoLostUpdate(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "10")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.RecordTransaction(ctx, owner, RecordTransactionInput{
				AccountID: acct.ID, Type: TypeDeposit, Amount: dec("5"), Method: MethodTransfer,
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "deposit %d", i)
	}

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("110")), "got %s", got.Balance)

	// snapshot chain in commit order
	var history []models.Transaction
	require.NoError(t, s.db.Where("account_id = ?", acct.ID).Order("id asc").Find(&history).Error)
	require.Len(t, history, n)
	running := dec("10")
	for _, tx := range history {
		running = running.Add(signedAmount(tx))
		assert.True(t, tx.PostTransactionAmount.Equal(running),
			"tx %d snapshot %s != running %s", tx.ID, tx.PostTransactionAmount, running)
	}
}

// Two withdrawals that would individually succeed but jointly overdraw:
// exactly one commits, the other re-evaluates against the committed balance.
func TestConcurrentWithdrawalsJointOverdraw(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "100")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.RecordTransaction(ctx, owner, RecordTransactionInput{
				AccountID: acct.ID, Type: TypeWithdraw, Amount: dec("80"), Method: MethodATM,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded)

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("20")), "got %s", got.Balance)
}

func TestDuplicateAccountNumber(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	number := testAccountNumber()

	_, err := s.CreateAccount(ctx, owner, CreateAccountInput{
		AccountNumber: number, BankCode: "004", AccountType: AccountTypeChecking,
	})
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, owner, CreateAccountInput{
		AccountNumber: number, BankCode: "004", AccountType: AccountTypeSaving,
	})
	assert.ErrorIs(t, err, ErrDuplicateAccountNumber)
}

func TestAccountNumberReusableAfterSoftDelete(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	number := testAccountNumber()

	first, err := s.CreateAccount(ctx, owner, CreateAccountInput{
		AccountNumber: number, BankCode: "090", AccountType: AccountTypeChecking,
	})
	require.NoError(t, err)
	require.NoError(t, s.SoftDeleteAccount(ctx, owner, first.ID))

	second, err := s.CreateAccount(ctx, owner, CreateAccountInput{
		AccountNumber: number, BankCode: "090", AccountType: AccountTypeChecking,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSoftDeleteIsolation(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "500")

	rec, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeWithdraw, Amount: dec("100"), Method: MethodCard,
	})
	require.NoError(t, err)

	require.NoError(t, s.SoftDeleteAccount(ctx, owner, acct.ID))

	// gone from listings and from mutation
	accts, err := s.ListAccounts(ctx, owner)
	require.NoError(t, err)
	for _, a := range accts {
		assert.NotEqual(t, acct.ID, a.ID)
	}
	_, err = s.GetAccount(ctx, owner, acct.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeDeposit, Amount: dec("1"), Method: MethodTransfer,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.SoftDeleteAccount(ctx, owner, acct.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// history stays retrievable for audit
	got, err := s.GetTransaction(ctx, owner, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.PostTransactionAmount.Equal(dec("400")))
}

// Ownership and existence are indistinguishable to the caller.
func TestForeignAccountLooksAbsent(t *testing.T) {
	s, owner := newTestService(t)
	_, stranger := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "100")

	_, err := s.GetAccount(ctx, stranger, acct.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.RecordTransaction(ctx, stranger, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeDeposit, Amount: dec("1"), Method: MethodTransfer,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	err = s.SoftDeleteAccount(ctx, stranger, acct.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransactionKeepsLedgerFieldsImmutable(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "100")

	rec, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeDeposit, Amount: dec("25"), Method: MethodTransfer, Details: "salary",
	})
	require.NoError(t, err)

	details := "march salary"
	method := MethodAutomaticTransfer
	updated, err := s.UpdateTransaction(ctx, owner, rec.ID, UpdateTransactionInput{
		Details: &details, Method: &method,
	})
	require.NoError(t, err)
	assert.Equal(t, "march salary", updated.Details)
	assert.Equal(t, MethodAutomaticTransfer, updated.Method)
	assert.True(t, updated.Amount.Equal(rec.Amount))
	assert.True(t, updated.PostTransactionAmount.Equal(rec.PostTransactionAmount))
	assert.Equal(t, rec.Type, updated.Type)
}

func TestDeleteTransactionRecomputesHistory(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "100")

	deposit, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeDeposit, Amount: dec("50"), Method: MethodTransfer,
	})
	require.NoError(t, err)
	withdraw, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeWithdraw, Amount: dec("30"), Method: MethodATM,
	})
	require.NoError(t, err)
	assert.True(t, withdraw.PostTransactionAmount.Equal(dec("120")))

	require.NoError(t, s.DeleteTransaction(ctx, owner, deposit.ID))

	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("70")), "got %s", got.Balance)

	replayed, err := s.GetTransaction(ctx, owner, withdraw.ID)
	require.NoError(t, err)
	assert.True(t, replayed.PostTransactionAmount.Equal(dec("70")),
		"later snapshot must be rewritten in the same unit, got %s", replayed.PostTransactionAmount)

	_, err = s.GetTransaction(ctx, owner, deposit.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransactionRejectedWhenHistoryWouldOverdraw(t *testing.T) {
	s, owner := newTestService(t)
	ctx := context.Background()
	acct := mustCreateAccount(t, s, owner, "0")

	deposit, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeDeposit, Amount: dec("50"), Method: MethodTransfer,
	})
	require.NoError(t, err)
	withdraw, err := s.RecordTransaction(ctx, owner, RecordTransactionInput{
		AccountID: acct.ID, Type: TypeWithdraw, Amount: dec("30"), Method: MethodATM,
	})
	require.NoError(t, err)

	err = s.DeleteTransaction(ctx, owner, deposit.ID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// nothing changed
	got, err := s.GetAccount(ctx, owner, acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("20")))
	kept, err := s.GetTransaction(ctx, owner, withdraw.ID)
	require.NoError(t, err)
	assert.True(t, kept.PostTransactionAmount.Equal(dec("20")))
}

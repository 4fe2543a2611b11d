package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bankbook/models"
)

// listLimit bounds transaction listings.
const listLimit = 200

// RecordTransactionInput describes one deposit or withdrawal request.
// Timestamp is the business-event time; zero means now.
type RecordTransactionInput struct {
	AccountID uint
	Type      string
	Amount    decimal.Decimal
	Details   string
	Method    string
	Timestamp time.Time
}

func (in RecordTransactionInput) validate() error {
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !ValidTransactionType(in.Type) {
		return ErrInvalidTransactionType
	}
	if !ValidMethod(in.Method) {
		return ErrInvalidMethod
	}
	return nil
}

// nextBalance computes the candidate balance for applying a transaction of
// the given type and amount on top of balance. Withdrawals never overdraw;
// withdrawing the exact balance is legal and leaves zero.
func nextBalance(balance decimal.Decimal, txType string, amount decimal.Decimal) (decimal.Decimal, error) {
	switch txType {
	case TypeDeposit:
		return balance.Add(amount), nil
	case TypeWithdraw:
		if balance.LessThan(amount) {
			return decimal.Decimal{}, ErrInsufficientFunds
		}
		return balance.Sub(amount), nil
	default:
		return decimal.Decimal{}, ErrInvalidTransactionType
	}
}

// signedAmount is +amount for deposits and -amount for withdrawals.
func signedAmount(t models.Transaction) decimal.Decimal {
	if t.Type == TypeWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

// RecordTransaction commits one transaction and the resulting balance as a
// single all-or-nothing unit. The account row is locked FOR UPDATE for the
// whole read-modify-write, so concurrent calls against the same account
// serialize on the store and the second always computes from the first's
// committed balance. Unrelated accounts are never blocked.
func (s *Service) RecordTransaction(ctx context.Context, actorID uint, in RecordTransactionInput) (*models.Transaction, error) {
	if in.Method == "" {
		in.Method = MethodTransfer
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var rec models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ? AND is_deleted = ?", in.AccountID, actorID, false).
			First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		candidate, err := nextBalance(acct.Balance, in.Type, in.Amount)
		if err != nil {
			return err
		}
		rec = models.Transaction{
			AccountID:             acct.ID,
			Type:                  in.Type,
			Amount:                in.Amount,
			PostTransactionAmount: candidate,
			Details:               in.Details,
			Method:                in.Method,
			Timestamp:             ts,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", acct.ID).
			Update("balance", candidate).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		acct.Balance = candidate
		rec.Account = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListTransactions returns the owner's transactions newest business-timestamp
// first, optionally narrowed to one account. History of soft-deleted accounts
// stays listable for audit.
func (s *Service) ListTransactions(ctx context.Context, ownerID uint, accountID uint) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transaction_history.account_id").
		Where("accounts.user_id = ?", ownerID)
	if accountID != 0 {
		q = q.Where("transaction_history.account_id = ?", accountID)
	}
	var items []models.Transaction
	if err := q.Preload("Account").
		Order("transaction_timestamp desc").
		Limit(listLimit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return items, nil
}

// GetTransaction fetches one transaction of the owner, including from
// soft-deleted accounts.
func (s *Service) GetTransaction(ctx context.Context, actorID, id uint) (*models.Transaction, error) {
	var rec models.Transaction
	if err := s.db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = transaction_history.account_id").
		Where("transaction_history.id = ? AND accounts.user_id = ?", id, actorID).
		Preload("Account").
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return &rec, nil
}

// UpdateTransactionInput holds the amendable presentation fields; nil means
// keep. Amount, type and snapshot are immutable once committed.
type UpdateTransactionInput struct {
	Details   *string
	Method    *string
	Timestamp *time.Time
}

// UpdateTransaction amends free-text details, method or business timestamp.
// The balance snapshot is untouched: a backdated timestamp reorders the
// listing but never rewrites commit-order snapshots.
func (s *Service) UpdateTransaction(ctx context.Context, actorID, id uint, in UpdateTransactionInput) (*models.Transaction, error) {
	if in.Method != nil && !ValidMethod(*in.Method) {
		return nil, ErrInvalidMethod
	}
	var rec models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Joins("JOIN accounts ON accounts.id = transaction_history.account_id").
			Where("transaction_history.id = ? AND accounts.user_id = ?", id, actorID).
			Preload("Account").
			First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := AuthorizeWrite(actorID, rec); err != nil {
			return err
		}
		updates := map[string]any{}
		if in.Details != nil {
			updates["transaction_details"] = *in.Details
		}
		if in.Method != nil {
			updates["transaction_method"] = *in.Method
		}
		if in.Timestamp != nil {
			updates["transaction_timestamp"] = *in.Timestamp
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", rec.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return tx.Preload("Account").First(&rec, rec.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteTransaction removes a transaction, but never silently: inside one DB
// transaction with the account locked it re-derives the balance from the
// opening baseline and rewrites every later snapshot in commit order. A
// removal that would have driven any intermediate balance negative is
// rejected with ErrInsufficientFunds and nothing changes.
func (s *Service) DeleteTransaction(ctx context.Context, actorID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Transaction
		if err := tx.
			Joins("JOIN accounts ON accounts.id = transaction_history.account_id").
			Where("transaction_history.id = ? AND accounts.user_id = ?", id, actorID).
			Preload("Account").
			First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := AuthorizeWrite(actorID, rec); err != nil {
			return err
		}
		var acct models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&acct, rec.AccountID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		var history []models.Transaction
		if err := tx.Where("account_id = ?", acct.ID).
			Order("id asc").
			Find(&history).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		// The opening balance is not a ledger event, so recover the baseline
		// by subtracting the full signed history from the current balance.
		baseline := acct.Balance
		for _, t := range history {
			baseline = baseline.Sub(signedAmount(t))
		}
		running := baseline
		for _, t := range history {
			if t.ID == rec.ID {
				continue
			}
			running = running.Add(signedAmount(t))
			if running.IsNegative() {
				return ErrInsufficientFunds
			}
			if !running.Equal(t.PostTransactionAmount) {
				if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).
					Update("post_transaction_amount", running).Error; err != nil {
					return fmt.Errorf("%w: %v", ErrTransient, err)
				}
			}
		}
		if err := tx.Delete(&models.Transaction{}, rec.ID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", acct.ID).
			Update("balance", running).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil
	})
}

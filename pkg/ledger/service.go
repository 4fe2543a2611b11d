// Package ledger is the balance-consistency core: account lifecycle,
// transaction recording and the ownership gate. Every balance mutation runs
// inside one DB transaction with the account row locked, so the stored
// balance always equals the opening balance plus the signed sum of the
// committed history.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bankbook/models"
)

// Service executes ledger operations against a gorm-backed Postgres store.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateAccountInput carries the caller-settable account fields. Balance is
// initialized from OpeningBalance and afterwards only ever changes through
// committed transactions.
type CreateAccountInput struct {
	AccountNumber  string
	BankCode       string
	AccountType    string
	OpeningBalance decimal.Decimal
}

func (in CreateAccountInput) validate() error {
	if !ValidBankCode(in.BankCode) {
		return ErrInvalidBankCode
	}
	if !ValidAccountType(in.AccountType) {
		return ErrInvalidAccountType
	}
	if in.OpeningBalance.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// CreateAccount opens an account for actorID. The account number must not be
// held by another active account; a soft-deleted account's number is free for
// reuse. The opening balance is a baseline, not a ledger event, so no
// synthetic opening transaction is written.
func (s *Service) CreateAccount(ctx context.Context, actorID uint, in CreateAccountInput) (*models.Account, error) {
	if in.AccountType == "" {
		in.AccountType = AccountTypeChecking
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	acct := models.Account{
		UserID:        actorID,
		AccountNumber: in.AccountNumber,
		BankCode:      in.BankCode,
		AccountType:   in.AccountType,
		Balance:       in.OpeningBalance,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Account{}).
			Where("account_number = ? AND is_deleted = ?", in.AccountNumber, false).
			Count(&n).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if n > 0 {
			return ErrDuplicateAccountNumber
		}
		if err := tx.Create(&acct).Error; err != nil {
			// lost the race against a concurrent create; the partial unique
			// index is the authoritative check
			if isUniqueViolation(err) {
				return ErrDuplicateAccountNumber
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// ListAccounts returns the owner's active accounts, newest first.
func (s *Service) ListAccounts(ctx context.Context, ownerID uint) ([]models.Account, error) {
	var accts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", ownerID, false).
		Order("created_at desc").
		Find(&accts).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return accts, nil
}

// GetAccount fetches one active account. Missing, deleted and foreign-owned
// accounts are indistinguishable: all ErrNotFound.
func (s *Service) GetAccount(ctx context.Context, actorID, id uint) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, actorID, false).
		First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return &acct, nil
}

// UpdateAccountInput holds the mutable account fields; nil means keep.
// Balance is deliberately absent.
type UpdateAccountInput struct {
	AccountNumber *string
	BankCode      *string
	AccountType   *string
}

// UpdateAccount amends account metadata. The duplicate check excludes the
// account itself so re-submitting the current number is a no-op.
func (s *Service) UpdateAccount(ctx context.Context, actorID, id uint, in UpdateAccountInput) (*models.Account, error) {
	if in.BankCode != nil && !ValidBankCode(*in.BankCode) {
		return nil, ErrInvalidBankCode
	}
	if in.AccountType != nil && !ValidAccountType(*in.AccountType) {
		return nil, ErrInvalidAccountType
	}
	var acct models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ? AND is_deleted = ?", id, actorID, false).
			First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := AuthorizeWrite(actorID, acct); err != nil {
			return err
		}
		if in.AccountNumber != nil && *in.AccountNumber != acct.AccountNumber {
			var n int64
			if err := tx.Model(&models.Account{}).
				Where("account_number = ? AND is_deleted = ? AND id <> ?", *in.AccountNumber, false, acct.ID).
				Count(&n).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrTransient, err)
			}
			if n > 0 {
				return ErrDuplicateAccountNumber
			}
			acct.AccountNumber = *in.AccountNumber
		}
		if in.BankCode != nil {
			acct.BankCode = *in.BankCode
		}
		if in.AccountType != nil {
			acct.AccountType = *in.AccountType
		}
		if err := tx.Model(&acct).
			Select("account_number", "bank_code", "account_type").
			Updates(map[string]any{
				"account_number": acct.AccountNumber,
				"bank_code":      acct.BankCode,
				"account_type":   acct.AccountType,
			}).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateAccountNumber
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// SoftDeleteAccount flips is_deleted for the owner's account. Balance and
// history stay untouched and the account number becomes reusable. One-way:
// there is no resurrection.
func (s *Service) SoftDeleteAccount(ctx context.Context, actorID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ? AND is_deleted = ?", id, actorID, false).
			First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := AuthorizeWrite(actorID, acct); err != nil {
			return err
		}
		if err := tx.Model(&acct).Update("is_deleted", true).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil
	})
}

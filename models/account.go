package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a bank account belonging to a user.
//
// Balance is a fixed-point NUMERIC(18,2); it is only ever rewritten together
// with a transaction_history row inside one DB transaction, so for every
// non-deleted account it equals the last transaction's post_transaction_amount
// (or the opening balance when the history is empty).
//
// Soft delete is an explicit flag rather than gorm.DeletedAt: a deleted
// account must stay visible to transaction-history queries and its number
// becomes reusable, which is enforced by a partial unique index on
// (account_number) WHERE is_deleted = false.
type Account struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"-"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	User          User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AccountNumber string          `gorm:"size:20;not null;index" json:"account_number"`
	BankCode      string          `gorm:"size:3;not null" json:"bank_code"`
	AccountType   string          `gorm:"size:20;not null;default:CHECKING" json:"account_type"`
	Balance       decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
	IsDeleted     bool            `gorm:"default:false;not null;index" json:"is_deleted"`
	Transactions  []Transaction   `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Account) TableName() string { return "accounts" }

// OwnerID reports the user the account belongs to.
func (a Account) OwnerID() uint { return a.UserID }

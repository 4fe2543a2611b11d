package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one deposit or withdrawal against an account.
//
// Rows are created exactly once, atomically with the account balance update.
// Amount is strictly positive; Type alone encodes the sign.
// PostTransactionAmount is the server-computed balance snapshot in commit
// order (row id order), never client-supplied. Timestamp is the
// business-event time and may lag or lead commit order; it drives
// presentation ordering only.
type Transaction struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	CreatedAt             time.Time       `json:"created_at"`
	AccountID             uint            `gorm:"index;not null" json:"account_id"`
	Account               Account         `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type                  string          `gorm:"column:transaction_type;size:10;not null" json:"transaction_type"`
	Amount                decimal.Decimal `gorm:"column:transaction_amount;type:numeric(18,2);not null" json:"transaction_amount"`
	PostTransactionAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"post_transaction_amount"`
	Details               string          `gorm:"column:transaction_details;size:255" json:"transaction_details"`
	Method                string          `gorm:"column:transaction_method;size:20;not null;default:TRANSFER" json:"transaction_method"`
	Timestamp             time.Time       `gorm:"column:transaction_timestamp;not null;index" json:"transaction_timestamp"`
}

func (Transaction) TableName() string { return "transaction_history" }

// OwnerID reports the owning user via the parent account. The Account
// association must be loaded; queries in pkg/ledger always preload it.
func (t Transaction) OwnerID() uint { return t.Account.UserID }

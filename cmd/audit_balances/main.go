// audit_balances recomputes every account's balance from its transaction
// history and reports drift. The snapshot chain is verified in commit order
// (row id order): each post_transaction_amount must equal the previous one
// plus the signed amount, no snapshot may be negative, and the account
// balance must equal the last snapshot. Exit status 1 when any account fails.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bankbook/models"
	"bankbook/pkg/ledger"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

func main() {
	includeDeleted := flag.Bool("include-deleted", false, "also audit soft-deleted accounts")
	flag.Parse()

	db := mustDBFromEnv()

	q := db.Model(&models.Account{})
	if !*includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	var accounts []models.Account
	if err := q.Order("id").Find(&accounts).Error; err != nil {
		log.Fatalf("fetch accounts: %v", err)
	}

	bad := 0
	for _, acct := range accounts {
		var history []models.Transaction
		if err := db.Where("account_id = ?", acct.ID).Order("id asc").Find(&history).Error; err != nil {
			log.Fatalf("fetch history for account %d: %v", acct.ID, err)
		}
		if len(history) == 0 {
			continue // balance is the opening baseline, nothing to check
		}
		ok := true
		prev := history[0].PostTransactionAmount
		for i, t := range history {
			if t.PostTransactionAmount.IsNegative() {
				fmt.Printf("account %d (%s): negative snapshot at tx %d\n", acct.ID, acct.AccountNumber, t.ID)
				ok = false
			}
			if i == 0 {
				continue
			}
			want := prev.Add(signed(t))
			if !t.PostTransactionAmount.Equal(want) {
				fmt.Printf("account %d (%s): snapshot chain broken at tx %d: have %s want %s\n",
					acct.ID, acct.AccountNumber, t.ID, t.PostTransactionAmount, want)
				ok = false
			}
			prev = t.PostTransactionAmount
		}
		last := history[len(history)-1].PostTransactionAmount
		if !acct.Balance.Equal(last) {
			fmt.Printf("account %d (%s): balance %s != last snapshot %s\n",
				acct.ID, acct.AccountNumber, acct.Balance, last)
			ok = false
		}
		if !ok {
			bad++
		}
	}

	fmt.Printf("audited %d accounts, %d with drift\n", len(accounts), bad)
	if bad > 0 {
		os.Exit(1)
	}
}

func signed(t models.Transaction) decimal.Decimal {
	if t.Type == ledger.TypeWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

package ledger

// Account types.
const (
	AccountTypeChecking        = "CHECKING"
	AccountTypeSaving          = "SAVING"
	AccountTypeLoan            = "LOAN"
	AccountTypePension         = "PENSION"
	AccountTypeTrust           = "TRUST"
	AccountTypeForeignCurrency = "FOREIGN_CURRENCY"
	AccountTypeIRP             = "IRP"
	AccountTypeStock           = "STOCK"
)

// Transaction direction. Amounts are always positive; the type alone decides
// whether a transaction adds to or subtracts from the balance.
const (
	TypeDeposit  = "DEPOSIT"
	TypeWithdraw = "WITHDRAW"
)

// Transaction methods.
const (
	MethodATM               = "ATM"
	MethodTransfer          = "TRANSFER"
	MethodAutomaticTransfer = "AUTOMATIC_TRANSFER"
	MethodCard              = "CARD"
	MethodInterest          = "INTEREST"
)

var accountTypeNames = map[string]string{
	AccountTypeChecking:        "입출금",
	AccountTypeSaving:          "적금",
	AccountTypeLoan:            "대출",
	AccountTypePension:         "연금",
	AccountTypeTrust:           "신탁",
	AccountTypeForeignCurrency: "외화",
	AccountTypeIRP:             "퇴직연금",
	AccountTypeStock:           "주식",
}

var transactionTypeNames = map[string]string{
	TypeDeposit:  "입금",
	TypeWithdraw: "출금",
}

var methodNames = map[string]string{
	MethodATM:               "ATM 거래",
	MethodTransfer:          "계좌이체",
	MethodAutomaticTransfer: "자동이체",
	MethodCard:              "카드결제",
	MethodInterest:          "이자",
}

func ValidAccountType(t string) bool {
	_, ok := accountTypeNames[t]
	return ok
}

func ValidTransactionType(t string) bool {
	_, ok := transactionTypeNames[t]
	return ok
}

func ValidMethod(m string) bool {
	_, ok := methodNames[m]
	return ok
}

// Display-name lookups for API responses; "" for unknown values.
func AccountTypeName(t string) string     { return accountTypeNames[t] }
func TransactionTypeName(t string) string { return transactionTypeNames[t] }
func MethodName(m string) string          { return methodNames[m] }

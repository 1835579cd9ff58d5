package repoargs

import (
	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/shopspring/decimal"
)

type WalletTransactionCreate struct {
	WalletID     int64
	Type         domain.TransactionType
	Amount       decimal.Decimal
	Description  string
	BalanceAfter decimal.Decimal
	ReferenceID  string
	Metadata     map[string]string
}

type WithdrawalCreate struct {
	UserID      int64
	Amount      decimal.Decimal
	BankAccount string
	BankName    string
	Notes       string
}

package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	// KindPayout is a transaction created when a remittance is paid out.
	KindPayout Kind = "PAYOUT"
	// KindAllocation is a transaction created when a budget is approved.
	KindAllocation Kind = "ALLOCATION"
)

// UserRef is the safe projection of the owning user.
type UserRef struct {
	Id    int
	Name  string
	Email string
}

// BudgetRef is the safe projection of the related budget.
type BudgetRef struct {
	Id     int
	Name   string
	Amount decimal.Decimal
	Status string
}

type Transaction struct {
	Id          int
	Uid         string
	UserId      int
	BudgetId    *int
	Amount      decimal.Decimal
	Kind        Kind
	Description string
	CreatedAt   time.Time

	User   *UserRef
	Budget *BudgetRef
}

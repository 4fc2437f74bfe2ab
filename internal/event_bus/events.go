package event_bus

import "github.com/shopspring/decimal"

const (
	FundPoolChangedEvent   EventType = "fund_pool.changed"
	BudgetDecidedEvent     EventType = "budget.decided"
	RemittanceDecidedEvent EventType = "remittance.decided"
)

// FundPoolChanged is published after every successful fund pool mutation.
type FundPoolChanged struct {
	From      int64
	Delta     int64
	To        int64
	UpdatedBy int
}

// BudgetDecided is published when an administrator approves or rejects
// a budget. Status carries the resulting budget status.
type BudgetDecided struct {
	BudgetId  int
	Name      string
	CreatedBy int
	Amount    decimal.Decimal
	Status    string
	Note      string
}

// RemittanceDecided is published when an administrator approves or rejects
// a remittance. Status carries the resulting remittance status.
type RemittanceDecided struct {
	RemittanceId int
	Uid          string
	UserId       int
	Amount       decimal.Decimal
	Status       string
	Note         string
}

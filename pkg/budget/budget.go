package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Budget is a user-created spending request with a lifecycle status.
// AllocatedAmount is set when an administrator approves the budget and funds
// are drawn from the pool.
type Budget struct {
	Id              int
	Name            string
	Description     string
	Amount          decimal.Decimal
	AllocatedAmount decimal.Decimal
	Status          Status
	CreatedBy       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EditableBy reports whether the given user may edit this budget: only the
// creator, and only while the budget is still DRAFT or PENDING.
func (b Budget) EditableBy(userId int) bool {
	if b.CreatedBy != userId {
		return false
	}
	return b.Status == StatusDraft || b.Status == StatusPending
}

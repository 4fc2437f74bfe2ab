package audit

import "time"

// Entry is a single append-only audit record of a mutating action.
// Entries are never updated or deleted.
type Entry struct {
	Id        int
	UserId    int
	Action    string
	Entity    string
	EntityId  int
	Changes   map[string]any
	CreatedAt time.Time
}

// Actions recorded by the service.
const (
	ActionFundPoolAdjusted   = "fund_pool.adjusted"
	ActionBudgetCreated      = "budget.created"
	ActionBudgetUpdated      = "budget.updated"
	ActionBudgetSubmitted    = "budget.submitted"
	ActionBudgetApproved     = "budget.approved"
	ActionBudgetRejected     = "budget.rejected"
	ActionRemittanceCreated  = "remittance.created"
	ActionRemittanceApproved = "remittance.approved"
	ActionRemittanceRejected = "remittance.rejected"
)

// Entities referenced by audit entries.
const (
	EntityFundPool   = "fund_pool"
	EntityBudget     = "budget"
	EntityRemittance = "remittance"
)

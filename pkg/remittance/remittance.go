package remittance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Remittance is a user-submitted request to send funds, paid out of the fund
// pool when an administrator approves it.
type Remittance struct {
	Id        int
	Uid       string
	UserId    int
	Amount    decimal.Decimal
	Status    Status
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

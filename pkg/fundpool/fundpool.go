package fundpool

import "time"

// Updater is the safe projection of the user who last changed the pool.
type Updater struct {
	Id    int
	Name  string
	Email string
}

// FundPool is the single shared balance administrators top up or draw down.
// Balance is a whole number of currency units and never goes negative.
type FundPool struct {
	Balance   int64
	UpdatedAt *time.Time
	UpdatedBy *Updater
}

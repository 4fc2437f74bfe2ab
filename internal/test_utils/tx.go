package test_utils

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// StubTxRunner runs the function directly without a transaction, for tests
// that work against in-memory repositories.
type StubTxRunner struct{}

func (StubTxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

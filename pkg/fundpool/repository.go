package fundpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta/internal/database"
	log "github.com/sirupsen/logrus"
)

// ErrInsufficientFunds is returned when a delta would drive the pool balance
// below zero. The balance is left unchanged.
var ErrInsufficientFunds = errors.New("insufficient funds in pool")

const poolKey = "fund_pool"

type Repository interface {
	Get(ctx context.Context) (FundPool, error)
	// ApplyDelta atomically adds delta to the balance, rejecting the change
	// when the result would be negative. Returns the balances before and
	// after the change.
	ApplyDelta(ctx context.Context, actorId int, delta int64, updatedAt time.Time) (from int64, to int64, err error)
	// WithTx returns a Repository that runs its queries inside tx.
	WithTx(tx pgx.Tx) Repository
}

type RepositoryImpl struct {
	db database.Querier
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) WithTx(tx pgx.Tx) Repository {
	return &RepositoryImpl{db: tx}
}

func (r *RepositoryImpl) Get(ctx context.Context) (FundPool, error) {
	query := `SELECT fp.value, fp.updated_at, u.id, u.name, u.email
				FROM fund_pool fp
				LEFT JOIN users u ON u.id = fp.updated_by
				WHERE fp.name = $1`

	var pool FundPool
	var updatedAt *time.Time
	var updaterId *int
	var updaterName, updaterEmail *string
	err := r.db.QueryRow(ctx, query, poolKey).
		Scan(&pool.Balance, &updatedAt, &updaterId, &updaterName, &updaterEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		// Pool not initialized yet: balance is 0 with no updater.
		return FundPool{}, nil
	} else if err != nil {
		err := fmt.Errorf("could not query fund pool: %w", err)
		log.Error(err)
		return FundPool{}, err
	}

	pool.UpdatedAt = updatedAt
	if updaterId != nil {
		pool.UpdatedBy = &Updater{Id: *updaterId, Name: *updaterName, Email: *updaterEmail}
	}
	return pool, nil
}

// ApplyDelta relies on a single conditional UPDATE so that two concurrent
// calls can never both read the same prior value and overwrite each other.
func (r *RepositoryImpl) ApplyDelta(ctx context.Context, actorId int, delta int64, updatedAt time.Time) (int64, int64, error) {
	ensure := `INSERT INTO fund_pool (name, value) VALUES ($1, 0) ON CONFLICT (name) DO NOTHING`
	if _, err := r.db.Exec(ctx, ensure, poolKey); err != nil {
		err := fmt.Errorf("could not initialize fund pool: %w", err)
		log.Error(err)
		return 0, 0, err
	}

	update := `UPDATE fund_pool
				SET value = value + $2, updated_at = $3, updated_by = $4
				WHERE name = $1 AND value + $2 >= 0
				RETURNING value`
	var to int64
	err := r.db.QueryRow(ctx, update, poolKey, delta, updatedAt, actorId).Scan(&to)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrInsufficientFunds
	} else if err != nil {
		err := fmt.Errorf("could not apply fund pool delta: %w", err)
		log.Error(err)
		return 0, 0, err
	}
	return to - delta, to, nil
}

package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type Repository interface {
	Store(ctx context.Context, budget Budget) (Budget, error)
	GetById(ctx context.Context, id int) (Budget, error)
	ListForUser(ctx context.Context, userId int) ([]Budget, error)
	ListAll(ctx context.Context) ([]Budget, error)
	// Update persists name, description, and amount, but only while the
	// budget still belongs to editorId and is in an editable status. Returns
	// false when no such row matched, so an edit racing a decision loses.
	Update(ctx context.Context, budget Budget, editorId int) (bool, error)
	// UpdateStatus moves the budget from one status to another, failing when
	// the budget is no longer in the expected status. On success the budget
	// is returned as of the same statement, so callers act on the amount
	// that was current when the status changed.
	UpdateStatus(ctx context.Context, id int, from Status, to Status, updatedAt time.Time) (Budget, bool, error)
	SetAllocated(ctx context.Context, id int, amount decimal.Decimal, updatedAt time.Time) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const budgetColumns = `id, name, description, amount, allocated_amount, status, created_by, created_at, updated_at`

func (r *RepositoryImpl) Store(ctx context.Context, budget Budget) (Budget, error) {
	query := `INSERT INTO budgets (name, description, amount, status, created_by)
				VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		budget.Name,
		budget.Description,
		budget.Amount,
		budget.Status,
		budget.CreatedBy,
	).Scan(&budget.Id, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("could not store budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *RepositoryImpl) GetById(ctx context.Context, id int) (Budget, error) {
	query := fmt.Sprintf(`SELECT %s FROM budgets WHERE id = $1`, budgetColumns)
	budget, err := scanBudget(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userId int) ([]Budget, error) {
	query := fmt.Sprintf(`SELECT %s FROM budgets WHERE created_by = $1 ORDER BY created_at DESC, id DESC`, budgetColumns)
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

func (r *RepositoryImpl) ListAll(ctx context.Context) ([]Budget, error) {
	query := fmt.Sprintf(`SELECT %s FROM budgets ORDER BY created_at DESC, id DESC`, budgetColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// Update conditions the row on creator and status, mirroring
// Budget.EditableBy, so the check and the write happen in one statement.
func (r *RepositoryImpl) Update(ctx context.Context, budget Budget, editorId int) (bool, error) {
	query := `UPDATE budgets SET name = $1, description = $2, amount = $3, updated_at = now()
				WHERE id = $4 AND created_by = $5 AND status IN ($6, $7)`
	tag, err := r.db.Exec(ctx, query,
		budget.Name, budget.Description, budget.Amount,
		budget.Id, editorId, StatusDraft, StatusPending)
	if err != nil {
		err := fmt.Errorf("could not update budget: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, id int, from Status, to Status, updatedAt time.Time) (Budget, bool, error) {
	query := fmt.Sprintf(`UPDATE budgets SET status = $1, updated_at = $2
				WHERE id = $3 AND status = $4 RETURNING %s`, budgetColumns)
	budget, err := scanBudget(r.db.QueryRow(ctx, query, to, updatedAt, id, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, false, nil
	} else if err != nil {
		err := fmt.Errorf("could not update budget status: %w", err)
		log.Error(err)
		return Budget{}, false, err
	}
	return budget, true, nil
}

func (r *RepositoryImpl) SetAllocated(ctx context.Context, id int, amount decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE budgets SET allocated_amount = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.Exec(ctx, query, amount, updatedAt, id); err != nil {
		err := fmt.Errorf("could not set allocated amount: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func scanBudget(row pgx.Row) (Budget, error) {
	var b Budget
	err := row.Scan(
		&b.Id,
		&b.Name,
		&b.Description,
		&b.Amount,
		&b.AllocatedAmount,
		&b.Status,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func collectBudgets(rows pgx.Rows) ([]Budget, error) {
	var budgets []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			err := fmt.Errorf("could not scan budget: %w", err)
			log.Error(err)
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}

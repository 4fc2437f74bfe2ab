package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type Repository interface {
	Store(ctx context.Context, transaction Transaction) (Transaction, error)
	// GetById fetches a transaction with its user and budget projections.
	GetById(ctx context.Context, id int) (Transaction, error)
	ListForUser(ctx context.Context, userId int) ([]Transaction, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, transaction Transaction) (Transaction, error) {
	query := `INSERT INTO transactions (uid, user_id, budget_id, amount, kind, description)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		transaction.Uid,
		transaction.UserId,
		transaction.BudgetId,
		transaction.Amount,
		transaction.Kind,
		transaction.Description,
	).Scan(&transaction.Id, &transaction.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not store transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}
	return transaction, nil
}

func (r *RepositoryImpl) GetById(ctx context.Context, id int) (Transaction, error) {
	query := `SELECT t.id, t.uid, t.user_id, t.budget_id, t.amount, t.kind, t.description, t.created_at,
					u.id, u.name, u.email,
					b.id, b.name, b.amount, b.status
				FROM transactions t
				JOIN users u ON u.id = t.user_id
				LEFT JOIN budgets b ON b.id = t.budget_id
				WHERE t.id = $1`

	var t Transaction
	var userRef UserRef
	var budgetId *int
	var budgetName, budgetStatus *string
	var budgetAmount *decimal.Decimal
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.Id,
		&t.Uid,
		&t.UserId,
		&t.BudgetId,
		&t.Amount,
		&t.Kind,
		&t.Description,
		&t.CreatedAt,
		&userRef.Id,
		&userRef.Name,
		&userRef.Email,
		&budgetId,
		&budgetName,
		&budgetAmount,
		&budgetStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}

	t.User = &userRef
	if budgetId != nil {
		t.Budget = &BudgetRef{
			Id:     *budgetId,
			Name:   *budgetName,
			Amount: *budgetAmount,
			Status: *budgetStatus,
		}
	}
	return t, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userId int) ([]Transaction, error) {
	query := `SELECT id, uid, user_id, budget_id, amount, kind, description, created_at
				FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.Id,
			&t.Uid,
			&t.UserId,
			&t.BudgetId,
			&t.Amount,
			&t.Kind,
			&t.Description,
			&t.CreatedAt,
		); err != nil {
			err := fmt.Errorf("could not scan transaction: %w", err)
			log.Error(err)
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	return transactions, nil
}

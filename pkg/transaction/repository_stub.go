package transaction

import (
	"context"
	"sort"
	"time"
)

type StubRepository struct {
	nextId int
	data   map[int]Transaction

	// Users provides the user projections joined by GetById.
	Users map[int]UserRef
	// Budgets provides the budget projections joined by GetById.
	Budgets map[int]BudgetRef
}

func NewStubRepository() *StubRepository {
	return &StubRepository{
		data:    map[int]Transaction{},
		Users:   map[int]UserRef{},
		Budgets: map[int]BudgetRef{},
	}
}

func (s *StubRepository) Store(ctx context.Context, transaction Transaction) (Transaction, error) {
	s.nextId++
	transaction.Id = s.nextId
	transaction.CreatedAt = time.Now()
	s.data[transaction.Id] = transaction
	return transaction, nil
}

func (s *StubRepository) GetById(ctx context.Context, id int) (Transaction, error) {
	t, ok := s.data[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	if u, ok := s.Users[t.UserId]; ok {
		t.User = &u
	}
	if t.BudgetId != nil {
		if b, ok := s.Budgets[*t.BudgetId]; ok {
			t.Budget = &b
		}
	}
	return t, nil
}

func (s *StubRepository) ListForUser(ctx context.Context, userId int) ([]Transaction, error) {
	var transactions []Transaction
	for _, t := range s.data {
		if t.UserId == userId {
			transactions = append(transactions, t)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Id > transactions[j].Id
	})
	return transactions, nil
}

func (s *StubRepository) Cleanup() {
	s.nextId = 0
	s.data = map[int]Transaction{}
}

package budget

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type StubRepository struct {
	nextId int
	data   map[int]Budget
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[int]Budget{}}
}

func (s *StubRepository) Store(ctx context.Context, budget Budget) (Budget, error) {
	s.nextId++
	budget.Id = s.nextId
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	s.data[budget.Id] = budget
	return budget, nil
}

func (s *StubRepository) GetById(ctx context.Context, id int) (Budget, error) {
	budget, ok := s.data[id]
	if !ok {
		return Budget{}, ErrBudgetNotFound
	}
	return budget, nil
}

func (s *StubRepository) ListForUser(ctx context.Context, userId int) ([]Budget, error) {
	var budgets []Budget
	for _, b := range s.data {
		if b.CreatedBy == userId {
			budgets = append(budgets, b)
		}
	}
	sortBudgets(budgets)
	return budgets, nil
}

func (s *StubRepository) ListAll(ctx context.Context) ([]Budget, error) {
	budgets := make([]Budget, 0, len(s.data))
	for _, b := range s.data {
		budgets = append(budgets, b)
	}
	sortBudgets(budgets)
	return budgets, nil
}

func (s *StubRepository) Update(ctx context.Context, budget Budget, editorId int) (bool, error) {
	existing, ok := s.data[budget.Id]
	if !ok || !existing.EditableBy(editorId) {
		return false, nil
	}
	existing.Name = budget.Name
	existing.Description = budget.Description
	existing.Amount = budget.Amount
	existing.UpdatedAt = time.Now()
	s.data[budget.Id] = existing
	return true, nil
}

func (s *StubRepository) UpdateStatus(ctx context.Context, id int, from Status, to Status, updatedAt time.Time) (Budget, bool, error) {
	existing, ok := s.data[id]
	if !ok || existing.Status != from {
		return Budget{}, false, nil
	}
	existing.Status = to
	existing.UpdatedAt = updatedAt
	s.data[id] = existing
	return existing, true, nil
}

func (s *StubRepository) SetAllocated(ctx context.Context, id int, amount decimal.Decimal, updatedAt time.Time) error {
	existing, ok := s.data[id]
	if !ok {
		return ErrBudgetNotFound
	}
	existing.AllocatedAmount = amount
	existing.UpdatedAt = updatedAt
	s.data[id] = existing
	return nil
}

func (s *StubRepository) Cleanup() {
	s.nextId = 0
	s.data = map[int]Budget{}
}

func sortBudgets(budgets []Budget) {
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Id > budgets[j].Id
	})
}

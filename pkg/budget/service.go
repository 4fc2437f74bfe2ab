package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/moneta-app/moneta/internal/event_bus"
	"github.com/moneta-app/moneta/internal/utils"
	"github.com/moneta-app/moneta/pkg/audit"
	"github.com/moneta-app/moneta/pkg/fundpool"
	"github.com/moneta-app/moneta/pkg/transaction"
	"github.com/moneta-app/moneta/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotEditable is returned when the requester is not the creator or
	// the budget has left the editable part of its lifecycle.
	ErrNotEditable = errors.New("budget is not editable")
	// ErrNotPending is returned when a decision is attempted on a budget
	// that is not awaiting one.
	ErrNotPending = errors.New("budget is not pending")
	// ErrAccessDenied is returned when the requester is neither the creator
	// of the budget nor an administrator.
	ErrAccessDenied = errors.New("access to budget denied")
	// ErrInvalidAmount is returned for non-positive or fractional amounts.
	// Pool funds are whole currency units.
	ErrInvalidAmount = errors.New("amount must be a positive whole number")
)

type Service interface {
	Create(ctx context.Context, budget Budget) (Budget, error)
	Update(ctx context.Context, budget Budget) (Budget, error)
	// Submit moves the creator's DRAFT budget to PENDING.
	Submit(ctx context.Context, id int) (Budget, error)
	// Approve draws the budget amount from the fund pool and marks the
	// budget APPROVED. Admin only.
	Approve(ctx context.Context, id int, note string) (Budget, error)
	// Reject marks a PENDING budget REJECTED. Admin only.
	Reject(ctx context.Context, id int, note string) (Budget, error)
	Get(ctx context.Context, id int) (Budget, error)
	// List returns the current user's budgets; administrators see all.
	List(ctx context.Context) ([]Budget, error)
}

type ServiceImpl struct {
	repo         Repository
	pool         fundpool.Service
	transactions transaction.Service
	recorder     audit.Recorder
	eventBus     *event_bus.EventBus
	clock        utils.Clock
}

func NewService(
	repo Repository,
	pool fundpool.Service,
	transactions transaction.Service,
	recorder audit.Recorder,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		pool:         pool,
		transactions: transactions,
		recorder:     recorder,
		eventBus:     eventBus,
		clock:        clock,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, budget Budget) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateAmount(budget); err != nil {
		return Budget{}, err
	}

	budget.CreatedBy = userId
	budget.Status = StatusDraft
	created, err := s.repo.Store(ctx, budget)
	if err != nil {
		return Budget{}, err
	}

	if err := s.recorder.Record(ctx, audit.ActionBudgetCreated, audit.EntityBudget, created.Id, map[string]any{
		"name":   created.Name,
		"amount": created.Amount,
	}); err != nil {
		return Budget{}, err
	}
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, budget Budget) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateAmount(budget); err != nil {
		return Budget{}, err
	}

	existing, err := s.repo.GetById(ctx, budget.Id)
	if err != nil {
		return Budget{}, err
	}
	if !existing.EditableBy(userId) {
		log.Warnf("budget %d not editable by user %d (status=%s)", existing.Id, userId, existing.Status)
		return Budget{}, ErrNotEditable
	}

	// The update itself is conditioned on creator and status, so an edit
	// losing a race against a decision is rejected here as well.
	updated, err := s.repo.Update(ctx, budget, userId)
	if err != nil {
		return Budget{}, err
	}
	if !updated {
		return Budget{}, ErrNotEditable
	}

	if err := s.recorder.Record(ctx, audit.ActionBudgetUpdated, audit.EntityBudget, budget.Id, map[string]any{
		"name":   budget.Name,
		"amount": budget.Amount,
	}); err != nil {
		return Budget{}, err
	}
	return s.repo.GetById(ctx, budget.Id)
}

func (s *ServiceImpl) Submit(ctx context.Context, id int) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	existing, err := s.repo.GetById(ctx, id)
	if err != nil {
		return Budget{}, err
	}
	if existing.CreatedBy != userId {
		return Budget{}, ErrAccessDenied
	}

	submitted, moved, err := s.repo.UpdateStatus(ctx, id, StatusDraft, StatusPending, s.clock.Now())
	if err != nil {
		return Budget{}, err
	}
	if !moved {
		return Budget{}, ErrNotEditable
	}

	if err := s.recorder.Record(ctx, audit.ActionBudgetSubmitted, audit.EntityBudget, id, map[string]any{
		"from": StatusDraft,
		"to":   StatusPending,
	}); err != nil {
		return Budget{}, err
	}
	return submitted, nil
}

func (s *ServiceImpl) Approve(ctx context.Context, id int, note string) (Budget, error) {
	if _, err := user.RequireAdmin(ctx); err != nil {
		return Budget{}, err
	}

	if _, err := s.repo.GetById(ctx, id); err != nil {
		return Budget{}, err
	}

	// Claim the budget first so two concurrent approvals cannot both draw
	// from the pool. The claim returns the row as of the same statement, so
	// the draw below uses the amount that was current when the claim landed.
	claimed, ok, err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusApproved, s.clock.Now())
	if err != nil {
		return Budget{}, err
	}
	if !ok {
		return Budget{}, ErrNotPending
	}

	delta := claimed.Amount.IntPart()
	if _, err := s.pool.ApplyDelta(ctx, -delta, fmt.Sprintf("budget %q approved", claimed.Name)); err != nil {
		if _, _, revertErr := s.repo.UpdateStatus(ctx, id, StatusApproved, StatusPending, s.clock.Now()); revertErr != nil {
			log.Errorf("failed to revert budget %d to pending: %v", id, revertErr)
		}
		return Budget{}, err
	}

	if err := s.repo.SetAllocated(ctx, id, claimed.Amount, s.clock.Now()); err != nil {
		s.revertApproval(ctx, claimed)
		return Budget{}, err
	}

	if err := s.recorder.Record(ctx, audit.ActionBudgetApproved, audit.EntityBudget, id, map[string]any{
		"amount": claimed.Amount,
		"note":   note,
	}); err != nil {
		s.revertApproval(ctx, claimed)
		return Budget{}, err
	}

	budgetId := id
	if _, err := s.transactions.Create(ctx, transaction.Transaction{
		UserId:      claimed.CreatedBy,
		BudgetId:    &budgetId,
		Amount:      claimed.Amount,
		Kind:        transaction.KindAllocation,
		Description: fmt.Sprintf("allocation for budget %q", claimed.Name),
	}); err != nil {
		s.revertApproval(ctx, claimed)
		return Budget{}, err
	}
	s.publishDecision(ctx, claimed, StatusApproved, note)

	return s.repo.GetById(ctx, id)
}

// revertApproval returns the drawn funds to the pool and moves the budget
// back to PENDING after a failure mid-approval. The pool revert records its
// own audit entry, so the trail shows the draw and its return.
func (s *ServiceImpl) revertApproval(ctx context.Context, claimed Budget) {
	if _, err := s.pool.ApplyDelta(ctx, claimed.Amount.IntPart(), fmt.Sprintf("approval of budget %q reverted", claimed.Name)); err != nil {
		log.Errorf("failed to return funds for budget %d: %v", claimed.Id, err)
	}
	if err := s.repo.SetAllocated(ctx, claimed.Id, decimal.Zero, s.clock.Now()); err != nil {
		log.Errorf("failed to reset allocated amount for budget %d: %v", claimed.Id, err)
	}
	if _, _, err := s.repo.UpdateStatus(ctx, claimed.Id, StatusApproved, StatusPending, s.clock.Now()); err != nil {
		log.Errorf("failed to revert budget %d to pending: %v", claimed.Id, err)
	}
}

func (s *ServiceImpl) Reject(ctx context.Context, id int, note string) (Budget, error) {
	if _, err := user.RequireAdmin(ctx); err != nil {
		return Budget{}, err
	}

	if _, err := s.repo.GetById(ctx, id); err != nil {
		return Budget{}, err
	}

	rejected, moved, err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusRejected, s.clock.Now())
	if err != nil {
		return Budget{}, err
	}
	if !moved {
		return Budget{}, ErrNotPending
	}

	if err := s.recorder.Record(ctx, audit.ActionBudgetRejected, audit.EntityBudget, id, map[string]any{
		"note": note,
	}); err != nil {
		return Budget{}, err
	}
	s.publishDecision(ctx, rejected, StatusRejected, note)

	return rejected, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Budget, error) {
	requester, err := user.CurrentUser(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	budget, err := s.repo.GetById(ctx, id)
	if err != nil {
		return Budget{}, err
	}
	if !requester.IsAdmin() && budget.CreatedBy != requester.Id {
		return Budget{}, ErrAccessDenied
	}
	return budget, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Budget, error) {
	requester, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if requester.IsAdmin() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListForUser(ctx, requester.Id)
}

func (s *ServiceImpl) publishDecision(ctx context.Context, budget Budget, status Status, note string) {
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BudgetDecidedEvent, event_bus.BudgetDecided{
		BudgetId:  budget.Id,
		Name:      budget.Name,
		CreatedBy: budget.CreatedBy,
		Amount:    budget.Amount,
		Status:    string(status),
		Note:      note,
	})); err != nil {
		log.Errorf("failed to publish budget decision: %v", err)
	}
}

func validateAmount(budget Budget) error {
	if !budget.Amount.IsPositive() || !budget.Amount.IsInteger() {
		return ErrInvalidAmount
	}
	return nil
}

package remittance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
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
	// ErrNotPending is returned when a decision is attempted on a
	// remittance that is not awaiting one.
	ErrNotPending = errors.New("remittance is not pending")
	// ErrInvalidAmount is returned for non-positive or fractional amounts.
	// Pool funds are whole currency units.
	ErrInvalidAmount = errors.New("amount must be a positive whole number")
)

type Service interface {
	Create(ctx context.Context, amount decimal.Decimal, note string) (Remittance, error)
	// List returns the current user's remittances. Admins may filter all
	// remittances by status instead.
	List(ctx context.Context, status Status) ([]Remittance, error)
	// Approve pays the remittance out of the fund pool. Admin only.
	Approve(ctx context.Context, id int, note string) (Remittance, error)
	// Reject marks a PENDING remittance REJECTED. Admin only.
	Reject(ctx context.Context, id int, note string) (Remittance, error)
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

func (s *ServiceImpl) Create(ctx context.Context, amount decimal.Decimal, note string) (Remittance, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Remittance{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !amount.IsPositive() || !amount.IsInteger() {
		return Remittance{}, ErrInvalidAmount
	}

	created, err := s.repo.Store(ctx, Remittance{
		Uid:    uuid.NewString(),
		UserId: userId,
		Amount: amount,
		Status: StatusPending,
		Note:   note,
	})
	if err != nil {
		return Remittance{}, err
	}

	if err := s.recorder.Record(ctx, audit.ActionRemittanceCreated, audit.EntityRemittance, created.Id, map[string]any{
		"amount": created.Amount,
		"note":   note,
	}); err != nil {
		return Remittance{}, err
	}
	return created, nil
}

func (s *ServiceImpl) List(ctx context.Context, status Status) ([]Remittance, error) {
	requester, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if status != "" {
		if !requester.IsAdmin() {
			return nil, user.ErrAdminRequired
		}
		return s.repo.ListByStatus(ctx, status)
	}
	return s.repo.ListForUser(ctx, requester.Id)
}

func (s *ServiceImpl) Approve(ctx context.Context, id int, note string) (Remittance, error) {
	if _, err := user.RequireAdmin(ctx); err != nil {
		return Remittance{}, err
	}

	existing, err := s.repo.GetById(ctx, id)
	if err != nil {
		return Remittance{}, err
	}

	// Claim the remittance first so two concurrent approvals cannot both
	// draw from the pool.
	claimed, err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusApproved, note, s.clock.Now())
	if err != nil {
		return Remittance{}, err
	}
	if !claimed {
		return Remittance{}, ErrNotPending
	}

	delta := existing.Amount.IntPart()
	if _, err := s.pool.ApplyDelta(ctx, -delta, fmt.Sprintf("remittance %s approved", existing.Uid)); err != nil {
		if _, revertErr := s.repo.UpdateStatus(ctx, id, StatusApproved, StatusPending, existing.Note, s.clock.Now()); revertErr != nil {
			log.Errorf("failed to revert remittance %d to pending: %v", id, revertErr)
		}
		return Remittance{}, err
	}

	if err := s.recorder.Record(ctx, audit.ActionRemittanceApproved, audit.EntityRemittance, id, map[string]any{
		"amount": existing.Amount,
		"note":   note,
	}); err != nil {
		s.revertApproval(ctx, existing)
		return Remittance{}, err
	}

	if _, err := s.transactions.Create(ctx, transaction.Transaction{
		UserId:      existing.UserId,
		Amount:      existing.Amount,
		Kind:        transaction.KindPayout,
		Description: fmt.Sprintf("payout for remittance %s", existing.Uid),
	}); err != nil {
		s.revertApproval(ctx, existing)
		return Remittance{}, err
	}
	s.publishDecision(ctx, existing, StatusApproved, note)

	return s.repo.GetById(ctx, id)
}

// revertApproval returns the drawn funds to the pool and moves the
// remittance back to PENDING after a failure mid-approval. The pool revert
// records its own audit entry, so the trail shows the draw and its return.
func (s *ServiceImpl) revertApproval(ctx context.Context, existing Remittance) {
	if _, err := s.pool.ApplyDelta(ctx, existing.Amount.IntPart(), fmt.Sprintf("approval of remittance %s reverted", existing.Uid)); err != nil {
		log.Errorf("failed to return funds for remittance %d: %v", existing.Id, err)
	}
	if _, err := s.repo.UpdateStatus(ctx, existing.Id, StatusApproved, StatusPending, existing.Note, s.clock.Now()); err != nil {
		log.Errorf("failed to revert remittance %d to pending: %v", existing.Id, err)
	}
}

func (s *ServiceImpl) Reject(ctx context.Context, id int, note string) (Remittance, error) {
	if _, err := user.RequireAdmin(ctx); err != nil {
		return Remittance{}, err
	}

	existing, err := s.repo.GetById(ctx, id)
	if err != nil {
		return Remittance{}, err
	}

	moved, err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusRejected, note, s.clock.Now())
	if err != nil {
		return Remittance{}, err
	}
	if !moved {
		return Remittance{}, ErrNotPending
	}

	if err := s.recorder.Record(ctx, audit.ActionRemittanceRejected, audit.EntityRemittance, id, map[string]any{
		"note": note,
	}); err != nil {
		return Remittance{}, err
	}
	s.publishDecision(ctx, existing, StatusRejected, note)

	return s.repo.GetById(ctx, id)
}

func (s *ServiceImpl) publishDecision(ctx context.Context, remittance Remittance, status Status, note string) {
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.RemittanceDecidedEvent, event_bus.RemittanceDecided{
		RemittanceId: remittance.Id,
		Uid:          remittance.Uid,
		UserId:       remittance.UserId,
		Amount:       remittance.Amount,
		Status:       string(status),
		Note:         note,
	})); err != nil {
		log.Errorf("failed to publish remittance decision: %v", err)
	}
}

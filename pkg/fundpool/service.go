package fundpool

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/moneta-app/moneta/internal/database"
	"github.com/moneta-app/moneta/internal/event_bus"
	"github.com/moneta-app/moneta/internal/utils"
	"github.com/moneta-app/moneta/pkg/audit"
	"github.com/moneta-app/moneta/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// GetBalance returns the current pool state. No authorization required.
	GetBalance(ctx context.Context) (FundPool, error)
	// ApplyDelta adds delta (positive or negative) to the pool balance.
	// Admin only. Returns the new balance.
	ApplyDelta(ctx context.Context, delta int64, note string) (int64, error)
}

type ServiceImpl struct {
	repo     Repository
	recorder audit.Recorder
	tx       database.TxRunner
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, recorder audit.Recorder, tx database.TxRunner, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, recorder: recorder, tx: tx, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) GetBalance(ctx context.Context) (FundPool, error) {
	return s.repo.Get(ctx)
}

func (s *ServiceImpl) ApplyDelta(ctx context.Context, delta int64, note string) (int64, error) {
	actor, err := user.RequireAdmin(ctx)
	if err != nil {
		return 0, err
	}

	// The balance update and its audit entry commit or roll back together.
	var from, to int64
	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var err error
		from, to, err = s.repo.WithTx(tx).ApplyDelta(ctx, actor.Id, delta, s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.recorder.WithTx(tx).Record(ctx, audit.ActionFundPoolAdjusted, audit.EntityFundPool, 0, map[string]any{
			"from":  from,
			"delta": delta,
			"to":    to,
			"note":  note,
		}); err != nil {
			return fmt.Errorf("failed to record fund pool audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.FundPoolChangedEvent, event_bus.FundPoolChanged{
		From:      from,
		Delta:     delta,
		To:        to,
		UpdatedBy: actor.Id,
	})); err != nil {
		log.Errorf("failed to publish fund pool change: %v", err)
	}

	return to, nil
}

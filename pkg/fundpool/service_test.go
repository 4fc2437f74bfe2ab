package fundpool

import (
	"context"
	"testing"
	"time"

	"github.com/moneta-app/moneta/internal/event_bus"
	"github.com/moneta-app/moneta/internal/test_utils"
	"github.com/moneta-app/moneta/internal/utils"
	"github.com/moneta-app/moneta/pkg/audit"
	"github.com/moneta-app/moneta/pkg/user"
	"github.com/stretchr/testify/assert"
)

var clock = &utils.MockClock{FixedNow: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}

func setup(t *testing.T) (*ServiceImpl, *StubRepository, *audit.StubRecorder, func()) {
	repo := NewStubRepository()
	recorder := audit.NewStubRecorder()
	service := NewService(repo, recorder, test_utils.StubTxRunner{}, event_bus.NewEventBus(), clock)
	return service, repo, recorder, func() {
		repo.Cleanup()
		recorder.Cleanup()
	}
}

func TestServiceImpl_ApplyDelta(t *testing.T) {
	service, _, _, teardown := setup(t)
	defer teardown()
	ctx := test_utils.AdminContext()

	// given
	_, err := service.ApplyDelta(ctx, 100, "initial funding")
	assert.NoError(t, err)

	// when
	balance, err := service.ApplyDelta(ctx, 50, "top up")

	// then
	assert.NoError(t, err)
	assert.Equal(t, int64(150), balance)
}

func TestServiceImpl_ApplyDelta_RejectsOverdraw(t *testing.T) {
	service, _, _, teardown := setup(t)
	defer teardown()
	ctx := test_utils.AdminContext()

	// given
	_, err := service.ApplyDelta(ctx, 150, "initial funding")
	assert.NoError(t, err)

	// when
	_, err = service.ApplyDelta(ctx, -200, "overdraw attempt")

	// then
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	pool, err := service.GetBalance(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(150), pool.Balance)
}

func TestServiceImpl_ApplyDelta_RecordsAuditEntry(t *testing.T) {
	service, _, recorder, teardown := setup(t)
	defer teardown()
	ctx := test_utils.AdminContext()

	// when
	_, err := service.ApplyDelta(ctx, 100, "initial funding")
	assert.NoError(t, err)
	_, err = service.ApplyDelta(ctx, -30, "payout reserve")
	assert.NoError(t, err)

	// then
	assert.Len(t, recorder.Entries, 2)
	entry := recorder.Entries[1]
	assert.Equal(t, audit.ActionFundPoolAdjusted, entry.Action)
	assert.Equal(t, audit.EntityFundPool, entry.Entity)
	assert.Equal(t, int64(100), entry.Changes["from"])
	assert.Equal(t, int64(-30), entry.Changes["delta"])
	assert.Equal(t, int64(70), entry.Changes["to"])
	assert.Equal(t, "payout reserve", entry.Changes["note"])
}

func TestServiceImpl_ApplyDelta_FailedAttemptLeavesNoAuditEntry(t *testing.T) {
	service, _, recorder, teardown := setup(t)
	defer teardown()
	ctx := test_utils.AdminContext()

	// when
	_, err := service.ApplyDelta(ctx, -10, "overdraw on empty pool")

	// then
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Empty(t, recorder.Entries)
}

func TestServiceImpl_ApplyDelta_RequiresAdmin(t *testing.T) {
	service, _, _, teardown := setup(t)
	defer teardown()

	// when
	_, err := service.ApplyDelta(test_utils.UserContext(), 100, "not allowed")

	// then
	assert.ErrorIs(t, err, user.ErrAdminRequired)
}

func TestServiceImpl_ApplyDelta_RequiresIdentity(t *testing.T) {
	service, _, _, teardown := setup(t)
	defer teardown()

	// when
	_, err := service.ApplyDelta(context.Background(), 100, "anonymous")

	// then
	assert.ErrorIs(t, err, user.ErrNoUser)
}

func TestServiceImpl_ApplyDelta_PublishesChangeEvent(t *testing.T) {
	repo := NewStubRepository()
	recorder := audit.NewStubRecorder()
	bus := event_bus.NewEventBus()
	service := NewService(repo, recorder, test_utils.StubTxRunner{}, bus, clock)
	defer repo.Cleanup()

	var received []event_bus.FundPoolChanged
	event_bus.SubscribeTyped(bus, event_bus.FundPoolChangedEvent,
		func(e event_bus.EventT[event_bus.FundPoolChanged]) error {
			received = append(received, e.Data)
			return nil
		})

	// when
	_, err := service.ApplyDelta(test_utils.AdminContext(), 100, "initial funding")
	assert.NoError(t, err)

	// then
	assert.Len(t, received, 1)
	assert.Equal(t, int64(0), received[0].From)
	assert.Equal(t, int64(100), received[0].To)
	assert.Equal(t, test_utils.TestAdmin.Id, received[0].UpdatedBy)
}

func TestServiceImpl_GetBalance_EmptyPool(t *testing.T) {
	service, _, _, teardown := setup(t)
	defer teardown()

	// when
	pool, err := service.GetBalance(test_utils.UserContext())

	// then
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pool.Balance)
	assert.Nil(t, pool.UpdatedAt)
	assert.Nil(t, pool.UpdatedBy)
}

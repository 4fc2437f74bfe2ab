package remittance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moneta-app/moneta/internal/event_bus"
	"github.com/moneta-app/moneta/internal/test_utils"
	"github.com/moneta-app/moneta/internal/utils"
	"github.com/moneta-app/moneta/pkg/audit"
	"github.com/moneta-app/moneta/pkg/fundpool"
	"github.com/moneta-app/moneta/pkg/transaction"
	"github.com/moneta-app/moneta/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var clock = &utils.MockClock{FixedNow: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}

type fixture struct {
	service      *ServiceImpl
	repo         *StubRepository
	poolRepo     *fundpool.StubRepository
	transactions *transaction.StubRepository
	recorder     *audit.StubRecorder
	bus          *event_bus.EventBus
}

func setup(t *testing.T) (*fixture, func()) {
	repo := NewStubRepository()
	poolRepo := fundpool.NewStubRepository()
	transactionRepo := transaction.NewStubRepository()
	recorder := audit.NewStubRecorder()
	bus := event_bus.NewEventBus()

	pool := fundpool.NewService(poolRepo, recorder, test_utils.StubTxRunner{}, bus, clock)
	transactions := transaction.NewService(transactionRepo)
	service := NewService(repo, pool, transactions, recorder, bus, clock)

	f := &fixture{
		service:      service,
		repo:         repo,
		poolRepo:     poolRepo,
		transactions: transactionRepo,
		recorder:     recorder,
		bus:          bus,
	}
	return f, func() {
		repo.Cleanup()
		poolRepo.Cleanup()
		transactionRepo.Cleanup()
		recorder.Cleanup()
	}
}

func (f *fixture) fundPool(t *testing.T, amount int64) {
	_, err := f.service.pool.ApplyDelta(test_utils.AdminContext(), amount, "initial funding")
	assert.NoError(t, err)
	f.recorder.Cleanup()
}

func TestServiceImpl_Create(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	// when
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "expenses")

	// then
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, test_utils.TestUser.Id, created.UserId)
	assert.NotEmpty(t, created.Uid)

	assert.Len(t, f.recorder.Entries, 1)
	assert.Equal(t, audit.ActionRemittanceCreated, f.recorder.Entries[0].Action)
}

func TestServiceImpl_Create_RejectsInvalidAmount(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	for _, amount := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(-50),
		decimal.NewFromFloat(12.34),
	} {
		_, err := f.service.Create(test_utils.UserContext(), amount, "bad")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestServiceImpl_Approve(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	f.fundPool(t, 500)

	// given
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "expenses")
	assert.NoError(t, err)

	// when
	approved, err := f.service.Approve(test_utils.AdminContext(), created.Id, "ok")

	// then
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	pool, err := f.poolRepo.Get(test_utils.AdminContext())
	assert.NoError(t, err)
	assert.Equal(t, int64(300), pool.Balance)

	// a payout transaction is recorded for the requester
	transactions, err := f.transactions.ListForUser(test_utils.UserContext(), test_utils.TestUser.Id)
	assert.NoError(t, err)
	if assert.Len(t, transactions, 1) {
		assert.Equal(t, transaction.KindPayout, transactions[0].Kind)
		assert.True(t, decimal.NewFromInt(200).Equal(transactions[0].Amount))
	}
}

func TestServiceImpl_Approve_RequiresAdmin(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	f.fundPool(t, 500)
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "")
	assert.NoError(t, err)

	// when
	_, err = f.service.Approve(test_utils.UserContext(), created.Id, "")

	// then
	assert.ErrorIs(t, err, user.ErrAdminRequired)
}

func TestServiceImpl_Approve_InsufficientFundsLeavesRemittancePending(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	f.fundPool(t, 100)
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "")
	assert.NoError(t, err)

	// when
	_, err = f.service.Approve(test_utils.AdminContext(), created.Id, "")

	// then
	assert.ErrorIs(t, err, fundpool.ErrInsufficientFunds)

	remittance, err := f.repo.GetById(test_utils.AdminContext(), created.Id)
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, remittance.Status)

	pool, err := f.poolRepo.Get(test_utils.AdminContext())
	assert.NoError(t, err)
	assert.Equal(t, int64(100), pool.Balance)
}

// failingTransactions refuses every transaction, simulating an unavailable
// transaction store.
type failingTransactions struct {
	transaction.Service
}

func (failingTransactions) Create(ctx context.Context, tr transaction.Transaction) (transaction.Transaction, error) {
	return transaction.Transaction{}, errors.New("transaction store unavailable")
}

func TestServiceImpl_Approve_TransactionFailureReturnsFundsToPool(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	f.fundPool(t, 500)
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "expenses")
	assert.NoError(t, err)
	f.service.transactions = failingTransactions{}

	// when
	_, err = f.service.Approve(test_utils.AdminContext(), created.Id, "")

	// then: the drawn funds are returned and the remittance is pending again
	assert.Error(t, err)

	pool, err := f.poolRepo.Get(test_utils.AdminContext())
	assert.NoError(t, err)
	assert.Equal(t, int64(500), pool.Balance)

	remittance, err := f.repo.GetById(test_utils.AdminContext(), created.Id)
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, remittance.Status)
}

func TestServiceImpl_Approve_SecondApprovalRejected(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	f.fundPool(t, 500)
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "")
	assert.NoError(t, err)
	_, err = f.service.Approve(test_utils.AdminContext(), created.Id, "")
	assert.NoError(t, err)

	// when
	_, err = f.service.Approve(test_utils.AdminContext(), created.Id, "")

	// then: paid out only once
	assert.ErrorIs(t, err, ErrNotPending)
	pool, err := f.poolRepo.Get(test_utils.AdminContext())
	assert.NoError(t, err)
	assert.Equal(t, int64(300), pool.Balance)
}

func TestServiceImpl_Reject(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	// given
	created, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(200), "expenses")
	assert.NoError(t, err)

	// when
	rejected, err := f.service.Reject(test_utils.AdminContext(), created.Id, "missing receipts")

	// then
	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "missing receipts", rejected.Note)
}

func TestServiceImpl_List(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	// given
	other := test_utils.TestUser
	other.Id = 99
	_, err := f.service.Create(test_utils.UserContext(), decimal.NewFromInt(10), "")
	assert.NoError(t, err)
	_, err = f.service.Create(test_utils.ContextFor(other), decimal.NewFromInt(20), "")
	assert.NoError(t, err)

	// when / then: users see their own
	mine, err := f.service.List(test_utils.UserContext(), "")
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	// admins may filter all by status
	pending, err := f.service.List(test_utils.AdminContext(), StatusPending)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)

	// ordinary users may not use the status filter
	_, err = f.service.List(test_utils.UserContext(), StatusPending)
	assert.ErrorIs(t, err, user.ErrAdminRequired)
}

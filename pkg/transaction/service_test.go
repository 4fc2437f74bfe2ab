package transaction

import (
	"testing"

	"github.com/moneta-app/moneta/internal/test_utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) (*ServiceImpl, *StubRepository, func()) {
	repo := NewStubRepository()
	service := NewService(repo)
	return service, repo, func() {
		repo.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	service, _, teardown := setup(t)
	defer teardown()

	// when
	created, err := service.Create(test_utils.AdminContext(), Transaction{
		UserId:      test_utils.TestUser.Id,
		Amount:      decimal.NewFromInt(200),
		Kind:        KindPayout,
		Description: "payout for remittance",
	})

	// then
	assert.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.NotEmpty(t, created.Uid)
}

func TestServiceImpl_GetById_Owner(t *testing.T) {
	service, _, teardown := setup(t)
	defer teardown()

	// given
	created, err := service.Create(test_utils.AdminContext(), Transaction{
		UserId: test_utils.TestUser.Id,
		Amount: decimal.NewFromInt(200),
		Kind:   KindPayout,
	})
	assert.NoError(t, err)

	// when
	found, err := service.GetById(test_utils.UserContext(), created.Id)

	// then
	assert.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
}

func TestServiceImpl_GetById_AdminMayReadAny(t *testing.T) {
	service, _, teardown := setup(t)
	defer teardown()

	// given
	created, err := service.Create(test_utils.AdminContext(), Transaction{
		UserId: test_utils.TestUser.Id,
		Amount: decimal.NewFromInt(200),
		Kind:   KindPayout,
	})
	assert.NoError(t, err)

	// when
	found, err := service.GetById(test_utils.AdminContext(), created.Id)

	// then
	assert.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
}

func TestServiceImpl_GetById_OtherUserDenied(t *testing.T) {
	service, _, teardown := setup(t)
	defer teardown()

	// given
	created, err := service.Create(test_utils.AdminContext(), Transaction{
		UserId: test_utils.TestUser.Id,
		Amount: decimal.NewFromInt(200),
		Kind:   KindPayout,
	})
	assert.NoError(t, err)

	// when
	other := test_utils.TestUser
	other.Id = 99
	_, err = service.GetById(test_utils.ContextFor(other), created.Id)

	// then
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestServiceImpl_GetById_NotFound(t *testing.T) {
	service, _, teardown := setup(t)
	defer teardown()

	// when
	_, err := service.GetById(test_utils.UserContext(), 12345)

	// then
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestServiceImpl_List(t *testing.T) {
	service, _, teardown := setup(t)
	defer teardown()

	// given
	other := test_utils.TestUser
	other.Id = 99
	for _, userId := range []int{test_utils.TestUser.Id, test_utils.TestUser.Id, other.Id} {
		_, err := service.Create(test_utils.AdminContext(), Transaction{
			UserId: userId,
			Amount: decimal.NewFromInt(10),
			Kind:   KindAllocation,
		})
		assert.NoError(t, err)
	}

	// when / then: own transactions by default
	mine, err := service.List(test_utils.UserContext(), 0)
	assert.NoError(t, err)
	assert.Len(t, mine, 2)

	// admins may list another user's
	theirs, err := service.List(test_utils.AdminContext(), other.Id)
	assert.NoError(t, err)
	assert.Len(t, theirs, 1)

	// ordinary users may not
	_, err = service.List(test_utils.UserContext(), other.Id)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

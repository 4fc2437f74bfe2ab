package budget

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta/internal/test_utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	container, connect := test_utils.TestWithDB()
	db = connect()
	code := m.Run()
	db.Close()
	_ = container.Terminate(context.Background())
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, int) {
	ctx := context.Background()
	repo := NewRepository(db)

	var creatorId int
	err := db.QueryRow(ctx,
		`INSERT INTO users (uid, name, email, role) VALUES ($1, $2, $3, 'USER') RETURNING id`,
		uuid.NewString(), "Budget Creator", uuid.NewString()+"@example.com").Scan(&creatorId)
	if err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Exec(ctx, `DELETE FROM budgets`)
		_, _ = db.Exec(ctx, `DELETE FROM users WHERE id = $1`, creatorId)
	})
	return ctx, repo, creatorId
}

func storePendingBudget(t *testing.T, ctx context.Context, repo *RepositoryImpl, creatorId int, amount int64) Budget {
	budget, err := repo.Store(ctx, Budget{
		Name:      "Team offsite",
		Amount:    decimal.NewFromInt(amount),
		Status:    StatusPending,
		CreatedBy: creatorId,
	})
	assert.NoError(t, err)
	return budget
}

func TestRepositoryImpl_Update_EditsOwnPendingBudget(t *testing.T) {
	// given
	ctx, repo, creatorId := setupTestRepository(t)
	pending := storePendingBudget(t, ctx, repo, creatorId, 300)

	// when
	pending.Name = "Team offsite (updated)"
	pending.Amount = decimal.NewFromInt(500)
	updated, err := repo.Update(ctx, pending, creatorId)

	// then
	assert.NoError(t, err)
	assert.True(t, updated)

	stored, err := repo.GetById(ctx, pending.Id)
	assert.NoError(t, err)
	assert.Equal(t, "Team offsite (updated)", stored.Name)
	assert.True(t, decimal.NewFromInt(500).Equal(stored.Amount))
}

func TestRepositoryImpl_Update_RejectsOtherUsersBudget(t *testing.T) {
	// given
	ctx, repo, creatorId := setupTestRepository(t)
	pending := storePendingBudget(t, ctx, repo, creatorId, 300)

	// when
	pending.Name = "Hijacked"
	updated, err := repo.Update(ctx, pending, creatorId+1)

	// then
	assert.NoError(t, err)
	assert.False(t, updated)
}

func TestRepositoryImpl_Update_RejectsDecidedBudget(t *testing.T) {
	// given: the budget is approved after the edit was prepared
	ctx, repo, creatorId := setupTestRepository(t)
	pending := storePendingBudget(t, ctx, repo, creatorId, 300)
	_, claimed, err := repo.UpdateStatus(ctx, pending.Id, StatusPending, StatusApproved, time.Now())
	assert.NoError(t, err)
	assert.True(t, claimed)

	// when: the edit lands anyway
	pending.Amount = decimal.NewFromInt(500)
	updated, err := repo.Update(ctx, pending, creatorId)

	// then: the conditional update matches no row
	assert.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.GetById(ctx, pending.Id)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(stored.Amount))
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestRepositoryImpl_UpdateStatus_ReturnsAmountAsOfClaim(t *testing.T) {
	// given: the amount changes while the budget is still pending
	ctx, repo, creatorId := setupTestRepository(t)
	pending := storePendingBudget(t, ctx, repo, creatorId, 300)
	pending.Amount = decimal.NewFromInt(500)
	updated, err := repo.Update(ctx, pending, creatorId)
	assert.NoError(t, err)
	assert.True(t, updated)

	// when
	claimed, ok, err := repo.UpdateStatus(ctx, pending.Id, StatusPending, StatusApproved, time.Now())

	// then: the claim carries the edited amount
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(500).Equal(claimed.Amount))
	assert.Equal(t, StatusApproved, claimed.Status)
}

func TestRepositoryImpl_UpdateStatus_RequiresExpectedStatus(t *testing.T) {
	// given
	ctx, repo, creatorId := setupTestRepository(t)
	pending := storePendingBudget(t, ctx, repo, creatorId, 300)

	// when
	_, ok, err := repo.UpdateStatus(ctx, pending.Id, StatusDraft, StatusPending, time.Now())

	// then
	assert.NoError(t, err)
	assert.False(t, ok)
}

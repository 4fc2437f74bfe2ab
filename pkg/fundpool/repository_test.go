package fundpool

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta/internal/database"
	"github.com/moneta-app/moneta/internal/event_bus"
	"github.com/moneta-app/moneta/internal/test_utils"
	"github.com/moneta-app/moneta/pkg/audit"
	"github.com/moneta-app/moneta/pkg/user"
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

	var actorId int
	err := db.QueryRow(ctx,
		`INSERT INTO users (uid, name, email, role) VALUES ($1, $2, $3, 'ADMIN') RETURNING id`,
		uuid.NewString(), "Pool Admin", uuid.NewString()+"@example.com").Scan(&actorId)
	if err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Exec(ctx, `DELETE FROM fund_pool`)
		_, _ = db.Exec(ctx, `DELETE FROM users WHERE id = $1`, actorId)
	})
	return ctx, repo, actorId
}

func TestRepositoryImpl_ApplyDelta(t *testing.T) {
	// given
	ctx, repo, actorId := setupTestRepository(t)

	// when
	from, to, err := repo.ApplyDelta(ctx, actorId, 100, time.Now())
	assert.NoError(t, err)

	// then
	assert.Equal(t, int64(0), from)
	assert.Equal(t, int64(100), to)

	pool, err := repo.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), pool.Balance)
	assert.NotNil(t, pool.UpdatedAt)
	if assert.NotNil(t, pool.UpdatedBy) {
		assert.Equal(t, actorId, pool.UpdatedBy.Id)
		assert.Equal(t, "Pool Admin", pool.UpdatedBy.Name)
	}
}

func TestRepositoryImpl_ApplyDelta_RejectsNegativeBalance(t *testing.T) {
	// given
	ctx, repo, actorId := setupTestRepository(t)
	_, _, err := repo.ApplyDelta(ctx, actorId, 50, time.Now())
	assert.NoError(t, err)

	// when
	_, _, err = repo.ApplyDelta(ctx, actorId, -80, time.Now())

	// then
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	pool, err := repo.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(50), pool.Balance)
}

func TestRepositoryImpl_ApplyDelta_ConcurrentDeltasAllApply(t *testing.T) {
	// given
	ctx, repo, actorId := setupTestRepository(t)
	_, _, err := repo.ApplyDelta(ctx, actorId, 1000, time.Now())
	assert.NoError(t, err)

	// when: 20 workers apply -10 each at the same time
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.ApplyDelta(ctx, actorId, -10, time.Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// then: no lost updates
	for err := range errs {
		assert.NoError(t, err)
	}
	pool, err := repo.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(800), pool.Balance)
}

func TestRepositoryImpl_ApplyDelta_ConcurrentOverdrawNeverGoesNegative(t *testing.T) {
	// given
	ctx, repo, actorId := setupTestRepository(t)
	_, _, err := repo.ApplyDelta(ctx, actorId, 30, time.Now())
	assert.NoError(t, err)

	// when: more withdrawals race than the pool can cover
	var wg sync.WaitGroup
	var rejected int64
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.ApplyDelta(ctx, actorId, -10, time.Now())
			if err != nil {
				mu.Lock()
				rejected++
				mu.Unlock()
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	// then: exactly 3 withdrawals succeed, the rest are rejected
	assert.Equal(t, int64(7), rejected)
	pool, err := repo.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pool.Balance)
}

// failingRecorder refuses every entry, simulating an unavailable audit store.
type failingRecorder struct{}

func (failingRecorder) Record(ctx context.Context, action string, entity string, entityId int, changes map[string]any) error {
	return errors.New("audit store unavailable")
}

func (r failingRecorder) WithTx(tx pgx.Tx) audit.Recorder {
	return r
}

func TestServiceImpl_ApplyDelta_AuditFailureRollsBackBalance(t *testing.T) {
	// given
	ctx, repo, actorId := setupTestRepository(t)
	service := NewService(repo, failingRecorder{}, database.NewTxRunner(db), event_bus.NewEventBus(), clock)
	admin := test_utils.ContextFor(user.User{Id: actorId, Role: user.RoleAdmin})

	// when
	_, err := service.ApplyDelta(admin, 100, "initial funding")

	// then: the balance change rolls back together with the failed audit entry
	assert.Error(t, err)
	pool, err := repo.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pool.Balance)
	assert.Nil(t, pool.UpdatedAt)
}

func TestRepositoryImpl_Get_UninitializedPool(t *testing.T) {
	// given
	ctx, repo, _ := setupTestRepository(t)

	// when
	pool, err := repo.Get(ctx)

	// then
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pool.Balance)
	assert.Nil(t, pool.UpdatedAt)
	assert.Nil(t, pool.UpdatedBy)
}

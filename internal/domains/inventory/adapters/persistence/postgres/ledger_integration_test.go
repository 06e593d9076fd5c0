//go:build integration

package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/acme/go-gin-storefront/internal/domains/inventory/domain"
	"github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	"github.com/acme/go-gin-storefront/internal/platform/migrations"
)

func setupInventoryPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestLedger_ReserveAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	ledger := NewLedger(db)
	ctx := context.Background()

	inv, err := domain.NewInventory(1, 10)
	require.NoError(t, err)
	_, err = ledger.Save(ctx, inv)
	require.NoError(t, err)

	require.NoError(t, ledger.Reserve(ctx, 1, 4))
	fetched, err := ledger.GetByProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, fetched.Capacity)

	require.NoError(t, ledger.Release(ctx, 1, 4))
	fetched, err = ledger.GetByProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, fetched.Capacity)
}

func TestLedger_ReserveDistinguishesShortageFromMissingRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	ledger := NewLedger(db)
	ctx := context.Background()

	inv, err := domain.NewInventory(1, 2)
	require.NoError(t, err)
	_, err = ledger.Save(ctx, inv)
	require.NoError(t, err)

	err = ledger.Reserve(ctx, 1, 3)
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	err = ledger.Reserve(ctx, 99, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)

	fetched, err := ledger.GetByProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Capacity)
}

func TestLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	ledger := NewLedger(db)
	ctx := context.Background()

	const capacity = 20
	const callers = 30
	inv, err := domain.NewInventory(1, capacity)
	require.NoError(t, err)
	_, err = ledger.Save(ctx, inv)
	require.NoError(t, err)

	var succeeded int64
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Reserve(ctx, 1, 1); err == nil {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(capacity), succeeded)
	fetched, err := ledger.GetByProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, fetched.Capacity)
}

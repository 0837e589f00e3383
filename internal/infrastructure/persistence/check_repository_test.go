package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCheckTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.CheckModel{})
	require.NoError(t, err)

	return db
}

func TestGormCheckRepository_SaveAndTransition(t *testing.T) {
	db := setupCheckTestDB(t)
	repo := NewGormCheckRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	due := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	c, err := check.NewIncoming("CHK-100", decimal.NewFromInt(500), valueobject.ILS,
		party.KindCustomer, customerID, due)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, check.StatusPending, found.Status)

	require.NoError(t, found.Transition(check.StatusCashed))
	require.NoError(t, repo.Save(ctx, found))

	found, err = repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, check.StatusCashed, found.Status)
	assert.Equal(t, 2, found.Version)
}

func TestGormCheckRepository_StaleWriteFails(t *testing.T) {
	db := setupCheckTestDB(t)
	repo := NewGormCheckRepository(db)
	ctx := context.Background()

	c, err := check.NewIncoming("CHK-101", decimal.NewFromInt(500), valueobject.ILS,
		party.KindCustomer, uuid.New(), time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	// two readers pick up the same version
	first, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, first.Transition(check.StatusCashed))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Transition(check.StatusBounced))
	err = repo.Save(ctx, second)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OPTIMISTIC_LOCK_FAILED", domainErr.Code)

	// the first transition survives
	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, check.StatusCashed, found.Status)
}

func TestGormCheckRepository_FindByParty(t *testing.T) {
	db := setupCheckTestDB(t)
	repo := NewGormCheckRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	day := func(d int) time.Time { return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC) }

	for i, d := range []int{5, 20, 12} {
		c, err := check.NewIncoming(
			"CHK-"+string(rune('A'+i)), decimal.NewFromInt(100), valueobject.ILS,
			party.KindCustomer, customerID, day(d))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	other, err := check.NewIncoming("CHK-Z", decimal.NewFromInt(100), valueobject.ILS,
		party.KindCustomer, uuid.New(), day(1))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	checks, err := repo.FindByParty(ctx, party.KindCustomer, customerID)
	require.NoError(t, err)
	require.Len(t, checks, 3)
	assert.Equal(t, day(20), checks[0].DueDate.UTC())
	assert.Equal(t, day(5), checks[2].DueDate.UTC())
}

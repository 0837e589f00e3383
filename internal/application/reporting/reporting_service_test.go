package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memChart struct {
	accounts map[string]*ledger.Account
}

func newMemChart() *memChart {
	c := &memChart{accounts: make(map[string]*ledger.Account)}
	chart := ledger.DefaultChart()
	for i := range chart {
		c.accounts[chart[i].Code] = &chart[i]
	}
	return c
}

func (c *memChart) Lookup(_ context.Context, code string) (*ledger.Account, error) {
	a, ok := c.accounts[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (c *memChart) Invalidate() {}

// MockBatchRepository is a mock implementation of ledger.GLBatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.GLBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.GLBatch), args.Error(1)
}

func (m *MockBatchRepository) FindBySource(ctx context.Context, sourceType ledger.SourceType, sourceID uuid.UUID, purpose ledger.Purpose) (*ledger.GLBatch, error) {
	args := m.Called(ctx, sourceType, sourceID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.GLBatch), args.Error(1)
}

func (m *MockBatchRepository) UpsertBySource(ctx context.Context, batch *ledger.GLBatch) (uuid.UUID, error) {
	args := m.Called(ctx, batch)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockBatchRepository) Void(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBatchRepository) TrialBalance(ctx context.Context, query ledger.TrialBalanceQuery) ([]ledger.TrialBalanceRow, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]ledger.TrialBalanceRow), args.Error(1)
}

func (m *MockBatchRepository) AccountLedger(ctx context.Context, query ledger.AccountLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(shared.Paginated[ledger.LedgerLine]), args.Error(1)
}

func (m *MockBatchRepository) EntityLedger(ctx context.Context, query ledger.EntityLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(shared.Paginated[ledger.LedgerLine]), args.Error(1)
}

// MockPartyRepository is a mock implementation of party.Repository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, kind party.Kind, id uuid.UUID) (*party.Party, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRepository) Save(ctx context.Context, p *party.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartyRepository) SaveBalances(ctx context.Context, kind party.Kind, id uuid.UUID, b party.Breakdown, observedVersion int) error {
	args := m.Called(ctx, kind, id, b, observedVersion)
	return args.Error(0)
}

func TestTrialBalancePassesQueryThrough(t *testing.T) {
	ctx := context.Background()
	batches := new(MockBatchRepository)
	svc := NewService(ledger.NewService(newMemChart(), batches), new(MockPartyRepository))

	query := ledger.TrialBalanceQuery{
		Range: shared.DateRange{
			From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	rows := []ledger.TrialBalanceRow{
		{AccountCode: ledger.CodeAccountsReceivable, TotalDebit: decimal.NewFromInt(500), TotalCredit: decimal.Zero},
		{AccountCode: ledger.CodeRevenue, TotalDebit: decimal.Zero, TotalCredit: decimal.NewFromInt(500)},
	}
	batches.On("TrialBalance", ctx, query).Return(rows, nil)

	got, err := svc.TrialBalance(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	batches.AssertExpectations(t)
}

func TestPartyBalanceReturnsMaterializedBreakdown(t *testing.T) {
	ctx := context.Background()
	parties := new(MockPartyRepository)
	svc := NewService(ledger.NewService(newMemChart(), new(MockBatchRepository)), parties)

	p, err := party.NewParty(party.KindCustomer, "Acme Ltd", decimal.NewFromInt(100))
	require.NoError(t, err)
	p.ApplyBreakdown(party.Breakdown{
		Opening:        decimal.NewFromInt(100),
		SubBalances:    map[party.Category]decimal.Decimal{party.CategorySales: decimal.NewFromInt(250)},
		CurrentBalance: decimal.NewFromInt(350),
		ComputedAt:     time.Now(),
	})
	parties.On("FindByID", ctx, party.KindCustomer, p.ID).Return(p, nil)

	b, err := svc.PartyBalance(ctx, party.KindCustomer, p.ID)
	require.NoError(t, err)
	assert.True(t, b.CurrentBalance.Equal(decimal.NewFromInt(350)))
	assert.True(t, b.Get(party.CategorySales).Equal(decimal.NewFromInt(250)))
	assert.False(t, b.Approximate)
}

func TestPartyBalanceUnknownParty(t *testing.T) {
	ctx := context.Background()
	parties := new(MockPartyRepository)
	svc := NewService(ledger.NewService(newMemChart(), new(MockBatchRepository)), parties)

	id := uuid.New()
	parties.On("FindByID", ctx, party.KindSupplier, id).Return(nil, shared.ErrNotFound)

	_, err := svc.PartyBalance(ctx, party.KindSupplier, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

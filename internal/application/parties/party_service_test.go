package parties

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memPartyRepo struct {
	parties map[uuid.UUID]*party.Party
}

func newMemPartyRepo() *memPartyRepo {
	return &memPartyRepo{parties: make(map[uuid.UUID]*party.Party)}
}

func (m *memPartyRepo) FindByID(ctx context.Context, kind party.Kind, id uuid.UUID) (*party.Party, error) {
	if p, ok := m.parties[id]; ok && p.Kind == kind {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memPartyRepo) Save(ctx context.Context, p *party.Party) error {
	m.parties[p.ID] = p
	return nil
}

func (m *memPartyRepo) SaveBalances(ctx context.Context, kind party.Kind, id uuid.UUID, b party.Breakdown, observedVersion int) error {
	p, ok := m.parties[id]
	if !ok {
		return shared.ErrNotFound
	}
	if p.Version != observedVersion {
		return shared.ErrConcurrencyConflict
	}
	p.ApplyBreakdown(b)
	return nil
}

type busSpy struct {
	events []shared.DomainEvent
}

func (b *busSpy) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.events = append(b.events, events...)
	return nil
}

func newTestService() (*Service, *memPartyRepo, *busSpy) {
	repo := newMemPartyRepo()
	bus := &busSpy{}
	return NewService(repo, bus, zap.NewNop()), repo, bus
}

func TestCreatePublishesOpeningBalanceEvent(t *testing.T) {
	svc, repo, bus := newTestService()

	p, err := svc.Create(context.Background(), party.KindCustomer, "Acme", decimal.NewFromInt(500))
	require.NoError(t, err)

	saved, err := repo.FindByID(context.Background(), party.KindCustomer, p.ID)
	require.NoError(t, err)
	assert.True(t, saved.OpeningBalance.Equal(decimal.NewFromInt(500)))

	require.Len(t, bus.events, 1)
	ev, ok := bus.events[0].(*source.OpeningBalanceChangedEvent)
	require.True(t, ok)
	assert.Equal(t, party.KindCustomer, ev.PartyKind)
	assert.Equal(t, p.ID, ev.PartyID)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _, bus := newTestService()

	_, err := svc.Create(context.Background(), party.Kind("GHOST"), "Acme", decimal.Zero)
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), party.KindSupplier, "", decimal.Zero)
	assert.Error(t, err)

	assert.Empty(t, bus.events)
}

func TestSetOpeningBalance(t *testing.T) {
	svc, _, bus := newTestService()

	p, err := svc.Create(context.Background(), party.KindSupplier, "Parts Ltd", decimal.NewFromInt(100))
	require.NoError(t, err)
	bus.events = nil

	updated, err := svc.SetOpeningBalance(context.Background(), party.KindSupplier, p.ID, decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, updated.OpeningBalance.Equal(decimal.NewFromInt(250)))

	require.Len(t, bus.events, 1)
	ev, ok := bus.events[0].(*source.OpeningBalanceChangedEvent)
	require.True(t, ok)
	assert.Equal(t, p.ID, ev.PartyID)
}

func TestSetOpeningBalanceUnknownParty(t *testing.T) {
	svc, _, bus := newTestService()

	_, err := svc.SetOpeningBalance(context.Background(), party.KindCustomer, uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, bus.events)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/ledger/internal/application/checks"
	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCheckRepository implements check.Repository for testing
type MockCheckRepository struct {
	mock.Mock
}

func (m *MockCheckRepository) FindByID(ctx context.Context, id uuid.UUID) (*check.Check, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*check.Check), args.Error(1)
}

func (m *MockCheckRepository) Save(ctx context.Context, c *check.Check) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCheckRepository) FindByParty(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]check.Check, error) {
	args := m.Called(ctx, kind, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]check.Check), args.Error(1)
}

type nopBus struct{}

func (nopBus) Publish(ctx context.Context, events ...shared.DomainEvent) error { return nil }

func newCheckTestRouter(repo check.Repository) *gin.Engine {
	svc := checks.NewService(repo, nopBus{}, zap.NewNop())
	h := NewCheckHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func TestCheckHandlerRecordIncoming(t *testing.T) {
	repo := new(MockCheckRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*check.Check")).Return(nil)
	r := newCheckTestRouter(repo)

	body, _ := json.Marshal(map[string]any{
		"number":     "100234",
		"amount":     "1500.00",
		"currency":   "ILS",
		"party_kind": "CUSTOMER",
		"party_id":   uuid.New().String(),
		"due_date":   "2025-06-15",
		"bank_name":  "Leumi",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/checks/incoming", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool          `json:"success"`
		Data    CheckResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "INCOMING", resp.Data.Direction)
	assert.Equal(t, "PENDING", resp.Data.Status)
	assert.Equal(t, "2025-06-15", resp.Data.DueDate)
	repo.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("*check.Check"))
}

func TestCheckHandlerRecordOutgoingStartsIssued(t *testing.T) {
	repo := new(MockCheckRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*check.Check")).Return(nil)
	r := newCheckTestRouter(repo)

	body, _ := json.Marshal(map[string]any{
		"number":     "700001",
		"amount":     "820.50",
		"currency":   "USD",
		"party_kind": "SUPPLIER",
		"party_id":   uuid.New().String(),
		"due_date":   "2025-07-01",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/checks/outgoing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data CheckResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OUTGOING", resp.Data.Direction)
	assert.Equal(t, "ISSUED", resp.Data.Status)
}

func TestCheckHandlerRecordValidation(t *testing.T) {
	repo := new(MockCheckRepository)
	r := newCheckTestRouter(repo)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing number",
			body: map[string]any{
				"amount": "10", "currency": "ILS", "party_kind": "CUSTOMER",
				"party_id": uuid.New().String(), "due_date": "2025-06-15",
			},
		},
		{
			name: "bad due date",
			body: map[string]any{
				"number": "1", "amount": "10", "currency": "ILS", "party_kind": "CUSTOMER",
				"party_id": uuid.New().String(), "due_date": "15/06/2025",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/v1/checks/incoming", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckHandlerTransition(t *testing.T) {
	partyID := uuid.New()
	existing, err := check.NewIncoming("100234", decimalFromString(t, "1500"), "ILS", party.KindCustomer, partyID, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	existing.ClearDomainEvents()

	repo := new(MockCheckRepository)
	repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	repo.On("Save", mock.Anything, existing).Return(nil)
	r := newCheckTestRouter(repo)

	body, _ := json.Marshal(map[string]any{"status": "CASHED"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/checks/"+existing.ID.String()+"/transition", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data CheckResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CASHED", resp.Data.Status)
}

func TestCheckHandlerIllegalTransition(t *testing.T) {
	partyID := uuid.New()
	existing, err := check.NewIncoming("100234", decimalFromString(t, "1500"), "ILS", party.KindCustomer, partyID, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, existing.Transition(check.StatusCashed))
	existing.ClearDomainEvents()

	repo := new(MockCheckRepository)
	repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	r := newCheckTestRouter(repo)

	body, _ := json.Marshal(map[string]any{"status": "PENDING"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/checks/"+existing.ID.String()+"/transition", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckHandlerByParty(t *testing.T) {
	partyID := uuid.New()
	c1, err := check.NewIncoming("1", decimalFromString(t, "100"), "ILS", party.KindCustomer, partyID, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	repo := new(MockCheckRepository)
	repo.On("FindByParty", mock.Anything, party.KindCustomer, partyID).Return([]check.Check{*c1}, nil)
	r := newCheckTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/parties/CUSTOMER/"+partyID.String()+"/checks", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []CheckResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "1", resp.Data[0].Number)
}

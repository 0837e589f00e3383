package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAccountRepository implements ledger.AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context) ([]ledger.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) IsReferenced(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func newAccountTestRouter(repo ledger.AccountRepository) *gin.Engine {
	h := NewAccountHandler(repo, cache.NewChartCache(repo))

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func TestAccountHandlerList(t *testing.T) {
	repo := new(MockAccountRepository)
	repo.On("FindAll", mock.Anything).Return(ledger.DefaultChart(), nil)
	r := newAccountTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/accounts", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []AccountResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, len(ledger.DefaultChart()))
}

func TestAccountHandlerGet(t *testing.T) {
	account, err := ledger.NewAccount("1200", "Accounts Receivable", ledger.AccountTypeAsset)
	require.NoError(t, err)

	repo := new(MockAccountRepository)
	repo.On("FindByCode", mock.Anything, "1200").Return(account, nil)
	repo.On("FindByCode", mock.Anything, "9999").Return(nil, shared.ErrNotFound)
	r := newAccountTestRouter(repo)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/accounts/1200", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data AccountResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "1200", resp.Data.Code)
		assert.Equal(t, "ASSET", resp.Data.Type)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/accounts/9999", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccountHandlerCreate(t *testing.T) {
	repo := new(MockAccountRepository)
	repo.On("FindByCode", mock.Anything, "1400").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Account")).Return(nil)
	r := newAccountTestRouter(repo)

	body, _ := json.Marshal(map[string]any{
		"code": "1400",
		"name": "Prepaid Expenses",
		"type": "ASSET",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	repo.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("*ledger.Account"))
}

func TestAccountHandlerCreateTypeMismatch(t *testing.T) {
	repo := new(MockAccountRepository)
	r := newAccountTestRouter(repo)

	// 1xxx codes are assets, not revenue
	body, _ := json.Marshal(map[string]any{
		"code": "1400",
		"name": "Mislabeled",
		"type": "REVENUE",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAccountHandlerUpdateRenameBlockedWhenReferenced(t *testing.T) {
	account, err := ledger.NewAccount("4100", "Revenue", ledger.AccountTypeRevenue)
	require.NoError(t, err)

	repo := new(MockAccountRepository)
	repo.On("FindByCode", mock.Anything, "4100").Return(account, nil)
	repo.On("IsReferenced", mock.Anything, "4100").Return(true, nil)
	r := newAccountTestRouter(repo)

	body, _ := json.Marshal(map[string]any{"name": "Sales Revenue"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/api/v1/accounts/4100", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAccountHandlerUpdateDeactivate(t *testing.T) {
	account, err := ledger.NewAccount("5200", "General Expenses", ledger.AccountTypeExpense)
	require.NoError(t, err)

	repo := new(MockAccountRepository)
	repo.On("FindByCode", mock.Anything, "5200").Return(account, nil)
	repo.On("Save", mock.Anything, account).Return(nil)
	r := newAccountTestRouter(repo)

	body, _ := json.Marshal(map[string]any{"active": false})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/api/v1/accounts/5200", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data AccountResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Active)
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("context value wins over header", func(t *testing.T) {
		c, _ := testContext(t)
		c.Set(RequestIDKey, "ctx-id")
		c.Request.Header.Set(RequestIDKey, "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("header when context empty", func(t *testing.T) {
		c, _ := testContext(t)
		c.Request.Header.Set(RequestIDKey, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when not set", func(t *testing.T) {
		c, _ := testContext(t)
		assert.Equal(t, "", getRequestID(c))
	})
}

func TestGetUserID(t *testing.T) {
	c, _ := testContext(t)
	c.Request.Header.Set(UserIDHeader, "f47ac10b-58cc-4372-a567-0e02b2c3d479")

	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", id.String())

	c, _ = testContext(t)
	_, err = getUserID(c)
	assert.Error(t, err)

	c, _ = testContext(t)
	c.Request.Header.Set(UserIDHeader, "not-a-uuid")
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestBaseHandlerResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success", func(t *testing.T) {
		c, w := testContext(t)
		h.Success(c, map[string]string{"key": "value"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("SuccessWithMeta", func(t *testing.T) {
		c, w := testContext(t)
		h.SuccessWithMeta(c, []string{"a", "b"}, 100, 1, 10)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
	})

	t.Run("Created", func(t *testing.T) {
		c, w := testContext(t)
		h.Created(c, map[string]string{"id": "123"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("BadRequest carries the request ID", func(t *testing.T) {
		c, w := testContext(t)
		c.Set(RequestIDKey, "req-123")
		h.BadRequest(c, "Invalid request")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "req-123", resp.Error.RequestID)
	})

	t.Run("Conflict", func(t *testing.T) {
		c, w := testContext(t)
		h.Conflict(c, "already exists")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ErrorWithCode derives the status", func(t *testing.T) {
		c, w := testContext(t)
		h.ErrorWithCode(c, dto.ErrCodeUnbalancedBatch, "Debits do not equal credits")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeUnbalancedBatch, decodeResponse(t, w).Error.Code)
	})
}

func TestBindJSON(t *testing.T) {
	h := &BaseHandler{}

	type payload struct {
		Name   string `json:"name" binding:"required"`
		Amount string `json:"amount" binding:"required"`
	}

	bind := func(body string) (*httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req payload
		return w, h.BindJSON(c, &req)
	}

	t.Run("valid body binds", func(t *testing.T) {
		_, ok := bind(`{"name":"office rent","amount":"1200"}`)
		assert.True(t, ok)
	})

	t.Run("missing fields produce per-field details", func(t *testing.T) {
		w, ok := bind(`{"name":"office rent"}`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
	})

	t.Run("malformed JSON is a plain bad request", func(t *testing.T) {
		w, ok := bind(`{"name":`)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := testContext(t)
		h.HandleError(c, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "NOT_FOUND error",
			err:          shared.ErrNotFound,
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name:         "ALREADY_EXISTS error",
			err:          shared.ErrAlreadyExists,
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeAlreadyExists,
		},
		{
			name:         "INVALID_INPUT error",
			err:          shared.ErrInvalidInput,
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidInput,
		},
		{
			name:         "INVALID_STATE error",
			err:          shared.ErrInvalidState,
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeInvalidState,
		},
		{
			name:         "CONCURRENCY_CONFLICT error",
			err:          shared.ErrConcurrencyConflict,
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeConcurrencyConflict,
		},
		{
			name:         "unbalanced batch error",
			err:          shared.NewDomainError(shared.CodeUnbalancedBatch, "debits 100 credits 90"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeUnbalancedBatch,
		},
		{
			name:         "missing FX rate error",
			err:          shared.NewDomainError(shared.CodeMissingFXRate, "no USD/ILS rate on or before 2025-03-01"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeMissingFXRate,
		},
		{
			name:         "illegal check transition error",
			err:          shared.NewDomainError(shared.CodeIllegalCheckTransition, "CASHED -> PENDING"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  dto.ErrCodeIllegalCheckTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(t)
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}

	t.Run("wrapped domain error", func(t *testing.T) {
		c, w := testContext(t)
		h.HandleError(c, fmt.Errorf("load party: %w", shared.ErrNotFound))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		c, w := testContext(t)
		h.HandleError(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})
}

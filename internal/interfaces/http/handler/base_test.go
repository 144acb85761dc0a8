package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/identity"
	"github.com/gridledger/billing/internal/domain/shared"
	"github.com/gridledger/billing/internal/interfaces/http/dto"
	"github.com/gridledger/billing/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestHandleError_DomainCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{shared.NewValidationError("amount_paid", "must be positive"), http.StatusBadRequest, dto.ErrCodeValidation},
		{shared.NewNotFoundError("invoice"), http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.NewPermissionDeniedError("no access"), http.StatusForbidden, dto.ErrCodePermissionDenied},
		{shared.NewDomainError(shared.CodeDuplicateAssignment, "taken"), http.StatusConflict, dto.ErrCodeDuplicateAssignment},
		{shared.NewInvariantViolationError("status is derived"), http.StatusUnprocessableEntity, dto.ErrCodeInvariantViolation},
		{shared.NewAlreadyExistsError("client", "CL-1"), http.StatusConflict, dto.ErrCodeAlreadyExists},
		{shared.NewDomainError(shared.CodeConcurrencyConflict, "retry"), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/", "")
			h := &BaseHandler{}

			h.HandleError(c, fmt.Errorf("service: %w", tt.err))

			assert.Equal(t, tt.status, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.code, info.Code)
		})
	}
}

func TestHandleError_HidesUnknownErrors(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	h := &BaseHandler{}

	h.HandleError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeInternal, info.Code)
	assert.NotContains(t, info.Message, "pq")
	assert.Len(t, c.Errors, 1)
}

func TestHandleError_Nil(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	h := &BaseHandler{}

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
	assert.Equal(t, http.StatusOK, w.Code)
}

type bindTarget struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func TestHandleBindError(t *testing.T) {
	t.Run("validation failure lists fields", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"name":"Ana","email":"nope"}`)
		h := &BaseHandler{}
		var req bindTarget
		err := c.ShouldBindJSON(&req)
		require.Error(t, err)

		h.HandleBindError(c, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		info := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, info.Code)
		require.Len(t, info.Details, 1)
		assert.Equal(t, "email", info.Details[0].Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"name":`)
		h := &BaseHandler{}
		var req bindTarget
		err := c.ShouldBindJSON(&req)
		require.Error(t, err)

		h.HandleBindError(c, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})
}

func TestPathID(t *testing.T) {
	h := &BaseHandler{}

	c, _ := newTestContext(http.MethodGet, "/", "")
	want := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: want.String()}}
	got, ok := h.pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, want, got)

	c, w := newTestContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	_, ok = h.pathID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeError(t, w).Code)
}

func TestActor(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext(http.MethodGet, "/", "")
	_, ok := h.actor(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, _ = newTestContext(http.MethodGet, "/", "")
	want := identity.NewActor(uuid.New(), "ana", identity.RoleFinance)
	c.Set(middleware.ActorKey, want)
	got, ok := h.actor(c)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestPageOf(t *testing.T) {
	page, size := pageOf(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, dto.DefaultPageSize, size)

	page, size = pageOf(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)
}

func TestHealth(t *testing.T) {
	t.Run("reachable database", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/health", "")
		NewHealthHandler(pingerFunc(func() error { return nil }), "1.0.0").Health(c)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)
	})

	t.Run("unreachable database", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/health", "")
		NewHealthHandler(pingerFunc(func() error { return errors.New("dial tcp: refused") }), "1.0.0").Health(c)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

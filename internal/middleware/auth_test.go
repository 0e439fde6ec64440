package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/orders/PO-1/branches/main/rollback", nil)
	ctx := context.WithValue(req.Context(), RoleKey, role)
	return req.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	m := &AuthMiddleware{}
	var reached bool
	gated := m.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	t.Run("admin passes through", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, requestWithRole("admin"))
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("worker is rejected", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, requestWithRole("worker"))
		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role is unauthorized", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders/PO-1/branches/main/rollback", nil))
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"class-sync/internal/handler/middleware"
	"class-sync/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTokenRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	mw := middleware.NewShopTokenMiddleware(config.NewTestConfig())
	router.POST("/hooks/orders", mw.RequireShopToken(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestShopTokenMiddleware(t *testing.T) {
	cases := []struct {
		name       string
		token      string
		expectCode int
	}{
		{name: "valid token passes", token: "test-token", expectCode: http.StatusOK},
		{name: "wrong token rejected", token: "wrong", expectCode: http.StatusUnauthorized},
		{name: "missing token rejected", token: "", expectCode: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTokenRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/hooks/orders", nil)
			if tc.token != "" {
				req.Header.Set("X-Shop-Token", tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectCode, rec.Code)
		})
	}
}

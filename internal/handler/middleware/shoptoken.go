package middleware

import (
	"crypto/subtle"
	"net/http"

	"class-sync/internal/handler/httperr"
	"class-sync/internal/pkg/config"
	"class-sync/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const shopTokenHeader = "X-Shop-Token"

// ShopTokenMiddleware authenticates the storefront's server-to-server hooks
// with the shared token from configuration.
type ShopTokenMiddleware struct {
	token string
}

func NewShopTokenMiddleware(cfg config.Config) *ShopTokenMiddleware {
	return &ShopTokenMiddleware{token: cfg.Shop.HookToken}
}

func (m *ShopTokenMiddleware) RequireShopToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(shopTokenHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(m.token)) != 1 {
			httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("shop token mismatch"), "Unauthorized", nil)
			return
		}
		c.Next()
	}
}

package router

import (
	"net/url"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// URLMiddleware adds the base URL the backend is reachable at to the request
// context. Handlers use it to construct the links in their responses.
func URLMiddleware(url *url.URL) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(models.DBContextURL), url.String())
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"biblio_back_end/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	APIMaxRequests = 100 // par minute et par IP
	APIWindow      = 1 * time.Minute
)

// APIRateLimit borne le nombre de requêtes par IP sur une fenêtre fixe.
// Sans Redis, le limiteur s'efface : il protège, il ne conditionne pas le
// service.
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "api_requests:" + c.ClientIP()

		requests, err := cache.IncrWindow(key, APIWindow)
		if err != nil {
			c.Next()
			return
		}
		if requests > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Trop de requêtes. Réessayez dans 1 minute",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", APIMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", APIMaxRequests-requests))
		c.Next()
	}
}

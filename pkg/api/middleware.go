package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ridebook/pkg/auth"
	"ridebook/pkg/logger"
	"ridebook/pkg/models"
)

const requesterKey = "requester"

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}

// authenticate resolves the bearer token into a requester and stores it on the
// gin context and the request context.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		r, err := h.svc.Account().Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.Set(requesterKey, r)
		c.Request = c.Request.WithContext(auth.WithRequester(c.Request.Context(), r))
		c.Next()
	}
}

func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := requester(c)
		for _, role := range roles {
			if r.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func requester(c *gin.Context) auth.Requester {
	if v, ok := c.Get(requesterKey); ok {
		if r, ok := v.(auth.Requester); ok {
			return r
		}
	}
	r, _ := auth.RequesterFrom(c.Request.Context())
	return r
}

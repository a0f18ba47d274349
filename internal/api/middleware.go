package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"blood-sea-api/internal/common/auth"
	stderrors "blood-sea-api/internal/common/errors"
	"blood-sea-api/internal/models"
	"blood-sea-api/internal/store"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// principalFrom returns the authenticated principal set by the auth
// middleware. The bool is false on unauthenticated routes.
func principalFrom(c *gin.Context) (*auth.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*auth.Principal)
	return principal, ok
}

// corsMiddleware answers preflight requests and opens the API to browser
// clients. The mobile apps send no Origin, so this only affects web.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// authMiddleware verifies the bearer token and stores the principal on the
// request context. Header problems fail before the verifier runs.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(), auth.ToStandardError(err)))
			return
		}

		principal, err := s.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(), auth.ToStandardError(err)))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// requireDonor checks the stored user document rather than the token: the
// donor flag can change without reissuing tokens. A missing document is a
// 404, not a 403.
func (s *Server) requireDonor() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok {
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
				stderrors.NewUnauthorizedError("authentication required")))
			return
		}

		doc, err := s.store.Get(c.Request.Context(), store.CollectionUsers, principal.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
					stderrors.NewNotFoundError("user", principal.ID)))
				return
			}
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
			return
		}

		role := store.StringField(doc, "role")
		if role != models.RoleDonor && role != models.RoleAdmin {
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
				stderrors.NewForbiddenError("donor role required")))
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware applies one named policy. Authenticated callers are
// keyed by user id so limits follow the account across devices; anonymous
// callers fall back to their client address.
func (s *Server) rateLimitMiddleware(policyName string) gin.HandlerFunc {
	policy, exists := s.policies[policyName]
	if !exists {
		// Unconfigured policies never block traffic.
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		decision := s.limiter.Check(c.Request.Context(), policy, callerKey(c))
		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds() + 0.999)
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
				stderrors.NewRateLimitedError(retryAfter)))
			return
		}
		c.Next()
	}
}

// callerKey identifies the caller for rate limiting: the authenticated
// user id when present, else the nearest client address.
func callerKey(c *gin.Context) string {
	if principal, ok := principalFrom(c); ok {
		return principal.ID
	}
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	return c.Request.RemoteAddr
}

// Package api exposes the HTTP surface: notification dispatch, donor
// profile management, and operational endpoints.
package api

import (
	"net/http"
	"time"

	"blood-sea-api/internal/common/auth"
	stderrors "blood-sea-api/internal/common/errors"
	"blood-sea-api/internal/common/logger"
	"blood-sea-api/internal/common/validation"
	"blood-sea-api/internal/notify"
	"blood-sea-api/internal/ratelimit"
	"blood-sea-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the wired dependencies behind every route.
type Server struct {
	store        store.Store
	dispatcher   *notify.Dispatcher
	validator    *validation.Validator
	limiter      *ratelimit.Limiter
	verifier     auth.IdentityVerifier
	policies     map[string]ratelimit.Policy
	errorHandler *stderrors.ErrorHandler
	logger       logger.Logger
}

func NewServer(s store.Store, dispatcher *notify.Dispatcher, validator *validation.Validator,
	limiter *ratelimit.Limiter, verifier auth.IdentityVerifier,
	policies map[string]ratelimit.Policy, log logger.Logger) *Server {
	apiLogger := log.WithFields(map[string]interface{}{"component": "api"})
	return &Server{
		store:        s,
		dispatcher:   dispatcher,
		validator:    validator,
		limiter:      limiter,
		verifier:     verifier,
		policies:     policies,
		errorHandler: stderrors.NewErrorHandler(apiLogger),
		logger:       apiLogger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.Use(s.authMiddleware())
	apiGroup.Use(s.rateLimitMiddleware("general"))

	notifications := apiGroup.Group("/notifications")
	{
		notifications.POST("/send", s.rateLimitMiddleware("notifications"), s.handleSendNotification)
		notifications.POST("/blood-request", s.rateLimitMiddleware("bloodRequests"), s.handleBloodRequest)
		notifications.POST("/bulk", s.rateLimitMiddleware("notifications"), s.handleBulkNotification)
		notifications.GET("/user/:userId", s.handleListUserNotifications)
	}

	users := apiGroup.Group("/users")
	{
		users.PUT("/availability", s.requireDonor(), s.handleUpdateAvailability)
		users.POST("/fcm-token", s.handleRegisterToken)
		users.DELETE("/fcm-token", s.handleRemoveToken)
		users.GET("/notification-settings", s.handleGetNotificationSettings)
		users.PUT("/notification-settings", s.handlePutNotificationSettings)
		users.POST("/test-notification", s.rateLimitMiddleware("notifications"), s.handleTestNotification)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "blood-sea-api",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// validateBody reads and validates the request body against a schema.
// It writes the error response itself; callers stop when ok is false.
func (s *Server) validateBody(c *gin.Context, schemaName string) (body []byte, ok bool) {
	body, err := c.GetRawData()
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("unreadable request body")))
		return nil, false
	}

	fieldErrors, err := s.validator.Validate(schemaName, body)
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
		return nil, false
	}
	if len(fieldErrors) > 0 {
		respondValidationErrors(c, fieldErrors)
		return nil, false
	}
	return body, true
}

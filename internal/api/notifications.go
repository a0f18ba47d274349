package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	stderrors "blood-sea-api/internal/common/errors"
	"blood-sea-api/internal/common/validation"
	"blood-sea-api/internal/models"
	"blood-sea-api/internal/notify"
	"blood-sea-api/internal/store"

	"github.com/gin-gonic/gin"
)

type sendNotificationRequest struct {
	UserID   string            `json:"userId"`
	Token    string            `json:"token"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data"`
	Priority string            `json:"priority"`
	Type     string            `json:"type"`
}

type bulkNotificationRequest struct {
	UserIDs  []string          `json:"userIds"`
	Tokens   []string          `json:"tokens"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data"`
	Priority string            `json:"priority"`
	Type     string            `json:"type"`
}

type bloodRequestRequest struct {
	RequesterID string `json:"requesterId"`
	DonorID     string `json:"donorId"`
	BloodType   string `json:"bloodType"`
	Hospital    string `json:"hospital"`
	Urgency     string `json:"urgency"`
	Location    string `json:"location"`
	ContactInfo string `json:"contactInfo"`
}

func messageFrom(title, body string, data map[string]string, priority, notificationType string) notify.Message {
	if priority == "" {
		priority = models.PriorityNormal
	}
	if notificationType == "" {
		notificationType = "general"
	}
	return notify.Message{
		Title:    title,
		Body:     body,
		Data:     data,
		Priority: priority,
		Type:     notificationType,
	}
}

func (s *Server) handleSendNotification(c *gin.Context) {
	body, ok := s.validateBody(c, validation.SchemaSendNotification)
	if !ok {
		return
	}

	var req sendNotificationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("request body must be a JSON object")))
		return
	}

	msg := messageFrom(req.Title, req.Body, req.Data, req.Priority, req.Type)
	result, err := s.dispatcher.SendToOne(c.Request.Context(), req.UserID, req.Token, msg)
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
		return
	}

	if !result.Success {
		if result.ErrorReason == notify.ReasonNoToken {
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
				stderrors.NewNoTokenAvailableError(req.UserID)))
			return
		}
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewNotificationSendFailedError(msg.Type, fmt.Errorf("%s", result.ErrorReason))))
		return
	}

	respondOK(c, "notification sent", result)
}

func (s *Server) handleBulkNotification(c *gin.Context) {
	body, ok := s.validateBody(c, validation.SchemaBulkNotification)
	if !ok {
		return
	}

	var req bulkNotificationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("request body must be a JSON object")))
		return
	}

	msg := messageFrom(req.Title, req.Body, req.Data, req.Priority, req.Type)
	summary, err := s.dispatcher.SendToMany(c.Request.Context(), req.UserIDs, req.Tokens, msg)
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
		return
	}

	respondOK(c, "bulk notification dispatched", summary)
}

func (s *Server) handleBloodRequest(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	body, valid := s.validateBody(c, validation.SchemaBloodRequest)
	if !valid {
		return
	}

	var req bloodRequestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("request body must be a JSON object")))
		return
	}

	// The token identifies the requester; an explicit requesterId in the
	// body only matters for admin tooling submitting on someone's behalf.
	requesterID := req.RequesterID
	if requesterID == "" || !principal.HasRole(models.RoleAdmin) {
		requesterID = principal.ID
	}

	result, err := s.dispatcher.SendBloodRequestFanout(c.Request.Context(), notify.FanoutRequest{
		RequesterID: requesterID,
		DonorID:     req.DonorID,
		BloodType:   req.BloodType,
		Hospital:    req.Hospital,
		Urgency:     req.Urgency,
		Location:    req.Location,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
		return
	}

	if result.RequestID == "" {
		// A quiet outcome, not a failure: nobody matched the request.
		c.JSON(http.StatusOK, envelope{
			Success: false,
			Message: "no eligible donors available",
			Data:    result,
		})
		return
	}
	if !result.Success {
		c.JSON(http.StatusOK, envelope{
			Success: false,
			Message: "blood request stored but no donors could be reached",
			Data:    result,
		})
		return
	}

	respondCreated(c, "blood request sent to donors", result)
}

func (s *Server) handleTestNotification(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	// The route carries no payload; a body is only checked if one was sent.
	if raw, err := c.GetRawData(); err == nil && len(bytes.TrimSpace(raw)) > 0 {
		fieldErrors, vErr := s.validator.Validate(validation.SchemaTestNotification, raw)
		if vErr != nil {
			respondClassified(c, s.errorHandler.Classify(c.Request.Context(), vErr))
			return
		}
		if len(fieldErrors) > 0 {
			respondValidationErrors(c, fieldErrors)
			return
		}
	}

	msg := notify.Message{
		Title:    "Test Notification",
		Body:     "Push notifications are working.",
		Priority: models.PriorityNormal,
		Type:     "test",
	}
	result, err := s.dispatcher.SendToOne(c.Request.Context(), principal.ID, "", msg)
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
		return
	}
	if !result.Success {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewNoTokenAvailableError(principal.ID)))
		return
	}

	respondOK(c, "test notification sent", result)
}

// handleListUserNotifications returns the delivery history for one user,
// newest first. Callers may only read their own history unless they carry
// the admin role.
func (s *Server) handleListUserNotifications(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	userID := c.Param("userId")
	if userID != principal.ID && !principal.HasRole(models.RoleAdmin) {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewForbiddenError("cannot read another user's notifications")))
		return
	}

	docs, err := s.store.Query(c.Request.Context(), store.CollectionNotifications, []store.Filter{
		{Field: "recipientId", Op: store.OpEqual, Value: userID},
	})
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), err))
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return createdAtOf(docs[i]).After(createdAtOf(docs[j]))
	})

	respondOK(c, "notifications retrieved", gin.H{
		"notifications": docs,
		"count":         len(docs),
	})
}

func createdAtOf(doc store.Document) time.Time {
	if ts, ok := doc["createdAt"].(time.Time); ok {
		return ts
	}
	return time.Time{}
}

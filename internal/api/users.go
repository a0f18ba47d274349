package api

import (
	"encoding/json"
	"errors"
	"time"

	stderrors "blood-sea-api/internal/common/errors"
	"blood-sea-api/internal/common/validation"
	"blood-sea-api/internal/models"
	"blood-sea-api/internal/store"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleUpdateAvailability(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	body, valid := s.validateBody(c, validation.SchemaAvailability)
	if !valid {
		return
	}

	var req struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("request body must be a JSON object")))
		return
	}

	err := s.store.Update(c.Request.Context(), store.CollectionUsers, principal.ID, store.Document{
		"isAvailable": req.IsAvailable,
	})
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), s.userUpdateError(err, principal.ID)))
		return
	}

	s.logger.Info("donor availability updated", map[string]interface{}{
		"userId":      principal.ID,
		"isAvailable": req.IsAvailable,
	})
	respondOK(c, "availability updated", gin.H{"isAvailable": req.IsAvailable})
}

func (s *Server) handleRegisterToken(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	body, valid := s.validateBody(c, validation.SchemaFCMToken)
	if !valid {
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("request body must be a JSON object")))
		return
	}

	err := s.store.Update(c.Request.Context(), store.CollectionUsers, principal.ID, store.Document{
		"fcmToken":       req.Token,
		"tokenUpdatedAt": time.Now().UTC(),
	})
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), s.userUpdateError(err, principal.ID)))
		return
	}

	respondOK(c, "device token registered", nil)
}

func (s *Server) handleRemoveToken(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	err := s.store.Update(c.Request.Context(), store.CollectionUsers, principal.ID, store.Document{
		"fcmToken":       "",
		"tokenUpdatedAt": time.Now().UTC(),
	})
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), s.userUpdateError(err, principal.ID)))
		return
	}

	respondOK(c, "device token removed", nil)
}

func (s *Server) handleGetNotificationSettings(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	doc, err := s.store.Get(c.Request.Context(), store.CollectionUsers, principal.ID)
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), s.userUpdateError(err, principal.ID)))
		return
	}

	respondOK(c, "", settingsFromDocument(doc))
}

func (s *Server) handlePutNotificationSettings(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewUnauthorizedError("authentication required")))
		return
	}

	body, valid := s.validateBody(c, validation.SchemaNotificationSettings)
	if !valid {
		return
	}

	doc, err := s.store.Get(c.Request.Context(), store.CollectionUsers, principal.ID)
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), s.userUpdateError(err, principal.ID)))
		return
	}

	// Omitted fields keep their stored value; only the provided ones change.
	settings := settingsFromDocument(doc)
	if err := json.Unmarshal(body, settings); err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(),
			stderrors.NewValidationFailedError("request body must be a JSON object")))
		return
	}

	err = s.store.Update(c.Request.Context(), store.CollectionUsers, principal.ID, store.Document{
		"notificationSettings": settingsDocument(settings),
	})
	if err != nil {
		respondClassified(c, s.errorHandler.Classify(c.Request.Context(), s.userUpdateError(err, principal.ID)))
		return
	}

	respondOK(c, "notification settings updated", settings)
}

// userUpdateError turns a store miss on the caller's own document into a
// proper 404.
func (s *Server) userUpdateError(err error, userID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return stderrors.NewNotFoundError("user", userID)
	}
	return err
}

// settingsFromDocument reads stored notification settings, falling back to
// the all-enabled defaults for users who never saved any.
func settingsFromDocument(doc store.Document) *models.NotificationSettings {
	raw, ok := doc["notificationSettings"].(map[string]interface{})
	if !ok {
		return models.DefaultNotificationSettings()
	}
	return &models.NotificationSettings{
		BloodRequests:        store.BoolField(raw, "bloodRequests"),
		EmergencyRequests:    store.BoolField(raw, "emergencyRequests"),
		GeneralAnnouncements: store.BoolField(raw, "generalAnnouncements"),
		DonationReminders:    store.BoolField(raw, "donationReminders"),
		SoundEnabled:         store.BoolField(raw, "soundEnabled"),
		VibrationEnabled:     store.BoolField(raw, "vibrationEnabled"),
	}
}

func settingsDocument(settings *models.NotificationSettings) map[string]interface{} {
	return map[string]interface{}{
		"bloodRequests":        settings.BloodRequests,
		"emergencyRequests":    settings.EmergencyRequests,
		"generalAnnouncements": settings.GeneralAnnouncements,
		"donationReminders":    settings.DonationReminders,
		"soundEnabled":         settings.SoundEnabled,
		"vibrationEnabled":     settings.VibrationEnabled,
	}
}

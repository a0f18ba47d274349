// Package notify implements notification dispatch: single sends,
// multicast fanout with partial-failure handling, and blood-request
// fanout to matched donors.
package notify

import (
	"context"
	"fmt"
	"time"

	"blood-sea-api/internal/common/logger"
	"blood-sea-api/internal/common/metrics"
	"blood-sea-api/internal/common/observability"
	"blood-sea-api/internal/donors"
	"blood-sea-api/internal/models"
	"blood-sea-api/internal/push"
	"blood-sea-api/internal/store"

	"github.com/google/uuid"
)

// Delivery failure reasons recorded on DeliveryRecords.
const (
	ReasonNoToken          = "no_token_available"
	ReasonTokenInvalid     = "token_invalid"
	ReasonChannelError     = "channel_error"
	ReasonBatchUnavailable = "batch_unavailable"
)

// Config bounds fanout behavior.
type Config struct {
	MulticastLimit int
}

// Dispatcher coordinates token resolution, channel delivery, and delivery
// bookkeeping. It holds no mutable state and is safe for concurrent use.
type Dispatcher struct {
	store     store.Store
	channel   push.Channel
	directory *donors.Directory
	logger    logger.Logger
	obs       *observability.Observability
	config    Config
}

func NewDispatcher(s store.Store, channel push.Channel, directory *donors.Directory,
	log logger.Logger, obs *observability.Observability, cfg Config) *Dispatcher {
	if cfg.MulticastLimit <= 0 {
		cfg.MulticastLimit = 500
	}
	return &Dispatcher{
		store:     s,
		channel:   channel,
		directory: directory,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		obs:       obs,
		config:    cfg,
	}
}

// Message is the channel-agnostic content of a notification.
type Message struct {
	Title    string
	Body     string
	Data     map[string]string
	Priority string // request priority: low, normal, high, critical
	Type     string
}

// payload builds the wire payload: reserved data keys always win over
// caller-supplied ones, and request priorities collapse to the channel's
// normal/high pair.
func (m Message) payload() push.Payload {
	data := make(map[string]string, len(m.Data)+3)
	for k, v := range m.Data {
		data[k] = v
	}
	data[push.DataKeyType] = m.Type
	data[push.DataKeyPriority] = m.Priority
	data[push.DataKeyTimestamp] = time.Now().UTC().Format(time.RFC3339)

	channelPriority := "normal"
	if m.Priority == models.PriorityHigh || m.Priority == models.PriorityCritical {
		channelPriority = "high"
	}

	return push.Payload{
		Title:    m.Title,
		Body:     m.Body,
		Data:     data,
		Priority: channelPriority,
	}
}

// SendOneResult reports the outcome of a single-recipient send.
type SendOneResult struct {
	Success     bool   `json:"success"`
	DeliveryID  string `json:"deliveryId,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// SendToOne delivers one notification. An explicit token wins over a
// directory lookup; a recipient without any token still gets a failed
// DeliveryRecord so the attempt is visible.
func (d *Dispatcher) SendToOne(ctx context.Context, userID, token string, msg Message) (*SendOneResult, error) {
	start := time.Now()
	defer func() {
		metrics.DispatchDuration.WithLabelValues("send_one").Observe(time.Since(start).Seconds())
	}()

	if token == "" && userID != "" {
		tokens, err := d.directory.TokensForUsers(ctx, []string{userID})
		if err != nil {
			return nil, err
		}
		token = tokens[userID]
	}

	if token == "" {
		d.recordDelivery(ctx, userID, msg, models.StatusFailed, "", ReasonNoToken)
		metrics.NotificationsFailed.WithLabelValues(msg.Type, ReasonNoToken).Inc()
		d.recordObs(ctx, start, "no_token")
		return &SendOneResult{Success: false, ErrorReason: ReasonNoToken}, nil
	}

	result, err := d.channel.SendOne(ctx, token, msg.payload())
	if err != nil {
		d.recordDelivery(ctx, userID, msg, models.StatusFailed, "", ReasonChannelError)
		metrics.NotificationsFailed.WithLabelValues(msg.Type, ReasonChannelError).Inc()
		d.recordObs(ctx, start, "error")
		return nil, err
	}

	if !result.Success {
		reason := result.ErrorCode
		if push.IsPermanentTokenError(result.ErrorCode) {
			reason = ReasonTokenInvalid
			d.clearToken(ctx, userID)
		}
		d.recordDelivery(ctx, userID, msg, models.StatusFailed, "", reason)
		metrics.NotificationsFailed.WithLabelValues(msg.Type, reason).Inc()
		d.recordObs(ctx, start, "failed")
		return &SendOneResult{Success: false, ErrorReason: reason}, nil
	}

	d.recordDelivery(ctx, userID, msg, models.StatusSent, result.DeliveryID, "")
	metrics.NotificationsSent.WithLabelValues(msg.Type).Inc()
	d.recordObs(ctx, start, "sent")
	return &SendOneResult{Success: true, DeliveryID: result.DeliveryID}, nil
}

// recipient pairs a device token with the user it belongs to. Raw tokens
// with no known user carry an empty UserID.
type recipient struct {
	UserID string
	Token  string
}

// SendToMany delivers one notification to many recipients. Users without a
// token get failed DeliveryRecords without a channel call; batches are
// capped at the multicast limit; a failed batch marks only its own
// recipients failed and later batches still run.
func (d *Dispatcher) SendToMany(ctx context.Context, userIDs, rawTokens []string, msg Message) (*models.MulticastSummary, error) {
	start := time.Now()
	defer func() {
		metrics.DispatchDuration.WithLabelValues("send_many").Observe(time.Since(start).Seconds())
	}()

	summary := &models.MulticastSummary{}

	tokens, err := d.directory.TokensForUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	recipients := make([]recipient, 0, len(userIDs)+len(rawTokens))
	for _, id := range userIDs {
		token, hasToken := tokens[id]
		if !hasToken {
			d.recordDelivery(ctx, id, msg, models.StatusFailed, "", ReasonNoToken)
			metrics.NotificationsFailed.WithLabelValues(msg.Type, ReasonNoToken).Inc()
			summary.FailureCount++
			summary.Results = append(summary.Results, models.RecipientOutcome{
				RecipientID: id, ErrorReason: ReasonNoToken,
			})
			continue
		}
		recipients = append(recipients, recipient{UserID: id, Token: token})
	}
	for _, token := range rawTokens {
		recipients = append(recipients, recipient{Token: token})
	}

	for batchStart := 0; batchStart < len(recipients); batchStart += d.config.MulticastLimit {
		batchEnd := batchStart + d.config.MulticastLimit
		if batchEnd > len(recipients) {
			batchEnd = len(recipients)
		}
		d.sendBatch(ctx, recipients[batchStart:batchEnd], msg, summary)
	}

	d.logger.Info("multicast complete", map[string]interface{}{
		"type":         msg.Type,
		"successCount": summary.SuccessCount,
		"failureCount": summary.FailureCount,
	})
	d.recordObs(ctx, start, "multicast")
	return summary, nil
}

// sendBatch delivers one multicast batch and books per-recipient outcomes.
// Whole-batch failure is isolated here so sibling batches still proceed.
func (d *Dispatcher) sendBatch(ctx context.Context, batch []recipient, msg Message, summary *models.MulticastSummary) {
	batchTokens := make([]string, len(batch))
	for i, r := range batch {
		batchTokens[i] = r.Token
	}

	results, err := d.channel.SendMulticast(ctx, batchTokens, msg.payload())
	if err != nil {
		d.logger.Warn("multicast batch failed", map[string]interface{}{
			"size":  len(batch),
			"error": err.Error(),
		})
		for _, r := range batch {
			if r.UserID != "" {
				d.recordDelivery(ctx, r.UserID, msg, models.StatusFailed, "", ReasonBatchUnavailable)
			}
			metrics.NotificationsFailed.WithLabelValues(msg.Type, ReasonBatchUnavailable).Inc()
			summary.FailureCount++
			summary.Results = append(summary.Results, models.RecipientOutcome{
				RecipientID: r.UserID, ErrorReason: ReasonBatchUnavailable,
			})
		}
		return
	}

	for i, result := range results {
		r := batch[i]
		if result.Success {
			if r.UserID != "" {
				d.recordDelivery(ctx, r.UserID, msg, models.StatusSent, result.DeliveryID, "")
			}
			metrics.NotificationsSent.WithLabelValues(msg.Type).Inc()
			summary.SuccessCount++
			summary.Results = append(summary.Results, models.RecipientOutcome{
				RecipientID: r.UserID, Success: true, DeliveryID: result.DeliveryID,
			})
			continue
		}

		reason := result.ErrorCode
		if push.IsPermanentTokenError(result.ErrorCode) {
			reason = ReasonTokenInvalid
			d.clearToken(ctx, r.UserID)
		}
		if r.UserID != "" {
			d.recordDelivery(ctx, r.UserID, msg, models.StatusFailed, "", reason)
		}
		metrics.NotificationsFailed.WithLabelValues(msg.Type, reason).Inc()
		summary.FailureCount++
		summary.Results = append(summary.Results, models.RecipientOutcome{
			RecipientID: r.UserID, ErrorReason: reason,
		})
	}
}

// FanoutRequest describes a blood request to broadcast to matching donors.
type FanoutRequest struct {
	RequesterID string
	DonorID     string
	BloodType   string
	Hospital    string
	Urgency     string
	Location    string
	ContactInfo string
}

// FanoutResult reports how a blood-request fanout went.
type FanoutResult struct {
	Success        bool   `json:"success"`
	RequestID      string `json:"requestId,omitempty"`
	NotifiedDonors int    `json:"notifiedDonors"`
}

// SendBloodRequestFanout notifies every eligible donor about a blood
// request. No eligible donors is a quiet outcome, not an error, and
// nothing is persisted for it. The request document is stored once at
// least one donor was eligible, recording how many were reached.
func (d *Dispatcher) SendBloodRequestFanout(ctx context.Context, req FanoutRequest) (*FanoutResult, error) {
	start := time.Now()
	defer func() {
		metrics.DispatchDuration.WithLabelValues("blood_request").Observe(time.Since(start).Seconds())
	}()

	eligible, err := d.directory.FindEligibleDonors(ctx, req.BloodType)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		d.logger.Info("no eligible donors for blood request", map[string]interface{}{
			"bloodType": req.BloodType,
			"hospital":  req.Hospital,
		})
		return &FanoutResult{Success: false, NotifiedDonors: 0}, nil
	}

	priority := models.PriorityNormal
	if req.Urgency == models.UrgencyHigh || req.Urgency == models.UrgencyCritical {
		priority = models.PriorityHigh
	}

	requestID := uuid.New().String()
	msg := Message{
		Title:    fmt.Sprintf("Urgent: %s Blood Needed", req.BloodType),
		Body:     fmt.Sprintf("%s needs %s blood. Can you help?", req.Hospital, req.BloodType),
		Priority: priority,
		Type:     "blood_request",
		Data: map[string]string{
			"requestId": requestID,
			"bloodType": req.BloodType,
			"hospital":  req.Hospital,
			"urgency":   req.Urgency,
		},
	}

	donorIDs := make([]string, len(eligible))
	for i, donor := range eligible {
		donorIDs[i] = donor.ID
	}

	summary, err := d.SendToMany(ctx, donorIDs, nil, msg)
	if err != nil {
		return nil, err
	}

	record := &models.BloodRequest{
		ID:             requestID,
		RequesterID:    req.RequesterID,
		DonorID:        req.DonorID,
		BloodType:      req.BloodType,
		Hospital:       req.Hospital,
		Urgency:        req.Urgency,
		Location:       req.Location,
		ContactInfo:    req.ContactInfo,
		Status:         models.BloodRequestStatusActive,
		NotifiedDonors: summary.SuccessCount,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := d.store.Add(ctx, store.CollectionBloodRequests, bloodRequestDocument(record)); err != nil {
		// Donors were already notified; surface the persistence failure.
		return nil, err
	}

	return &FanoutResult{
		Success:        summary.SuccessCount > 0,
		RequestID:      requestID,
		NotifiedDonors: summary.SuccessCount,
	}, nil
}

// recordDelivery books one DeliveryRecord. Bookkeeping failures are logged
// but never fail the send that produced them.
func (d *Dispatcher) recordDelivery(ctx context.Context, recipientID string, msg Message, status, deliveryID, errorReason string) {
	if recipientID == "" {
		return
	}
	record := store.Document{
		"id":          uuid.New().String(),
		"recipientId": recipientID,
		"title":       msg.Title,
		"body":        msg.Body,
		"type":        msg.Type,
		"priority":    msg.Priority,
		"status":      status,
		"isRead":      false,
		"createdAt":   time.Now().UTC(),
	}
	if deliveryID != "" {
		record["deliveryId"] = deliveryID
	}
	if errorReason != "" {
		record["errorReason"] = errorReason
	}

	if _, err := d.store.Add(ctx, store.CollectionNotifications, record); err != nil {
		d.logger.Error("delivery record write failed", map[string]interface{}{
			"recipientId": recipientID,
			"status":      status,
			"error":       err.Error(),
		})
	}
}

// clearToken purges a permanently dead token with a point update, leaving
// the rest of the user document alone.
func (d *Dispatcher) clearToken(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	err := d.store.Update(ctx, store.CollectionUsers, userID, store.Document{
		"fcmToken":       "",
		"tokenUpdatedAt": time.Now().UTC(),
	})
	if err != nil {
		d.logger.Warn("stale token cleanup failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return
	}
	d.logger.Info("stale token cleared", map[string]interface{}{"userId": userID})
}

func (d *Dispatcher) recordObs(ctx context.Context, start time.Time, status string) {
	if d.obs == nil {
		return
	}
	d.obs.RecordDispatch(ctx, status)
	d.obs.RecordDispatchDuration(ctx, time.Since(start), status)
}

func bloodRequestDocument(r *models.BloodRequest) store.Document {
	return store.Document{
		"id":             r.ID,
		"requesterId":    r.RequesterID,
		"donorId":        r.DonorID,
		"bloodType":      r.BloodType,
		"hospital":       r.Hospital,
		"urgency":        r.Urgency,
		"location":       r.Location,
		"contactInfo":    r.ContactInfo,
		"status":         r.Status,
		"notifiedDonors": r.NotifiedDonors,
		"createdAt":      r.CreatedAt,
	}
}

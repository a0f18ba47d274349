// internal/push/fcm.go
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"blood-sea-api/internal/common/config"
	"blood-sea-api/internal/common/errors"
	commonhttp "blood-sea-api/internal/common/http"
)

// FCMChannel delivers notifications over the FCM legacy HTTP API.
type FCMChannel struct {
	endpoint   string
	serverKey  string
	httpClient *commonhttp.Client
}

// NewFCMChannel creates a channel from push configuration.
func NewFCMChannel(cfg config.PushConfig) *FCMChannel {
	return &FCMChannel{
		endpoint:   cfg.Endpoint,
		serverKey:  cfg.ServerKey,
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

// fcmRequest is the legacy HTTP wire format. Exactly one of To or
// RegistrationIDs is set.
type fcmRequest struct {
	To              string            `json:"to,omitempty"`
	RegistrationIDs []string          `json:"registration_ids,omitempty"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
	Priority        string            `json:"priority,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	MulticastID int64       `json:"multicast_id"`
	Success     int         `json:"success"`
	Failure     int         `json:"failure"`
	Results     []fcmResult `json:"results"`
}

type fcmResult struct {
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (c *FCMChannel) SendOne(ctx context.Context, token string, payload Payload) (SendResult, error) {
	resp, err := c.post(ctx, fcmRequest{
		To:           token,
		Notification: fcmNotification{Title: payload.Title, Body: payload.Body},
		Data:         payload.Data,
		Priority:     payload.Priority,
	})
	if err != nil {
		return SendResult{}, err
	}
	if len(resp.Results) == 0 {
		return SendResult{}, errors.NewUpstreamUnavailableError("fcm",
			fmt.Errorf("empty result set for single send"))
	}
	return toSendResult(resp.Results[0]), nil
}

func (c *FCMChannel) SendMulticast(ctx context.Context, tokens []string, payload Payload) ([]SendResult, error) {
	resp, err := c.post(ctx, fcmRequest{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: payload.Title, Body: payload.Body},
		Data:            payload.Data,
		Priority:        payload.Priority,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) != len(tokens) {
		return nil, errors.NewUpstreamUnavailableError("fcm",
			fmt.Errorf("result count %d does not match token count %d", len(resp.Results), len(tokens)))
	}

	results := make([]SendResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = toSendResult(r)
	}
	return results, nil
}

func (c *FCMChannel) post(ctx context.Context, body fcmRequest) (*fcmResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("serialize push request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("create push request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("fcm", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeUpstreamUnavailable,
			Message:   "Push provider rejected server credentials",
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, errors.NewUpstreamUnavailableError("fcm",
			fmt.Errorf("push request failed with status %d: %s", resp.StatusCode, string(raw)))
	}

	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NewUpstreamUnavailableError("fcm",
			fmt.Errorf("decode push response: %w", err))
	}
	return &parsed, nil
}

func toSendResult(r fcmResult) SendResult {
	if r.Error == "" {
		return SendResult{Success: true, DeliveryID: r.MessageID}
	}
	return SendResult{Success: false, ErrorCode: normalizeFCMError(r.Error)}
}

// normalizeFCMError maps provider error strings to channel identifiers.
func normalizeFCMError(code string) string {
	switch code {
	case "NotRegistered":
		return ErrNotRegistered
	case "InvalidRegistration", "MissingRegistration", "MismatchSenderId":
		return ErrInvalidToken
	case "Unavailable", "InternalServerError", "DeviceMessageRateExceeded":
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

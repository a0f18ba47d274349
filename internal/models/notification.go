// internal/models/notification.go
package models

import "time"

// Notification priorities, lowest to highest.
const (
	PriorityLow      = "low"
	PriorityNormal   = "normal"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Delivery statuses recorded per recipient.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// ValidPriorities lists the accepted priority values in ascending order.
var ValidPriorities = []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical}

// IsValidPriority reports whether p is a known priority value.
func IsValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if v == p {
			return true
		}
	}
	return false
}

// DeliveryRecord is one row of delivery bookkeeping: one per
// (notification, recipient), including recipients that could not be
// attempted for lack of a token. Records are append-only.
type DeliveryRecord struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DeliveryID  string    `json:"deliveryId,omitempty"`
	ErrorReason string    `json:"errorReason,omitempty"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecipientOutcome is the per-recipient view of a multi-recipient send.
// Recipients addressed by raw token have no RecipientID.
type RecipientOutcome struct {
	RecipientID string `json:"recipientId,omitempty"`
	Success     bool   `json:"success"`
	DeliveryID  string `json:"deliveryId,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}

// MulticastSummary aggregates the outcome of a multi-recipient send.
// SuccessCount+FailureCount always equals len(Results).
type MulticastSummary struct {
	SuccessCount int                `json:"successCount"`
	FailureCount int                `json:"failureCount"`
	Results      []RecipientOutcome `json:"results"`
}

// internal/models/bloodrequest.go
package models

import "time"

// Urgency levels for blood requests.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// BloodRequest is a document in the blood_requests collection, persisted
// once at least one donor was notified.
type BloodRequest struct {
	ID             string    `json:"id"`
	RequesterID    string    `json:"requesterId"`
	DonorID        string    `json:"donorId,omitempty"`
	BloodType      string    `json:"bloodType"`
	Hospital       string    `json:"hospital"`
	Urgency        string    `json:"urgency"`
	Location       string    `json:"location,omitempty"`
	ContactInfo    string    `json:"contactInfo,omitempty"`
	Status         string    `json:"status"`
	NotifiedDonors int       `json:"notifiedDonors"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Blood request lifecycle statuses.
const (
	BloodRequestStatusActive    = "active"
	BloodRequestStatusFulfilled = "fulfilled"
	BloodRequestStatusExpired   = "expired"
)

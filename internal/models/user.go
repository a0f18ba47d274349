// internal/models/user.go
package models

import "time"

// Role values carried in the users collection and in token claims.
const (
	RoleUser  = "user"
	RoleDonor = "donor"
	RoleAdmin = "admin"
)

// User is a document in the users collection. Donors are users with the
// donor role; their blood type and availability drive request fanout.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	BloodType      string    `json:"bloodType,omitempty"`
	IsAvailable    bool      `json:"isAvailable"`
	FCMToken       string    `json:"fcmToken,omitempty"`
	TokenUpdatedAt time.Time `json:"tokenUpdatedAt,omitempty"`

	NotificationSettings *NotificationSettings `json:"notificationSettings,omitempty"`
}

// IsDonor reports whether the user participates in donor matching.
func (u *User) IsDonor() bool {
	return u.Role == RoleDonor
}

// NotificationSettings controls which notification categories a user
// receives. All categories default to enabled.
type NotificationSettings struct {
	BloodRequests        bool `json:"bloodRequests"`
	EmergencyRequests    bool `json:"emergencyRequests"`
	GeneralAnnouncements bool `json:"generalAnnouncements"`
	DonationReminders    bool `json:"donationReminders"`
	SoundEnabled         bool `json:"soundEnabled"`
	VibrationEnabled     bool `json:"vibrationEnabled"`
}

// DefaultNotificationSettings returns the all-enabled defaults applied to
// users who never saved preferences.
func DefaultNotificationSettings() *NotificationSettings {
	return &NotificationSettings{
		BloodRequests:        true,
		EmergencyRequests:    true,
		GeneralAnnouncements: true,
		DonationReminders:    true,
		SoundEnabled:         true,
		VibrationEnabled:     true,
	}
}

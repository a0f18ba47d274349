// Package push defines the delivery channel contract for device
// notifications and its concrete adapters.
package push

import "context"

// Reserved data keys the dispatcher always sets on outgoing payloads.
const (
	DataKeyType      = "type"
	DataKeyPriority  = "priority"
	DataKeyTimestamp = "timestamp"
)

// Channel-level error identifiers, normalized across providers.
const (
	ErrNotRegistered = "not-registered"
	ErrInvalidToken  = "invalid-token"
	ErrUnavailable   = "unavailable"
	ErrInternal      = "internal"
)

// IsPermanentTokenError reports whether the identifier means the device
// token is permanently dead and should be purged from the directory.
func IsPermanentTokenError(code string) bool {
	return code == ErrNotRegistered || code == ErrInvalidToken
}

// Payload is a channel-agnostic notification message.
type Payload struct {
	Title    string
	Body     string
	Data     map[string]string
	Priority string // "normal" or "high"
}

// SendResult is the per-token outcome of a delivery attempt.
type SendResult struct {
	Success    bool
	DeliveryID string
	ErrorCode  string
}

// Channel delivers notifications to device tokens. SendMulticast returns
// one result per input token, in input order; the error return is reserved
// for failures of the whole batch.
type Channel interface {
	SendOne(ctx context.Context, token string, payload Payload) (SendResult, error)
	SendMulticast(ctx context.Context, tokens []string, payload Payload) ([]SendResult, error)
}

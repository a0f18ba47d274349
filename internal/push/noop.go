// internal/push/noop.go
package push

import (
	"context"

	"github.com/google/uuid"
)

// NoopChannel accepts every send without talking to a provider. Used in
// development mode when no server key is configured.
type NoopChannel struct{}

func NewNoopChannel() *NoopChannel {
	return &NoopChannel{}
}

func (c *NoopChannel) SendOne(ctx context.Context, token string, payload Payload) (SendResult, error) {
	return SendResult{Success: true, DeliveryID: uuid.New().String()}, nil
}

func (c *NoopChannel) SendMulticast(ctx context.Context, tokens []string, payload Payload) ([]SendResult, error) {
	results := make([]SendResult, len(tokens))
	for i := range tokens {
		results[i] = SendResult{Success: true, DeliveryID: uuid.New().String()}
	}
	return results, nil
}

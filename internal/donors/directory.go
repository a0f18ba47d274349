// Package donors finds notification targets for blood requests: donors
// whose blood type is compatible with the requested one and who are
// currently available.
package donors

import (
	"context"

	"blood-sea-api/internal/blood"
	"blood-sea-api/internal/common/logger"
	"blood-sea-api/internal/common/metrics"
	"blood-sea-api/internal/models"
	"blood-sea-api/internal/store"
)

// Donor is the directory view of an eligible donor.
type Donor struct {
	ID          string
	Name        string
	BloodType   string
	FCMToken    string
	IsAvailable bool
}

// Directory queries the users collection for eligible donors and their
// device tokens.
type Directory struct {
	store     store.Store
	logger    logger.Logger
	chunkSize int
}

func NewDirectory(s store.Store, log logger.Logger, chunkSize int) *Directory {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &Directory{
		store:     s,
		logger:    log.WithFields(map[string]interface{}{"component": "donors"}),
		chunkSize: chunkSize,
	}
}

// FindEligibleDonors returns available donors compatible with the
// requested blood type, in deterministic id order. A request for an
// unknown blood type degrades to an exact match and may simply find
// nobody.
func (d *Directory) FindEligibleDonors(ctx context.Context, bloodType string) ([]Donor, error) {
	compatible := blood.CompatibleDonorTypes(bloodType)

	docs, err := d.store.Query(ctx, store.CollectionUsers, []store.Filter{
		{Field: "role", Op: store.OpEqual, Value: models.RoleDonor},
		{Field: "isAvailable", Op: store.OpEqual, Value: true},
		{Field: "bloodType", Op: store.OpIn, Value: compatible},
	})
	if err != nil {
		return nil, err
	}

	result := make([]Donor, 0, len(docs))
	for _, doc := range docs {
		result = append(result, Donor{
			ID:          store.StringField(doc, "id"),
			Name:        store.StringField(doc, "name"),
			BloodType:   store.StringField(doc, "bloodType"),
			FCMToken:    store.StringField(doc, "fcmToken"),
			IsAvailable: store.BoolField(doc, "isAvailable"),
		})
	}

	metrics.EligibleDonorsFound.WithLabelValues(bloodType).Observe(float64(len(result)))
	d.logger.Debug("eligible donors resolved", map[string]interface{}{
		"bloodType": bloodType,
		"count":     len(result),
	})
	return result, nil
}

// TokensForUsers resolves device tokens for a set of user ids, fetching
// in chunks to respect the store's per-query id limit. Users without a
// token are absent from the result.
func (d *Directory) TokensForUsers(ctx context.Context, userIDs []string) (map[string]string, error) {
	tokens := make(map[string]string, len(userIDs))

	for start := 0; start < len(userIDs); start += d.chunkSize {
		end := start + d.chunkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		docs, err := d.store.GetByIDs(ctx, store.CollectionUsers, userIDs[start:end])
		if err != nil {
			return nil, err
		}
		for id, doc := range docs {
			if token := store.StringField(doc, "fcmToken"); token != "" {
				tokens[id] = token
			}
		}
	}
	return tokens, nil
}

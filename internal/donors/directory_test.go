package donors

import (
	"context"
	"testing"

	"blood-sea-api/internal/common/logger"
	"blood-sea-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockStore struct {
	GetFunc      func(ctx context.Context, collection, id string) (store.Document, error)
	GetByIDsFunc func(ctx context.Context, collection string, ids []string) (map[string]store.Document, error)
	AddFunc      func(ctx context.Context, collection string, doc store.Document) (string, error)
	UpdateFunc   func(ctx context.Context, collection, id string, fields store.Document) error
	QueryFunc    func(ctx context.Context, collection string, filters []store.Filter) ([]store.Document, error)
}

func (m *MockStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	return m.GetFunc(ctx, collection, id)
}

func (m *MockStore) GetByIDs(ctx context.Context, collection string, ids []string) (map[string]store.Document, error) {
	return m.GetByIDsFunc(ctx, collection, ids)
}

func (m *MockStore) Add(ctx context.Context, collection string, doc store.Document) (string, error) {
	return m.AddFunc(ctx, collection, doc)
}

func (m *MockStore) Update(ctx context.Context, collection, id string, fields store.Document) error {
	return m.UpdateFunc(ctx, collection, id, fields)
}

func (m *MockStore) Query(ctx context.Context, collection string, filters []store.Filter) ([]store.Document, error) {
	return m.QueryFunc(ctx, collection, filters)
}

// ==========================
// Test Helper Functions
// ==========================

func seedStore(t *testing.T) *store.MemoryStore {
	s := store.NewMemoryStore()
	ctx := context.Background()

	users := []store.Document{
		{"id": "donor-oneg", "name": "Nadia", "role": "donor", "bloodType": "O-", "isAvailable": true, "fcmToken": "tok-oneg"},
		{"id": "donor-opos", "name": "Rahim", "role": "donor", "bloodType": "O+", "isAvailable": true, "fcmToken": "tok-opos"},
		{"id": "donor-apos", "name": "Karim", "role": "donor", "bloodType": "A+", "isAvailable": true, "fcmToken": "tok-apos"},
		{"id": "donor-busy", "name": "Busy", "role": "donor", "bloodType": "O-", "isAvailable": false, "fcmToken": "tok-busy"},
		{"id": "donor-notok", "name": "NoToken", "role": "donor", "bloodType": "O+", "isAvailable": true},
		{"id": "user-onlooker", "name": "User", "role": "user", "bloodType": "O-", "isAvailable": true, "fcmToken": "tok-user"},
	}
	for _, doc := range users {
		_, err := s.Add(ctx, store.CollectionUsers, doc)
		require.NoError(t, err)
	}
	return s
}

// ==========================
// Eligible Donor Tests
// ==========================

func TestDirectory_FindEligibleDonors(t *testing.T) {
	dir := NewDirectory(seedStore(t), logger.NewNoOpLogger(), 10)

	tests := []struct {
		name        string
		bloodType   string
		expectedIDs []string
	}{
		{
			name:        "A+ matches A and O donors",
			bloodType:   "A+",
			expectedIDs: []string{"donor-apos", "donor-notok", "donor-oneg", "donor-opos"},
		},
		{
			name:        "O- only matches O- donors",
			bloodType:   "O-",
			expectedIDs: []string{"donor-oneg"},
		},
		{
			name:        "unknown type finds nobody",
			bloodType:   "X+",
			expectedIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			donors, err := dir.FindEligibleDonors(context.Background(), tt.bloodType)
			require.NoError(t, err)

			ids := make([]string, 0, len(donors))
			for _, d := range donors {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestDirectory_FindEligibleDonors_ExcludesUnavailableAndNonDonors(t *testing.T) {
	dir := NewDirectory(seedStore(t), logger.NewNoOpLogger(), 10)

	donors, err := dir.FindEligibleDonors(context.Background(), "O-")
	require.NoError(t, err)

	for _, d := range donors {
		assert.NotEqual(t, "donor-busy", d.ID, "unavailable donor must be excluded")
		assert.NotEqual(t, "user-onlooker", d.ID, "non-donor must be excluded")
	}
}

func TestDirectory_FindEligibleDonors_IsIdempotent(t *testing.T) {
	dir := NewDirectory(seedStore(t), logger.NewNoOpLogger(), 10)

	first, err := dir.FindEligibleDonors(context.Background(), "A+")
	require.NoError(t, err)
	second, err := dir.FindEligibleDonors(context.Background(), "A+")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// ==========================
// Token Lookup Tests
// ==========================

func TestDirectory_TokensForUsers_ChunksLookups(t *testing.T) {
	var chunkSizes []int
	mock := &MockStore{
		GetByIDsFunc: func(ctx context.Context, collection string, ids []string) (map[string]store.Document, error) {
			chunkSizes = append(chunkSizes, len(ids))
			result := make(map[string]store.Document, len(ids))
			for _, id := range ids {
				result[id] = store.Document{"id": id, "fcmToken": "tok-" + id}
			}
			return result, nil
		},
	}

	dir := NewDirectory(mock, logger.NewNoOpLogger(), 10)

	ids := make([]string, 23)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	tokens, err := dir.TokensForUsers(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, tokens, 23)
	assert.Equal(t, []int{10, 10, 3}, chunkSizes)
}

func TestDirectory_TokensForUsers_SkipsTokenless(t *testing.T) {
	dir := NewDirectory(seedStore(t), logger.NewNoOpLogger(), 10)

	tokens, err := dir.TokensForUsers(context.Background(),
		[]string{"donor-oneg", "donor-notok", "missing-user"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"donor-oneg": "tok-oneg"}, tokens)
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Memory Store Tests
// ==========================

func TestMemoryStore_GetAndAdd(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Add(ctx, CollectionUsers, Document{
		"id":        "user-1",
		"name":      "Alice",
		"bloodType": "O-",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	doc, err := s.Get(ctx, CollectionUsers, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", StringField(doc, "name"))
	assert.Equal(t, "user-1", StringField(doc, "id"))

	_, err = s.Get(ctx, CollectionUsers, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_AddGeneratesID(t *testing.T) {
	s := NewMemoryStore()

	id, err := s.Add(context.Background(), CollectionNotifications, Document{"title": "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestMemoryStore_Update(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Add(ctx, CollectionUsers, Document{"id": "user-1", "fcmToken": "tok", "name": "Alice"})
	require.NoError(t, err)

	// Point update leaves other fields intact
	err = s.Update(ctx, CollectionUsers, "user-1", Document{"fcmToken": ""})
	require.NoError(t, err)

	doc, err := s.Get(ctx, CollectionUsers, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "", StringField(doc, "fcmToken"))
	assert.Equal(t, "Alice", StringField(doc, "name"))

	err = s.Update(ctx, CollectionUsers, "missing", Document{"fcmToken": ""})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetByIDs_SkipsMissing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Add(ctx, CollectionUsers, Document{"id": "a"})
	require.NoError(t, err)
	_, err = s.Add(ctx, CollectionUsers, Document{"id": "b"})
	require.NoError(t, err)

	docs, err := s.GetByIDs(ctx, CollectionUsers, []string{"a", "missing", "b"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Contains(t, docs, "a")
	assert.Contains(t, docs, "b")
}

func TestMemoryStore_Query(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seed := []Document{
		{"id": "d3", "role": "donor", "bloodType": "O-", "isAvailable": true},
		{"id": "d1", "role": "donor", "bloodType": "O-", "isAvailable": true},
		{"id": "d2", "role": "donor", "bloodType": "A+", "isAvailable": true},
		{"id": "u1", "role": "user", "bloodType": "O-", "isAvailable": true},
		{"id": "d4", "role": "donor", "bloodType": "O-", "isAvailable": false},
	}
	for _, doc := range seed {
		_, err := s.Add(ctx, CollectionUsers, doc)
		require.NoError(t, err)
	}

	docs, err := s.Query(ctx, CollectionUsers, []Filter{
		{Field: "role", Op: OpEqual, Value: "donor"},
		{Field: "bloodType", Op: OpIn, Value: []string{"O-", "O+"}},
		{Field: "isAvailable", Op: OpEqual, Value: true},
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, StringField(doc, "id"))
	}
	// Deterministic order, sorted by id
	assert.Equal(t, []string{"d1", "d3"}, ids)
}

func TestMemoryStore_QueryIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"z", "a", "m"} {
		_, err := s.Add(ctx, CollectionUsers, Document{"id": id, "role": "donor"})
		require.NoError(t, err)
	}

	filters := []Filter{{Field: "role", Op: OpEqual, Value: "donor"}}
	first, err := s.Query(ctx, CollectionUsers, filters)
	require.NoError(t, err)
	second, err := s.Query(ctx, CollectionUsers, filters)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMemoryStore_DocumentsAreCopied(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	original := Document{"id": "user-1", "name": "Alice"}
	_, err := s.Add(ctx, CollectionUsers, original)
	require.NoError(t, err)

	original["name"] = "mutated"

	doc, err := s.Get(ctx, CollectionUsers, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", StringField(doc, "name"))

	doc["name"] = "mutated again"
	again, err := s.Get(ctx, CollectionUsers, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", StringField(again, "name"))
}

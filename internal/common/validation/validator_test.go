package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func mustValidator(t *testing.T) *Validator {
	v, err := New()
	require.NoError(t, err)
	return v
}

func fieldsOf(errs []ValidationError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

// ==========================
// Schema Validation Tests
// ==========================

func TestValidator_SendNotification(t *testing.T) {
	v := mustValidator(t)

	tests := []struct {
		name        string
		body        string
		errorFields []string
	}{
		{
			name: "valid with userId",
			body: `{"userId": "u1", "title": "Hello", "body": "World", "priority": "high"}`,
		},
		{
			name: "valid with token",
			body: `{"token": "tok-1", "title": "Hello", "body": "World"}`,
		},
		{
			name:        "missing title and body",
			body:        `{"userId": "u1"}`,
			errorFields: []string{"title", "body"},
		},
		{
			name:        "neither userId nor token",
			body:        `{"title": "Hello", "body": "World"}`,
			errorFields: []string{"userId"},
		},
		{
			name:        "bad priority",
			body:        `{"userId": "u1", "title": "t", "body": "b", "priority": "urgent"}`,
			errorFields: []string{"priority"},
		},
		{
			name:        "data values must be strings",
			body:        `{"userId": "u1", "title": "t", "body": "b", "data": {"count": 5}}`,
			errorFields: []string{"data.count"},
		},
		{
			name:        "unexpected field rejected",
			body:        `{"userId": "u1", "title": "t", "body": "b", "isAdmin": true}`,
			errorFields: []string{"isAdmin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := v.Validate(SchemaSendNotification, []byte(tt.body))
			require.NoError(t, err)
			if len(tt.errorFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.ElementsMatch(t, tt.errorFields, fieldsOf(errs))
		})
	}
}

func TestValidator_BulkNotification(t *testing.T) {
	v := mustValidator(t)

	errs, err := v.Validate(SchemaBulkNotification,
		[]byte(`{"userIds": ["u1", "u2"], "title": "t", "body": "b"}`))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = v.Validate(SchemaBulkNotification,
		[]byte(`{"userIds": [], "tokens": [], "title": "t", "body": "b"}`))
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "userIds", errs[0].Field)
}

func TestValidator_BloodRequest(t *testing.T) {
	v := mustValidator(t)

	errs, err := v.Validate(SchemaBloodRequest,
		[]byte(`{"bloodType": "O-", "hospital": "City Hospital", "urgency": "critical", "location": "Dhaka"}`))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = v.Validate(SchemaBloodRequest,
		[]byte(`{"bloodType": "X+", "hospital": "", "urgency": "now"}`))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bloodType", "hospital", "urgency"}, fieldsOf(errs))
}

func TestValidator_Availability(t *testing.T) {
	v := mustValidator(t)

	errs, err := v.Validate(SchemaAvailability, []byte(`{"isAvailable": false}`))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = v.Validate(SchemaAvailability, []byte(`{"isAvailable": "yes"}`))
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "isAvailable", errs[0].Field)
}

func TestValidator_FCMToken(t *testing.T) {
	v := mustValidator(t)

	errs, err := v.Validate(SchemaFCMToken, []byte(`{"token": "device-token"}`))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = v.Validate(SchemaFCMToken, []byte(`{}`))
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "token", errs[0].Field)
}

func TestValidator_NotificationSettings(t *testing.T) {
	v := mustValidator(t)

	errs, err := v.Validate(SchemaNotificationSettings,
		[]byte(`{"bloodRequests": true, "soundEnabled": false}`))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = v.Validate(SchemaNotificationSettings, []byte(`{"unknownSetting": true}`))
	require.NoError(t, err)
	assert.Len(t, errs, 1)
}

func TestValidator_MalformedBody(t *testing.T) {
	v := mustValidator(t)

	errs, err := v.Validate(SchemaSendNotification, []byte(`not json`))
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "(body)", errs[0].Field)
}

func TestValidator_UnknownSchema(t *testing.T) {
	v := mustValidator(t)

	_, err := v.Validate("doesNotExist", []byte(`{}`))
	assert.Error(t, err)
}

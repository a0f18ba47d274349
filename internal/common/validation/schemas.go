// internal/common/validation/schemas.go
package validation

// Schema names, one per validated endpoint body.
const (
	SchemaSendNotification     = "sendNotification"
	SchemaBulkNotification     = "bulkNotification"
	SchemaBloodRequest         = "bloodRequest"
	SchemaAvailability         = "availability"
	SchemaFCMToken             = "fcmToken"
	SchemaNotificationSettings = "notificationSettings"
	SchemaTestNotification     = "testNotification"
)

// rawSchemas holds the JSON Schema source per endpoint. Cross-field rules
// that JSON Schema expresses poorly ("at least one of") live in
// crossFieldChecks instead.
var rawSchemas = map[string]string{
	SchemaSendNotification: `{
		"type": "object",
		"properties": {
			"userId": {"type": "string", "minLength": 1},
			"token": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"body": {"type": "string", "minLength": 1, "maxLength": 1000},
			"data": {"type": "object", "additionalProperties": {"type": "string"}},
			"priority": {"type": "string", "enum": ["low", "normal", "high", "critical"]},
			"type": {"type": "string", "maxLength": 50}
		},
		"required": ["title", "body"],
		"additionalProperties": false
	}`,

	SchemaBulkNotification: `{
		"type": "object",
		"properties": {
			"userIds": {"type": "array", "items": {"type": "string", "minLength": 1}, "maxItems": 1000},
			"tokens": {"type": "array", "items": {"type": "string", "minLength": 1}, "maxItems": 1000},
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"body": {"type": "string", "minLength": 1, "maxLength": 1000},
			"data": {"type": "object", "additionalProperties": {"type": "string"}},
			"priority": {"type": "string", "enum": ["low", "normal", "high", "critical"]},
			"type": {"type": "string", "maxLength": 50}
		},
		"required": ["title", "body"],
		"additionalProperties": false
	}`,

	SchemaBloodRequest: `{
		"type": "object",
		"properties": {
			"requesterId": {"type": "string", "minLength": 1},
			"donorId": {"type": "string", "minLength": 1},
			"bloodType": {"type": "string", "enum": ["A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"]},
			"hospital": {"type": "string", "minLength": 1, "maxLength": 200},
			"urgency": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
			"location": {"type": "string", "maxLength": 500},
			"contactInfo": {"type": "string", "maxLength": 200}
		},
		"required": ["bloodType", "hospital", "urgency"],
		"additionalProperties": false
	}`,

	SchemaAvailability: `{
		"type": "object",
		"properties": {
			"isAvailable": {"type": "boolean"}
		},
		"required": ["isAvailable"],
		"additionalProperties": false
	}`,

	SchemaFCMToken: `{
		"type": "object",
		"properties": {
			"token": {"type": "string", "minLength": 1, "maxLength": 4096}
		},
		"required": ["token"],
		"additionalProperties": false
	}`,

	SchemaNotificationSettings: `{
		"type": "object",
		"properties": {
			"bloodRequests": {"type": "boolean"},
			"emergencyRequests": {"type": "boolean"},
			"generalAnnouncements": {"type": "boolean"},
			"donationReminders": {"type": "boolean"},
			"soundEnabled": {"type": "boolean"},
			"vibrationEnabled": {"type": "boolean"}
		},
		"additionalProperties": false
	}`,

	SchemaTestNotification: `{
		"type": "object",
		"additionalProperties": false
	}`,
}

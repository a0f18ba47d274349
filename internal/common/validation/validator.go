// Package validation checks request bodies against per-endpoint JSON
// schemas and returns field-level errors in the wire format.
package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError is one field-level problem, surfaced verbatim in error
// responses.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator holds the compiled schemas. Construct once at startup.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every registered schema. A schema that fails to compile is
// a programming error, reported at startup rather than per request.
func New() (*Validator, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(rawSchemas))
	for name, raw := range rawSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		compiled[name] = schema
	}
	return &Validator{schemas: compiled}, nil
}

// Validate checks a raw JSON body against the named schema plus any
// cross-field rules. A nil slice means the body is valid. The error return
// covers unusable input (bad JSON, unknown schema), not field problems.
func (v *Validator) Validate(schemaName string, body []byte) ([]ValidationError, error) {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return nil, fmt.Errorf("unknown schema: %s", schemaName)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return []ValidationError{{Field: "(body)", Message: "request body must be a JSON object"}}, nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(parsed))
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", schemaName, err)
	}

	var fieldErrors []ValidationError
	for _, resultErr := range result.Errors() {
		fieldErrors = append(fieldErrors, ValidationError{
			Field:   fieldName(resultErr),
			Message: resultErr.Description(),
		})
	}

	if len(fieldErrors) == 0 {
		fieldErrors = append(fieldErrors, crossFieldChecks(schemaName, parsed)...)
	}

	return fieldErrors, nil
}

// fieldName prefers the offending property over the "(root)" placeholder
// gojsonschema reports for required-field errors.
func fieldName(resultErr gojsonschema.ResultError) string {
	field := resultErr.Field()
	if field != "(root)" {
		return field
	}
	if property, ok := resultErr.Details()["property"].(string); ok {
		return property
	}
	return field
}

// crossFieldChecks covers the "at least one of" rules.
func crossFieldChecks(schemaName string, parsed map[string]interface{}) []ValidationError {
	switch schemaName {
	case SchemaSendNotification:
		if stringValue(parsed, "userId") == "" && stringValue(parsed, "token") == "" {
			return []ValidationError{{
				Field:   "userId",
				Message: "either userId or token is required",
			}}
		}
	case SchemaBulkNotification:
		if arrayLen(parsed, "userIds") == 0 && arrayLen(parsed, "tokens") == 0 {
			return []ValidationError{{
				Field:   "userIds",
				Message: "at least one of userIds or tokens must be non-empty",
			}}
		}
	}
	return nil
}

func stringValue(parsed map[string]interface{}, key string) string {
	if v, ok := parsed[key].(string); ok {
		return v
	}
	return ""
}

func arrayLen(parsed map[string]interface{}, key string) int {
	if v, ok := parsed[key].([]interface{}); ok {
		return len(v)
	}
	return 0
}

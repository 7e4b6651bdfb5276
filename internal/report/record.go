package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"report-workers/internal/common/errors"
)

// Record holds one report's field values. Absent fields take their default
// when the report is filled.
type Record map[Field]string

// Value returns the value written for f: the record's own value when present,
// today's date (as of now) for ReportDate, and "" otherwise.
func (r Record) Value(f Field, now time.Time) string {
	if v, ok := r[f]; ok {
		return v
	}
	if f == ReportDate {
		return now.Format(DateLayout)
	}
	return ""
}

// recordSchema accepts any object whose recognised keys hold strings.
func recordSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(Fields))
	for _, p := range Fields {
		props[string(p.Field)] = map[string]interface{}{
			"type": "string",
		}
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
}

// ParseRecord decodes a JSON record. Malformed JSON yields an
// INPUT_PARSE_FAILED error. Well-formed JSON that is not an object, or that
// holds a non-string value (null included) under a recognised key, cannot be
// written into the template and yields REPORT_GENERATION_FAILED.
// Unrecognised keys are dropped.
func ParseRecord(raw []byte) (Record, error) {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.NewInputParseError(err)
	}
	if err := validateRecord(data); err != nil {
		return nil, errors.NewProcessingError(err)
	}

	obj := data.(map[string]interface{})
	rec := make(Record, len(Fields))
	for _, p := range Fields {
		if s, ok := obj[string(p.Field)].(string); ok {
			rec[p.Field] = s
		}
	}
	return rec, nil
}

func validateRecord(data interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(recordSchema())
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("record validation failed: %v", errs)
	}

	return nil
}

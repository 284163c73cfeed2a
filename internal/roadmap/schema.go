package roadmap

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON Schema every roadmap payload must satisfy, whether it
// comes from the backend roadmap endpoint or from the AI generator. The
// subjects key is optional: a payload without it is treated as an empty
// roadmap, but a present subjects key must be well formed.
const Schema = `{
	"type": "object",
	"properties": {
		"subjects": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "weightage"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"weightage": {"type": "number"},
					"question_count": {"type": "integer"},
					"topics": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["name"],
							"properties": {
								"name": {"type": "string"},
								"weightage": {"type": "number"}
							}
						}
					}
				}
			}
		}
	}
}`

// ValidatePayload checks raw roadmap JSON against Schema.
func ValidatePayload(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(Schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate roadmap payload: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid roadmap payload: %s", strings.Join(msgs, "; "))
	}
	return nil
}

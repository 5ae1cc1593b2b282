// Package schema validates model replies against the cached-result contract.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/memecard-ai/memecard/internal/core/model"
)

// resultSchema is the shape every model reply and cached payload must satisfy.
const resultSchema = `{
	"type": "object",
	"required": ["output"],
	"properties": {
		"output": { "type": "string", "minLength": 1 }
	}
}`

var compiled = mustCompile(resultSchema)

func mustCompile(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("schema: compile result schema: %v", err))
	}
	return s
}

// ValidateResult checks that body is valid JSON matching the result schema.
func ValidateResult(body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("payload is not valid JSON")
	}

	res, err := compiled.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// DecodeResult validates body and unmarshals it into a CachedResult.
func DecodeResult(body []byte) (model.CachedResult, error) {
	if err := ValidateResult(body); err != nil {
		return model.CachedResult{}, err
	}

	var out model.CachedResult
	if err := json.Unmarshal(body, &out); err != nil {
		return model.CachedResult{}, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

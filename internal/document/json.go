package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// PagesInput is the JSON form of already-extracted page text.
type PagesInput struct {
	FileName string         `json:"file_name,omitempty"`
	Pages    []tags.RawPage `json:"pages"`
}

// PagesSchema is the JSON Schema every page payload must satisfy.
const PagesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "file_name": {"type": "string"},
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["page_number", "text"],
        "properties": {
          "page_number": {"type": "integer", "minimum": 1},
          "text": {"type": "string"}
        }
      }
    }
  }
}`

var pagesSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("pages.json", bytes.NewReader([]byte(PagesSchema))); err != nil {
		return nil, fmt.Errorf("failed to load pages schema: %w", err)
	}
	schema, err := compiler.Compile("pages.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile pages schema: %w", err)
	}
	return schema, nil
})

// ValidatePages checks a decoded JSON value against PagesSchema.
func ValidatePages(doc any) error {
	schema, err := pagesSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("pages do not match schema: %w", err)
	}
	return nil
}

// DecodePagesJSON validates and decodes a page payload.
func DecodePagesJSON(data []byte) (*PagesInput, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := ValidatePages(doc); err != nil {
		return nil, err
	}

	var in PagesInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode pages: %w", err)
	}
	return &in, nil
}

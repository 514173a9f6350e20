package listing

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// programListSchema is the canonical shape of a persisted program list.
const programListSchema = `{
  "type": "object",
  "properties": {
    "programs": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "pages": {
            "type": "array",
            "items": {"type": "integer", "minimum": 1}
          },
          "description": {"type": "string"}
        },
        "required": ["name", "pages"]
      }
    }
  },
  "required": ["programs"]
}`

var compiledSchema = jsonschema.MustCompileString("program_list.json", programListSchema)

// validate checks a program list document against the canonical schema.
func validate(r io.Reader) error {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("does not match program list schema: %w", err)
	}
	return nil
}

package evm

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Latest is the block tag used when a selector is not given
const Latest = "latest"

const blockDescription = "Block number or 'latest', 'earliest', 'pending'"

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func blockProp(description string) *jsonschema.Schema {
	s := stringProp(description)
	s.Default = json.RawMessage(`"` + Latest + `"`)
	return s
}

func boolProp(description string, def bool) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "boolean", Description: description}
	if def {
		s.Default = json.RawMessage(`true`)
	} else {
		s.Default = json.RawMessage(`false`)
	}
	return s
}

func stringArrayProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

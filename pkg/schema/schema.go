package schema

import (
	"github.com/invopop/jsonschema"
)

func generateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// Format describes a structured output the caller expects from a text provider.
type Format struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

var (
	PanelDataFormat = &Format{
		Name:        "panel_data",
		Description: "Caption and image prompt for a single comic panel",
		Schema:      generateSchema[PanelData](),
	}
	ScriptFormat = &Format{
		Name:        "comic_script",
		Description: "Ordered panels of a comic script",
		Schema:      generateSchema[ScriptEnvelope](),
	}
)

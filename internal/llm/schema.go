package llm

import (
	"encoding/json"

	"google.golang.org/genai"
)

// SchemaType is a JSON Schema primitive type.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is the subset of JSON Schema every provider understands. It
// marshals to standard JSON Schema and converts to the Gemini dialect.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	// PropertyOrder fixes the order properties are presented to the model.
	PropertyOrder []string
	Items         *Schema
	Enum          []string
	Required      []string
	Nullable      bool
}

// MarshalJSON renders s as JSON Schema. Nullable types become a
// ["type", "null"] union.
func (s *Schema) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if s.Nullable {
		m["type"] = []string{string(s.Type), "null"}
	} else {
		m["type"] = string(s.Type)
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		m["properties"] = s.Properties
	}
	if s.Items != nil {
		m["items"] = s.Items
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return json.Marshal(m)
}

var genaiTypes = map[SchemaType]genai.Type{
	TypeObject:  genai.TypeObject,
	TypeArray:   genai.TypeArray,
	TypeString:  genai.TypeString,
	TypeInteger: genai.TypeInteger,
	TypeNumber:  genai.TypeNumber,
	TypeBoolean: genai.TypeBoolean,
}

func (s *Schema) toGenAI() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genaiTypes[s.Type],
		Description:      s.Description,
		Enum:             s.Enum,
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrder,
		Items:            s.Items.toGenAI(),
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v.toGenAI()
		}
	}
	return out
}

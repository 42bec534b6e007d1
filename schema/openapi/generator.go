// Package openapi derives OpenAPI-compatible JSON Schema documents from an
// attribute registry: one object property per container, each holding the
// store-key-addressed properties of the attributes bound to it.
package openapi

import (
	"fmt"

	attrjson "github.com/Bridj/attr-json"
)

type generator struct {
	cfg generatorConfig
}

// NewGenerator constructs an OpenAPI-compatible schema generator.
func NewGenerator(opts ...GeneratorOption) attrjson.SchemaGenerator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return generator{cfg: cfg}
}

// Option returns a TypeOption that wires the OpenAPI schema generator into a
// record type.
func Option(opts ...GeneratorOption) attrjson.TypeOption {
	return attrjson.WithSchemaGenerator(NewGenerator(opts...))
}

// Generate builds the schema for registry. With a root component configured
// the schema is published under components/schemas and referenced from the
// document root; otherwise the bare schema is the document.
func (g generator) Generate(registry *attrjson.Registry) (attrjson.SchemaDocument, error) {
	schema, err := buildRegistrySchema(registry)
	if err != nil {
		return attrjson.SchemaDocument{}, err
	}
	return attrjson.SchemaDocument{
		Format:   attrjson.SchemaFormatOpenAPI,
		Document: g.cfg.assemble(schema),
	}, nil
}

func buildRegistrySchema(registry *attrjson.Registry) (map[string]any, error) {
	containers := registry.Containers()
	properties := make(map[string]any, len(containers))
	for _, container := range containers {
		schema, err := buildContainerSchema(registry, container)
		if err != nil {
			return nil, err
		}
		properties[container] = schema
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}, nil
}

func buildContainerSchema(registry *attrjson.Registry, container string) (map[string]any, error) {
	defs := registry.DefinitionsFor(container)
	properties := make(map[string]any, len(defs))
	for _, def := range defs {
		schema, err := buildAttributeSchema(def)
		if err != nil {
			return nil, err
		}
		properties[def.StoreKey()] = schema
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}, nil
}

func buildAttributeSchema(def attrjson.Definition) (map[string]any, error) {
	schema := schemaForType(def.Type())
	if def.IsArray() {
		schema = map[string]any{
			"type":  "array",
			"items": schema,
		}
	}
	if value, ok := def.DefaultValue(); ok {
		stored, err := attrjson.Serialize(value, def.Type(), def.IsArray())
		if err != nil {
			return nil, fmt.Errorf("openapi: default for %q: %w", def.Name(), err)
		}
		schema["default"] = stored
	}
	return schema, nil
}

func schemaForType(typ attrjson.Type) map[string]any {
	switch typ {
	case attrjson.TypeInteger:
		return map[string]any{"type": "integer"}
	case attrjson.TypeFloat:
		return map[string]any{"type": "number"}
	case attrjson.TypeBoolean:
		return map[string]any{"type": "boolean"}
	case attrjson.TypeDecimal:
		return map[string]any{"type": "string", "format": "decimal"}
	case attrjson.TypeDate:
		return map[string]any{"type": "string", "format": "date"}
	case attrjson.TypeDateTime:
		return map[string]any{"type": "string", "format": "date-time"}
	default:
		return map[string]any{"type": "string"}
	}
}

package openapi

type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	rootComponent  string
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Record Attribute Schema",
			Version: "1.0.0",
		},
	}
}

// assemble wraps the bare registry schema into a full OpenAPI document when a
// root component is configured; otherwise the schema itself is the document.
func (cfg generatorConfig) assemble(schema map[string]any) map[string]any {
	if cfg.rootComponent == "" {
		return schema
	}
	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}
	return map[string]any{
		"openapi": cfg.openAPIVersion,
		"info":    info,
		"components": map[string]any{
			"schemas": map[string]any{
				cfg.rootComponent: schema,
			},
		},
	}
}

// GeneratorOption configures the OpenAPI generator behaviour.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version == "" {
			return
		}
		cfg.openAPIVersion = version
	}
}

// InfoOption configures optional fields on the OpenAPI info section.
type InfoOption func(*openapiInfo)

// WithInfoDescription sets the optional description field for the info
// section.
func WithInfoDescription(description string) InfoOption {
	return func(info *openapiInfo) {
		info.Description = description
	}
}

// WithInfo configures the OpenAPI info block. Empty strings retain the
// existing values.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// WithRootComponent publishes the registry schema under components/schemas
// with the provided name inside a full OpenAPI document.
func WithRootComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.rootComponent = name
	}
}

package attrjson

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened field descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI represents OpenAPI-compatible JSON Schema documents.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument encapsulates a generated schema output alongside its format
// identifier. Implementations must ensure Document is JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator derives a schema document from an attribute registry.
type SchemaGenerator interface {
	Generate(registry *Registry) (SchemaDocument, error)
}

// WithSchemaGenerator overrides the generator used by RecordType.Schema.
func WithSchemaGenerator(generator SchemaGenerator) TypeOption {
	return func(cfg *typeConfig) {
		cfg.schemaGen = generator
	}
}

// FieldDescriptor describes one declared attribute and its document binding.
type FieldDescriptor struct {
	Name       string `json:"name"`
	Type       Type   `json:"type"`
	Array      bool   `json:"array,omitempty"`
	Container  string `json:"container"`
	StoreKey   string `json:"store_key"`
	HasDefault bool   `json:"has_default,omitempty"`
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema
// generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(registry *Registry) (SchemaDocument, error) {
	defs := registry.Definitions()
	descriptors := make([]FieldDescriptor, 0, len(defs))
	for _, def := range defs {
		descriptors = append(descriptors, FieldDescriptor{
			Name:       def.Name(),
			Type:       def.Type(),
			Array:      def.IsArray(),
			Container:  def.Container(),
			StoreKey:   def.StoreKey(),
			HasDefault: def.HasDefault(),
		})
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, nil
}

// Schema generates a schema document for the type's registry using the
// configured generator, falling back to the descriptor generator.
func (rt *RecordType) Schema() (SchemaDocument, error) {
	generator := rt.cfg.schemaGen
	if generator == nil {
		generator = DefaultSchemaGenerator()
	}
	return generator.Generate(rt.registry)
}

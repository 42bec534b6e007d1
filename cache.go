package attrjson

// ProgramCache stores compiled expression programs keyed by expression text.
// Implementations must be safe for concurrent use.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache reuses compiled default expressions across records of the
// type.
func WithProgramCache(cache ProgramCache) TypeOption {
	return func(cfg *typeConfig) {
		cfg.programCache = cache
	}
}

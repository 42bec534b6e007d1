package attrjson

import "fmt"

// DefaultContainer is the container attributes bind to when a definition
// names none.
const DefaultContainer = "attributes"

// Registry holds the validated attribute set for one record type. Registries
// are immutable after construction: Extend builds a child that shares nothing
// mutable with its parent, so concurrent readers of a parent are safe while
// children are assembled.
type Registry struct {
	defs             []Definition
	index            map[string]int
	storeKeys        map[string]map[string]string
	containers       []string
	defaultContainer string
}

// NewRegistry validates the supplied definitions and builds the root of a
// registry hierarchy. Definitions keep declaration order; containers keep
// first-use order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	var root *Registry
	return root.Extend(defs...)
}

// Extend builds a child registry holding every parent definition plus defs.
// A child may not redeclare a parent attribute name, may add attributes to
// parent containers, and may reuse another container's store key in a new
// container. The parent is never mutated.
func (r *Registry) Extend(defs ...Definition) (*Registry, error) {
	child := r.cloneRegistry()
	for _, def := range defs {
		if err := child.add(def); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// WithDefaultContainer returns a copy of the registry whose subsequent Extend
// calls bind container-less definitions to name. Existing definitions keep
// their container. An empty name falls back to DefaultContainer.
func (r *Registry) WithDefaultContainer(name string) *Registry {
	out := r.cloneRegistry()
	if name == "" {
		name = DefaultContainer
	}
	out.defaultContainer = name
	return out
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i].clone(), true
}

// Definitions returns every definition, root to leaf in declaration order.
// The slice is a defensive copy.
func (r *Registry) Definitions() []Definition {
	if r == nil || len(r.defs) == 0 {
		return nil
	}
	out := make([]Definition, len(r.defs))
	for i := range r.defs {
		out[i] = r.defs[i].clone()
	}
	return out
}

// DefinitionsFor returns the definitions bound to container in declaration
// order.
func (r *Registry) DefinitionsFor(container string) []Definition {
	if r == nil {
		return nil
	}
	var out []Definition
	for i := range r.defs {
		if r.defs[i].container == container {
			out = append(out, r.defs[i].clone())
		}
	}
	return out
}

// Containers returns every container name in first-use order.
func (r *Registry) Containers() []string {
	if r == nil || len(r.containers) == 0 {
		return nil
	}
	return append([]string(nil), r.containers...)
}

// Len returns the number of registered attributes.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// HasContainer reports whether any attribute binds to container.
func (r *Registry) HasContainer(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.storeKeys[name]
	return ok
}

func (r *Registry) cloneRegistry() *Registry {
	out := &Registry{
		index:            map[string]int{},
		storeKeys:        map[string]map[string]string{},
		defaultContainer: DefaultContainer,
	}
	if r == nil {
		return out
	}
	out.defaultContainer = r.defaultContainer
	if len(r.defs) > 0 {
		out.defs = make([]Definition, len(r.defs))
		for i := range r.defs {
			out.defs[i] = r.defs[i].clone()
		}
	}
	for name, i := range r.index {
		out.index[name] = i
	}
	for container, keys := range r.storeKeys {
		copied := make(map[string]string, len(keys))
		for key, attr := range keys {
			copied[key] = attr
		}
		out.storeKeys[container] = copied
	}
	out.containers = append([]string(nil), r.containers...)
	return out
}

// add validates def and commits it. Nothing is mutated until validation
// passes.
func (r *Registry) add(def Definition) error {
	if def.name == "" {
		return ErrDefinitionName
	}
	if !def.typ.Valid() {
		return wrapDefinitionType(string(def.typ))
	}
	if def.hasDefault && def.defaultExpr != "" {
		return wrapDefinitionDefault(def.name)
	}

	norm := def.normalize(r.defaultContainer)
	if _, exists := r.index[norm.name]; exists {
		return wrapDuplicateAttribute(norm.name)
	}
	if _, exists := r.storeKeys[norm.container][norm.storeKey]; exists {
		return wrapDuplicateStoreKey(norm.storeKey, norm.container)
	}
	if norm.hasDefault {
		cast, err := Cast(norm.defaultVal, norm.typ, norm.array)
		if err != nil {
			return fmt.Errorf("attrjson: default for %q: %w", norm.name, err)
		}
		norm.defaultVal = cast
	}

	keys, ok := r.storeKeys[norm.container]
	if !ok {
		keys = map[string]string{}
		r.storeKeys[norm.container] = keys
		r.containers = append(r.containers, norm.container)
	}
	keys[norm.storeKey] = norm.name
	r.index[norm.name] = len(r.defs)
	r.defs = append(r.defs, norm)
	return nil
}

package attrjson

import (
	"fmt"
	"sync"
	"time"

	"github.com/Bridj/attr-json/internal/docjson"
	"github.com/Bridj/attr-json/pkg/activity"
)

// TypeOption configures a record type.
type TypeOption func(*typeConfig)

type typeConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
	hooks        activity.Hooks
	channel      string
	clock        func() time.Time
	schemaGen    SchemaGenerator
}

func applyTypeOptions(opts []TypeOption) typeConfig {
	cfg := typeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator selects the expression engine used for computed defaults.
// Passing the result of NewJSEvaluator without the js_eval build tag leaves
// the engine unset and the default expr engine takes over.
func WithEvaluator(e Evaluator) TypeOption {
	return func(cfg *typeConfig) {
		cfg.evaluator = e
	}
}

// WithClock overrides the time source used for computed defaults and
// activity timestamps. Tests pin it for determinism.
func WithClock(clock func() time.Time) TypeOption {
	return func(cfg *typeConfig) {
		cfg.clock = clock
	}
}

// RecordType binds a name and an attribute registry to the configuration
// records of that type share: expression engine, program cache, activity
// hooks, clock.
type RecordType struct {
	name     string
	registry *Registry
	cfg      typeConfig
	emitter  *activity.Emitter
	evalOnce sync.Once
}

// NewRecordType builds a record type over registry.
func NewRecordType(name string, registry *Registry, opts ...TypeOption) (*RecordType, error) {
	if name == "" {
		return nil, fmt.Errorf("attrjson: record type name must not be empty")
	}
	if registry == nil {
		return nil, fmt.Errorf("attrjson: record type %q requires a registry", name)
	}
	cfg := applyTypeOptions(opts)
	rt := &RecordType{name: name, registry: registry, cfg: cfg}
	rt.emitter = activity.NewEmitter(cfg.hooks, activity.Config{
		Enabled: cfg.hooks.Enabled(),
		Channel: cfg.channel,
	})
	return rt, nil
}

// Name returns the record type's name.
func (rt *RecordType) Name() string { return rt.name }

// Registry returns the type's attribute registry.
func (rt *RecordType) Registry() *Registry { return rt.registry }

func (rt *RecordType) evaluatorLogger() EvaluatorLogger {
	if rt.cfg.logger != nil {
		return rt.cfg.logger
	}
	return noopEvaluatorLogger{}
}

func (rt *RecordType) now() time.Time {
	if rt.cfg.clock != nil {
		return rt.cfg.clock()
	}
	return time.Now()
}

func (rt *RecordType) evalContext() EvalContext {
	now := rt.now()
	return EvalContext{
		RecordType: rt.name,
		Now:        &now,
		Attrs:      map[string]any{},
	}
}

// New constructs a fresh record: every declared container starts empty and is
// eagerly default-materialized, then assignments apply in caller order. One
// record.created event covers the whole construction; the construction
// assignments do not emit individually. When an activity hook fails the
// record is still returned alongside the hook error.
func (rt *RecordType) New(assignments ...Assignment) (*Record, error) {
	rec := &Record{
		rtype:     rt,
		documents: make(map[string]Document, len(rt.registry.Containers())),
	}
	ctx := rt.evalContext()
	for _, container := range rt.registry.Containers() {
		doc := Document{}
		if err := rt.materializeContainer(container, doc, ctx); err != nil {
			return nil, err
		}
		rec.documents[container] = doc
	}
	for _, assignment := range assignments {
		if _, _, _, err := rec.write(assignment.Name, assignment.Value); err != nil {
			return nil, err
		}
	}
	return rec, rec.emitCreated()
}

// Load rebuilds a record from the host's stored container documents. The
// documents are deep-copied and merge-defaulted: keys present in the stored
// form are preserved verbatim, missing declared keys get fresh defaults.
// Store keys the registry does not declare stay untouched; container names
// the registry does not declare are rejected. The reload path emits nothing.
func (rt *RecordType) Load(documents map[string]Document) (*Record, error) {
	for name := range documents {
		if !rt.registry.HasContainer(name) {
			return nil, wrapUnknownContainer(name)
		}
	}
	copied, err := docjson.CloneAll(documents)
	if err != nil {
		return nil, fmt.Errorf("attrjson: load documents: %w", err)
	}
	if copied == nil {
		copied = map[string]Document{}
	}
	rec := &Record{rtype: rt, documents: copied}
	ctx := rt.evalContext()
	for _, container := range rt.registry.Containers() {
		if err := rt.materializeContainer(container, rec.document(container), ctx); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Assignment pairs an attribute name with a raw value for ordered bulk
// writes.
type Assignment struct {
	Name  string
	Value any
}

// Assign builds an Assignment.
func Assign(name string, value any) Assignment {
	return Assignment{Name: name, Value: value}
}

// Record is one instance's set of container documents. A record owns its
// documents exclusively and is not safe for concurrent use.
type Record struct {
	rtype     *RecordType
	documents map[string]Document
}

// Type returns the record's type.
func (rec *Record) Type() *RecordType { return rec.rtype }

// Get returns the cast value for name. An absent slot is materialized with
// its resolved default first, so a get never observes a missing key.
func (rec *Record) Get(name string) (any, error) {
	def, ok := rec.rtype.registry.Lookup(name)
	if !ok {
		return nil, wrapUnknownAttribute(name)
	}
	doc := rec.document(def.Container())
	stored, present := doc[def.StoreKey()]
	if !present {
		return rec.rtype.materializeSlot(def, doc, rec.evalContextWithAttrs())
	}
	value, err := Cast(stored, def.Type(), def.IsArray())
	if err != nil {
		return nil, fmt.Errorf("attrjson: get %q: %w", name, err)
	}
	return value, nil
}

// Set casts raw, writes its serialized form at the attribute's store key, and
// emits attribute.updated with the old and new stored values. The write is
// visible to Get immediately; a failing hook reports through the returned
// error but never rolls the write back.
func (rec *Record) Set(name string, raw any) error {
	def, old, stored, err := rec.write(name, raw)
	if err != nil {
		return err
	}
	return rec.emitAttributeUpdated(def, old, stored)
}

// Apply performs assignments in caller order, stopping at the first failure.
// Writes already applied stay applied.
func (rec *Record) Apply(assignments ...Assignment) error {
	for _, assignment := range assignments {
		if err := rec.Set(assignment.Name, assignment.Value); err != nil {
			return err
		}
	}
	return nil
}

// Container returns a deep copy of the named container document.
func (rec *Record) Container(name string) (Document, bool) {
	doc, ok := rec.documents[name]
	if !ok {
		return nil, false
	}
	clone, err := docjson.Clone(doc)
	if err != nil {
		return nil, false
	}
	if clone == nil {
		clone = Document{}
	}
	return clone, true
}

// Documents returns deep copies of every container document keyed by
// container name, in the shape the host persists. Stored forms are
// JSON-compatible by construction, so the deep copy cannot fail.
func (rec *Record) Documents() map[string]Document {
	out, err := docjson.CloneAll(rec.documents)
	if err != nil || out == nil {
		return map[string]Document{}
	}
	return out
}

// ReplaceContainer swaps the named container for doc: the document is
// deep-copied and merge-defaulted, so explicit keys are preserved and missing
// declared keys get fresh defaults. Replacing with an empty document
// re-materializes every attribute bound to the container. Emits
// container.replaced.
func (rec *Record) ReplaceContainer(name string, doc Document) error {
	if !rec.rtype.registry.HasContainer(name) {
		return wrapUnknownContainer(name)
	}
	clone, err := docjson.Clone(doc)
	if err != nil {
		return fmt.Errorf("attrjson: replace container %q: %w", name, err)
	}
	if clone == nil {
		clone = Document{}
	}
	if err := rec.rtype.materializeContainer(name, clone, rec.evalContextWithAttrs()); err != nil {
		return err
	}
	rec.documents[name] = clone
	return rec.emitContainerReplaced(name)
}

// write performs the cast-serialize-store sequence shared by Set and
// construction assignments, returning the definition with the old and new
// stored values for event emission.
func (rec *Record) write(name string, raw any) (Definition, any, any, error) {
	def, ok := rec.rtype.registry.Lookup(name)
	if !ok {
		return Definition{}, nil, nil, wrapUnknownAttribute(name)
	}
	stored, err := Serialize(raw, def.Type(), def.IsArray())
	if err != nil {
		return Definition{}, nil, nil, fmt.Errorf("attrjson: set %q: %w", name, err)
	}
	doc := rec.document(def.Container())
	old := doc[def.StoreKey()]
	doc[def.StoreKey()] = stored
	return def, old, stored, nil
}

// document returns the live container map, creating it when a declared
// container has not been touched yet.
func (rec *Record) document(container string) Document {
	doc := rec.documents[container]
	if doc == nil {
		doc = Document{}
		rec.documents[container] = doc
	}
	return doc
}

// evalContextWithAttrs seeds the eval context with the record's current cast
// values so computed defaults can reference populated attributes.
func (rec *Record) evalContextWithAttrs() EvalContext {
	ctx := rec.rtype.evalContext()
	for _, def := range rec.rtype.registry.Definitions() {
		doc := rec.documents[def.Container()]
		stored, ok := doc[def.StoreKey()]
		if !ok {
			continue
		}
		if value, err := Cast(stored, def.Type(), def.IsArray()); err == nil {
			ctx.Attrs[def.Name()] = value
		}
	}
	return ctx
}

// Value returns the cast value for name as T. A null value yields T's zero
// value without error; a type mismatch reports the held dynamic type.
func Value[T any](rec *Record, name string) (T, error) {
	var zero T
	value, err := rec.Get(name)
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("attrjson: attribute %q holds %T, not %T", name, value, zero)
	}
	return typed, nil
}

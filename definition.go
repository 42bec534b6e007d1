package attrjson

import (
	"time"

	"github.com/shopspring/decimal"
)

// Definition declares one typed attribute: its value type, the container and
// store key it persists under, and how a missing value materializes. It is an
// immutable value; construction never fails and validation is deferred to
// registry assembly so callers can declare attributes before deciding
// container layout.
type Definition struct {
	name        string
	typ         Type
	array       bool
	storeKey    string
	container   string
	defaultVal  any
	hasDefault  bool
	defaultExpr string
}

// DefinitionOption configures optional attribute behaviour.
type DefinitionOption func(*Definition)

// WithArray declares the attribute as an ordered sequence of its type.
func WithArray() DefinitionOption {
	return func(d *Definition) {
		d.array = true
	}
}

// WithDefault sets a literal default. WithDefault(nil) is an explicit null
// default and still materializes into the document.
func WithDefault(value any) DefinitionOption {
	return func(d *Definition) {
		d.hasDefault = true
		d.defaultVal = value
	}
}

// WithDefaultExpr sets an expression evaluated per record when the attribute
// is missing at materialization time. Mutually exclusive with WithDefault.
func WithDefaultExpr(expr string) DefinitionOption {
	return func(d *Definition) {
		d.defaultExpr = expr
	}
}

// WithStoreKey persists the attribute under key instead of its name.
func WithStoreKey(key string) DefinitionOption {
	return func(d *Definition) {
		d.storeKey = key
	}
}

// WithContainer binds the attribute to the named container document.
func WithContainer(name string) DefinitionOption {
	return func(d *Definition) {
		d.container = name
	}
}

// NewDefinition builds a Definition with the supplied configuration.
func NewDefinition(name string, typ Type, opts ...DefinitionOption) Definition {
	d := Definition{
		name: name,
		typ:  typ,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&d)
	}
	return d
}

// Name returns the attribute name callers read and write by.
func (d Definition) Name() string { return d.name }

// Type returns the attribute's value type.
func (d Definition) Type() Type { return d.typ }

// IsArray reports whether the attribute holds an ordered sequence.
func (d Definition) IsArray() bool { return d.array }

// StoreKey returns the document key the value persists under, falling back to
// the attribute name.
func (d Definition) StoreKey() string {
	if d.storeKey != "" {
		return d.storeKey
	}
	return d.name
}

// Container returns the container the attribute binds to. Until registry
// assembly fills in the registry default, an undeclared container is empty.
func (d Definition) Container() string { return d.container }

// DefaultValue returns the literal default and whether one was declared.
// After registry assembly the value is in cast form.
func (d Definition) DefaultValue() (any, bool) {
	if !d.hasDefault {
		return nil, false
	}
	return cloneDefault(d.defaultVal), true
}

// DefaultExpression returns the computed-default expression and whether one
// was declared.
func (d Definition) DefaultExpression() (string, bool) {
	return d.defaultExpr, d.defaultExpr != ""
}

// HasDefault reports whether the attribute materializes a value when missing,
// from either a literal or an expression.
func (d Definition) HasDefault() bool {
	return d.hasDefault || d.defaultExpr != ""
}

// normalize fills declaration fallbacks in for registry storage.
func (d Definition) normalize(defaultContainer string) Definition {
	out := d.clone()
	if out.storeKey == "" {
		out.storeKey = out.name
	}
	if out.container == "" {
		out.container = defaultContainer
	}
	return out
}

// clone returns a copy of d with slice defaults detached from the original.
func (d Definition) clone() Definition {
	out := d
	out.defaultVal = cloneDefault(d.defaultVal)
	return out
}

func cloneDefault(value any) any {
	switch v := value.(type) {
	case []any:
		return append([]any(nil), v...)
	case []string:
		return append([]string(nil), v...)
	case []int64:
		return append([]int64(nil), v...)
	case []float64:
		return append([]float64(nil), v...)
	case []bool:
		return append([]bool(nil), v...)
	case []time.Time:
		return append([]time.Time(nil), v...)
	case []decimal.Decimal:
		return append([]decimal.Decimal(nil), v...)
	default:
		return value
	}
}

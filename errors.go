package attrjson

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinitionName indicates a definition with an empty attribute name.
	ErrDefinitionName = errors.New("attrjson: attribute name must be provided")
	// ErrDefinitionType indicates a definition with an unsupported value type.
	ErrDefinitionType = errors.New("attrjson: unsupported attribute type")
	// ErrDuplicateAttribute indicates a registry received two definitions with
	// the same attribute name, including names inherited from a parent.
	ErrDuplicateAttribute = errors.New("attrjson: attribute names must be unique")
	// ErrDuplicateStoreKey indicates two definitions bound the same store key
	// inside the same container. The same key in different containers is legal.
	ErrDuplicateStoreKey = errors.New("attrjson: container store keys must be unique")
	// ErrDefinitionDefault indicates a definition declared both a literal and a
	// computed default.
	ErrDefinitionDefault = errors.New("attrjson: literal and computed defaults are mutually exclusive")
	// ErrUnknownAttribute indicates a get/set against an undeclared name.
	ErrUnknownAttribute = errors.New("attrjson: attribute not declared")
	// ErrUnknownContainer indicates a document operation against an undeclared
	// container field.
	ErrUnknownContainer = errors.New("attrjson: container not declared")
	// ErrCast indicates a raw value could not be coerced into the declared
	// type. It is always carried inside a *CastError.
	ErrCast = errors.New("attrjson: value cannot be cast")
)

func wrapDefinitionType(value string) error {
	return fmt.Errorf("%w: %q", ErrDefinitionType, value)
}

func wrapDuplicateAttribute(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateAttribute, name)
}

func wrapDuplicateStoreKey(key, container string) error {
	return fmt.Errorf("%w: %q in container %q", ErrDuplicateStoreKey, key, container)
}

func wrapDefinitionDefault(name string) error {
	return fmt.Errorf("%w: %q", ErrDefinitionDefault, name)
}

func wrapUnknownAttribute(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

func wrapUnknownContainer(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownContainer, name)
}

// CastError captures the raw value and target type of a failed coercion.
type CastError struct {
	Type  Type
	Array bool
	Value any
	Err   error
}

func (e *CastError) Error() string {
	if e == nil {
		return "<nil>"
	}
	target := string(e.Type)
	if e.Array {
		target += " array"
	}
	if e.Err != nil {
		return fmt.Sprintf("attrjson: cast %v (%T) to %s: %v", e.Value, e.Value, target, e.Err)
	}
	return fmt.Sprintf("attrjson: cast %v (%T) to %s", e.Value, e.Value, target)
}

// Unwrap exposes ErrCast (and any underlying parse error joined beneath it)
// so callers can match with errors.Is.
func (e *CastError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return ErrCast
	}
	return e.Err
}

func castFailure(typ Type, array bool, value any, err error) error {
	if err == nil {
		err = ErrCast
	} else if !errors.Is(err, ErrCast) {
		err = fmt.Errorf("%w: %v", ErrCast, err)
	}
	return &CastError{Type: typ, Array: array, Value: value, Err: err}
}

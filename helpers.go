package attrjson

// Declaration shorthands for the common case of one attribute per line.

// String declares a string attribute.
func String(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeString, opts...)
}

// Integer declares an integer attribute.
func Integer(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeInteger, opts...)
}

// Float declares a float attribute.
func Float(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeFloat, opts...)
}

// Decimal declares an arbitrary-precision decimal attribute.
func Decimal(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeDecimal, opts...)
}

// Boolean declares a boolean attribute.
func Boolean(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeBoolean, opts...)
}

// Date declares a calendar-date attribute.
func Date(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeDate, opts...)
}

// DateTime declares an instant attribute stored in UTC.
func DateTime(name string, opts ...DefinitionOption) Definition {
	return NewDefinition(name, TypeDateTime, opts...)
}

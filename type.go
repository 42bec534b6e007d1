package attrjson

// Type identifies the value type of a declared attribute. Array-ness is an
// independent flag on the definition, not a distinct Type.
type Type string

const (
	// TypeString casts to string and stores the canonical textual form.
	TypeString Type = "string"
	// TypeInteger casts to int64 and stores a JSON number.
	TypeInteger Type = "integer"
	// TypeFloat casts to float64 and stores a JSON number.
	TypeFloat Type = "float"
	// TypeDecimal casts to decimal.Decimal and stores scale-preserving text.
	TypeDecimal Type = "decimal"
	// TypeBoolean casts to bool and stores a JSON boolean.
	TypeBoolean Type = "boolean"
	// TypeDate casts to a midnight-UTC time.Time and stores "YYYY-MM-DD".
	TypeDate Type = "date"
	// TypeDateTime casts to a UTC time.Time and stores RFC 3339 text.
	TypeDateTime Type = "datetime"
)

var typeOrder = []Type{
	TypeString,
	TypeInteger,
	TypeFloat,
	TypeDecimal,
	TypeBoolean,
	TypeDate,
	TypeDateTime,
}

// Types returns the supported value types in canonical order.
func Types() []Type {
	out := make([]Type, len(typeOrder))
	copy(out, typeOrder)
	return out
}

// Valid reports whether t names a supported value type.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeDecimal, TypeBoolean, TypeDate, TypeDateTime:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t casts to a numeric representation.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeDecimal:
		return true
	default:
		return false
	}
}

// IsTemporal reports whether t casts to a time.Time representation.
func (t Type) IsTemporal() bool {
	return t == TypeDate || t == TypeDateTime
}

// ParseType converts a textual tag into the corresponding Type. Unrecognised
// values return ErrDefinitionType so declaration sites fail loudly.
func ParseType(value string) (Type, error) {
	t := Type(value)
	if !t.Valid() {
		return "", wrapDefinitionType(value)
	}
	return t, nil
}

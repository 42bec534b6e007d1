package attrjson

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the stored form of date values.
const dateLayout = "2006-01-02"

// datetime parse layouts tried after RFC 3339. Zone-less forms are read as UTC.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// Cast coerces raw into the canonical in-memory representation for typ: string,
// int64, float64, decimal.Decimal, bool, or a UTC time.Time. With array set, a
// scalar becomes a one-element slice and sequences are cast element-wise into
// the typed slice of the element representation. nil passes through for every
// type; uncoercible input returns a *CastError and never a corrupted value.
//
// Cast is idempotent: feeding a cast value (or its serialized form) back in
// yields an equal value, which is what keeps documents stable across a
// persist/reload cycle.
func Cast(raw any, typ Type, array bool) (any, error) {
	if !typ.Valid() {
		return nil, wrapDefinitionType(string(typ))
	}
	if raw == nil {
		return nil, nil
	}
	if array {
		return castArray(raw, typ)
	}
	return castScalar(raw, typ)
}

// Serialize produces the JSON-compatible stored form of raw for typ. The input
// is cast first, so feeding either an application value or an already-stored
// value yields the same result. Strings, integers, floats, and booleans store
// as themselves; decimals store as scale-preserving text; dates store as
// "YYYY-MM-DD"; datetimes store as RFC 3339 UTC text. Arrays store as []any of
// element stored forms.
func Serialize(raw any, typ Type, array bool) (any, error) {
	value, err := Cast(raw, typ, array)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	if array {
		return serializeArray(value, typ)
	}
	return serializeScalar(value, typ), nil
}

func castArray(raw any, typ Type) (any, error) {
	elems, ok := sequenceOf(raw)
	if !ok {
		elems = []any{raw}
	}
	switch typ {
	case TypeString:
		return castElements[string](elems, typ)
	case TypeInteger:
		return castElements[int64](elems, typ)
	case TypeFloat:
		return castElements[float64](elems, typ)
	case TypeDecimal:
		return castElements[decimal.Decimal](elems, typ)
	case TypeBoolean:
		return castElements[bool](elems, typ)
	case TypeDate, TypeDateTime:
		return castElements[time.Time](elems, typ)
	}
	return nil, wrapDefinitionType(string(typ))
}

func castElements[E any](elems []any, typ Type) (any, error) {
	out := make([]E, 0, len(elems))
	for i, elem := range elems {
		if elem == nil {
			return nil, castFailure(typ, true, elems, fmt.Errorf("element %d is null", i))
		}
		value, err := castScalar(elem, typ)
		if err != nil {
			return nil, castFailure(typ, true, elems, fmt.Errorf("element %d: %w", i, err))
		}
		out = append(out, value.(E))
	}
	return out, nil
}

// sequenceOf flattens slice/array input into []any. Byte slices are textual
// payloads, not sequences.
func sequenceOf(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func castScalar(raw any, typ Type) (any, error) {
	switch typ {
	case TypeString:
		return castString(raw)
	case TypeInteger:
		return castInteger(raw)
	case TypeFloat:
		return castFloat(raw)
	case TypeDecimal:
		return castDecimal(raw)
	case TypeBoolean:
		return castBoolean(raw)
	case TypeDate:
		return castDate(raw)
	case TypeDateTime:
		return castDateTime(raw)
	}
	return nil, wrapDefinitionType(string(typ))
}

func castString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case decimal.Decimal:
		return v.String(), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", raw), nil
	}
}

func castInteger(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, castFailure(TypeInteger, false, raw, err)
		}
		return floatToInt64(f)
	case decimal.Decimal:
		bi := v.BigInt()
		if !bi.IsInt64() {
			return nil, castFailure(TypeInteger, false, raw, fmt.Errorf("out of int64 range"))
		}
		return bi.Int64(), nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, castFailure(TypeInteger, false, raw, err)
		}
		return floatToInt64(f)
	default:
		return nil, castFailure(TypeInteger, false, raw, nil)
	}
}

func uintToInt64(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, castFailure(TypeInteger, false, v, fmt.Errorf("out of int64 range"))
	}
	return int64(v), nil
}

func floatToInt64(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castFailure(TypeInteger, false, f, fmt.Errorf("not a finite number"))
	}
	t := math.Trunc(f)
	if t >= float64(1<<63) || t < -float64(1<<63) {
		return nil, castFailure(TypeInteger, false, f, fmt.Errorf("out of int64 range"))
	}
	return int64(t), nil
}

func castFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return finiteFloat(v)
	case float32:
		return finiteFloat(float64(v))
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, castFailure(TypeFloat, false, raw, err)
		}
		return finiteFloat(f)
	case decimal.Decimal:
		f, _ := v.Float64()
		return finiteFloat(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, castFailure(TypeFloat, false, raw, err)
		}
		return finiteFloat(f)
	default:
		return nil, castFailure(TypeFloat, false, raw, nil)
	}
}

// finiteFloat rejects NaN and infinities: the stored form must stay
// JSON-compatible.
func finiteFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castFailure(TypeFloat, false, f, fmt.Errorf("not a finite number"))
	}
	return f, nil
}

func castDecimal(raw any) (any, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, castFailure(TypeDecimal, false, raw, err)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, castFailure(TypeDecimal, false, raw, err)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case float32:
		return decimalFromFloat(float64(v))
	case float64:
		return decimalFromFloat(v)
	default:
		return nil, castFailure(TypeDecimal, false, raw, nil)
	}
}

func decimalFromFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castFailure(TypeDecimal, false, f, fmt.Errorf("not a finite number"))
	}
	return decimal.NewFromFloat(f), nil
}

func castBoolean(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int:
		return intToBool(int64(v))
	case int8:
		return intToBool(int64(v))
	case int16:
		return intToBool(int64(v))
	case int32:
		return intToBool(int64(v))
	case int64:
		return intToBool(v)
	case uint:
		return intToBool(int64(v))
	case uint8:
		return intToBool(int64(v))
	case uint16:
		return intToBool(int64(v))
	case uint32:
		return intToBool(int64(v))
	case uint64:
		if v > 1 {
			return nil, castFailure(TypeBoolean, false, raw, nil)
		}
		return v == 1, nil
	case float32:
		return floatToBool(float64(v))
	case float64:
		return floatToBool(v)
	case json.Number:
		return castBoolean(v.String())
	case string:
		switch strings.TrimSpace(v) {
		case "1", "t", "T", "true", "TRUE", "True", "on", "ON":
			return true, nil
		case "0", "f", "F", "false", "FALSE", "False", "off", "OFF":
			return false, nil
		default:
			return nil, castFailure(TypeBoolean, false, raw, nil)
		}
	default:
		return nil, castFailure(TypeBoolean, false, raw, nil)
	}
}

func intToBool(v int64) (any, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return nil, castFailure(TypeBoolean, false, v, nil)
	}
}

func floatToBool(f float64) (any, error) {
	switch f {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return nil, castFailure(TypeBoolean, false, f, nil)
	}
}

// castDate keeps the value's own calendar date and pins it to midnight UTC so
// equality and serialization stay zone-independent.
func castDate(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return midnightUTC(v), nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(dateLayout, s); err == nil {
			return midnightUTC(t), nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return midnightUTC(t), nil
		}
		return nil, castFailure(TypeDate, false, raw, fmt.Errorf("not a date literal"))
	default:
		return nil, castFailure(TypeDate, false, raw, nil)
	}
}

func midnightUTC(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func castDateTime(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), nil
		}
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, castFailure(TypeDateTime, false, raw, fmt.Errorf("not a datetime literal"))
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case uint:
		return time.Unix(int64(v), 0).UTC(), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, castFailure(TypeDateTime, false, raw, fmt.Errorf("out of range"))
		}
		return time.Unix(int64(v), 0).UTC(), nil
	case float32:
		return epochFloat(float64(v))
	case float64:
		return epochFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, castFailure(TypeDateTime, false, raw, err)
		}
		return epochFloat(f)
	default:
		return nil, castFailure(TypeDateTime, false, raw, nil)
	}
}

func epochFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, castFailure(TypeDateTime, false, f, fmt.Errorf("not a finite number"))
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
}

func serializeArray(value any, typ Type) (any, error) {
	elems, ok := sequenceOf(value)
	if !ok {
		return nil, castFailure(typ, true, value, fmt.Errorf("cast value is not a sequence"))
	}
	out := make([]any, len(elems))
	for i, elem := range elems {
		out[i] = serializeScalar(elem, typ)
	}
	return out, nil
}

// serializeScalar expects a cast value; Serialize guarantees that.
func serializeScalar(value any, typ Type) any {
	switch typ {
	case TypeDecimal:
		return value.(decimal.Decimal).String()
	case TypeDate:
		return value.(time.Time).Format(dateLayout)
	case TypeDateTime:
		return value.(time.Time).UTC().Format(time.RFC3339Nano)
	default:
		return value
	}
}

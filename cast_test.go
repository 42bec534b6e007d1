package attrjson

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCastScalars(t *testing.T) {
	t.Run("string from anything textual", func(t *testing.T) {
		got, err := Cast(42, TypeString, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if got != "42" {
			t.Fatalf("expected %q, got %v", "42", got)
		}

		got, err = Cast([]byte("payload"), TypeString, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if got != "payload" {
			t.Fatalf("expected %q, got %v", "payload", got)
		}
	})

	t.Run("integer truncates toward zero", func(t *testing.T) {
		for _, tc := range []struct {
			in   any
			want int64
		}{
			{int(7), 7},
			{uint8(255), 255},
			{float64(1.7), 1},
			{float64(-1.7), -1},
			{"1.7", 1},
			{"-12", -12},
			{json.Number("9007199254740993"), 9007199254740993},
			{true, 1},
			{false, 0},
			{decimal.RequireFromString("5.9"), 5},
		} {
			got, err := Cast(tc.in, TypeInteger, false)
			if err != nil {
				t.Fatalf("Cast(%v) returned error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("Cast(%v) = %v, want %d", tc.in, got, tc.want)
			}
		}
	})

	t.Run("integer rejects overflow and junk", func(t *testing.T) {
		for _, in := range []any{uint64(1) << 63, "not a number", struct{}{}, json.Number("bogus")} {
			if _, err := Cast(in, TypeInteger, false); !errors.Is(err, ErrCast) {
				t.Fatalf("Cast(%v) error = %v, want ErrCast", in, err)
			}
		}
	})

	t.Run("float parses text and rejects non-finite", func(t *testing.T) {
		got, err := Cast(" 2.5 ", TypeFloat, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if got != 2.5 {
			t.Fatalf("expected 2.5, got %v", got)
		}
		if _, err := Cast("NaN", TypeFloat, false); !errors.Is(err, ErrCast) {
			t.Fatalf("expected ErrCast for NaN, got %v", err)
		}
		if _, err := Cast(true, TypeFloat, false); !errors.Is(err, ErrCast) {
			t.Fatalf("expected ErrCast for bool input, got %v", err)
		}
	})

	t.Run("decimal preserves scale", func(t *testing.T) {
		got, err := Cast("5.50", TypeDecimal, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		d, ok := got.(decimal.Decimal)
		if !ok {
			t.Fatalf("expected decimal.Decimal, got %T", got)
		}
		if d.String() != "5.50" {
			t.Fatalf("expected scale-preserving %q, got %q", "5.50", d.String())
		}
	})

	t.Run("boolean accepts canonical text forms only", func(t *testing.T) {
		for text, want := range map[string]bool{
			"t": true, "T": true, "true": true, "on": true, "1": true,
			"f": false, "FALSE": false, "off": false, "0": false,
		} {
			got, err := Cast(text, TypeBoolean, false)
			if err != nil {
				t.Fatalf("Cast(%q) returned error: %v", text, err)
			}
			if got != want {
				t.Fatalf("Cast(%q) = %v, want %v", text, got, want)
			}
		}
		for _, in := range []any{"yep", "", 2, 0.5} {
			if _, err := Cast(in, TypeBoolean, false); !errors.Is(err, ErrCast) {
				t.Fatalf("Cast(%v) error = %v, want ErrCast", in, err)
			}
		}
	})

	t.Run("date pins the calendar day to midnight UTC", func(t *testing.T) {
		got, err := Cast("2024-05-01", TypeDate, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		want := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
		if !got.(time.Time).Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}

		loc := time.FixedZone("CEST", 2*60*60)
		stamp := time.Date(2024, time.May, 1, 23, 45, 0, 0, loc)
		got, err = Cast(stamp, TypeDate, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if !got.(time.Time).Equal(want) {
			t.Fatalf("expected the wall-clock date %v, got %v", want, got)
		}
	})

	t.Run("datetime normalizes to UTC", func(t *testing.T) {
		got, err := Cast("2024-05-01T10:30:00+02:00", TypeDateTime, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		want := time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)
		ts := got.(time.Time)
		if !ts.Equal(want) || ts.Location() != time.UTC {
			t.Fatalf("expected %v in UTC, got %v in %v", want, ts, ts.Location())
		}

		got, err = Cast(int64(1714552200), TypeDateTime, false)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if !got.(time.Time).Equal(time.Unix(1714552200, 0)) {
			t.Fatalf("epoch seconds mismatch: %v", got)
		}
	})

	t.Run("nil passes through every type", func(t *testing.T) {
		for _, typ := range Types() {
			got, err := Cast(nil, typ, false)
			if err != nil {
				t.Fatalf("Cast(nil, %s) returned error: %v", typ, err)
			}
			if got != nil {
				t.Fatalf("Cast(nil, %s) = %v, want nil", typ, got)
			}
		}
	})
}

func TestCastArrays(t *testing.T) {
	t.Run("element-wise into typed slice", func(t *testing.T) {
		got, err := Cast([]any{"1", 2, 3.9}, TypeInteger, true)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if !reflect.DeepEqual(got, []int64{1, 2, 3}) {
			t.Fatalf("expected [1 2 3], got %#v", got)
		}
	})

	t.Run("scalar wraps into one-element slice", func(t *testing.T) {
		got, err := Cast("solo", TypeString, true)
		if err != nil {
			t.Fatalf("Cast returned error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"solo"}) {
			t.Fatalf("expected [solo], got %#v", got)
		}
	})

	t.Run("failing element fails the whole array", func(t *testing.T) {
		_, err := Cast([]any{1, "bad", 3}, TypeInteger, true)
		if !errors.Is(err, ErrCast) {
			t.Fatalf("expected ErrCast, got %v", err)
		}
		var ce *CastError
		if !errors.As(err, &ce) {
			t.Fatalf("expected *CastError, got %T", err)
		}
		if !ce.Array || ce.Type != TypeInteger {
			t.Fatalf("CastError carries wrong target: %+v", ce)
		}
	})

	t.Run("null element is rejected", func(t *testing.T) {
		if _, err := Cast([]any{"a", nil}, TypeString, true); !errors.Is(err, ErrCast) {
			t.Fatalf("expected ErrCast for null element, got %v", err)
		}
	})
}

func TestSerializeStoredForms(t *testing.T) {
	t.Run("decimal stores as scale-preserving text", func(t *testing.T) {
		got, err := Serialize(decimal.RequireFromString("5.50"), TypeDecimal, false)
		if err != nil {
			t.Fatalf("Serialize returned error: %v", err)
		}
		if got != "5.50" {
			t.Fatalf("expected %q, got %v", "5.50", got)
		}
	})

	t.Run("date and datetime store as text", func(t *testing.T) {
		day := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
		got, err := Serialize(day, TypeDate, false)
		if err != nil {
			t.Fatalf("Serialize returned error: %v", err)
		}
		if got != "2024-05-01" {
			t.Fatalf("expected %q, got %v", "2024-05-01", got)
		}

		stamp := time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)
		got, err = Serialize(stamp, TypeDateTime, false)
		if err != nil {
			t.Fatalf("Serialize returned error: %v", err)
		}
		if got != "2024-05-01T08:30:00Z" {
			t.Fatalf("expected RFC 3339 UTC text, got %v", got)
		}
	})

	t.Run("arrays store as plain slices", func(t *testing.T) {
		got, err := Serialize([]int64{1, 2}, TypeInteger, true)
		if err != nil {
			t.Fatalf("Serialize returned error: %v", err)
		}
		if !reflect.DeepEqual(got, []any{int64(1), int64(2)}) {
			t.Fatalf("expected []any stored form, got %#v", got)
		}
	})

	t.Run("accepts raw application values", func(t *testing.T) {
		got, err := Serialize("2024-05-01T10:30:00+02:00", TypeDateTime, false)
		if err != nil {
			t.Fatalf("Serialize returned error: %v", err)
		}
		if got != "2024-05-01T08:30:00Z" {
			t.Fatalf("expected normalized stored form, got %v", got)
		}
	})
}

func TestCastRoundTrip(t *testing.T) {
	cases := []struct {
		typ   Type
		array bool
		raw   any
	}{
		{TypeString, false, "hello"},
		{TypeInteger, false, "42"},
		{TypeFloat, false, 12.25},
		{TypeDecimal, false, "19.90"},
		{TypeBoolean, false, "t"},
		{TypeDate, false, "2024-05-01"},
		{TypeDateTime, false, "2024-05-01T08:30:00.5Z"},
		{TypeInteger, true, []any{1, "2", 3.0}},
	}
	for _, tc := range cases {
		cast1, err := Cast(tc.raw, tc.typ, tc.array)
		if err != nil {
			t.Fatalf("Cast(%v, %s) returned error: %v", tc.raw, tc.typ, err)
		}
		stored, err := Serialize(cast1, tc.typ, tc.array)
		if err != nil {
			t.Fatalf("Serialize(%v, %s) returned error: %v", cast1, tc.typ, err)
		}
		cast2, err := Cast(stored, tc.typ, tc.array)
		if err != nil {
			t.Fatalf("Cast of stored form %v returned error: %v", stored, err)
		}
		if !equalCastValues(cast1, cast2) {
			t.Fatalf("%s round trip drifted: %#v vs %#v", tc.typ, cast1, cast2)
		}
	}
}

func equalCastValues(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	}
	return reflect.DeepEqual(a, b)
}

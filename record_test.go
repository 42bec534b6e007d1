package attrjson

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/Bridj/attr-json/internal/docjson"
	"github.com/shopspring/decimal"
)

func mustRegistry(t *testing.T, defs ...Definition) *Registry {
	t.Helper()
	registry, err := NewRegistry(defs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func mustType(t *testing.T, registry *Registry, opts ...TypeOption) *RecordType {
	t.Helper()
	rtype, err := NewRecordType("product", registry, opts...)
	if err != nil {
		t.Fatalf("record type: %v", err)
	}
	return rtype
}

func assertDocument(t *testing.T, rec *Record, container string, want Document) {
	t.Helper()
	doc, ok := rec.Container(container)
	if !ok {
		t.Fatalf("expected container %q", container)
	}
	equal, err := docjson.Equal(doc, want)
	if err != nil {
		t.Fatalf("compare container %q: %v", container, err)
	}
	if !equal {
		t.Fatalf("container %q = %v, want %v", container, doc, want)
	}
}

// reload simulates a full persist/reload cycle: the documents are handed to
// the host as opaque JSON and come back decoded the way a JSON column decodes
// them.
func reload(t *testing.T, rec *Record) *Record {
	t.Helper()
	payload, err := docjson.MarshalAll(rec.Documents())
	if err != nil {
		t.Fatalf("marshal documents: %v", err)
	}
	documents, err := docjson.UnmarshalAll(payload)
	if err != nil {
		t.Fatalf("unmarshal documents: %v", err)
	}
	reloaded, err := rec.Type().Load(documents)
	if err != nil {
		t.Fatalf("load documents: %v", err)
	}
	return reloaded
}

func TestNewMaterializesDefaultsEagerly(t *testing.T) {
	rtype := mustType(t, mustRegistry(t,
		Integer("count", WithDefault(5), WithStoreKey("n")),
		String("title"),
		Decimal("price", WithDefault("9.99"), WithContainer("pricing")),
	))

	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// Every declared key is present without any read: defaults resolved,
	// defaultless attributes explicit null.
	assertDocument(t, rec, DefaultContainer, Document{"n": 5, "title": nil})
	assertDocument(t, rec, "pricing", Document{"price": "9.99"})

	doc, _ := rec.Container(DefaultContainer)
	if _, ok := doc["title"]; !ok {
		t.Fatalf("expected title key present as explicit null")
	}
}

func TestSetGetRoundTripPerType(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seen := time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)

	rtype := mustType(t, mustRegistry(t,
		String("title"),
		Integer("count"),
		Float("score"),
		Decimal("price"),
		Boolean("active"),
		Date("starts_on"),
		DateTime("seen_at"),
	))

	cases := []struct {
		name   string
		raw    any
		want   any
		stored any
	}{
		{"title", "widget", "widget", "widget"},
		{"count", 7, int64(7), int64(7)},
		{"score", 0.5, 0.5, 0.5},
		{"price", "19.99", decimal.RequireFromString("19.99"), "19.99"},
		{"active", true, true, true},
		{"starts_on", start, start, "2026-04-01"},
		{"seen_at", seen, seen, "2026-04-01T10:30:00Z"},
	}

	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, tc := range cases {
		if err := rec.Set(tc.name, tc.raw); err != nil {
			t.Fatalf("set %q: %v", tc.name, err)
		}
	}

	check := func(t *testing.T, rec *Record) {
		t.Helper()
		doc, _ := rec.Container(DefaultContainer)
		for _, tc := range cases {
			got, err := rec.Get(tc.name)
			if err != nil {
				t.Fatalf("get %q: %v", tc.name, err)
			}
			if !valuesEqual(got, tc.want) {
				t.Fatalf("get %q = %v (%T), want %v (%T)", tc.name, got, got, tc.want, tc.want)
			}
			equal, err := docjson.Equal(
				Document{"v": doc[tc.name]},
				Document{"v": tc.stored},
			)
			if err != nil {
				t.Fatalf("compare stored %q: %v", tc.name, err)
			}
			if !equal {
				t.Fatalf("stored %q = %v (%T), want %v", tc.name, doc[tc.name], doc[tc.name], tc.stored)
			}
		}
	}

	check(t, rec)
	check(t, reload(t, rec))
}

// valuesEqual compares cast values, giving decimal its own equality so scale
// differences do not fail the comparison.
func valuesEqual(got, want any) bool {
	if gd, ok := got.(decimal.Decimal); ok {
		wd, ok := want.(decimal.Decimal)
		return ok && gd.Equal(wd)
	}
	if gt, ok := got.(time.Time); ok {
		wt, ok := want.(time.Time)
		return ok && gt.Equal(wt)
	}
	return reflect.DeepEqual(got, want)
}

func TestUncastInputMatchesCanonicalValue(t *testing.T) {
	rtype := mustType(t, mustRegistry(t,
		Integer("count"),
		Boolean("active"),
		Date("starts_on"),
		Float("score"),
	))

	rec, err := rtype.New(
		Assign("count", "12"),
		Assign("active", "t"),
		Assign("starts_on", "2026-04-01"),
		Assign("score", "0.25"),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for _, rec := range []*Record{rec, reload(t, rec)} {
		if got, _ := rec.Get("count"); got != int64(12) {
			t.Fatalf("expected canonical 12, got %v (%T)", got, got)
		}
		if got, _ := rec.Get("active"); got != true {
			t.Fatalf("expected true, got %v", got)
		}
		if got, _ := rec.Get("starts_on"); !got.(time.Time).Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("expected midnight UTC date, got %v", got)
		}
		if got, _ := rec.Get("score"); got != 0.25 {
			t.Fatalf("expected 0.25, got %v", got)
		}
	}
}

func TestExplicitNullOverridesDefault(t *testing.T) {
	rtype := mustType(t, mustRegistry(t,
		Integer("count", WithDefault(5), WithStoreKey("n")),
		String("note"),
	))

	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := rec.Set("count", nil); err != nil {
		t.Fatalf("set nil: %v", err)
	}

	for _, rec := range []*Record{rec, reload(t, rec)} {
		got, err := rec.Get("count")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected explicit null to survive, got %v", got)
		}
		assertDocument(t, rec, DefaultContainer, Document{"n": nil, "note": nil})
	}
}

func TestArrayAttributes(t *testing.T) {
	rtype := mustType(t, mustRegistry(t,
		String("tags", WithArray()),
		Integer("sizes", WithArray()),
	))

	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// A scalar becomes a one-element sequence.
	if err := rec.Set("tags", "new"); err != nil {
		t.Fatalf("set scalar: %v", err)
	}
	// A sequence casts element-wise.
	if err := rec.Set("sizes", []any{"1", 2, 3.0}); err != nil {
		t.Fatalf("set sequence: %v", err)
	}

	for _, rec := range []*Record{rec, reload(t, rec)} {
		tags, err := rec.Get("tags")
		if err != nil {
			t.Fatalf("get tags: %v", err)
		}
		if !reflect.DeepEqual(tags, []string{"new"}) {
			t.Fatalf("expected one-element slice, got %v (%T)", tags, tags)
		}
		sizes, err := rec.Get("sizes")
		if err != nil {
			t.Fatalf("get sizes: %v", err)
		}
		if !reflect.DeepEqual(sizes, []int64{1, 2, 3}) {
			t.Fatalf("expected element-wise cast, got %v (%T)", sizes, sizes)
		}
		assertDocument(t, rec, DefaultContainer, Document{
			"tags":  []any{"new"},
			"sizes": []any{1, 2, 3},
		})
	}
}

func TestInheritedAttributesCoexist(t *testing.T) {
	parent := mustRegistry(t,
		Integer("count", WithDefault(5), WithStoreKey("n")),
		String("title"),
	)
	child, err := parent.Extend(
		Boolean("archived", WithDefault(false)),
		String("legacy_n", WithStoreKey("n"), WithContainer("legacy")),
	)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}

	// Redeclaring a parent name stays fatal for the subtype.
	if _, err := parent.Extend(String("count")); !errors.Is(err, ErrDuplicateAttribute) {
		t.Fatalf("expected duplicate attribute error, got %v", err)
	}

	rtype := mustType(t, child)
	rec, err := rtype.New(Assign("legacy_n", "old"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	assertDocument(t, rec, DefaultContainer, Document{"n": 5, "title": nil, "archived": false})
	assertDocument(t, rec, "legacy", Document{"n": "old"})

	// The two attributes alias the same store key in different containers and
	// stay fully independent.
	if err := rec.Set("count", 7); err != nil {
		t.Fatalf("set count: %v", err)
	}
	if got, _ := rec.Get("legacy_n"); got != "old" {
		t.Fatalf("expected aliased store key untouched, got %v", got)
	}

	reloaded := reload(t, rec)
	if got, _ := reloaded.Get("count"); got != int64(7) {
		t.Fatalf("expected count 7 after reload, got %v", got)
	}
	if got, _ := reloaded.Get("legacy_n"); got != "old" {
		t.Fatalf("expected legacy_n after reload, got %v", got)
	}
}

func TestReplaceContainerMergesDefaults(t *testing.T) {
	rtype := mustType(t, mustRegistry(t,
		Integer("count", WithDefault(5), WithStoreKey("n")),
		String("title"),
		Decimal("price", WithDefault("9.99"), WithContainer("pricing")),
	))

	rec, err := rtype.New(Assign("count", 7), Assign("title", "widget"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// An empty replacement re-materializes every default.
	if err := rec.ReplaceContainer(DefaultContainer, Document{}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	assertDocument(t, rec, DefaultContainer, Document{"n": 5, "title": nil})

	// Explicit keys in the new document are preserved; the rest is filled.
	if err := rec.ReplaceContainer(DefaultContainer, Document{"title": "gadget"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	assertDocument(t, rec, DefaultContainer, Document{"n": 5, "title": "gadget"})

	// The other container is untouched throughout.
	assertDocument(t, rec, "pricing", Document{"price": "9.99"})

	if err := rec.ReplaceContainer("bogus", Document{}); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("expected unknown container error, got %v", err)
	}
}

func TestUndeclaredNamesFail(t *testing.T) {
	rtype := mustType(t, mustRegistry(t, String("title")))
	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := rec.Get("bogus"); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected unknown attribute error, got %v", err)
	}
	if err := rec.Set("bogus", 1); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected unknown attribute error, got %v", err)
	}
	if _, err := rtype.Load(map[string]Document{"bogus": {}}); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("expected unknown container error, got %v", err)
	}
}

func TestSetFailureLeavesDocumentUntouched(t *testing.T) {
	rtype := mustType(t, mustRegistry(t, Integer("count", WithDefault(5), WithStoreKey("n"))))
	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := rec.Set("count", "junk"); !errors.Is(err, ErrCast) {
		t.Fatalf("expected cast failure, got %v", err)
	}
	var castErr *CastError
	if err := rec.Set("count", "junk"); !errors.As(err, &castErr) {
		t.Fatalf("expected *CastError, got %T", err)
	}
	assertDocument(t, rec, DefaultContainer, Document{"n": 5})
}

func TestApplyStopsAtFirstError(t *testing.T) {
	rtype := mustType(t, mustRegistry(t, Integer("count"), String("title")))
	rec, err := rtype.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	err = rec.Apply(
		Assign("count", 1),
		Assign("count", "junk"),
		Assign("title", "never applied"),
	)
	if !errors.Is(err, ErrCast) {
		t.Fatalf("expected cast failure, got %v", err)
	}
	if got, _ := rec.Get("count"); got != int64(1) {
		t.Fatalf("expected first write kept, got %v", got)
	}
	if got, _ := rec.Get("title"); got != nil {
		t.Fatalf("expected later write skipped, got %v", got)
	}
}

func TestUnknownStoreKeysSurviveReload(t *testing.T) {
	rtype := mustType(t, mustRegistry(t, Integer("count", WithStoreKey("n"))))

	rec, err := rtype.Load(map[string]Document{
		DefaultContainer: {"n": 7, "host_owned": "kept"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, rec := range []*Record{rec, reload(t, rec)} {
		doc, _ := rec.Container(DefaultContainer)
		if doc["host_owned"] != "kept" {
			t.Fatalf("expected undeclared key preserved, got %v", doc)
		}
		if got, _ := rec.Get("count"); got != int64(7) {
			t.Fatalf("expected count 7, got %v", got)
		}
	}
}

func TestValueTypedGetter(t *testing.T) {
	rtype := mustType(t, mustRegistry(t, Integer("count"), String("title")))
	rec, err := rtype.New(Assign("count", 7))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	count, err := Value[int64](rec, "count")
	if err != nil || count != 7 {
		t.Fatalf("expected typed 7, got %v (%v)", count, err)
	}
	// Null collapses to the zero value.
	title, err := Value[string](rec, "title")
	if err != nil || title != "" {
		t.Fatalf("expected zero value for null, got %q (%v)", title, err)
	}
	if _, err := Value[string](rec, "count"); err == nil {
		t.Fatalf("expected type mismatch error")
	}
	if _, err := Value[int64](rec, "bogus"); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected unknown attribute error, got %v", err)
	}
}

func TestLoadHostDecodedFixture(t *testing.T) {
	documents := loadFixture[map[string]Document](t, "product_reload.json")

	rtype := mustType(t, mustRegistry(t,
		Integer("count", WithDefault(5), WithStoreKey("n")),
		String("title"),
		Boolean("active", WithDefault(true)),
		Decimal("price", WithContainer("pricing")),
	))

	rec, err := rtype.Load(documents)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Stored values win; the missing declared key picks up its default.
	if got, _ := rec.Get("count"); got != int64(7) {
		t.Fatalf("expected stored count, got %v", got)
	}
	if got, _ := rec.Get("title"); got != "widget" {
		t.Fatalf("expected stored title, got %v", got)
	}
	if got, _ := rec.Get("active"); got != true {
		t.Fatalf("expected default materialized, got %v", got)
	}
	price, _ := rec.Get("price")
	if !price.(decimal.Decimal).Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("expected stored price, got %v", price)
	}

	doc, _ := rec.Container(DefaultContainer)
	if doc["host_owned"] != "kept" {
		t.Fatalf("expected host-owned key preserved, got %v", doc)
	}
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}

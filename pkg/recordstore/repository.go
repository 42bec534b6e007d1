package recordstore

import (
	"context"
	"fmt"

	attrjson "github.com/Bridj/attr-json"
)

// Mutator edits a loaded record in place.
type Mutator func(*attrjson.Record) error

// Repository orchestrates load/mutate/save cycles for one record type in one
// collection. The store supplies raw container documents; the record type
// rebuilds records from them and merge-defaults what the stored form lacks.
type Repository struct {
	Store      Store
	Type       *attrjson.RecordType
	Collection string
}

func (r Repository) ref(id string) Ref {
	return Ref{Collection: r.Collection, RecordID: id}
}

func (r Repository) check() error {
	if r.Store == nil {
		return fmt.Errorf("recordstore: store is required")
	}
	if r.Type == nil {
		return fmt.Errorf("recordstore: record type is required")
	}
	if r.Collection == "" {
		return fmt.Errorf("recordstore: collection is required")
	}
	return nil
}

// Find loads and rebuilds the record stored under id. A missing record
// reports ok false without error.
func (r Repository) Find(ctx context.Context, id string) (*attrjson.Record, Meta, bool, error) {
	if err := r.check(); err != nil {
		return nil, Meta{}, false, err
	}
	documents, meta, ok, err := r.Store.Load(ctx, r.ref(id))
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("recordstore: load %q: %w", id, err)
	}
	if !ok {
		return nil, Meta{}, false, nil
	}
	record, err := r.Type.Load(documents)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("recordstore: rebuild %q: %w", id, err)
	}
	return record, meta, true, nil
}

// Save persists the record's container documents under id. Pass the Meta from
// the preceding Find to keep the optimistic ETag check in play; a zero Meta
// skips it.
func (r Repository) Save(ctx context.Context, id string, record *attrjson.Record, meta Meta) (Meta, error) {
	if err := r.check(); err != nil {
		return Meta{}, err
	}
	if record == nil {
		return Meta{}, fmt.Errorf("recordstore: record is required")
	}
	saved, err := r.Store.Save(ctx, r.ref(id), record.Documents(), meta)
	if err != nil {
		return Meta{}, fmt.Errorf("recordstore: save %q: %w", id, err)
	}
	return saved, nil
}

// Mutate loads the record under id (constructing a fresh one when absent),
// applies fn, and saves the result under the loaded ETag so a concurrent
// writer surfaces as ErrETagMismatch.
func (r Repository) Mutate(ctx context.Context, id string, fn Mutator) (*attrjson.Record, Meta, error) {
	if err := r.check(); err != nil {
		return nil, Meta{}, err
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("recordstore: mutator is required")
	}

	record, meta, ok, err := r.Find(ctx, id)
	if err != nil {
		return nil, Meta{}, err
	}
	if !ok {
		record, err = r.Type.New()
		if err != nil {
			return nil, Meta{}, fmt.Errorf("recordstore: construct %q: %w", id, err)
		}
		meta = Meta{}
	}

	if err := fn(record); err != nil {
		return nil, meta, err
	}

	saved, err := r.Save(ctx, id, record, meta)
	if err != nil {
		return nil, meta, err
	}
	return record, saved, nil
}

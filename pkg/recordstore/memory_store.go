package recordstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	attrjson "github.com/Bridj/attr-json"
	"github.com/Bridj/attr-json/internal/docjson"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and examples. It keeps each
// record as marshaled JSON bytes and decodes them on load, so values round
// trip exactly the way an opaque JSON column round-trips them: numbers come
// back as json.Number, times as their stored text.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	clock   func() time.Time
}

type memoryRecord struct {
	payload []byte
	meta    Meta
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// MemoryWithClock pins the store's timestamp source. Tests use it for
// deterministic Meta.UpdatedAt values.
func MemoryWithClock(clock func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		records: map[string]memoryRecord{},
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load decodes the stored payload for ref. A missing record reports ok false
// without error.
func (s *MemoryStore) Load(_ context.Context, ref Ref) (map[string]attrjson.Document, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}

	documents, err := docjson.UnmarshalAll(record.payload)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("recordstore: decode %q: %w", key, err)
	}
	return documents, cloneMeta(record.meta), true, nil
}

// Save encodes documents and stores them under ref. A non-empty meta.ETag
// must match the stored ETag or the save fails with ErrETagMismatch. The
// returned Meta carries a fresh snapshot ID and ETag.
func (s *MemoryStore) Save(_ context.Context, ref Ref, documents map[string]attrjson.Document, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	payload, err := docjson.MarshalAll(documents)
	if err != nil {
		return Meta{}, fmt.Errorf("recordstore: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok {
		if meta.ETag != "" && existing.meta.ETag != "" && meta.ETag != existing.meta.ETag {
			return Meta{}, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, existing.meta.ETag, meta.ETag)
		}
	}

	saved := cloneMeta(meta)
	saved.SnapshotID = uuid.NewString()
	saved.ETag = uuid.NewString()
	saved.UpdatedAt = s.clock()
	s.records[key] = memoryRecord{payload: payload, meta: saved}
	return cloneMeta(saved), nil
}

package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	attrjson "github.com/Bridj/attr-json"
)

var ErrETagMismatch = errors.New("recordstore: etag mismatch")

// Ref identifies one persisted record.
type Ref struct {
	Collection string
	RecordID   string
}

// Identifier returns the canonical storage key for the reference.
func (r Ref) Identifier() (string, error) {
	if r.Collection == "" {
		return "", fmt.Errorf("recordstore: collection is required")
	}
	if r.RecordID == "" {
		return "", fmt.Errorf("recordstore: record id is required")
	}
	return fmt.Sprintf("%s/%s", r.Collection, r.RecordID), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves the full container-document set for a single record
// reference. Save must reject a stale Meta.ETag with ErrETagMismatch and
// return refreshed metadata on success.
type Store interface {
	Load(ctx context.Context, ref Ref) (documents map[string]attrjson.Document, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, documents map[string]attrjson.Document, meta Meta) (Meta, error)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

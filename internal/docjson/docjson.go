// Package docjson holds the JSON plumbing shared by container documents: deep
// copies, number-preserving decoding, and structural equality checks.
package docjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Clone deep-copies a document through a JSON round trip so callers never
// share nested maps or slices with the original. Numbers come back as
// json.Number, keeping large integers exact.
func Clone(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return nil, nil
	}
	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// CloneAll deep-copies every container document in docs.
func CloneAll(docs map[string]map[string]any) (map[string]map[string]any, error) {
	if docs == nil {
		return nil, nil
	}
	out := make(map[string]map[string]any, len(docs))
	for name, doc := range docs {
		clone, err := Clone(doc)
		if err != nil {
			return nil, fmt.Errorf("docjson: container %q: %w", name, err)
		}
		out[name] = clone
	}
	return out, nil
}

// Marshal encodes a document. json.Marshal sorts map keys, so equal documents
// encode to equal bytes.
func Marshal(doc map[string]any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docjson: encode document: %w", err)
	}
	return data, nil
}

// MarshalAll encodes the full container set as one JSON object keyed by
// container name.
func MarshalAll(docs map[string]map[string]any) ([]byte, error) {
	data, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("docjson: encode containers: %w", err)
	}
	return data, nil
}

// Unmarshal decodes JSON bytes into a document with UseNumber enabled, so
// integer payloads survive without drifting through float64.
func Unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("docjson: decode document: %w", err)
	}
	return doc, nil
}

// UnmarshalAll decodes a full container set encoded by MarshalAll.
func UnmarshalAll(data []byte) (map[string]map[string]any, error) {
	var docs map[string]map[string]any
	if err := decode(data, &docs); err != nil {
		return nil, fmt.Errorf("docjson: decode containers: %w", err)
	}
	return docs, nil
}

// Equal reports whether two documents hold the same stored content, comparing
// canonical encodings so json.Number and native numerics line up.
func Equal(a, b map[string]any) (bool, error) {
	if len(a) == 0 && len(b) == 0 {
		return true, nil
	}
	left, err := Marshal(a)
	if err != nil {
		return false, err
	}
	right, err := Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(left, right), nil
}

func decode(data []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(target)
}

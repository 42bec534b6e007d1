package attrjson

import "github.com/Bridj/attr-json/internal/docjson"

// Document is one container's JSON object: store keys mapped to stored forms.
// It is an alias rather than a defined type so callers can build documents
// with plain map literals and pass them straight to encoding/json.
type Document = map[string]any

// CloneDocument deep-copies a document; the copy shares no nested maps or
// slices with the original. Numeric values come back as json.Number.
func CloneDocument(doc Document) (Document, error) {
	return docjson.Clone(doc)
}

// CloneDocuments deep-copies a full container set keyed by container name.
func CloneDocuments(docs map[string]Document) (map[string]Document, error) {
	return docjson.CloneAll(docs)
}

// DocumentsEqual reports whether two documents hold the same stored content.
func DocumentsEqual(a, b Document) (bool, error) {
	return docjson.Equal(a, b)
}

// Package recordstore defines the persistence-facing contract for loading and
// saving a record's container documents, plus a small repository that
// orchestrates load/mutate/save against a record type.
//
// Responsibilities:
//   - Store only loads/saves the full container-document set for a single Ref.
//   - Repository rebuilds records through attrjson.RecordType.Load and hands
//     Record.Documents back to the store on save.
//   - The core attrjson package stays persistence-agnostic; all storage logic
//     lives behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Store -> Repository -> RecordType.Load(...) -> *attrjson.Record
//
// Concurrency control:
//
//	Meta.ETag is an opaque token refreshed on every save. Passing a stale
//	ETag back into Save fails with ErrETagMismatch, so read-modify-write
//	cycles detect concurrent writers without locking.
package recordstore

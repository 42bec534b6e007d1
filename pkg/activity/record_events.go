package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the record integration surface.
const (
	VerbRecordCreated     = "record.created"
	VerbAttributeUpdated  = "attribute.updated"
	VerbContainerReplaced = "container.replaced"
)

// ChangeInput describes the common fields for record lifecycle events.
type ChangeInput struct {
	RecordType string
	Attribute  string
	Container  string
	StoreKey   string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OldValue   any
	NewValue   any
	OccurredAt time.Time
}

// BuildRecordCreatedEvent constructs a normalized event for record creation.
func BuildRecordCreatedEvent(input ChangeInput) Event {
	return buildRecordEvent(VerbRecordCreated, "record", input)
}

// BuildAttributeUpdatedEvent constructs a normalized event for one attribute
// write, carrying the old and new serialized values in metadata.
func BuildAttributeUpdatedEvent(input ChangeInput) Event {
	return buildRecordEvent(VerbAttributeUpdated, "record.attribute", input)
}

// BuildContainerReplacedEvent constructs a normalized event for a
// whole-document container replacement.
func BuildContainerReplacedEvent(input ChangeInput) Event {
	return buildRecordEvent(VerbContainerReplaced, "record.container", input)
}

func buildRecordEvent(verb, objectType string, input ChangeInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.RecordType != "" {
		metadata = ensureMetadata(metadata)
		metadata["record_type"] = input.RecordType
	}
	if input.Attribute != "" {
		metadata = ensureMetadata(metadata)
		metadata["attribute"] = input.Attribute
	}
	if input.Container != "" {
		metadata = ensureMetadata(metadata)
		metadata["container"] = input.Container
	}
	if input.StoreKey != "" {
		metadata = ensureMetadata(metadata)
		metadata["store_key"] = input.StoreKey
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Attribute)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.Container)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.RecordType)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}

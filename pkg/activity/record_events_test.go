package activity

import (
	"testing"
	"time"
)

func TestBuildAttributeUpdatedEventCarriesSlotMetadata(t *testing.T) {
	occurred := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	event := BuildAttributeUpdatedEvent(ChangeInput{
		RecordType: "product",
		Attribute:  "count",
		Container:  "attributes",
		StoreKey:   "n",
		OldValue:   int64(5),
		NewValue:   int64(7),
		ActorID:    " actor ",
		OccurredAt: occurred,
	})

	if event.Verb != VerbAttributeUpdated {
		t.Fatalf("expected verb %s, got %s", VerbAttributeUpdated, event.Verb)
	}
	if event.ObjectType != "record.attribute" || event.ObjectID != "count" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor id, got %q", event.ActorID)
	}
	if event.Metadata["record_type"] != "product" || event.Metadata["attribute"] != "count" {
		t.Fatalf("expected record metadata, got %+v", event.Metadata)
	}
	if event.Metadata["container"] != "attributes" || event.Metadata["store_key"] != "n" {
		t.Fatalf("expected slot metadata, got %+v", event.Metadata)
	}
	if event.Metadata["old_value"] != int64(5) || event.Metadata["new_value"] != int64(7) {
		t.Fatalf("expected value metadata, got %+v", event.Metadata)
	}
	if !event.OccurredAt.Equal(occurred) {
		t.Fatalf("expected timestamp preserved, got %v", event.OccurredAt)
	}
}

func TestBuildRecordCreatedEventFallsBackToTypeName(t *testing.T) {
	event := BuildRecordCreatedEvent(ChangeInput{RecordType: "product"})
	if event.Verb != VerbRecordCreated {
		t.Fatalf("expected verb %s, got %s", VerbRecordCreated, event.Verb)
	}
	if event.ObjectType != "record" || event.ObjectID != "product" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
}

func TestBuildContainerReplacedEventNamesContainer(t *testing.T) {
	event := BuildContainerReplacedEvent(ChangeInput{
		RecordType: "product",
		Container:  "pricing",
	})
	if event.Verb != VerbContainerReplaced {
		t.Fatalf("expected verb %s, got %s", VerbContainerReplaced, event.Verb)
	}
	if event.ObjectType != "record.container" || event.ObjectID != "pricing" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.Metadata["container"] != "pricing" {
		t.Fatalf("expected container metadata, got %+v", event.Metadata)
	}
}

func TestBuildEventClonesCallerMetadata(t *testing.T) {
	meta := map[string]any{"source": "import"}
	event := BuildAttributeUpdatedEvent(ChangeInput{
		RecordType: "product",
		Attribute:  "count",
		Metadata:   meta,
	})
	event.Metadata["source"] = "changed"
	if meta["source"] != "import" {
		t.Fatalf("expected caller metadata untouched, got %+v", meta)
	}
}

package attrjson

import (
	"context"

	"github.com/Bridj/attr-json/pkg/activity"
)

// WithActivityHooks attaches activity hooks to the record type. Hooks are
// cloned and nil entries dropped, so the caller's slice stays free to mutate.
func WithActivityHooks(hooks ...activity.Hook) TypeOption {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *typeConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
// Defaults to activity.DefaultChannel.
func WithActivityChannel(channel string) TypeOption {
	return func(cfg *typeConfig) {
		cfg.channel = channel
	}
}

// ActivityHooks returns a cloned slice of the hooks configured on the record
// type. The returned slice can be safely mutated by the caller.
func (rt *RecordType) ActivityHooks() activity.Hooks {
	if rt == nil {
		return nil
	}
	return cloneActivityHooks(rt.cfg.hooks)
}

func cloneActivityHooks(hooks []activity.Hook) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// emitCreated reports record construction as one record.created event. The
// construction assignments are covered by this event and do not emit
// individually.
func (rec *Record) emitCreated() error {
	rt := rec.rtype
	if !rt.emitter.Enabled() {
		return nil
	}
	return rt.emitter.Emit(context.Background(), activity.BuildRecordCreatedEvent(activity.ChangeInput{
		RecordType: rt.name,
		OccurredAt: rt.now(),
	}))
}

// emitAttributeUpdated reports one explicit write with the old and new stored
// values. The write has already landed; a hook failure surfaces through the
// returned error but never rolls it back.
func (rec *Record) emitAttributeUpdated(def Definition, old, stored any) error {
	rt := rec.rtype
	if !rt.emitter.Enabled() {
		return nil
	}
	return rt.emitter.Emit(context.Background(), activity.BuildAttributeUpdatedEvent(activity.ChangeInput{
		RecordType: rt.name,
		Attribute:  def.Name(),
		Container:  def.Container(),
		StoreKey:   def.StoreKey(),
		OldValue:   old,
		NewValue:   stored,
		OccurredAt: rt.now(),
	}))
}

// emitContainerReplaced reports a whole-document swap of container.
func (rec *Record) emitContainerReplaced(container string) error {
	rt := rec.rtype
	if !rt.emitter.Enabled() {
		return nil
	}
	return rt.emitter.Emit(context.Background(), activity.BuildContainerReplacedEvent(activity.ChangeInput{
		RecordType: rt.name,
		Container:  container,
		OccurredAt: rt.now(),
	}))
}

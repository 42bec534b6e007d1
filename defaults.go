package attrjson

import "fmt"

// resolveDefault produces the cast default for def. Literal defaults were
// cast at registration; computed defaults evaluate and then cast, so a
// misbehaving expression cannot corrupt a slot. No declared default resolves
// to explicit null.
func (rt *RecordType) resolveDefault(def Definition, ctx EvalContext) (any, error) {
	if expr, ok := def.DefaultExpression(); ok {
		ctx.Attribute = def.Name()
		raw, err := rt.evaluateExpression(ctx, expr)
		if err != nil {
			return nil, err
		}
		value, err := Cast(raw, def.Type(), def.IsArray())
		if err != nil {
			return nil, fmt.Errorf("attrjson: computed default for %q: %w", def.Name(), err)
		}
		return value, nil
	}
	if value, ok := def.DefaultValue(); ok {
		return value, nil
	}
	return nil, nil
}

// materializeContainer writes the serialized resolved default for every
// attribute bound to container whose store key is missing from doc, so every
// declared key is present afterwards (null when no default is declared). Key
// presence, not nil-ness, is the test: an explicit null stays null.
//
// Defaults are recomputed on every materialization; expression defaults may
// depend on the clock. ctx.Attrs accumulates cast values in registry order so
// later computed defaults can reference earlier attributes.
func (rt *RecordType) materializeContainer(container string, doc Document, ctx EvalContext) error {
	for _, def := range rt.registry.DefinitionsFor(container) {
		storeKey := def.StoreKey()
		if stored, ok := doc[storeKey]; ok {
			if value, err := Cast(stored, def.Type(), def.IsArray()); err == nil {
				ctx.Attrs[def.Name()] = value
			}
			continue
		}
		value, err := rt.materializeSlot(def, doc, ctx)
		if err != nil {
			return err
		}
		ctx.Attrs[def.Name()] = value
	}
	return nil
}

// materializeSlot resolves one attribute's default and writes its serialized
// form at the store key. Reads of an absent slot route through here.
func (rt *RecordType) materializeSlot(def Definition, doc Document, ctx EvalContext) (any, error) {
	value, err := rt.resolveDefault(def, ctx)
	if err != nil {
		return nil, err
	}
	stored, err := Serialize(value, def.Type(), def.IsArray())
	if err != nil {
		return nil, fmt.Errorf("attrjson: default for %q: %w", def.Name(), err)
	}
	doc[def.StoreKey()] = stored
	return value, nil
}

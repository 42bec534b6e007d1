package attrjson

import (
	"encoding/json"
)

// Slot captures where one attribute's value lives: the declaration it binds
// to, the container and store key it persists under, and the stored form
// currently held there. It is purely observational.
type Slot struct {
	Attribute  string `json:"attribute"`
	Type       Type   `json:"type"`
	Array      bool   `json:"array,omitempty"`
	Container  string `json:"container"`
	StoreKey   string `json:"store_key"`
	Present    bool   `json:"present"`
	Serialized any    `json:"serialized,omitempty"`
}

// ToJSON serialises the slot into JSON for logging or transport helpers.
func (s Slot) ToJSON() ([]byte, error) {
	type alias Slot
	return json.Marshal(alias(s))
}

// SlotFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func SlotFromJSON(data []byte) (Slot, error) {
	type alias Slot
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return Slot{}, err
	}
	return Slot(out), nil
}

// Slot reports the named attribute's binding and current stored form without
// materializing anything: an absent key stays absent and Present is false.
func (rec *Record) Slot(name string) (Slot, error) {
	def, ok := rec.rtype.registry.Lookup(name)
	if !ok {
		return Slot{}, wrapUnknownAttribute(name)
	}
	slot := Slot{
		Attribute: def.Name(),
		Type:      def.Type(),
		Array:     def.IsArray(),
		Container: def.Container(),
		StoreKey:  def.StoreKey(),
	}
	doc, ok := rec.documents[def.Container()]
	if !ok {
		return slot, nil
	}
	stored, present := doc[def.StoreKey()]
	slot.Present = present
	slot.Serialized = stored
	return slot, nil
}

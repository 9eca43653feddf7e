package models

import (
	"encoding/json"
	"fmt"
)

// typeTagKey is the discriminator key written alongside item fields in the
// persisted form. It exists only at the serialization boundary; in-memory
// items carry no tag field.
const typeTagKey = "__type__"

// Persisted tag values. They predate this implementation, so they use the
// capitalized variant names rather than the ItemType constants.
const (
	tagVenue    = "Venue"
	tagDocument = "Document"
	tagFlight   = "Flight"
	tagGeneric  = "Item"
)

func itemTag(it Item) string {
	switch it.(type) {
	case *Venue:
		return tagVenue
	case *Document:
		return tagDocument
	case *Flight:
		return tagFlight
	default:
		return tagGeneric
	}
}

// EncodeItem serializes an item to its self-describing persisted form: the
// variant's fields plus a type tag.
func EncodeItem(it Item) (json.RawMessage, error) {
	body, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("marshal item %d: %w", it.Meta().ID, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("reshape item %d: %w", it.Meta().ID, err)
	}
	tag, _ := json.Marshal(itemTag(it))
	fields[typeTagKey] = tag

	return json.Marshal(fields)
}

// DecodeItem reconstructs the concrete item variant from its persisted form.
// A missing or unrecognized type tag falls back to the base item shape, and
// unrecognized fields are dropped, so legacy records never fail to load.
func DecodeItem(data json.RawMessage) (Item, error) {
	var probe struct {
		Tag string `json:"__type__"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("read item type tag: %w", err)
	}

	var it Item
	switch probe.Tag {
	case tagVenue:
		it = &Venue{}
	case tagDocument:
		it = &Document{}
	case tagFlight:
		it = &Flight{}
	default:
		it = &GenericItem{}
	}

	if err := json.Unmarshal(data, it); err != nil {
		return nil, fmt.Errorf("decode %s item: %w", probe.Tag, err)
	}
	return it, nil
}

// EncodeItems serializes a slice of items, preserving order
func EncodeItems(items []Item) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		raw, err := EncodeItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeItems reconstructs a slice of items, preserving order
func DecodeItems(raws []json.RawMessage) ([]Item, error) {
	out := make([]Item, 0, len(raws))
	for _, raw := range raws {
		it, err := DecodeItem(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

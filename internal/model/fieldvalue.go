package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldValueKind discriminates the two shapes a field_value payload
// can take on the wire.
type FieldValueKind int

const (
	// FieldValueAbsent means the key was missing or JSON null.
	FieldValueAbsent FieldValueKind = iota
	// FieldValueString means the payload arrived as a JSON string.
	FieldValueString
	// FieldValueStructured means the payload arrived as any other JSON
	// value (object, array, number, boolean).
	FieldValueStructured
)

// FieldValue is a tagged union over the free-form field_value payload.
// Clients send arbitrary JSON here; modeling the two cases explicitly
// keeps the normalizer free of runtime type inspection.
type FieldValue struct {
	Kind FieldValueKind
	str  string
	raw  json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*v = FieldValue{Kind: FieldValueAbsent}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decoding field_value string: %w", err)
		}
		*v = FieldValue{Kind: FieldValueString, str: s}
		return nil
	}
	if !json.Valid(trimmed) {
		return fmt.Errorf("field_value is not valid JSON")
	}
	*v = FieldValue{Kind: FieldValueStructured, raw: append(json.RawMessage(nil), trimmed...)}
	return nil
}

// MarshalJSON implements json.Marshaler so round-tripping a raw event
// preserves the payload.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FieldValueString:
		return json.Marshal(v.str)
	case FieldValueStructured:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// Canonical returns the string form persisted to the store:
// strings pass through, everything else is re-encoded as deterministic
// JSON (object keys sorted, numbers kept verbatim via json.Number).
// The ok result is false when the value is absent.
func (v FieldValue) Canonical() (string, bool) {
	switch v.Kind {
	case FieldValueString:
		return v.str, true
	case FieldValueStructured:
		dec := json.NewDecoder(bytes.NewReader(v.raw))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			// Already validated in UnmarshalJSON; fall back to the raw bytes.
			return string(v.raw), true
		}
		encoded, err := json.Marshal(decoded)
		if err != nil {
			return string(v.raw), true
		}
		return string(encoded), true
	default:
		return "", false
	}
}

package domain

import (
	"bytes"
	"encoding/json"
)

// Text is a string field that tolerates upstream type drift. Strings decode
// as-is, null decodes to "", numbers and booleans keep their literal text, and
// objects or arrays decode to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '[' {
		*t = ""
		return nil
	}
	*t = Text(trimmed)
	return nil
}

// decodeObject returns the members of a JSON object, or nil when raw is
// missing, null, or not an object.
func decodeObject(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// decodeArray returns the elements of a JSON array, or nil when raw is
// missing, null, or not an array.
func decodeArray(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil
	}
	return arr
}

// textField reads obj[key] as [Text]. Missing keys and nil objects yield "".
func textField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var t Text
	_ = t.UnmarshalJSON(raw) // never fails
	return string(t)
}

func parseContact(raw json.RawMessage) Contact {
	obj := decodeObject(raw)
	return Contact{
		Name:  textField(obj, "name"),
		Phone: textField(obj, "phone"),
		Email: textField(obj, "email"),
	}
}

// parseJudges returns the names of all judge objects, skipping entries that
// are not objects. A missing or malformed list yields an empty, non-nil slice.
func parseJudges(raw json.RawMessage) []string {
	names := []string{}
	for _, item := range decodeArray(raw) {
		obj := decodeObject(item)
		if obj == nil {
			continue
		}
		names = append(names, textField(obj, "name"))
	}
	return names
}

// parseClasses decodes the class list, skipping entries that are not objects.
func parseClasses(raw json.RawMessage) []ClassEntry {
	items := decodeArray(raw)
	classes := make([]ClassEntry, 0, len(items))
	for _, item := range items {
		obj := decodeObject(item)
		if obj == nil {
			continue
		}
		classes = append(classes, ClassEntry{
			Class: Text(textField(obj, "class")),
			Date:  Text(textField(obj, "date")),
		})
	}
	return classes
}

// passthrough returns raw unchanged when present, otherwise the fallback literal.
func passthrough(raw json.RawMessage, fallback string) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage(fallback)
	}
	return raw
}

// Package webhook parses messaging webhook payloads into canonical
// message-creation requests and status updates.
//
// Upstream senders use several dialects of the same envelope. Parsing is
// lenient: fields of an unexpected JSON type are treated as absent rather
// than failing the whole payload, and empty strings count as absent.
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope is the outer webhook body: { entry: [ { changes: [ ... ] } ] }.
type Envelope struct {
	Entry []json.RawMessage `json:"entry"`
}

// ParseEnvelope decodes a raw webhook body.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return &env, nil
}

// Change returns the first change of the first entry, flattened so that
// a nested "value" object replaces the change itself.
func (e *Envelope) Change() (*Change, error) {
	entry, err := e.firstEntry()
	if err != nil {
		return nil, err
	}

	changes, ok := arrayField(entry, "changes")
	if !ok || len(changes) == 0 {
		return nil, ErrMissingChanges
	}

	return parseChange(changes[0])
}

// ChangeOrEntry behaves like Change but falls back to reading the entry
// itself when it carries no changes list. Archived payload files use both
// layouts.
func (e *Envelope) ChangeOrEntry() (*Change, error) {
	entry, err := e.firstEntry()
	if err != nil {
		return nil, err
	}

	changes, ok := arrayField(entry, "changes")
	if !ok || len(changes) == 0 {
		return parseObject(entry), nil
	}

	return parseChange(changes[0])
}

func (e *Envelope) firstEntry() (map[string]json.RawMessage, error) {
	if len(e.Entry) == 0 {
		return nil, ErrMissingEntry
	}
	entry, ok := asObject(e.Entry[0])
	if !ok {
		return nil, ErrMissingEntry
	}
	return entry, nil
}

// Change is the flattened change object with its optional collections.
// HasMessages and HasStatuses report whether the key was present as a list,
// independently of the list being empty.
type Change struct {
	Messages    []MessageEntry
	Statuses    []StatusEntry
	Contacts    []Contact
	HasMessages bool
	HasStatuses bool
}

func parseChange(raw json.RawMessage) (*Change, error) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, ErrMissingChanges
	}
	if value, ok := asObject(obj["value"]); ok {
		obj = value
	}
	return parseObject(obj), nil
}

func parseObject(obj map[string]json.RawMessage) *Change {
	change := &Change{}

	if items, ok := arrayField(obj, "messages"); ok {
		change.HasMessages = true
		change.Messages = make([]MessageEntry, len(items))
		for i, item := range items {
			_ = json.Unmarshal(item, &change.Messages[i])
		}
	}

	if items, ok := arrayField(obj, "statuses"); ok {
		change.HasStatuses = true
		change.Statuses = make([]StatusEntry, len(items))
		for i, item := range items {
			_ = json.Unmarshal(item, &change.Statuses[i])
		}
	}

	if items, ok := arrayField(obj, "contacts"); ok {
		change.Contacts = make([]Contact, len(items))
		for i, item := range items {
			_ = json.Unmarshal(item, &change.Contacts[i])
		}
	}

	return change
}

// MessageEntry is one element of a "messages" list.
type MessageEntry struct {
	From      OptString   `json:"from"`
	ID        OptString   `json:"id"`
	MessageID OptString   `json:"message_id"`
	MetaMsgID OptString   `json:"meta_msg_id"`
	Timestamp OptString   `json:"timestamp"`
	Text      TextObject  `json:"text"`
	Message   InnerObject `json:"message"`
	Body      OptString   `json:"body"`
}

// StatusEntry is one element of a "statuses" list.
type StatusEntry struct {
	ID        OptString `json:"id"`
	MessageID OptString `json:"message_id"`
	MsgID     OptString `json:"msg_id"`
	MetaMsgID OptString `json:"meta_msg_id"`
	Status    OptString `json:"status"`
}

// Contact is one element of a "contacts" list.
type Contact struct {
	WaID    OptString     `json:"wa_id"`
	Profile ProfileObject `json:"profile"`
}

type TextObject struct {
	Body OptString `json:"body"`
}

type InnerObject struct {
	Text TextObject `json:"text"`
}

type ProfileObject struct {
	Name OptString `json:"name"`
}

func (m *MessageEntry) UnmarshalJSON(b []byte) error {
	type plain MessageEntry
	return decodeObject(b, (*plain)(m))
}

func (s *StatusEntry) UnmarshalJSON(b []byte) error {
	type plain StatusEntry
	return decodeObject(b, (*plain)(s))
}

func (c *Contact) UnmarshalJSON(b []byte) error {
	type plain Contact
	return decodeObject(b, (*plain)(c))
}

func (t *TextObject) UnmarshalJSON(b []byte) error {
	type plain TextObject
	return decodeObject(b, (*plain)(t))
}

func (o *InnerObject) UnmarshalJSON(b []byte) error {
	type plain InnerObject
	return decodeObject(b, (*plain)(o))
}

func (p *ProfileObject) UnmarshalJSON(b []byte) error {
	type plain ProfileObject
	return decodeObject(b, (*plain)(p))
}

// decodeObject fills dst only when b is a JSON object; anything else
// leaves dst at its zero value.
func decodeObject(b []byte, dst any) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// OptString is a string field that may be missing, null, a JSON string or
// a JSON number. Empty strings are treated as missing.
type OptString struct {
	Value string
	Valid bool
}

func (s *OptString) UnmarshalJSON(b []byte) error {
	*s = OptString{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	switch c := b[0]; {
	case c == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		*s = OptString{Value: v, Valid: v != ""}
	case c == '-' || (c >= '0' && c <= '9'):
		*s = OptString{Value: string(b), Valid: true}
	}
	return nil
}

// Ptr returns a pointer to the value, or nil when absent.
func (s OptString) Ptr() *string {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// Float parses the value as a number.
func (s OptString) Float() (float64, bool) {
	if !s.Valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(s.Value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func arrayField(obj map[string]json.RawMessage, key string) ([]json.RawMessage, bool) {
	raw := bytes.TrimSpace(obj[key])
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

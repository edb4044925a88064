package entities

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Entry is a single feedback form submission.
type Entry struct {
	ID      string          `json:"id" db:"id"`
	Name    string          `json:"name" db:"name"`
	Email   string          `json:"email" db:"email"`
	Age     json.RawMessage `json:"age" db:"age"`
	Message string          `json:"message" db:"message"`
}

// EntryFields are the caller-supplied contents of an entry.
type EntryFields struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Age     json.RawMessage `json:"age"`
	Message string          `json:"message"`
}

// Complete reports whether every field is present.
func (f EntryFields) Complete() bool {
	return f.Name != "" &&
		f.Email != "" &&
		f.Message != "" &&
		!IsBlankValue(f.Age)
}

// NewEntry builds an entry with the given id from fields.
func NewEntry(id string, fields EntryFields) *Entry {
	e := &Entry{ID: id}
	e.Apply(fields)
	return e
}

// Apply overwrites the content fields of e, leaving the id untouched.
func (e *Entry) Apply(fields EntryFields) {
	e.Name = fields.Name
	e.Email = fields.Email
	e.Age = cloneRaw(fields.Age)
	e.Message = fields.Message
}

// Fields returns the content fields of e.
func (e *Entry) Fields() EntryFields {
	return EntryFields{
		Name:    e.Name,
		Email:   e.Email,
		Age:     cloneRaw(e.Age),
		Message: e.Message,
	}
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Age = cloneRaw(e.Age)
	return &c
}

// IsBlankValue reports whether a raw JSON value counts as missing:
// absent, null, false, zero or the empty string.
func IsBlankValue(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return true
	}

	switch s := string(v); {
	case s == "null", s == "false", s == `""`:
		return true
	case s[0] == '-' || (s[0] >= '0' && s[0] <= '9'):
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f == 0
	case s[0] == '"':
		var str string
		return json.Unmarshal(v, &str) == nil && str == ""
	}
	return false
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

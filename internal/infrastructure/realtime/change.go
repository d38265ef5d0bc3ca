package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Change is one committed row change. Columns carries the values a
// subscription may filter on; Record is the row itself.
type Change struct {
	Table       string            `json:"table"`
	Event       EventType         `json:"event"`
	Columns     map[string]string `json:"columns,omitempty"`
	Record      json.RawMessage   `json:"record"`
	CommittedAt time.Time         `json:"committed_at"`
}

func NewChange(table string, event EventType, columns map[string]string, record interface{}) (Change, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Change{}, fmt.Errorf("realtime: encode %s record: %w", table, err)
	}
	return Change{
		Table:       table,
		Event:       event,
		Columns:     columns,
		Record:      raw,
		CommittedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the change record into v.
func (c Change) Decode(v interface{}) error {
	return json.Unmarshal(c.Record, v)
}

// Filter scopes a subscription to (table, event, column = value).
// An empty Column subscribes to every row of the table.
type Filter struct {
	Table  string    `json:"table"`
	Event  EventType `json:"event"`
	Column string    `json:"column,omitempty"`
	Value  string    `json:"value,omitempty"`
}

func (f Filter) Validate() error {
	if f.Table == "" {
		return fmt.Errorf("realtime: filter table is required")
	}
	switch f.Event {
	case EventInsert, EventUpdate, EventDelete, EventAll:
	default:
		return fmt.Errorf("realtime: unknown event %q", f.Event)
	}
	if f.Column != "" && f.Value == "" {
		return fmt.Errorf("realtime: filter on %s needs a value", f.Column)
	}
	return nil
}

func (f Filter) Matches(c Change) bool {
	if f.Table != c.Table {
		return false
	}
	if f.Event != EventAll && f.Event != c.Event {
		return false
	}
	if f.Column == "" {
		return true
	}
	v, ok := c.Columns[f.Column]
	return ok && v == f.Value
}

func (f Filter) String() string {
	if f.Column == "" {
		return fmt.Sprintf("%s:%s", f.Table, f.Event)
	}
	return fmt.Sprintf("%s:%s:%s=eq.%s", f.Table, f.Event, f.Column, f.Value)
}

package core

import "fmt"

// EventType represents the type of change in the storage.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents an external change to a stored key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String makes Event usable as a lifecycle event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}

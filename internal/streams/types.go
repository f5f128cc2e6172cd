// Package streams carries store changes between processes that share one
// database, over a Redis Stream.
package streams

import "encoding/json"

// Stream name constants
const (
	StreamChanges = "vendorhub:changes"
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// Sync status values
const (
	StatusOffline   = "offline"
	StatusStreaming = "streaming"
)

// ChangeEvent is one committed mutation as published on the stream
type ChangeEvent struct {
	Origin string          `json:"origin"`
	Table  string          `json:"table"`
	Action string          `json:"action"`
	ID     string          `json:"id"`
	Record json.RawMessage `json:"record,omitempty"`
}

// RemoteChange is the Event payload of a change relayed from another
// process. Mirrors never republish it.
type RemoteChange struct {
	Origin string
	ID     string
	Record json.RawMessage
}

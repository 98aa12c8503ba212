package remotestore

import (
	"encoding/json"
	"time"
)

const (
	DefaultTopic         = "timestore.changes"
	EventDocumentChanged = "DocumentChanged"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type DocumentChangedPayload struct {
	Collection string `json:"collection"`
	DocumentID string `json:"document_id"`
	Op         Op     `json:"op"`
}

// PartitionKey keeps the changes of one collection in order.
func PartitionKey(collection string) []byte { return []byte(collection) }

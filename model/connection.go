package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConnectionType describes the relation a connection encodes.
type ConnectionType string

const (
	ConnectionTypeInvolves  ConnectionType = "involves"
	ConnectionTypeCauses    ConnectionType = "causes"
	ConnectionTypeRelatesTo ConnectionType = "relates_to"
	ConnectionTypeLeadsTo   ConnectionType = "leads_to"
)

// ParseConnectionType normalizes a free-form relation name to a known
// connection type. Unknown relations map to ConnectionTypeRelatesTo.
func ParseConnectionType(raw string) ConnectionType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch ConnectionType(normalized) {
	case ConnectionTypeInvolves, ConnectionTypeCauses, ConnectionTypeRelatesTo, ConnectionTypeLeadsTo:
		return ConnectionType(normalized)
	default:
		return ConnectionTypeRelatesTo
	}
}

// Connection is a directed edge between two chunk object IDs. The store does
// not enforce referential integrity: TargetID may point at a chunk that no
// longer exists in any collection, and consumers must tolerate that.
type Connection struct {
	ID        uuid.UUID      `json:"id"`
	SourceID  string         `json:"source_id"`
	TargetID  string         `json:"target_id"`
	Type      ConnectionType `json:"type"`
	UserID    string         `json:"user_id"`
	Metadata  Metadata       `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

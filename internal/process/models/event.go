package models

import (
	"strings"
	"time"
)

// EventDocument is document metadata attached to an event. TypeName stays
// empty when the type code is unknown to the reference tables or malformed.
type EventDocument struct {
	DocumentID string `json:"document_id"`
	TypeCode   string `json:"type_code"`
	TypeName   string `json:"type_name,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
}

// Event is one procedural movement in a process history.
//
// Identity is (ProcessNumber, MovementID). The event set of a process is
// append-only: an event is never updated or deleted once written.
type Event struct {
	ProcessNumber string    `json:"process_number"`
	MovementID    string    `json:"movement_id"`
	ProtocolAt    time.Time `json:"protocol_at"`
	SecrecyLevel  int       `json:"secrecy_level"`
	LocalType     string    `json:"local_type"`
	UserID        string    `json:"user_id"`
	Description   string    `json:"description"`

	Documents []EventDocument `json:"documents,omitempty"`

	// PublicDefender marks movements entered by the public-defender
	// office, derived from the acting-user identifier prefix.
	PublicDefender bool `json:"public_defender"`
}

// IsPublicDefenderUser reports whether an acting-user identifier belongs to
// the public-defender office ("DP" prefix, case-insensitive).
func IsPublicDefenderUser(userID string) bool {
	return len(userID) >= 2 && strings.EqualFold(userID[:2], "DP")
}

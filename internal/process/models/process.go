package models

import (
	"fmt"
	"time"

	"procsync/internal/reference"
)

// LinkedProcess is one related case carried in the process header.
type LinkedProcess struct {
	Number string `json:"number"`
	Link   string `json:"link"`
}

// Process is the aggregate root for one mirrored judicial case.
//
// Invariants:
//   - Number is the external case number, unique and immutable after creation
//   - Fresh is false from creation until the first successful header
//     extraction, and flips back to false whenever the registry reports a
//     change
//   - Updating is true only while a refresh run for this number is in flight
//   - Header fields (Class through Linked) are overwritten wholesale by each
//     successful header extraction; they are never merged
//   - A process is never deleted
type Process struct {
	Number    string `json:"number"`
	AccessKey string `json:"access_key,omitempty"`
	Tier      string `json:"tier,omitempty"`

	Fresh         bool      `json:"fresh"`
	Updating      bool      `json:"updating"`
	LastUpdatedAt time.Time `json:"last_updated_at"`

	// Coded header fields; nil means unresolved or cleared on a
	// reference miss. The raw code is not retained as a fallback.
	Class       *reference.Ref `json:"class,omitempty"`
	Locality    *reference.Ref `json:"locality,omitempty"`
	JudgingBody *reference.Ref `json:"judging_body,omitempty"`

	SecrecyLevel    int    `json:"secrecy_level"`
	LitigationValue string `json:"litigation_value"`

	Subjects []reference.Ref `json:"subjects"`
	Linked   []LinkedProcess `json:"linked"`
}

// NewProcess creates a process in the stale state, as discovery does when it
// sees a number for the first time. The header stays empty until the first
// refresh.
func NewProcess(number string) (*Process, error) {
	if number == "" {
		return nil, fmt.Errorf("process number cannot be empty")
	}
	return &Process{Number: number, Fresh: false}, nil
}

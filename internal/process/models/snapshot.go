package models

import (
	"time"

	"procsync/internal/eproc"
)

// RawSnapshot holds the latest verbatim registry payload for a process.
// Exactly one snapshot exists per process; each refresh supersedes it
// wholesale, never merges.
type RawSnapshot struct {
	ProcessNumber string           `json:"process_number"`
	Payload       eproc.RawProcess `json:"payload"`
	FetchedAt     time.Time        `json:"fetched_at"`
}

// Package jobs is the boundary with the external task queue. The pipeline
// only dispatches envelopes and consumes them; scheduling, retries and
// worker pools stay on the queue side.
package jobs

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates job envelopes on the shared topic.
type Kind string

const (
	// KindRefresh re-fetches and re-extracts one process.
	KindRefresh Kind = "refresh"
	// KindDiscover runs a changed-process window query.
	KindDiscover Kind = "discover"
	// KindSweep dispatches one refresh job per stale process.
	KindSweep Kind = "sweep"
)

// Envelope is the wire form of one job.
type Envelope struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Refresh jobs.
	Number string `json:"number,omitempty"`

	// Discover jobs.
	Tier          string `json:"tier,omitempty"`
	WindowMinutes int    `json:"window_minutes,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	Page          int    `json:"page,omitempty"`

	// Sweep jobs. Zero means unbounded.
	Limit int `json:"limit,omitempty"`
}

// Encode serializes the envelope for the transport.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode job envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope parses a transport record back into an envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode job envelope: %w", err)
	}
	if e.Kind == "" {
		return Envelope{}, fmt.Errorf("job envelope missing kind")
	}
	return e, nil
}

// Package extract converts a raw registry snapshot into normalized records:
// the process header, its procedural events, and its parties. Each transform
// carries its own merge semantics: the header is overwritten, events are
// append-only, parties are fully replaced.
package extract

import (
	"context"
	"errors"
	"fmt"

	"procsync/internal/process/models"
	"procsync/internal/process/store"
	"procsync/internal/reference"
	"procsync/pkg/platform/sentinel"
	"procsync/pkg/requestcontext"
)

// Header maps the raw basic-data section onto the process's denormalized
// header and commits the refresh: fresh=true, updating=false, timestamp.
type Header struct {
	processes store.ProcessStore
	refs      reference.Resolver
}

func NewHeader(processes store.ProcessStore, refs reference.Resolver) *Header {
	return &Header{processes: processes, refs: refs}
}

// Extract overwrites the header fields of proc from the snapshot and
// persists it. A coded field whose code has no reference row is cleared, not
// kept; the raw code is never retained as a fallback. Missing secrecy level
// or litigation value aborts the extraction before anything is persisted.
func (h *Header) Extract(ctx context.Context, proc *models.Process, snap *models.RawSnapshot) error {
	basic := &snap.Payload.BasicData

	if basic.SecrecyLevel == nil {
		return fmt.Errorf("process %s basic data missing _nivelSigilo", proc.Number)
	}
	if basic.LitigationValue == nil {
		return fmt.Errorf("process %s basic data missing valorCausa", proc.Number)
	}

	class, err := h.resolve(ctx, h.refs.Class, basic.ClassCode)
	if err != nil {
		return err
	}
	proc.Class = class

	locality, err := h.resolve(ctx, h.refs.Locality, basic.LocalityCode)
	if err != nil {
		return err
	}
	proc.Locality = locality

	judgingBody, err := h.resolve(ctx, h.refs.JudgingBody, basic.JudgingBodyCode)
	if err != nil {
		return err
	}
	proc.JudgingBody = judgingBody

	// Subjects are rebuilt from scratch; unresolved codes are skipped.
	proc.Subjects = nil
	for _, raw := range basic.Subjects {
		subject, err := h.refs.Subject(ctx, raw.NationalCode)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return fmt.Errorf("resolve subject %s: %w", raw.NationalCode, err)
		}
		proc.Subjects = append(proc.Subjects, subject)
	}

	// The linked list is always cleared; only a present processoVinculado
	// key rebuilds it.
	proc.Linked = nil
	for _, raw := range basic.Linked {
		proc.Linked = append(proc.Linked, models.LinkedProcess{
			Number: raw.Number,
			Link:   raw.Link,
		})
	}

	proc.SecrecyLevel = *basic.SecrecyLevel
	proc.LitigationValue = *basic.LitigationValue

	// Commit point for the whole refresh.
	proc.Fresh = true
	proc.Updating = false
	proc.LastUpdatedAt = requestcontext.Now(ctx)

	if err := h.processes.Save(ctx, proc); err != nil {
		return fmt.Errorf("save header for process %s: %w", proc.Number, err)
	}
	return nil
}

func (h *Header) resolve(ctx context.Context, lookup func(context.Context, string) (reference.Ref, error), code string) (*reference.Ref, error) {
	ref, err := lookup(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve code %s: %w", code, err)
	}
	return &ref, nil
}

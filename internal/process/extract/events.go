package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"procsync/internal/eproc"
	"procsync/internal/process/models"
	"procsync/internal/process/store"
	"procsync/internal/reference"
	"procsync/pkg/platform/sentinel"
)

// movementTimeLayout is the registry's movement timestamp format; no
// timezone is carried on the wire.
const movementTimeLayout = "20060102150405"

// Events appends new procedural events from the snapshot's movement list.
// Extraction is idempotent: a movement whose identifier was already
// extracted for the process is skipped entirely, never updated.
type Events struct {
	events store.EventStore
	refs   reference.Resolver
	logger *slog.Logger
}

func NewEvents(events store.EventStore, refs reference.Resolver, logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &Events{events: events, refs: refs, logger: logger}
}

// Extract walks the raw movements in order and returns how many events were
// appended. A malformed movement is fatal to that movement only; the batch
// keeps going.
func (e *Events) Extract(ctx context.Context, proc *models.Process, snap *models.RawSnapshot) (int, error) {
	documents := make(map[string]eproc.RawDocument, len(snap.Payload.Documents))
	for _, doc := range snap.Payload.Documents {
		documents[doc.ID] = doc
	}

	appended := 0
	for _, movement := range snap.Payload.Movements {
		exists, err := e.events.Exists(ctx, proc.Number, movement.ID)
		if err != nil {
			return appended, fmt.Errorf("check event %s/%s: %w", proc.Number, movement.ID, err)
		}
		if exists {
			continue
		}

		protocolAt, err := time.Parse(movementTimeLayout, movement.DateTime)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping movement with malformed timestamp",
				"process", proc.Number,
				"movement", movement.ID,
				"value", movement.DateTime,
			)
			continue
		}

		event := &models.Event{
			ProcessNumber:  proc.Number,
			MovementID:     movement.ID,
			ProtocolAt:     protocolAt,
			SecrecyLevel:   movement.SecrecyLevel,
			LocalType:      movement.LocalType,
			UserID:         movement.UserID,
			Description:    movement.Description,
			PublicDefender: models.IsPublicDefenderUser(movement.UserID),
		}

		for _, docID := range movement.DocumentIDs {
			doc, ok := documents[docID]
			if !ok {
				e.logger.WarnContext(ctx, "movement references unknown document",
					"process", proc.Number,
					"movement", movement.ID,
					"document", docID,
				)
				continue
			}
			event.Documents = append(event.Documents, e.toEventDocument(ctx, proc.Tier, doc))
		}

		if err := e.events.Append(ctx, event); err != nil {
			return appended, fmt.Errorf("append event %s/%s: %w", proc.Number, movement.ID, err)
		}
		appended++
	}
	return appended, nil
}

// toEventDocument resolves the document-type name for the process's court
// tier. An unknown or malformed type code leaves the name empty.
func (e *Events) toEventDocument(ctx context.Context, tier string, doc eproc.RawDocument) models.EventDocument {
	out := models.EventDocument{
		DocumentID: doc.ID,
		TypeCode:   doc.TypeCode,
		MimeType:   doc.MimeType,
	}
	code, err := strconv.Atoi(doc.TypeCode)
	if err != nil {
		return out
	}
	ref, err := e.refs.DocumentType(ctx, tier, code)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			e.logger.WarnContext(ctx, "document type lookup failed",
				"tier", tier,
				"code", code,
				"error", err,
			)
		}
		return out
	}
	out.TypeName = ref.Name
	return out
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"procsync/internal/process/models"
	"procsync/internal/reference"
	"procsync/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresProcesses persists processes with the denormalized header as
// columns and the subject/linked lists as JSONB.
type PostgresProcesses struct {
	pool *pgxpool.Pool
}

func NewPostgresProcesses(pool *pgxpool.Pool) *PostgresProcesses {
	return &PostgresProcesses{pool: pool}
}

func (s *PostgresProcesses) Create(ctx context.Context, p *models.Process) error {
	subjects, linked, err := marshalHeaderLists(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO processes (
			number, access_key, tier, fresh, updating, last_updated_at,
			class_code, class_name, locality_code, locality_name,
			judging_body_code, judging_body_name,
			secrecy_level, litigation_value, subjects, linked
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.Number, p.AccessKey, p.Tier, p.Fresh, p.Updating, nullTime(p.LastUpdatedAt),
		refCode(p.Class), refName(p.Class),
		refCode(p.Locality), refName(p.Locality),
		refCode(p.JudgingBody), refName(p.JudgingBody),
		p.SecrecyLevel, p.LitigationValue, subjects, linked,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert process %s: %w", p.Number, err)
	}
	return nil
}

func (s *PostgresProcesses) Find(ctx context.Context, number string) (*models.Process, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT number, access_key, tier, fresh, updating, last_updated_at,
		       class_code, class_name, locality_code, locality_name,
		       judging_body_code, judging_body_name,
		       secrecy_level, litigation_value, subjects, linked
		FROM processes
		WHERE number = $1`,
		number,
	)
	return scanProcess(row)
}

func (s *PostgresProcesses) Save(ctx context.Context, p *models.Process) error {
	subjects, linked, err := marshalHeaderLists(p)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE processes SET
			access_key = $2, tier = $3, fresh = $4, updating = $5,
			last_updated_at = $6,
			class_code = $7, class_name = $8,
			locality_code = $9, locality_name = $10,
			judging_body_code = $11, judging_body_name = $12,
			secrecy_level = $13, litigation_value = $14,
			subjects = $15, linked = $16
		WHERE number = $1`,
		p.Number, p.AccessKey, p.Tier, p.Fresh, p.Updating, nullTime(p.LastUpdatedAt),
		refCode(p.Class), refName(p.Class),
		refCode(p.Locality), refName(p.Locality),
		refCode(p.JudgingBody), refName(p.JudgingBody),
		p.SecrecyLevel, p.LitigationValue, subjects, linked,
	)
	if err != nil {
		return fmt.Errorf("update process %s: %w", p.Number, err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProcesses) SetUpdating(ctx context.Context, number string, updating bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE processes SET updating = $2 WHERE number = $1`,
		number, updating,
	)
	if err != nil {
		return fmt.Errorf("set updating on process %s: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProcesses) ListStale(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT number FROM processes WHERE NOT fresh ORDER BY number`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stale processes: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scan stale process: %w", err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale processes: %w", err)
	}
	return numbers, nil
}

func scanProcess(row pgx.Row) (*models.Process, error) {
	var (
		p                              models.Process
		lastUpdated                    *time.Time
		classCode, className           *string
		localityCode, localityName     *string
		judgingBodyCode, judgingBodyNm *string
		subjects, linked               []byte
	)
	err := row.Scan(
		&p.Number, &p.AccessKey, &p.Tier, &p.Fresh, &p.Updating, &lastUpdated,
		&classCode, &className, &localityCode, &localityName,
		&judgingBodyCode, &judgingBodyNm,
		&p.SecrecyLevel, &p.LitigationValue, &subjects, &linked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan process: %w", err)
	}
	if lastUpdated != nil {
		p.LastUpdatedAt = *lastUpdated
	}
	p.Class = toRef(classCode, className)
	p.Locality = toRef(localityCode, localityName)
	p.JudgingBody = toRef(judgingBodyCode, judgingBodyNm)
	if err := json.Unmarshal(subjects, &p.Subjects); err != nil {
		return nil, fmt.Errorf("decode process subjects: %w", err)
	}
	if err := json.Unmarshal(linked, &p.Linked); err != nil {
		return nil, fmt.Errorf("decode linked processes: %w", err)
	}
	return &p, nil
}

// PostgresSnapshots keeps one JSONB payload per process, replaced on write.
type PostgresSnapshots struct {
	pool *pgxpool.Pool
}

func NewPostgresSnapshots(pool *pgxpool.Pool) *PostgresSnapshots {
	return &PostgresSnapshots{pool: pool}
}

func (s *PostgresSnapshots) Save(ctx context.Context, snap *models.RawSnapshot) error {
	payload, err := json.Marshal(snap.Payload)
	if err != nil {
		return fmt.Errorf("encode snapshot payload: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO raw_snapshots (process_number, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (process_number)
		DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at`,
		snap.ProcessNumber, payload, snap.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("save snapshot for %s: %w", snap.ProcessNumber, err)
	}
	return nil
}

func (s *PostgresSnapshots) Find(ctx context.Context, number string) (*models.RawSnapshot, error) {
	var (
		snap    models.RawSnapshot
		payload []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT process_number, payload, fetched_at FROM raw_snapshots WHERE process_number = $1`,
		number,
	).Scan(&snap.ProcessNumber, &payload, &snap.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find snapshot for %s: %w", number, err)
	}
	if err := json.Unmarshal(payload, &snap.Payload); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return &snap, nil
}

// PostgresEvents appends events; duplicates are dropped by the primary key.
type PostgresEvents struct {
	pool *pgxpool.Pool
}

func NewPostgresEvents(pool *pgxpool.Pool) *PostgresEvents {
	return &PostgresEvents{pool: pool}
}

func (s *PostgresEvents) Exists(ctx context.Context, number, movementID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE process_number = $1 AND movement_id = $2)`,
		number, movementID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event %s/%s: %w", number, movementID, err)
	}
	return exists, nil
}

func (s *PostgresEvents) Append(ctx context.Context, event *models.Event) error {
	documents, err := json.Marshal(event.Documents)
	if err != nil {
		return fmt.Errorf("encode event documents: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO events (
			process_number, movement_id, protocol_at, secrecy_level,
			local_type, user_id, description, documents, public_defender
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (process_number, movement_id) DO NOTHING`,
		event.ProcessNumber, event.MovementID, event.ProtocolAt, event.SecrecyLevel,
		event.LocalType, event.UserID, event.Description, documents, event.PublicDefender,
	)
	if err != nil {
		return fmt.Errorf("append event %s/%s: %w", event.ProcessNumber, event.MovementID, err)
	}
	return nil
}

func (s *PostgresEvents) ListByProcess(ctx context.Context, number string) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT process_number, movement_id, protocol_at, secrecy_level,
		       local_type, user_id, description, documents, public_defender
		FROM events
		WHERE process_number = $1
		ORDER BY seq`,
		number,
	)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", number, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			event     models.Event
			documents []byte
		)
		err := rows.Scan(
			&event.ProcessNumber, &event.MovementID, &event.ProtocolAt, &event.SecrecyLevel,
			&event.LocalType, &event.UserID, &event.Description, &documents, &event.PublicDefender,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(documents, &event.Documents); err != nil {
			return nil, fmt.Errorf("decode event documents: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// PostgresParties stores the person and lawyer trees as JSONB, one row per
// party.
type PostgresParties struct {
	pool *pgxpool.Pool
}

func NewPostgresParties(pool *pgxpool.Pool) *PostgresParties {
	return &PostgresParties{pool: pool}
}

func (s *PostgresParties) DeleteByProcess(ctx context.Context, number string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM parties WHERE process_number = $1`, number); err != nil {
		return fmt.Errorf("delete parties for %s: %w", number, err)
	}
	return nil
}

func (s *PostgresParties) Add(ctx context.Context, party *models.Party) error {
	person, err := json.Marshal(party.Person)
	if err != nil {
		return fmt.Errorf("encode party person: %w", err)
	}
	lawyers, err := json.Marshal(party.Lawyers)
	if err != nil {
		return fmt.Errorf("encode party lawyers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO parties (process_number, pole, person, lawyers)
		VALUES ($1, $2, $3, $4)`,
		party.ProcessNumber, party.Pole, person, lawyers,
	)
	if err != nil {
		return fmt.Errorf("insert party for %s: %w", party.ProcessNumber, err)
	}
	return nil
}

func (s *PostgresParties) ListByProcess(ctx context.Context, number string) ([]models.Party, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT process_number, pole, person, lawyers
		FROM parties
		WHERE process_number = $1
		ORDER BY id`,
		number,
	)
	if err != nil {
		return nil, fmt.Errorf("list parties for %s: %w", number, err)
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		var (
			party           models.Party
			person, lawyers []byte
		)
		if err := rows.Scan(&party.ProcessNumber, &party.Pole, &person, &lawyers); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		if err := json.Unmarshal(person, &party.Person); err != nil {
			return nil, fmt.Errorf("decode party person: %w", err)
		}
		if err := json.Unmarshal(lawyers, &party.Lawyers); err != nil {
			return nil, fmt.Errorf("decode party lawyers: %w", err)
		}
		parties = append(parties, party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parties: %w", err)
	}
	return parties, nil
}

func marshalHeaderLists(p *models.Process) (subjects, linked []byte, err error) {
	subjects, err = json.Marshal(emptyIfNilRefs(p.Subjects))
	if err != nil {
		return nil, nil, fmt.Errorf("encode process subjects: %w", err)
	}
	linked, err = json.Marshal(emptyIfNilLinked(p.Linked))
	if err != nil {
		return nil, nil, fmt.Errorf("encode linked processes: %w", err)
	}
	return subjects, linked, nil
}

func emptyIfNilRefs(refs []reference.Ref) []reference.Ref {
	if refs == nil {
		return []reference.Ref{}
	}
	return refs
}

func emptyIfNilLinked(linked []models.LinkedProcess) []models.LinkedProcess {
	if linked == nil {
		return []models.LinkedProcess{}
	}
	return linked
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func refCode(ref *reference.Ref) *string {
	if ref == nil {
		return nil
	}
	return &ref.Code
}

func refName(ref *reference.Ref) *string {
	if ref == nil {
		return nil
	}
	return &ref.Name
}

func toRef(code, name *string) *reference.Ref {
	if code == nil {
		return nil
	}
	ref := reference.Ref{Code: *code}
	if name != nil {
		ref.Name = *name
	}
	return &ref
}

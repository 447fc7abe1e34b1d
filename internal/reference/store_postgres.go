package reference

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"procsync/pkg/platform/sentinel"
)

// Postgres resolves codes against the reference tables.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Class(ctx context.Context, code string) (Ref, error) {
	return p.lookup(ctx, "classes", code)
}

func (p *Postgres) Locality(ctx context.Context, code string) (Ref, error) {
	return p.lookup(ctx, "localities", code)
}

func (p *Postgres) JudgingBody(ctx context.Context, code string) (Ref, error) {
	return p.lookup(ctx, "judging_bodies", code)
}

func (p *Postgres) Subject(ctx context.Context, code string) (Ref, error) {
	return p.lookup(ctx, "subjects", code)
}

func (p *Postgres) DocumentType(ctx context.Context, tier string, code int) (Ref, error) {
	var name string
	err := p.pool.QueryRow(ctx,
		`SELECT name FROM document_types WHERE tier = $1 AND code = $2`,
		tier, code,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ref{}, sentinel.ErrNotFound
		}
		return Ref{}, fmt.Errorf("lookup document type %d (tier %s): %w", code, tier, err)
	}
	return Ref{Code: strconv.Itoa(code), Name: name}, nil
}

func (p *Postgres) lookup(ctx context.Context, table, code string) (Ref, error) {
	var ref Ref
	// table names are package constants above, never caller input
	err := p.pool.QueryRow(ctx,
		`SELECT code, name FROM `+table+` WHERE code = $1`,
		code,
	).Scan(&ref.Code, &ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ref{}, sentinel.ErrNotFound
		}
		return Ref{}, fmt.Errorf("lookup %s %s: %w", table, code, err)
	}
	return ref, nil
}

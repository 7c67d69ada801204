package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS concepts (
	kb         TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	attributes JSONB   NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (kb, name)
);

CREATE TABLE IF NOT EXISTS relationships (
	kb       TEXT    NOT NULL,
	position INTEGER NOT NULL,
	source   TEXT    NOT NULL,
	relation TEXT    NOT NULL,
	target   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relationships_kb ON relationships(kb, position);
`

type PostgresBackend struct {
	pool *pgxpool.Pool
	kb   string
}

func NewPostgresBackend(ctx context.Context, dsn, kb string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperrors.NewStorageFailed("postgres", "creating postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewStorageFailed("postgres", "pinging postgres", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, apperrors.NewStorageFailed("postgres", "migrating schema", err)
	}
	return &PostgresBackend{pool: pool, kb: kb}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Load(ctx context.Context) (*model.KnowledgeData, error) {
	data := model.NewKnowledgeData()

	rows, err := b.pool.Query(ctx, `SELECT name, attributes::text FROM concepts WHERE kb = $1 ORDER BY position`, b.kb)
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "querying concepts", err)
	}
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			rows.Close()
			return nil, apperrors.NewStorageFailed(b.Name(), "scanning concept", err)
		}
		attrs, err := decodeAttributes(raw)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("bad attributes for %q", name), err)
		}
		data.Concepts.Set(name, attrs)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "reading concepts", err)
	}

	rels, err := b.pool.Query(ctx, `SELECT source, relation, target FROM relationships WHERE kb = $1 ORDER BY position`, b.kb)
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "querying relationships", err)
	}
	collected, err := pgx.CollectRows(rels, func(row pgx.CollectableRow) (model.Relationship, error) {
		var rel model.Relationship
		err := row.Scan(&rel.Source, &rel.Relation, &rel.Target)
		return rel, err
	})
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "reading relationships", err)
	}
	data.Relationships = append(data.Relationships, collected...)

	return data, nil
}

// Save rewrites the knowledge base in one transaction, sending the inserts
// as a single batch.
func (b *PostgresBackend) Save(ctx context.Context, data *model.KnowledgeData) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewStorageFailed(b.Name(), "beginning transaction", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM concepts WHERE kb = $1`, b.kb)
	batch.Queue(`DELETE FROM relationships WHERE kb = $1`, b.kb)

	position := 0
	for pair := data.Concepts.Oldest(); pair != nil; pair = pair.Next() {
		raw, err := encodeAttributes(pair.Value)
		if err != nil {
			return apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("encoding attributes for %q", pair.Key), err)
		}
		batch.Queue(`INSERT INTO concepts (kb, position, name, attributes) VALUES ($1, $2, $3, $4::jsonb)`,
			b.kb, position, pair.Key, raw)
		position++
	}
	for i, rel := range data.Relationships {
		batch.Queue(`INSERT INTO relationships (kb, position, source, relation, target) VALUES ($1, $2, $3, $4, $5)`,
			b.kb, i, rel.Source, rel.Relation, rel.Target)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewStorageFailed(b.Name(), "writing knowledge base", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStorageFailed(b.Name(), "committing", err)
	}
	return nil
}

func (b *PostgresBackend) Close(ctx context.Context) error {
	b.pool.Close()
	return nil
}

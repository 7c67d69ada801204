package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/agenthands/distill/internal/core/model"
	apperrors "github.com/agenthands/distill/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS concepts (
	kb         TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	attributes TEXT    NOT NULL DEFAULT '{}',
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

// SQLiteBackend keeps one or more knowledge bases in a SQLite file.
type SQLiteBackend struct {
	db *sql.DB
	kb string
}

func NewSQLiteBackend(path, kb string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, apperrors.NewStorageFailed("sqlite", "failed to open database", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, apperrors.NewStorageFailed("sqlite", "failed to migrate database", err)
	}

	return &SQLiteBackend{db: db, kb: kb}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Load(ctx context.Context) (*model.KnowledgeData, error) {
	data := model.NewKnowledgeData()

	rows, err := b.db.QueryContext(ctx, `SELECT name, attributes FROM concepts WHERE kb = ? ORDER BY position`, b.kb)
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "failed to query concepts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, apperrors.NewStorageFailed(b.Name(), "failed to scan concept", err)
		}
		attrs, err := decodeAttributes(raw)
		if err != nil {
			return nil, apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("bad attributes for %q", name), err)
		}
		data.Concepts.Set(name, attrs)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "failed to read concepts", err)
	}

	relRows, err := b.db.QueryContext(ctx, `SELECT source, relation, target FROM relationships WHERE kb = ? ORDER BY position`, b.kb)
	if err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "failed to query relationships", err)
	}
	defer relRows.Close()

	for relRows.Next() {
		var rel model.Relationship
		if err := relRows.Scan(&rel.Source, &rel.Relation, &rel.Target); err != nil {
			return nil, apperrors.NewStorageFailed(b.Name(), "failed to scan relationship", err)
		}
		data.Relationships = append(data.Relationships, rel)
	}
	if err := relRows.Err(); err != nil {
		return nil, apperrors.NewStorageFailed(b.Name(), "failed to read relationships", err)
	}

	return data, nil
}

// Save replaces every row of the knowledge base in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, data *model.KnowledgeData) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageFailed(b.Name(), "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM concepts WHERE kb = ?`, b.kb); err != nil {
		return apperrors.NewStorageFailed(b.Name(), "failed to clear concepts", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE kb = ?`, b.kb); err != nil {
		return apperrors.NewStorageFailed(b.Name(), "failed to clear relationships", err)
	}

	position := 0
	for pair := data.Concepts.Oldest(); pair != nil; pair = pair.Next() {
		raw, err := encodeAttributes(pair.Value)
		if err != nil {
			return apperrors.NewStorageFailed(b.Name(), fmt.Sprintf("failed to encode attributes for %q", pair.Key), err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (kb, position, name, attributes) VALUES (?, ?, ?, ?)`,
			b.kb, position, pair.Key, raw,
		); err != nil {
			return apperrors.NewStorageFailed(b.Name(), "failed to insert concept", err)
		}
		position++
	}

	for i, rel := range data.Relationships {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relationships (kb, position, source, relation, target) VALUES (?, ?, ?, ?, ?)`,
			b.kb, i, rel.Source, rel.Relation, rel.Target,
		); err != nil {
			return apperrors.NewStorageFailed(b.Name(), "failed to insert relationship", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageFailed(b.Name(), "failed to commit", err)
	}
	return nil
}

func (b *SQLiteBackend) Close(ctx context.Context) error {
	return b.db.Close()
}

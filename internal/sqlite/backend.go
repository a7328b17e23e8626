package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// insertBatchSize bounds the rows per INSERT so the statement stays under
// SQLite's host parameter limit.
const insertBatchSize = 500

// Backend stores snapshots in one SQLite database file.
type Backend struct {
	db     *sqlx.DB
	sql    sq.StatementBuilderType
	logger *slog.Logger
}

// recordRow is one row of the records table.
type recordRow struct {
	Kind        string `db:"kind"`
	ID          int    `db:"id"`
	Summary     string `db:"summary"`
	Description string `db:"description"`
	Status      string `db:"status"`
	EpicID      int    `db:"epic_id"`
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Backend{
		db:     db,
		sql:    sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: logger,
	}, nil
}

// Close releases the database handle.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Load returns the records of the latest snapshot in saved order. An empty
// database yields no records and no error.
func (b *Backend) Load() ([]types.Record, error) {
	var snapshotID string
	err := b.db.Get(&snapshotID,
		"SELECT snapshot_id FROM snapshots ORDER BY snapshot_id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest snapshot: %w", err)
	}

	var rows []recordRow
	err = b.db.Select(&rows, `
		SELECT kind, id, summary, description, status, epic_id
		FROM records WHERE snapshot_id = ? ORDER BY position`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", snapshotID, err)
	}

	records := make([]types.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := row.record()
		if err != nil {
			b.logger.Warn("skipping malformed row", "snapshot", snapshotID, "position", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r recordRow) record() (types.Record, error) {
	kind, err := types.ParseKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}
	status, err := types.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}
	rec := types.NewRecord(kind)
	base := rec.Base()
	base.ID = r.ID
	base.Summary = r.Summary
	base.Description = r.Description
	base.Status = status
	if sub, ok := rec.(*types.Subtask); ok {
		sub.EpicID = r.EpicID
	}
	return rec, nil
}

// Save writes records as a new snapshot and deletes older snapshots.
func (b *Backend) Save(records []types.Record) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating snapshot id: %w", err)
	}
	snapshotID := id.String()

	tx, err := b.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := b.sql.Insert(tableSnapshots).
		Columns("snapshot_id", "created_at").
		Values(snapshotID, time.Now().UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building snapshot insert: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		insert := b.sql.Insert(tableRecords).Columns(recordColumns...)
		for pos := start; pos < end; pos++ {
			rec := records[pos]
			base := rec.Base()
			epicID := 0
			if sub, ok := rec.(*types.Subtask); ok {
				epicID = sub.EpicID
			}
			insert = insert.Values(snapshotID, pos, rec.Kind().String(), base.ID,
				base.Summary, base.Description, base.Status.String(), epicID)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("building record insert: %w", err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("inserting records: %w", err)
		}
	}

	for _, table := range []string{tableRecords, tableSnapshots} {
		query, args, err := b.sql.Delete(table).
			Where(sq.NotEq{"snapshot_id": snapshotID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building %s cleanup: %w", table, err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("deleting old %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

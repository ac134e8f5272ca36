package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/simquery/internal/eval"
	"github.com/roach88/simquery/internal/world"
)

// SaveWorld stores w under name, replacing any world already stored there.
//
// The replacement is atomic: readers see either the old or the new world,
// never a mix. Returns the new revision, starting at 1 for a new name.
// Recorded runs of earlier revisions are kept.
func (s *Store) SaveWorld(ctx context.Context, name string, w *world.World) (revision int, err error) {
	if name == "" {
		return 0, fmt.Errorf("save world: empty name")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save world %q: begin tx: %w", name, err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT revision FROM worlds WHERE name = ?`, name).Scan(&revision)
	switch {
	case err == sql.ErrNoRows:
		revision = 0
	case err != nil:
		return 0, fmt.Errorf("save world %q: read revision: %w", name, err)
	}
	revision++

	_, err = tx.ExecContext(ctx, `
		INSERT INTO worlds (name, revision, entity_count)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET revision = excluded.revision, entity_count = excluded.entity_count
	`, name, revision, w.Len())
	if err != nil {
		return 0, fmt.Errorf("save world %q: upsert world: %w", name, err)
	}

	// Connections cascade from entities.
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE world = ?`, name); err != nil {
		return 0, fmt.Errorf("save world %q: clear entities: %w", name, err)
	}

	entityStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (world, position, id, class, type, name, parameters)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("save world %q: prepare entities: %w", name, err)
	}
	defer entityStmt.Close()

	connStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO connections (world, entity_id, position, target_id)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("save world %q: prepare connections: %w", name, err)
	}
	defer connStmt.Close()

	for pos, e := range w.Entities() {
		params, err := marshalParams(e.Parameters)
		if err != nil {
			return 0, fmt.Errorf("save world %q: entity %q: %w", name, e.ID, err)
		}
		if _, err := entityStmt.ExecContext(ctx, name, pos, e.ID, string(e.Class), e.Type, e.Name, params); err != nil {
			return 0, fmt.Errorf("save world %q: entity %q: %w", name, e.ID, err)
		}
		for cpos, target := range e.Connections {
			if _, err := connStmt.ExecContext(ctx, name, e.ID, cpos, target); err != nil {
				return 0, fmt.Errorf("save world %q: connection %q -> %q: %w", name, e.ID, target, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save world %q: commit: %w", name, err)
	}
	return revision, nil
}

// DeleteWorld removes a world and its recorded runs.
// Returns ErrWorldNotFound if no world is stored under name.
func (s *Store) DeleteWorld(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM worlds WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete world %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete world %q: rows affected: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete world %q: %w", name, ErrWorldNotFound)
	}
	return nil
}

// RecordRun appends a query run against the current revision of the named
// world. A non-nil runErr records a failed run with no results.
// Returns the run id.
func (s *Store) RecordRun(ctx context.Context, worldName, formula string, results eval.ResultSet, runErr error) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback()

	var revision int
	err = tx.QueryRowContext(ctx, `SELECT revision FROM worlds WHERE name = ?`, worldName).Scan(&revision)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("record run: world %q: %w", worldName, ErrWorldNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("record run: read revision: %w", err)
	}

	errText := ""
	ids := results.IDs()
	if runErr != nil {
		errText = runErr.Error()
		ids = nil
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO query_runs (world, revision, formula, error, match_count)
		VALUES (?, ?, ?, ?, ?)
	`, worldName, revision, formula, errText, len(ids))
	if err != nil {
		return 0, fmt.Errorf("record run: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: last insert id: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO query_results (run_id, entity_id) VALUES (?, ?)
		`, runID, id); err != nil {
			return 0, fmt.Errorf("record run: insert result %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("record run: commit: %w", err)
	}
	return runID, nil
}

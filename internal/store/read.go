package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/simquery/internal/world"
)

// ErrWorldNotFound is returned when no world is stored under a name.
var ErrWorldNotFound = errors.New("world not found")

// WorldInfo summarizes a stored world.
type WorldInfo struct {
	Name     string `json:"name"`
	Revision int    `json:"revision"`
	Entities int    `json:"entities"`
}

// Run is a recorded query execution.
type Run struct {
	ID       int64    `json:"id"`
	World    string   `json:"world"`
	Revision int      `json:"revision"`
	Formula  string   `json:"formula"`
	Results  []string `json:"results"`
	Error    string   `json:"error,omitempty"`
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool {
	return r.Error != ""
}

// LoadWorld reads the named world back in stored order.
// Returns ErrWorldNotFound if no world is stored under name.
func (s *Store) LoadWorld(ctx context.Context, name string) (*world.World, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT entity_count FROM worlds WHERE name = ?`, name).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("load world %q: %w", name, ErrWorldNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load world %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, class, type, name, parameters
		FROM entities
		WHERE world = ?
		ORDER BY position ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("load world %q: query entities: %w", name, err)
	}
	defer rows.Close()

	entities := make([]*world.Entity, 0, count)
	byID := make(map[string]*world.Entity, count)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("load world %q: %w", name, err)
		}
		entities = append(entities, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load world %q: iterate entities: %w", name, err)
	}
	rows.Close()

	if err := s.loadConnections(ctx, name, byID); err != nil {
		return nil, fmt.Errorf("load world %q: %w", name, err)
	}

	w, err := world.New(entities...)
	if err != nil {
		return nil, fmt.Errorf("load world %q: %w", name, err)
	}
	return w, nil
}

func (s *Store) loadConnections(ctx context.Context, name string, byID map[string]*world.Entity) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.entity_id, c.target_id
		FROM connections c
		JOIN entities e ON e.world = c.world AND e.id = c.entity_id
		WHERE c.world = ?
		ORDER BY e.position ASC, c.position ASC
	`, name)
	if err != nil {
		return fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, target string
		if err := rows.Scan(&from, &target); err != nil {
			return fmt.Errorf("scan connection: %w", err)
		}
		e, ok := byID[from]
		if !ok {
			return fmt.Errorf("connection from unknown entity %q", from)
		}
		e.Connections = append(e.Connections, target)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate connections: %w", err)
	}
	return nil
}

func scanEntity(rows *sql.Rows) (*world.Entity, error) {
	var (
		e      world.Entity
		class  string
		params string
	)
	if err := rows.Scan(&e.ID, &class, &e.Type, &e.Name, &params); err != nil {
		return nil, fmt.Errorf("scan entity: %w", err)
	}

	c, err := world.ParseClass(class)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", e.ID, err)
	}
	e.Class = c

	e.Parameters, err = unmarshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", e.ID, err)
	}
	e.Connections = []string{}
	return &e, nil
}

// ListWorlds returns every stored world ordered by name.
func (s *Store) ListWorlds(ctx context.Context) ([]WorldInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, revision, entity_count
		FROM worlds
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query worlds: %w", err)
	}
	defer rows.Close()

	worlds := []WorldInfo{}
	for rows.Next() {
		var info WorldInfo
		if err := rows.Scan(&info.Name, &info.Revision, &info.Entities); err != nil {
			return nil, fmt.Errorf("scan world: %w", err)
		}
		worlds = append(worlds, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worlds: %w", err)
	}
	return worlds, nil
}

// ReadRuns returns the runs recorded against the named world in the order
// they were recorded. Each run's Results are sorted.
func (s *Store) ReadRuns(ctx context.Context, worldName string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, world, revision, formula, error
		FROM query_runs
		WHERE world = ?
		ORDER BY id ASC
	`, worldName)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.World, &r.Revision, &r.Formula, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		results, err := s.readResults(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

func (s *Store) readResults(ctx context.Context, runID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id
		FROM query_results
		WHERE run_id = ?
		ORDER BY entity_id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results of run %d: %w", runID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results of run %d: %w", runID, err)
	}
	return ids, nil
}

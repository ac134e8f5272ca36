// Package store provides SQLite-backed storage for named worlds and the
// history of queries run against them.
//
// Tables:
//   - worlds: one row per named world with a revision counter
//   - entities: entity records with their position in world order
//   - connections: connection lists with their position in entity order
//   - query_runs: one row per recorded query, successful or failed
//   - query_results: matching entity ids of each run
//
// # Ordering
//
// Stored order is explicit. Entities are read back ORDER BY position and
// connections ORDER BY entity position, then connection position, so a
// loaded world iterates exactly like the world that was saved. Runs are
// read ORDER BY id; result ids are sorted with COLLATE BINARY.
//
// # Revisions
//
// Saving a world under an existing name replaces its entities in one
// transaction and bumps its revision. Recorded runs are kept and carry the
// revision they ran against.
//
// # Schema Versions
//
// schema.sql creates the tables; later changes are migrations keyed by
// PRAGMA user_version and applied in order on Open. Connections run with
// WAL journaling, synchronous=NORMAL, a 5s busy timeout and foreign keys
// enforced.
package store

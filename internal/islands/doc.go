// Package islands persists sky-island claims in an embedded SQLite file.
//
// # Overview
//
// Store maps between a caller-owned map[uuid.UUID]Island and rows of the
// islands table:
//
//	islands(island PK, owner, claim, spawnX, spawnY, spawnZ, locked)
//
// The host calls Open, Initialize and Migrate once at startup, LoadAll to
// fill its registry, and Save/Remove as islands change. SaveAll writes a
// whole registry one island at a time; SaveAllAtomic does the same inside a
// single transaction.
//
// # Schema versions
//
// Schema changes are goose migrations recorded in goose_db_version:
//
//  1. create the islands table if it does not exist
//  2. convert a first-generation table (owner PK, id, x, y, z, world) into
//     the current shape, giving every row a fresh island ID
//
// The table shape is decided by column names (PRAGMA table_info), never by
// column count, which does not tell the two generations apart.
//
// # Errors
//
// Every operation returns an error; failures are also logged through the
// injected logging.Logger. Match them with errors.Is against ErrInitFailed,
// ErrReadFailed, ErrWriteFailed, ErrIslandNotFound, ErrUnknownSchema and
// ErrInvalidIsland.
//
// # Concurrency
//
// The store expects one caller at a time (the server's main thread) and does
// no locking of its own. Each statement borrows a connection from the
// *sql.DB pool and returns it on completion; nothing is held between calls.
// Concurrent writers from other connections wait on SQLite's busy timeout.
package islands

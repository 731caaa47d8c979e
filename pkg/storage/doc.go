// Package storage holds what the storage adapters share: the error kinds
// callers use to tell a bad configuration apart from an unreachable
// database or a saturated pool.
//
// The PostgreSQL pool lives in pkg/storage/postgres. The process-wide
// holder that pairs the pool with the table descriptors is pkg/database.
package storage

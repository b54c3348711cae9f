// Package kv is the persistent store adapter of the healthkeeper client:
// durable key/value primitives (get, set, delete) used by the session cache
// as its coldest tier.
//
// Two implementations are provided. SQLiteRepository keeps data in a local
// SQLite file bootstrapped with embedded goose migrations and additionally
// implements Batch, so multi-key groups can be written in one transaction.
// MemoryRepository keeps data in process memory and supports fault
// injection for tests.
//
// Every operation is independently fallible; callers decide whether a
// failure aborts sibling operations.
package kv

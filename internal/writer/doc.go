// Package writer applies normalized bars to storage with conflict-resolving
// upserts.
//
// Each row is committed independently (one statement, one implicit
// transaction), so a constraint violation on one row never rolls back its
// neighbors. Row-level failures are collected into a Report; only a
// storage-unreachable condition surfaces as an error.
package writer

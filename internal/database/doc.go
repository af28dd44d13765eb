// Package database provides connection pool management for PostgreSQL.
//
// The pool registers shopspring decimal codecs on every connection so the
// fixed-point price columns round-trip as decimal.NullDecimal.
package database

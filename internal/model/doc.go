// Package model defines shared data types used across the sync pipeline.
//
// Conventions:
//   - Prices: fixed-point decimals with 4 fractional digits, nullable
//   - Dates: calendar dates stored as time.Time at UTC midnight
//   - Symbols: ticker strings, unique and immutable once created
package model

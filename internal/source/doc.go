// Package source provides the market-data client for daily price history.
//
// It speaks a chart-style REST endpoint:
//
//	GET {base}/v8/finance/chart/{symbol}?period1=&period2=&interval=1d
//
// The response carries epoch timestamps and parallel OHLCV arrays that may
// contain nulls. Values are returned raw; normalization happens downstream.
//
// The client performs no retries. Retry policy, if any, belongs to the
// caller.
package source

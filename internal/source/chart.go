package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// RawBar is one unnormalized daily observation as delivered by the source.
// Measurement fields stay untyped until they pass through normalization.
type RawBar struct {
	Date   time.Time // calendar date, UTC midnight; zero if missing
	Open   any
	High   any
	Low    any
	Close  any
	Volume any
}

// chartResponse mirrors the chart endpoint's JSON envelope. The quote arrays
// run parallel to the timestamp array and may contain nulls.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Fetch requests daily history for one symbol over the half-open interval
// [from, to). An empty or inverted interval short-circuits to an empty result
// without touching the network. Results are in ascending date order; an empty
// slice is a valid outcome.
func (c *Client) Fetch(ctx context.Context, symbol string, from, to time.Time) ([]RawBar, error) {
	if !from.Before(to) {
		return nil, nil
	}

	query := url.Values{}
	query.Set("period1", strconv.FormatInt(from.Unix(), 10))
	query.Set("period2", strconv.FormatInt(to.Unix(), 10))
	query.Set("interval", "1d")

	var resp chartResponse
	err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
		}
		return nil, err
	}

	if e := resp.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
		}
		return nil, fmt.Errorf("source error %q: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("malformed response for %s: no result", symbol)
	}

	bars, err := resp.Chart.Result[0].toBars()
	if err != nil {
		return nil, fmt.Errorf("malformed response for %s: %w", symbol, err)
	}

	c.logger.Debug("fetched history",
		"symbol", symbol,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
		"bars", len(bars),
	)

	return bars, nil
}

// toBars flattens the parallel arrays into per-day rows.
func (r chartResult) toBars() ([]RawBar, error) {
	if len(r.Timestamp) == 0 {
		return nil, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, errors.New("missing quote block")
	}

	q := r.Indicators.Quote[0]
	n := len(r.Timestamp)
	for name, arr := range map[string][]*float64{
		"open": q.Open, "high": q.High, "low": q.Low, "close": q.Close, "volume": q.Volume,
	} {
		if len(arr) != n {
			return nil, fmt.Errorf("%s has %d entries, want %d", name, len(arr), n)
		}
	}

	bars := make([]RawBar, 0, n)
	for i, ts := range r.Timestamp {
		bars = append(bars, RawBar{
			Date:   dateOf(ts),
			Open:   deref(q.Open[i]),
			High:   deref(q.High[i]),
			Low:    deref(q.Low[i]),
			Close:  deref(q.Close[i]),
			Volume: deref(q.Volume[i]),
		})
	}
	return bars, nil
}

// dateOf truncates an epoch-seconds timestamp to its UTC calendar date.
func dateOf(ts int64) time.Time {
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// deref unwraps a nullable JSON number so that a null stays nil rather than
// becoming a typed nil pointer.
func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

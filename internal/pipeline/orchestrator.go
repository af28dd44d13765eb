package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rgaleev/stocksync/internal/model"
	"github.com/rgaleev/stocksync/internal/normalize"
	"github.com/rgaleev/stocksync/internal/source"
	"github.com/rgaleev/stocksync/internal/watermark"
	"github.com/rgaleev/stocksync/internal/writer"
)

// Fetcher retrieves raw history for one symbol over [from, to).
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, from, to time.Time) ([]source.RawBar, error)
}

// StateSource supplies the instrument universe and per-symbol watermarks.
type StateSource interface {
	Symbols(ctx context.Context) ([]string, error)
	Watermarks(ctx context.Context) (map[string]time.Time, error)
}

// BarWriter applies normalized bars to storage.
type BarWriter interface {
	Write(ctx context.Context, bars []model.Bar) (writer.Report, error)
}

// Config holds orchestrator settings.
type Config struct {
	AsOf        time.Time     // reference "today"; fetch windows end here (exclusive)
	FetchDelay  time.Duration // minimum interval between fetch starts, shared across workers
	Concurrency int           // parallel work units; 1 = sequential
}

// DefaultConfig returns sensible defaults: today, one fetch per second,
// sequential processing.
func DefaultConfig() Config {
	return Config{
		AsOf:        Today(),
		FetchDelay:  time.Second,
		Concurrency: 1,
	}
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary is the aggregate outcome of one Run, consumed by the owning
// scheduler for alerting.
type Summary struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time

	Done         int // symbols that reached done
	Failed       int // symbols that reached failed
	RowsWritten  int
	RowsFailed   int // row-level storage rejections
	RowsRejected int // rows dropped during normalization

	Results []model.SymbolResult
}

// Orchestrator runs the incremental sync pipeline over the full universe.
// All collaborators are passed in at construction; it holds no global state.
type Orchestrator struct {
	cfg     Config
	src     Fetcher
	state   StateSource
	writer  BarWriter
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates an Orchestrator. Zero config fields fall back to defaults; a
// nil logger falls back to the default logger.
func New(cfg Config, src Fetcher, state StateSource, w BarWriter, logger *slog.Logger) *Orchestrator {
	if cfg.AsOf.IsZero() {
		cfg.AsOf = Today()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.FetchDelay > 0 {
		limit = rate.Every(cfg.FetchDelay)
	}

	return &Orchestrator{
		cfg:     cfg,
		src:     src,
		state:   state,
		writer:  w,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Run executes one full pass over the instrument universe. It returns an
// error only for Run-level failures (universe or watermark read); individual
// symbol failures are recorded in the summary and never abort the Run.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.New(),
		Started: time.Now(),
	}
	logger := o.logger.With("run_id", summary.RunID)

	symbols, err := o.state.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	marks, err := o.state.Watermarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watermarks: %w", err)
	}

	logger.Info("run started",
		"symbols", len(symbols),
		"as_of", o.cfg.AsOf.Format(time.DateOnly),
		"fetch_delay", o.cfg.FetchDelay,
		"concurrency", o.cfg.Concurrency,
	)

	results := make([]model.SymbolResult, len(symbols))
	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			results[i] = o.syncSymbol(ctx, logger, symbol, marks)
			return nil
		})
	}
	g.Wait()

	summary.Results = results
	summary.Finished = time.Now()
	for _, r := range results {
		if r.State == model.StateDone {
			summary.Done++
		} else {
			summary.Failed++
		}
		summary.RowsWritten += r.RowsWritten
		summary.RowsFailed += r.RowsFailed
		summary.RowsRejected += r.RowsRejected
	}

	logger.Info("run finished",
		"done", summary.Done,
		"failed", summary.Failed,
		"rows_written", summary.RowsWritten,
		"rows_failed", summary.RowsFailed,
		"rows_rejected", summary.RowsRejected,
		"duration", summary.Finished.Sub(summary.Started),
	)

	return summary, nil
}

// syncSymbol runs one symbol through the full state machine. It never
// returns an error; failures land in the result.
func (o *Orchestrator) syncSymbol(ctx context.Context, logger *slog.Logger, symbol string, marks map[string]time.Time) model.SymbolResult {
	res := model.SymbolResult{Symbol: symbol, State: model.StatePending}

	from := watermark.EpochFloor
	if wm, ok := marks[symbol]; ok {
		from = wm.AddDate(0, 0, 1)
	}
	to := o.cfg.AsOf

	if !from.Before(to) {
		// Already up to date; skip the fetch budget entirely.
		res.State = model.StateDone
		return res
	}

	res.State = model.StateFetching
	if err := o.limiter.Wait(ctx); err != nil {
		return fail(logger, res, fmt.Errorf("rate limiter: %w", err))
	}

	raw, err := o.src.Fetch(ctx, symbol, from, to)
	if err != nil {
		return fail(logger, res, fmt.Errorf("fetch: %w", err))
	}
	if len(raw) == 0 {
		res.State = model.StateDone
		logger.Debug("nothing to sync", "symbol", symbol)
		return res
	}

	res.State = model.StateNormalizing
	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		if rb.Date.IsZero() {
			res.RowsRejected++
			continue
		}
		bar := model.Bar{
			Symbol: symbol,
			Date:   rb.Date,
			Open:   normalize.Price(rb.Open),
			High:   normalize.Price(rb.High),
			Low:    normalize.Price(rb.Low),
			Close:  normalize.Price(rb.Close),
		}
		if v, ok := normalize.Volume(rb.Volume); ok {
			bar.Volume = &v
		}
		if !bar.HasPrice() {
			res.RowsRejected++
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		res.State = model.StateDone
		return res
	}

	res.State = model.StateWriting
	report, err := o.writer.Write(ctx, bars)
	res.RowsWritten = report.Written
	res.RowsFailed = len(report.Failures)
	if err != nil {
		return fail(logger, res, fmt.Errorf("write: %w", err))
	}

	res.State = model.StateDone
	logger.Info("symbol synced",
		"symbol", symbol,
		"rows_written", res.RowsWritten,
		"rows_failed", res.RowsFailed,
		"rows_rejected", res.RowsRejected,
	)
	return res
}

func fail(logger *slog.Logger, res model.SymbolResult, err error) model.SymbolResult {
	res.State = model.StateFailed
	res.Err = err
	logger.Warn("symbol failed", "symbol", res.Symbol, "error", err)
	return res
}

package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
)

// DayRange is the inclusive range of DAY values.
type DayRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether day lies within the range.
func (r DayRange) Contains(day int) bool {
	return day >= r.Min && day <= r.Max
}

// Options lists the distinct values of each filter dimension, sorted ascending.
type Options struct {
	Airlines []string `json:"airlines"`
	Origins  []string `json:"origins"`
	Dests    []string `json:"dests"`
	Days     []int    `json:"days"`
	DayRange DayRange `json:"day_range"`
}

// Selection returns a selection accepting every value in the table.
func (o Options) Selection() domain.FilterSelection {
	return domain.FilterSelection{
		Airlines: slices.Clone(o.Airlines),
		Origins:  slices.Clone(o.Origins),
		Dests:    slices.Clone(o.Dests),
		Days:     slices.Clone(o.Days),
	}
}

// Table is the normalized, immutable flight table.
type Table struct {
	frame    dataframe.DataFrame
	options  Options
	source   string
	loadedAt time.Time
}

// NewTable builds a Table from already-validated records.
func NewTable(records []domain.FlightRecord, source string, loadedAt time.Time) *Table {
	return &Table{
		frame:    buildFrame(records),
		options:  collectOptions(records),
		source:   source,
		loadedAt: loadedAt,
	}
}

// Frame returns the typed frame. Callers must not modify it; gota
// operations such as Filter and Subset return new frames.
func (t *Table) Frame() dataframe.DataFrame { return t.frame }

func (t *Table) Len() int { return t.frame.Nrow() }

func (t *Table) Options() Options { return t.options }

func (t *Table) Source() string { return t.source }

func (t *Table) LoadedAt() time.Time { return t.loadedAt }

func collectOptions(records []domain.FlightRecord) Options {
	airlines := make(map[string]struct{})
	origins := make(map[string]struct{})
	dests := make(map[string]struct{})
	days := make(map[int]struct{})
	for _, r := range records {
		airlines[r.Airline] = struct{}{}
		origins[r.Origin] = struct{}{}
		dests[r.Dest] = struct{}{}
		days[r.Day] = struct{}{}
	}

	opts := Options{
		Airlines: sortedKeys(airlines),
		Origins:  sortedKeys(origins),
		Dests:    sortedKeys(dests),
		Days:     sortedKeys(days),
	}
	if len(opts.Days) > 0 {
		opts.DayRange = DayRange{Min: opts.Days[0], Max: opts.Days[len(opts.Days)-1]}
	}
	return opts
}

func sortedKeys[K string | int](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Loader reads the flight table from its source once and caches the result,
// including a failure, for its whole lifetime.
type Loader struct {
	source  Source
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	once  sync.Once
	table *Table
	err   error
	ready atomic.Bool
}

// NewLoader creates a Loader. A nil clock uses the real clock.
func NewLoader(source Source, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loader{
		source:  source,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Load returns the cached table, reading the source on the first call only.
// Errors match domain.ErrDataSource.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	l.once.Do(func() {
		l.table, l.err = l.load(ctx)
		if l.err == nil {
			l.ready.Store(true)
		}
	})
	return l.table, l.err
}

// CheckReadiness returns nil once the table has been loaded successfully.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("flight table not loaded")
	}
	return nil
}

func (l *Loader) load(ctx context.Context) (*Table, error) {
	start := l.clock.Now()

	raw, err := l.source.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDataSource, l.source.Name(), err)
	}

	records, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDataSource, l.source.Name(), err)
	}

	table := NewTable(records, l.source.Name(), l.clock.Now())
	elapsed := l.clock.Since(start)

	l.metrics.DatasetRows.Set(float64(table.Len()))
	l.metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	l.logger.Info("flight table loaded",
		"source", table.Source(),
		"rows", table.Len(),
		"airlines", len(table.options.Airlines),
		"origins", len(table.options.Origins),
		"dests", len(table.options.Dests),
		"day_min", table.options.DayRange.Min,
		"day_max", table.options.DayRange.Max,
		"duration", elapsed,
	)
	return table, nil
}

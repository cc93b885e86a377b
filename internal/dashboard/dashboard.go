// Package dashboard composes the loaded flight table with the filter and
// summary stages into the views the presentation layer renders.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flight-delay-dashboard/internal/analytics"
	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
)

// TableLoader supplies the cached flight table.
type TableLoader interface {
	Load(ctx context.Context) (*dataset.Table, error)
	CheckReadiness(ctx context.Context) error
}

// Overview is a filtered snapshot together with the selection that produced it.
type Overview struct {
	Selection domain.FilterSelection `json:"selection"`
	Snapshot  analytics.Snapshot     `json:"snapshot"`
	Source    string                 `json:"source"`
	LoadedAt  time.Time              `json:"loaded_at"`
}

// Dashboard serves filter options and overviews from one loaded table.
type Dashboard struct {
	loader  TableLoader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Dashboard.
func New(loader TableLoader, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	return &Dashboard{loader: loader, logger: logger, metrics: metrics}
}

// Options returns the distinct values of every filter dimension.
func (d *Dashboard) Options(ctx context.Context) (dataset.Options, error) {
	table, err := d.loader.Load(ctx)
	if err != nil {
		return dataset.Options{}, err
	}
	return table.Options(), nil
}

// DefaultSelection selects every value of every dimension.
func (d *Dashboard) DefaultSelection(ctx context.Context) (domain.FilterSelection, error) {
	opts, err := d.Options(ctx)
	if err != nil {
		return domain.FilterSelection{}, err
	}
	return opts.Selection(), nil
}

// Overview filters the table by sel and summarizes the result.
func (d *Dashboard) Overview(ctx context.Context, sel domain.FilterSelection) (Overview, error) {
	table, err := d.loader.Load(ctx)
	if err != nil {
		d.metrics.OverviewRequests.WithLabelValues("error").Inc()
		return Overview{}, err
	}

	view, err := analytics.Apply(table, sel)
	if err != nil {
		d.metrics.OverviewRequests.WithLabelValues("error").Inc()
		d.logger.Error("filter failed", "error", err)
		return Overview{}, err
	}

	snap := analytics.Summarize(view)
	d.metrics.OverviewRequests.WithLabelValues("success").Inc()
	d.logger.Debug("overview computed",
		"airlines", len(sel.Airlines),
		"origins", len(sel.Origins),
		"dests", len(sel.Dests),
		"days", len(sel.Days),
		"total", snap.Total,
		"delayed", snap.Delayed,
	)

	return Overview{
		Selection: sel,
		Snapshot:  snap,
		Source:    table.Source(),
		LoadedAt:  table.LoadedAt(),
	}, nil
}

// CheckReadiness delegates to the loader.
func (d *Dashboard) CheckReadiness(ctx context.Context) error {
	return d.loader.CheckReadiness(ctx)
}

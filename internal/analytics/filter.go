// Package analytics filters the flight table and summarizes delay metrics.
package analytics

import (
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
)

// View is the read-only subset of the table matching a selection.
type View struct {
	records []domain.FlightRecord
}

// NewView wraps records as a view. The slice is copied.
func NewView(records []domain.FlightRecord) View {
	return View{records: slices.Clone(records)}
}

func (v View) Len() int { return len(v.records) }

// Records returns a copy of the matching records.
func (v View) Records() []domain.FlightRecord { return slices.Clone(v.records) }

// Apply returns the rows whose airline, origin, destination and day are all
// in the selection. An empty set on any dimension matches nothing, and
// values absent from the table simply never match. The table is not modified.
//
// A returned error means the table's typed columns no longer decode and
// wraps domain.ErrInternal.
func Apply(table *dataset.Table, sel domain.FilterSelection) (View, error) {
	if sel.IsEmpty() {
		return View{}, nil
	}

	filtered := table.Frame().FilterAggregation(
		dataframe.And,
		dataframe.F{Colname: domain.ColAirline, Comparator: series.In, Comparando: sel.Airlines},
		dataframe.F{Colname: domain.ColOrigin, Comparator: series.In, Comparando: sel.Origins},
		dataframe.F{Colname: domain.ColDest, Comparator: series.In, Comparando: sel.Dests},
		dataframe.F{Colname: domain.ColDay, Comparator: series.In, Comparando: sel.Days},
	)
	if filtered.Err != nil {
		return View{}, fmt.Errorf("%w: filter: %w", domain.ErrInternal, filtered.Err)
	}

	records, err := dataset.DecodeRecords(filtered)
	if err != nil {
		return View{}, fmt.Errorf("%w: decode view: %w", domain.ErrInternal, err)
	}
	return View{records: records}, nil
}

package analytics

import (
	"cmp"
	"slices"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
)

// HourRate is the delay rate of the flights departing in one hour.
type HourRate struct {
	Hour    int     `json:"hour"`
	Rate    float64 `json:"rate"`
	Flights int     `json:"flights"`
}

// AirlineRate is the delay rate of one airline's flights.
type AirlineRate struct {
	Airline string  `json:"airline"`
	Rate    float64 `json:"rate"`
	Flights int     `json:"flights"`
}

// Snapshot is the aggregate view of a filtered table.
type Snapshot struct {
	Total     int           `json:"total"`
	Delayed   int           `json:"delayed"`
	DelayRate domain.Rate   `json:"delay_rate"`
	ByHour    []HourRate    `json:"by_hour"`
	ByAirline []AirlineRate `json:"by_airline"`
}

type tally struct {
	flights int
	delayed int
}

func (t *tally) add(delayed bool) {
	t.flights++
	if delayed {
		t.delayed++
	}
}

func (t tally) rate() float64 {
	return float64(t.delayed) / float64(t.flights)
}

// Summarize computes counts and delay-rate series for a view.
//
// ByHour lists only the hours present, in ascending order. ByAirline is
// sorted by rate ascending with ties broken by airline code. An empty view
// has no delay rate and empty series.
func Summarize(v View) Snapshot {
	snap := Snapshot{
		ByHour:    []HourRate{},
		ByAirline: []AirlineRate{},
	}

	hours := make(map[int]*tally)
	airlines := make(map[string]*tally)
	for _, r := range v.records {
		snap.Total++
		if r.Delayed {
			snap.Delayed++
		}
		tallyFor(hours, r.DepHour).add(r.Delayed)
		tallyFor(airlines, r.Airline).add(r.Delayed)
	}
	snap.DelayRate = domain.NewRate(snap.Delayed, snap.Total)

	for hour, t := range hours {
		snap.ByHour = append(snap.ByHour, HourRate{Hour: hour, Rate: t.rate(), Flights: t.flights})
	}
	slices.SortFunc(snap.ByHour, func(a, b HourRate) int {
		return cmp.Compare(a.Hour, b.Hour)
	})

	for airline, t := range airlines {
		snap.ByAirline = append(snap.ByAirline, AirlineRate{Airline: airline, Rate: t.rate(), Flights: t.flights})
	}
	slices.SortFunc(snap.ByAirline, func(a, b AirlineRate) int {
		return cmp.Or(
			cmp.Compare(a.Rate, b.Rate),
			cmp.Compare(a.Airline, b.Airline),
		)
	})

	return snap
}

func tallyFor[K comparable](m map[K]*tally, k K) *tally {
	t, ok := m[k]
	if !ok {
		t = &tally{}
		m[k] = t
	}
	return t
}

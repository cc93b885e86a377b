package dataset

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
)

// Normalize validates a raw string-typed frame against the flight schema and
// returns the typed records. Columns outside the schema are ignored.
func Normalize(raw dataframe.DataFrame) ([]domain.FlightRecord, error) {
	if raw.Err != nil {
		return nil, raw.Err
	}

	names := raw.Names()
	var missing []string
	for _, col := range domain.RequiredColumns {
		if !slices.Contains(names, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	cols := make(map[string][]string, len(domain.RequiredColumns))
	for _, col := range domain.RequiredColumns {
		cols[col] = raw.Col(col).Records()
	}

	n := raw.Nrow()
	if n == 0 {
		return nil, fmt.Errorf("no flight records")
	}

	records := make([]domain.FlightRecord, n)
	for i := range n {
		rec, err := parseRow(cols, i)
		if err != nil {
			// Row numbers are 1-based and count the header line.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records[i] = rec
	}

	return records, nil
}

func parseRow(cols map[string][]string, i int) (domain.FlightRecord, error) {
	var rec domain.FlightRecord
	var err error

	if rec.Airline, err = parseCategory(cols[domain.ColAirline][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColAirline, err)
	}
	if rec.Origin, err = parseCategory(cols[domain.ColOrigin][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColOrigin, err)
	}
	if rec.Dest, err = parseCategory(cols[domain.ColDest][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColDest, err)
	}
	if rec.Day, err = parseInt(cols[domain.ColDay][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColDay, err)
	}
	if rec.DepHour, err = parseInt(cols[domain.ColDepHour][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColDepHour, err)
	}
	if rec.DepHour < domain.MinHour || rec.DepHour > domain.MaxHour {
		return rec, fmt.Errorf("%s: %d outside %d-%d", domain.ColDepHour, rec.DepHour, domain.MinHour, domain.MaxHour)
	}
	if rec.Distance, err = parseDistance(cols[domain.ColDistance][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColDistance, err)
	}
	if rec.Delayed, err = parseFlag(cols[domain.ColDelayed][i]); err != nil {
		return rec, fmt.Errorf("%s: %w", domain.ColDelayed, err)
	}
	return rec, nil
}

// isMissing matches the empty cell and the NA markers gota and pandas emit.
func isMissing(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "<nil>":
		return true
	}
	return false
}

func parseCategory(s string) (string, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return "", fmt.Errorf("missing value")
	}
	return s, nil
}

// parseInt accepts "7" and the "7.0" form pandas writes for int columns
// that once held NaN.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, fmt.Errorf("missing value")
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return int(f), nil
}

func parseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%g is negative", v)
	}
	return v, nil
}

func parseFlag(s string) (bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "1", "1.0", "true":
		return true, nil
	case "0", "0.0", "false":
		return false, nil
	}
	if isMissing(s) {
		return false, fmt.Errorf("missing value")
	}
	return false, fmt.Errorf("%q is not a 0/1 flag", s)
}

// buildFrame lays records out as typed columns: strings for the categorical
// columns, ints for DAY and DEP_HOUR, floats for DISTANCE, bools for DELAYED.
func buildFrame(records []domain.FlightRecord) dataframe.DataFrame {
	n := len(records)
	airlines := make([]string, n)
	origins := make([]string, n)
	dests := make([]string, n)
	days := make([]int, n)
	hours := make([]int, n)
	distances := make([]float64, n)
	delayed := make([]bool, n)
	for i, r := range records {
		airlines[i] = r.Airline
		origins[i] = r.Origin
		dests[i] = r.Dest
		days[i] = r.Day
		hours[i] = r.DepHour
		distances[i] = r.Distance
		delayed[i] = r.Delayed
	}
	return dataframe.New(
		series.New(airlines, series.String, domain.ColAirline),
		series.New(origins, series.String, domain.ColOrigin),
		series.New(dests, series.String, domain.ColDest),
		series.New(days, series.Int, domain.ColDay),
		series.New(hours, series.Int, domain.ColDepHour),
		series.New(distances, series.Float, domain.ColDistance),
		series.New(delayed, series.Bool, domain.ColDelayed),
	)
}

// DecodeRecords converts a normalized frame, or any subset of one, back
// into flight records.
func DecodeRecords(df dataframe.DataFrame) ([]domain.FlightRecord, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	for _, col := range domain.RequiredColumns {
		if !slices.Contains(df.Names(), col) {
			return nil, fmt.Errorf("column %s not in frame", col)
		}
	}

	airlines := df.Col(domain.ColAirline).Records()
	origins := df.Col(domain.ColOrigin).Records()
	dests := df.Col(domain.ColDest).Records()
	days, err := df.Col(domain.ColDay).Int()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.ColDay, err)
	}
	hours, err := df.Col(domain.ColDepHour).Int()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.ColDepHour, err)
	}
	distances := df.Col(domain.ColDistance).Float()
	delayed, err := df.Col(domain.ColDelayed).Bool()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.ColDelayed, err)
	}

	out := make([]domain.FlightRecord, df.Nrow())
	for i := range out {
		out[i] = domain.FlightRecord{
			Airline:  airlines[i],
			Origin:   origins[i],
			Dest:     dests[i],
			Day:      days[i],
			DepHour:  hours[i],
			Distance: distances[i],
			Delayed:  delayed[i],
		}
	}
	return out, nil
}

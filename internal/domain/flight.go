package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Source column names.
const (
	ColAirline  = "AIRLINE_CODE"
	ColOrigin   = "ORIGIN"
	ColDest     = "DEST"
	ColDay      = "DAY"
	ColDepHour  = "DEP_HOUR"
	ColDistance = "DISTANCE"
	ColDelayed  = "DELAYED"
)

// RequiredColumns lists every column a data source must provide.
var RequiredColumns = []string{
	ColAirline, ColOrigin, ColDest, ColDay, ColDepHour, ColDistance, ColDelayed,
}

// Default bounds for the DAY ordinal and departure hour.
const (
	DefaultMinDay = 1
	DefaultMaxDay = 31
	MinHour       = 0
	MaxHour       = 23
)

// FlightRecord is one historical flight.
type FlightRecord struct {
	Airline  string  `json:"airline"`
	Origin   string  `json:"origin"`
	Dest     string  `json:"dest"`
	Day      int     `json:"day"`
	DepHour  int     `json:"dep_hour"`
	Distance float64 `json:"distance"`
	Delayed  bool    `json:"delayed"`
}

// FilterSelection holds the accepted values per dimension. A nil or empty
// slice accepts nothing.
type FilterSelection struct {
	Airlines []string `json:"airlines"`
	Origins  []string `json:"origins"`
	Dests    []string `json:"dests"`
	Days     []int    `json:"days"`
}

// IsEmpty reports whether any dimension has no accepted values, in which
// case no record can match.
func (s FilterSelection) IsEmpty() bool {
	return len(s.Airlines) == 0 || len(s.Origins) == 0 || len(s.Dests) == 0 || len(s.Days) == 0
}

// Rate is a fraction in [0,1] that may be absent.
type Rate struct {
	value float64
	valid bool
}

// NewRate returns part/total, or an absent rate when total is zero.
func NewRate(part, total int) Rate {
	if total == 0 {
		return Rate{}
	}
	return Rate{value: float64(part) / float64(total), valid: true}
}

// Value returns the rate and whether it is defined.
func (r Rate) Value() (float64, bool) { return r.value, r.valid }

// Valid reports whether the rate is defined.
func (r Rate) Valid() bool { return r.valid }

// Percent formats the rate as "12.34%", or "—" when undefined.
func (r Rate) Percent() string {
	if !r.valid {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", r.value*100)
}

func (r Rate) String() string { return r.Percent() }

// MarshalJSON encodes an undefined rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON accepts a number or null.
func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode rate: %w", err)
	}
	if math.IsNaN(v) {
		*r = Rate{}
		return nil
	}
	*r = Rate{value: v, valid: true}
	return nil
}

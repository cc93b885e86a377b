// Package domain models historical flight records and delay predictions.
//
// # Data Source
//
// Flight records come from a bulk tabular export (CSV or XLSX) with one row
// per scheduled flight. Only the columns below are consumed; anything else in
// the file is ignored:
//
//	AIRLINE_CODE  carrier IATA code, e.g. "AA"
//	ORIGIN        origin airport code, e.g. "JFK"
//	DEST          destination airport code, e.g. "LAX"
//	DAY           day ordinal as exported by the source
//	DEP_HOUR      scheduled departure hour, 0-23 local time
//	DISTANCE      great-circle distance in statute miles
//	DELAYED       1 when the flight was flagged as delayed, 0 otherwise
//
// # Day Semantics
//
// Depending on the export, DAY is either a day of month (1-31) or a day of
// week (1-7). Nothing here assumes which: it is treated as an opaque ordinal
// that is filtered by membership and validated against a range. The default
// range is 1-31; the dashboard narrows it to the range observed in the loaded
// table.
//
// # Delay Rate
//
// The delay rate of a set of flights is delayed/total. An empty set has no
// rate at all, which is different from a rate of zero. [Rate] carries that
// distinction through to JSON (null) and display ("—").
//
// # Feature Records
//
// The classifier consumes exactly six features in a fixed order, see
// [FeatureNames]. The names match the source columns because the model was
// trained on the same export.
package domain

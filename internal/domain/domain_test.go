package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRate(t *testing.T) {
	r := NewRate(1, 2)
	v, ok := r.Value()
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, "50.00%", r.Percent())

	empty := NewRate(0, 0)
	assert.False(t, empty.Valid())
	assert.Equal(t, "—", empty.Percent())
	assert.Equal(t, "—", empty.String())
}

func TestRate_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Rate{"a": NewRate(1, 4), "b": NewRate(0, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0.25,"b":null}`, string(data))

	var decoded map[string]Rate
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NewRate(1, 4), decoded["a"])
	assert.False(t, decoded["b"].Valid())
}

func TestOutcomeFromRaw(t *testing.T) {
	tests := []struct {
		raw  float64
		want Outcome
	}{
		{1, Delayed},
		{0, OnTime},
		{0.99, OnTime},
		{2, OnTime},
		{-1, OnTime},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.raw), func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeFromRaw(tt.raw))
		})
	}
}

func TestOutcome_JSON(t *testing.T) {
	data, err := json.Marshal(PredictionOutcome{Outcome: Delayed, Raw: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome":"DELAYED"`)

	var o Outcome
	require.NoError(t, json.Unmarshal([]byte(`"ON_TIME"`), &o))
	assert.Equal(t, OnTime, o)
	require.Error(t, json.Unmarshal([]byte(`"LATE"`), &o))
}

func TestPredictionRequest_Features(t *testing.T) {
	req := PredictionRequest{Airline: "AA", Origin: "JFK", Dest: "LAX", Day: 1, DepHour: 8, Distance: 2475}
	f := req.Features()

	assert.Equal(t, []any{"AA", "JFK", "LAX", 1, 8, 2475.0}, f.Values())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"AIRLINE_CODE":"AA","ORIGIN":"JFK","DEST":"LAX","DAY":1,"DEP_HOUR":8,"DISTANCE":2475}`, string(data))
	assert.Len(t, FeatureNames, len(f.Values()))
}

func TestFilterSelection_IsEmpty(t *testing.T) {
	full := FilterSelection{Airlines: []string{"AA"}, Origins: []string{"JFK"}, Dests: []string{"LAX"}, Days: []int{1}}
	assert.False(t, full.IsEmpty())

	noDays := full
	noDays.Days = nil
	assert.True(t, noDays.IsEmpty())
}

func TestFieldErrors(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(
		&FieldError{Field: "dep_hour", Reason: "must be between 0 and 23"},
		&FieldError{Field: "distance", Reason: "must not be negative"},
	))

	assert.ErrorIs(t, err, ErrInvalidRequest)
	fields := FieldErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "dep_hour", fields[0].Field)
	assert.Equal(t, "distance: must not be negative", fields[1].Error())

	assert.Empty(t, FieldErrors(ErrModelInference))
	assert.ErrorIs(t, &FieldError{Field: "day"}, ErrInvalidRequest)
}

package main

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-dashboard/internal/adapter/artifact"
	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
)

func testModel(t *testing.T) *artifact.Model {
	t.Helper()
	m, err := artifact.New(artifact.Scorecard{
		Name:      "delay_model",
		Features:  domain.FeatureNames,
		Intercept: intercept,
		Categorical: map[string]map[string]float64{
			domain.ColAirline: airlineWeights,
			domain.ColOrigin:  originWeights,
			domain.ColDest:    destWeights,
		},
		Numeric: numericWeights,
	})
	require.NoError(t, err)
	return m
}

func TestGenerate_Deterministic(t *testing.T) {
	model := testModel(t)

	a, datesA, err := generate(rand.New(rand.NewPCG(7, 7)), model, 200)
	require.NoError(t, err)
	b, datesB, err := generate(rand.New(rand.NewPCG(7, 7)), model, 200)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, datesA, datesB)
	for _, r := range a {
		assert.NotEqual(t, r.Origin, r.Dest)
		assert.GreaterOrEqual(t, r.DepHour, minHour)
		assert.LessOrEqual(t, r.DepHour, domain.MaxHour)
		assert.GreaterOrEqual(t, r.Day, 1)
		assert.LessOrEqual(t, r.Day, 7)
	}
}

func TestWriteOutputs_RoundTrip(t *testing.T) {
	model := testModel(t)
	records, dates, err := generate(rand.New(rand.NewPCG(1, 2)), model, 50)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"flights.csv", "flights.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, writeDataset(path, records, dates))

			loader := dataset.NewLoader(dataset.NewFileSource(path, "Sheet1"), nil,
				slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
			table, err := loader.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, len(records), table.Len())
		})
	}

	modelPath := filepath.Join(dir, "model", "delay_model.yaml")
	require.NoError(t, writeArtifact(modelPath, artifact.Scorecard{
		Name:      "delay_model",
		Version:   "mock-1",
		Features:  domain.FeatureNames,
		Intercept: intercept,
		Categorical: map[string]map[string]float64{
			domain.ColAirline: airlineWeights,
			domain.ColOrigin:  originWeights,
			domain.ColDest:    destWeights,
		},
		Numeric: numericWeights,
	}))
	loaded, err := artifact.Load(modelPath)
	require.NoError(t, err)
	assert.Equal(t, "delay_model@mock-1", loaded.Name())

	features := make([]domain.FeatureRecord, len(records))
	for i, r := range records {
		features[i] = domain.FeatureRecord{
			Airline: r.Airline, Origin: r.Origin, Dest: r.Dest,
			Day: r.Day, DepHour: r.DepHour, Distance: r.Distance,
		}
	}
	_, err = loaded.Predict(context.Background(), features)
	require.NoError(t, err)
}

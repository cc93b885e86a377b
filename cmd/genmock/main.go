// Command genmock generates a deterministic sample flight dataset together
// with the model artifact whose scorecard produced its DELAYED labels, so the
// dashboard can be run and tested without the real BTS extract.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -rows 10000 -seed 42 \
//	  -data-out data/flights_sample_10000.csv \
//	  -model-out model/delay_model.yaml
//
// A -data-out ending in .xlsx writes a workbook instead of CSV.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/flight-delay-dashboard/internal/adapter/artifact"
	"github.com/couchcryptid/flight-delay-dashboard/internal/analytics"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
)

var baseDate = time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC) // a Monday

// Generator weights, written out verbatim as the artifact.
var (
	airlineWeights = map[string]float64{
		"AA": 0.10, "AS": -0.20, "B6": 0.40, "DL": -0.35, "UA": 0.05, "WN": 0.25,
	}
	originWeights = map[string]float64{
		"ATL": -0.05, "DEN": 0.15, "DFW": 0.10, "JFK": 0.30, "LAS": 0.00,
		"LAX": 0.05, "MCO": 0.20, "ORD": 0.35, "SEA": -0.15, "SFO": 0.25,
	}
	destWeights = map[string]float64{
		"ATL": 0.00, "DEN": 0.05, "DFW": 0.05, "JFK": 0.20, "LAS": -0.05,
		"LAX": 0.10, "MCO": 0.05, "ORD": 0.15, "SEA": -0.10, "SFO": 0.20,
	}
	numericWeights = map[string]float64{
		domain.ColDay:      0.02,
		domain.ColDepHour:  0.08,
		domain.ColDistance: 0.0001,
	}
)

const (
	intercept = -2.6
	minHour   = 5
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rows := flag.Int("rows", 10000, "number of flights to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	dataOut := flag.String("data-out", "", "output path for the flight dataset (.csv or .xlsx)")
	modelOut := flag.String("model-out", "", "output path for the model artifact (.yaml)")
	flag.Parse()

	if *dataOut == "" || *modelOut == "" || *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -data-out, -model-out")
	}

	card := artifact.Scorecard{
		Name:      "delay_model",
		Version:   fmt.Sprintf("mock-%d", *seed),
		Features:  domain.FeatureNames,
		Intercept: intercept,
		Threshold: 0.5,
		Categorical: map[string]map[string]float64{
			domain.ColAirline: airlineWeights,
			domain.ColOrigin:  originWeights,
			domain.ColDest:    destWeights,
		},
		Numeric: numericWeights,
	}
	model, err := artifact.New(card)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	records, dates, err := generate(rng, model, *rows)
	if err != nil {
		return err
	}
	log.Printf("generated %d flights", len(records))

	if err := writeDataset(*dataOut, records, dates); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote dataset: %s", *dataOut)

	if err := writeArtifact(*modelOut, card); err != nil {
		return fmt.Errorf("writing model artifact: %w", err)
	}
	log.Printf("wrote model artifact: %s", *modelOut)

	printStats(records)
	return nil
}

// generate samples flights and labels each one by drawing from the model's
// delay probability.
func generate(rng *rand.Rand, model *artifact.Model, n int) ([]domain.FlightRecord, []string, error) {
	airlines := sortedKeys(airlineWeights)
	airports := sortedKeys(originWeights)
	distances := routeDistances(rng, airports)

	records := make([]domain.FlightRecord, 0, n)
	dates := make([]string, 0, n)
	for range n {
		origin := airports[rng.IntN(len(airports))]
		dest := airports[rng.IntN(len(airports))]
		for dest == origin {
			dest = airports[rng.IntN(len(airports))]
		}
		offset := rng.IntN(28)

		rec := domain.FlightRecord{
			Airline:  airlines[rng.IntN(len(airlines))],
			Origin:   origin,
			Dest:     dest,
			Day:      offset%7 + 1,
			DepHour:  minHour + rng.IntN(domain.MaxHour-minHour+1),
			Distance: distances[origin+dest],
		}
		p, err := model.Probability(domain.PredictionRequest{
			Airline: rec.Airline, Origin: rec.Origin, Dest: rec.Dest,
			Day: rec.Day, DepHour: rec.DepHour, Distance: rec.Distance,
		}.Features())
		if err != nil {
			return nil, nil, fmt.Errorf("score flight: %w", err)
		}
		rec.Delayed = rng.Float64() < p

		records = append(records, rec)
		dates = append(dates, baseDate.AddDate(0, 0, offset).Format(time.DateOnly))
	}
	return records, dates, nil
}

// routeDistances assigns every airport pair a fixed distance in miles, the
// same in both directions.
func routeDistances(rng *rand.Rand, airports []string) map[string]float64 {
	out := make(map[string]float64, len(airports)*len(airports))
	for i, a := range airports {
		for _, b := range airports[i+1:] {
			d := math.Round(200 + rng.Float64()*2600)
			out[a+b] = d
			out[b+a] = d
		}
	}
	return out
}

func writeDataset(path string, records []domain.FlightRecord, dates []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	df := toFrame(records, dates)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(path, df)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return df.WriteCSV(f)
}

func toFrame(records []domain.FlightRecord, dates []string) dataframe.DataFrame {
	n := len(records)
	airline := make([]string, n)
	origin := make([]string, n)
	dest := make([]string, n)
	day := make([]int, n)
	hour := make([]int, n)
	distance := make([]int, n)
	delayed := make([]int, n)
	for i, r := range records {
		airline[i], origin[i], dest[i] = r.Airline, r.Origin, r.Dest
		day[i], hour[i], distance[i] = r.Day, r.DepHour, int(r.Distance)
		if r.Delayed {
			delayed[i] = 1
		}
	}
	return dataframe.New(
		series.New(dates, series.String, "FL_DATE"),
		series.New(airline, series.String, domain.ColAirline),
		series.New(origin, series.String, domain.ColOrigin),
		series.New(dest, series.String, domain.ColDest),
		series.New(day, series.Int, domain.ColDay),
		series.New(hour, series.Int, domain.ColDepHour),
		series.New(distance, series.Int, domain.ColDistance),
		series.New(delayed, series.Int, domain.ColDelayed),
	)
}

func writeXLSX(path string, df dataframe.DataFrame) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, row := range df.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeArtifact(path string, card artifact.Scorecard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(card)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printStats(records []domain.FlightRecord) {
	snap := analytics.Summarize(analytics.NewView(records))
	log.Printf("delayed: %d of %d (%s)", snap.Delayed, snap.Total, snap.DelayRate)
	for _, a := range snap.ByAirline {
		log.Printf("  %-3s %6d flights  %6.2f%% delayed", a.Airline, a.Flights, a.Rate*100)
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

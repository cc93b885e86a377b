// Command validate checks offline that a flight dataset loads under the
// dashboard's schema and that a model artifact can score every flight in it.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data data/flights_sample_10000.csv \
//	  -model model/delay_model.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/flight-delay-dashboard/internal/adapter/artifact"
	"github.com/couchcryptid/flight-delay-dashboard/internal/analytics"
	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
	"github.com/couchcryptid/flight-delay-dashboard/internal/prediction"
)

// maxErrors caps per-phase error output.
const maxErrors = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the flight dataset (.csv or .xlsx)")
	sheet := flag.String("sheet", "Sheet1", "worksheet name for .xlsx datasets")
	modelPath := flag.String("model", "", "path to the model artifact")
	flag.Parse()

	if *dataPath == "" || *modelPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(context.Background(), os.Stdout, *dataPath, *sheet, *modelPath); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, out io.Writer, dataPath, sheet, modelPath string) int {
	fmt.Fprintln(out, "=== Flight Dataset Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := dataset.NewLoader(dataset.NewFileSource(dataPath, sheet), nil, logger, observability.NewMetricsForTesting())
	table, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load dataset: %v\n", err)
		return 1
	}

	model, err := artifact.Load(modelPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load model: %v\n", err)
		return 1
	}

	view, err := analytics.Apply(table, table.Options().Selection())
	if err != nil {
		fmt.Fprintf(out, "FATAL: read dataset: %v\n", err)
		return 1
	}
	records := view.Records()

	phases := []*phase{
		validateCategories(table.Options(), model),
		validateDomain(records, table.Options().DayRange),
		validateScoring(ctx, out, records, model),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	snap := analytics.Summarize(view)
	opts := table.Options()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d flights, %d airlines, %d origins, %d destinations, days %d-%d\n",
		snap.Total, len(opts.Airlines), len(opts.Origins), len(opts.Dests), opts.DayRange.Min, opts.DayRange.Max)
	fmt.Fprintf(out, "Observed delay rate: %s\n", snap.DelayRate)
	fmt.Fprintf(out, "Model: %s\n", model.Name())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Category Coverage ──
// Every airline and airport in the dataset must be known to the model.

func validateCategories(opts dataset.Options, model *artifact.Model) *phase {
	p := &phase{name: "Phase 1: Category Coverage (dataset vs model)"}

	check := func(feature string, values []string) {
		for _, v := range values {
			if !model.Knows(feature, v) {
				p.errorf("%s %q not known to the model", feature, v)
			}
		}
	}
	check(domain.ColAirline, opts.Airlines)
	check(domain.ColOrigin, opts.Origins)
	check(domain.ColDest, opts.Dests)
	return p
}

// ── Phase 2: Prediction Domain ──
// Every flight must pass the prediction form's validation, so any row of
// the dataset can be replayed through the predict endpoint.

func validateDomain(records []domain.FlightRecord, days dataset.DayRange) *phase {
	p := &phase{name: "Phase 2: Prediction Domain (request rules)"}

	if !prediction.DefaultDayRange.Contains(days.Min) || !prediction.DefaultDayRange.Contains(days.Max) {
		p.errorf("day range %d-%d outside %d-%d", days.Min, days.Max,
			prediction.DefaultDayRange.Min, prediction.DefaultDayRange.Max)
	}
	for i, r := range records {
		if err := prediction.Validate(requestFor(r), days); err != nil {
			p.errorf("row %d: %v", i+2, err)
		}
	}
	return p
}

// ── Phase 3: Scoring ──
// The model must return one 0/1 output per flight.

func validateScoring(ctx context.Context, out io.Writer, records []domain.FlightRecord, model *artifact.Model) *phase {
	p := &phase{name: "Phase 3: Scoring (model artifact)"}

	features := make([]domain.FeatureRecord, len(records))
	for i, r := range records {
		features[i] = requestFor(r).Features()
	}

	outputs, err := model.Predict(ctx, features)
	if err != nil {
		p.errorf("predict: %v", err)
		return p
	}
	if len(outputs) != len(records) {
		p.errorf("model returned %d outputs for %d flights", len(outputs), len(records))
		return p
	}

	var predicted int
	for i, o := range outputs {
		switch o {
		case 0:
		case 1:
			predicted++
		default:
			p.errorf("row %d: output %g is not 0 or 1", i+2, o)
		}
	}
	fmt.Fprintf(out, "  Note: model predicts %s of flights delayed\n", domain.NewRate(predicted, len(outputs)))
	return p
}

func requestFor(r domain.FlightRecord) domain.PredictionRequest {
	return domain.PredictionRequest{
		Airline: r.Airline, Origin: r.Origin, Dest: r.Dest,
		Day: r.Day, DepHour: r.DepHour, Distance: r.Distance,
	}
}

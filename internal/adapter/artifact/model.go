// Package artifact loads a serialized delay classifier from disk.
//
// The artifact is a logistic scorecard exported by the training job:
//
//	name: delay_model
//	version: "3"
//	features: [AIRLINE_CODE, ORIGIN, DEST, DAY, DEP_HOUR, DISTANCE]
//	intercept: -1.35
//	threshold: 0.5
//	categorical:
//	  AIRLINE_CODE: {AA: 0.12, DL: -0.31}
//	  ORIGIN: {JFK: 0.4, ATL: -0.05}
//	  DEST: {LAX: 0.2, JFK: 0.33}
//	numeric:
//	  DAY: 0.004
//	  DEP_HOUR: 0.061
//	  DISTANCE: 0.00011
//
// JSON artifacts with the same keys are accepted too.
package artifact

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
)

// Scorecard is the on-disk artifact layout.
type Scorecard struct {
	Name        string                        `yaml:"name" json:"name"`
	Version     string                        `yaml:"version" json:"version"`
	Features    []string                      `yaml:"features" json:"features"`
	Intercept   float64                       `yaml:"intercept" json:"intercept"`
	Threshold   float64                       `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Categorical map[string]map[string]float64 `yaml:"categorical" json:"categorical"`
	Numeric     map[string]float64            `yaml:"numeric" json:"numeric"`
}

var (
	categoricalFeatures = []string{domain.ColAirline, domain.ColOrigin, domain.ColDest}
	numericFeatures     = []string{domain.ColDay, domain.ColDepHour, domain.ColDistance}
)

// Model is a loaded scorecard. It is read-only after construction and safe
// for concurrent use.
type Model struct {
	card Scorecard
}

// Load reads and validates an artifact file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an artifact.
func Parse(data []byte) (*Model, error) {
	var card Scorecard
	if err := yaml.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return New(card)
}

// New validates a scorecard and returns a Model.
func New(card Scorecard) (*Model, error) {
	if !slices.Equal(card.Features, domain.FeatureNames) {
		return nil, fmt.Errorf("feature schema mismatch: artifact has %v, want %v", card.Features, domain.FeatureNames)
	}
	for _, f := range categoricalFeatures {
		if len(card.Categorical[f]) == 0 {
			return nil, fmt.Errorf("no categories for feature %s", f)
		}
	}
	if card.Threshold == 0 {
		card.Threshold = 0.5
	}
	if card.Threshold <= 0 || card.Threshold >= 1 {
		return nil, fmt.Errorf("threshold %g outside (0,1)", card.Threshold)
	}
	return &Model{card: card}, nil
}

// Name identifies the model as "name@version".
func (m *Model) Name() string {
	if m.card.Version == "" {
		return m.card.Name
	}
	return m.card.Name + "@" + m.card.Version
}

// Knows reports whether value was seen in training for a categorical feature.
func (m *Model) Knows(feature, value string) bool {
	_, ok := m.card.Categorical[feature][value]
	return ok
}

// Predict scores every record and returns 1 (delayed) or 0 per record.
// A category not seen in training fails the whole batch.
func (m *Model) Predict(ctx context.Context, records []domain.FeatureRecord) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]float64, len(records))
	for i, rec := range records {
		p, err := m.Probability(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if p >= m.card.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}

// Probability returns the model's delay probability for one record.
func (m *Model) Probability(rec domain.FeatureRecord) (float64, error) {
	score := m.card.Intercept

	cats := map[string]string{
		domain.ColAirline: rec.Airline,
		domain.ColOrigin:  rec.Origin,
		domain.ColDest:    rec.Dest,
	}
	for _, f := range categoricalFeatures {
		w, ok := m.card.Categorical[f][cats[f]]
		if !ok {
			return 0, fmt.Errorf("unknown %s category %q", f, cats[f])
		}
		score += w
	}

	nums := map[string]float64{
		domain.ColDay:      float64(rec.Day),
		domain.ColDepHour:  float64(rec.DepHour),
		domain.ColDistance: rec.Distance,
	}
	for _, f := range numericFeatures {
		score += m.card.Numeric[f] * nums[f]
	}

	return 1 / (1 + math.Exp(-score)), nil
}

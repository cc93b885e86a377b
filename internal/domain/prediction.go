package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// FeatureNames is the feature order the classifier was trained on.
var FeatureNames = []string{ColAirline, ColOrigin, ColDest, ColDay, ColDepHour, ColDistance}

// PredictionRequest describes a hypothetical flight submitted through the
// prediction form.
type PredictionRequest struct {
	Airline  string  `json:"airline"`
	Origin   string  `json:"origin"`
	Dest     string  `json:"dest"`
	Day      int     `json:"day"`
	DepHour  int     `json:"dep_hour"`
	Distance float64 `json:"distance"`
}

// Features converts the request into the classifier's feature record.
func (r PredictionRequest) Features() FeatureRecord {
	return FeatureRecord(r)
}

// FeatureRecord is the fixed-schema classifier input. JSON names match
// FeatureNames so served models receive the training column names.
type FeatureRecord struct {
	Airline  string  `json:"AIRLINE_CODE"`
	Origin   string  `json:"ORIGIN"`
	Dest     string  `json:"DEST"`
	Day      int     `json:"DAY"`
	DepHour  int     `json:"DEP_HOUR"`
	Distance float64 `json:"DISTANCE"`
}

// Values returns the features in FeatureNames order.
func (f FeatureRecord) Values() []any {
	return []any{f.Airline, f.Origin, f.Dest, f.Day, f.DepHour, f.Distance}
}

// Classifier is an externally trained binary delay model. Implementations
// must be safe for concurrent use and return one output per record.
type Classifier interface {
	Predict(ctx context.Context, records []FeatureRecord) ([]float64, error)
}

// Outcome is the binary prediction shown to the user.
type Outcome int

const (
	OnTime Outcome = iota
	Delayed
)

// OutcomeFromRaw maps a raw model output: exactly 1 is Delayed, anything
// else is OnTime.
func OutcomeFromRaw(raw float64) Outcome {
	if raw == 1 {
		return Delayed
	}
	return OnTime
}

func (o Outcome) String() string {
	switch o {
	case Delayed:
		return "DELAYED"
	default:
		return "ON_TIME"
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "DELAYED":
		*o = Delayed
	case "ON_TIME":
		*o = OnTime
	default:
		return fmt.Errorf("unknown outcome %q", s)
	}
	return nil
}

// PredictionOutcome is the result of one prediction.
type PredictionOutcome struct {
	Outcome     Outcome   `json:"outcome"`
	Raw         float64   `json:"raw"`
	Model       string    `json:"model,omitempty"`
	PredictedAt time.Time `json:"predicted_at"`
}

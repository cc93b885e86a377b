// Package prediction validates prediction requests and runs them through
// the delay classifier.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-delay-dashboard/internal/dataset"
	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
)

// DefaultDayRange accepts both day-of-week and day-of-month encodings.
var DefaultDayRange = dataset.DayRange{Min: domain.DefaultMinDay, Max: domain.DefaultMaxDay}

// Service validates requests and delegates to a Classifier. It keeps no
// per-request state: results are neither cached nor retried.
type Service struct {
	classifier domain.Classifier
	model      string
	days       dataset.DayRange
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithDayRange overrides the accepted DAY range.
func WithDayRange(r dataset.DayRange) Option {
	return func(s *Service) { s.days = r }
}

// WithClock sets the time source used for PredictedAt.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithModelName labels outcomes with the classifier identity.
func WithModelName(name string) Option {
	return func(s *Service) { s.model = name }
}

// NewService creates a prediction Service.
func NewService(classifier domain.Classifier, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		days:       DefaultDayRange,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DayRange returns the accepted DAY range.
func (s *Service) DayRange() dataset.DayRange { return s.days }

// Predict validates req and returns the classifier's outcome.
//
// Validation failures match domain.ErrInvalidRequest and carry one
// *domain.FieldError per bad field. Classifier failures match
// domain.ErrModelInference.
func (s *Service) Predict(ctx context.Context, req domain.PredictionRequest) (domain.PredictionOutcome, error) {
	req = normalize(req)
	if err := Validate(req, s.days); err != nil {
		s.metrics.Predictions.WithLabelValues("invalid").Inc()
		return domain.PredictionOutcome{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	start := s.clock.Now()
	raw, err := s.classifier.Predict(ctx, []domain.FeatureRecord{req.Features()})
	s.metrics.InferenceDuration.Observe(s.clock.Since(start).Seconds())
	if err == nil && len(raw) != 1 {
		err = fmt.Errorf("classifier returned %d outputs for 1 record", len(raw))
	}
	if err != nil {
		s.metrics.Predictions.WithLabelValues("error").Inc()
		s.logger.Warn("prediction failed",
			"airline", req.Airline,
			"origin", req.Origin,
			"dest", req.Dest,
			"error", err,
		)
		return domain.PredictionOutcome{}, fmt.Errorf("%w: %w", domain.ErrModelInference, err)
	}

	outcome := domain.PredictionOutcome{
		Outcome:     domain.OutcomeFromRaw(raw[0]),
		Raw:         raw[0],
		Model:       s.model,
		PredictedAt: s.clock.Now(),
	}
	s.metrics.Predictions.WithLabelValues(metricLabel(outcome.Outcome)).Inc()
	s.logger.Debug("prediction served",
		"airline", req.Airline,
		"origin", req.Origin,
		"dest", req.Dest,
		"day", req.Day,
		"dep_hour", req.DepHour,
		"outcome", outcome.Outcome.String(),
	)
	return outcome, nil
}

func metricLabel(o domain.Outcome) string {
	if o == domain.Delayed {
		return "delayed"
	}
	return "on_time"
}

func normalize(req domain.PredictionRequest) domain.PredictionRequest {
	req.Airline = strings.TrimSpace(req.Airline)
	req.Origin = strings.TrimSpace(req.Origin)
	req.Dest = strings.TrimSpace(req.Dest)
	return req
}

// Validate checks every field of req and joins all violations.
func Validate(req domain.PredictionRequest, days dataset.DayRange) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &domain.FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(req.Airline) == "" {
		fail("airline", "is required")
	}
	if strings.TrimSpace(req.Origin) == "" {
		fail("origin", "is required")
	}
	if strings.TrimSpace(req.Dest) == "" {
		fail("dest", "is required")
	}
	if !days.Contains(req.Day) {
		fail("day", "must be between %d and %d", days.Min, days.Max)
	}
	if req.DepHour < domain.MinHour || req.DepHour > domain.MaxHour {
		fail("dep_hour", "must be between %d and %d", domain.MinHour, domain.MaxHour)
	}
	switch {
	case math.IsNaN(req.Distance) || math.IsInf(req.Distance, 0):
		fail("distance", "must be a finite number")
	case req.Distance < 0:
		fail("distance", "must not be negative")
	}

	return errors.Join(errs...)
}

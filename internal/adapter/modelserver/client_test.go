package modelserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var testRecord = domain.FeatureRecord{
	Airline: "AA", Origin: "JFK", Dest: "LAX", Day: 1, DepHour: 8, Distance: 2475,
}

func testClient(endpoint string, timeout time.Duration) *Client {
	return NewClient(endpoint, timeout, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Predict_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var body map[string][]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body["instances"], 1)
		inst := body["instances"][0]
		assert.Equal(t, "AA", inst["AIRLINE_CODE"])
		assert.Equal(t, "JFK", inst["ORIGIN"])
		assert.Equal(t, "LAX", inst["DEST"])
		assert.InDelta(t, 1, inst["DAY"], 0)
		assert.InDelta(t, 8, inst["DEP_HOUR"], 0)
		assert.InDelta(t, 2475, inst["DISTANCE"], 0)

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Predictions: []float64{1}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	out, err := c.Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, out)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.ModelRequests.WithLabelValues("success")))
	assert.Equal(t, "modelserver:"+srv.URL, c.Name())
}

func TestClient_Predict_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"unknown category SFO"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "unknown category SFO")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.ModelRequests.WithLabelValues("error")))
}

func TestClient_Predict_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Predict_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(response{Predictions: []float64{}}))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 predictions for 1 instances")
}

func TestClient_Predict_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.Error(t, err)
}

func TestClient_Predict_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url, time.Second).Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model server request")
}

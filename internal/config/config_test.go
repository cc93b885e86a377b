package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEndpoint = "http://model.internal:8501/v1/models/delay:predict"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/flights_sample_10000.csv", cfg.DataPath)
	assert.Equal(t, "Sheet1", cfg.DataSheet)
	assert.Equal(t, "model/delay_model.yaml", cfg.ModelArtifactPath)
	assert.Empty(t, cfg.ModelEndpoint)
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.UseModelServer())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FLIGHTS_DATA_PATH", "/srv/flights.xlsx")
	t.Setenv("FLIGHTS_SHEET", "flights")
	t.Setenv("MODEL_ARTIFACT_PATH", "/srv/model.yaml")
	t.Setenv("MODEL_ENDPOINT", testEndpoint)
	t.Setenv("MODEL_TIMEOUT", "750ms")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/flights.xlsx", cfg.DataPath)
	assert.Equal(t, "flights", cfg.DataSheet)
	assert.Equal(t, "/srv/model.yaml", cfg.ModelArtifactPath)
	assert.Equal(t, testEndpoint, cfg.ModelEndpoint)
	assert.Equal(t, 750*time.Millisecond, cfg.ModelTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.UseModelServer())
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidModelTimeout(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TIMEOUT")
}

func TestLoad_NegativeModelTimeout(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TIMEOUT")
}

func TestLoad_BlankDataPath(t *testing.T) {
	t.Setenv("FLIGHTS_DATA_PATH", "   ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLIGHTS_DATA_PATH")
}

func TestLoad_NoClassifierSource(t *testing.T) {
	t.Setenv("MODEL_ARTIFACT_PATH", "   ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_ARTIFACT_PATH")
}

func TestLoad_EndpointWithoutArtifact(t *testing.T) {
	t.Setenv("MODEL_ARTIFACT_PATH", "   ")
	t.Setenv("MODEL_ENDPOINT", testEndpoint)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UseModelServer())
}

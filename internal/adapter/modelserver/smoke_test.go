//go:build modelserver

package modelserver

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
)

// These tests hit a running model server and require MODEL_ENDPOINT.
// Run with: go test -tags=modelserver ./internal/adapter/modelserver/ -v -count=1

func TestSmoke_Predict(t *testing.T) {
	endpoint := os.Getenv("MODEL_ENDPOINT")
	if endpoint == "" {
		t.Fatal("MODEL_ENDPOINT must be set to run smoke tests")
	}
	c := testClient(endpoint, 10*time.Second)

	out, err := c.Predict(context.Background(), []domain.FeatureRecord{testRecord})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, []float64{0, 1}, out[0])
}

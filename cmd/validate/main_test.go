package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testData = `AIRLINE_CODE,ORIGIN,DEST,DAY,DEP_HOUR,DISTANCE,DELAYED
AA,JFK,LAX,1,8,2475,1
AA,JFK,LAX,1,9,2475,0
DL,ATL,JFK,2,17,760,1
`

const testModel = `
name: delay_model
version: "1"
features: [AIRLINE_CODE, ORIGIN, DEST, DAY, DEP_HOUR, DISTANCE]
intercept: -1
categorical:
  AIRLINE_CODE: {AA: 0.2, DL: -0.2}
  ORIGIN: {JFK: 0.1, ATL: 0}
  DEST: {LAX: 0, JFK: 0.1}
numeric:
  DEP_HOUR: 0.1
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Passes(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), &out, writeFile(t, "flights.csv", testData), "Sheet1", writeFile(t, "model.yaml", testModel))

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Records: 3 flights, 2 airlines")
	assert.Contains(t, out.String(), "Observed delay rate: 66.67%")
	assert.Contains(t, out.String(), "Model: delay_model@1")
}

func TestRun_UnknownCategory(t *testing.T) {
	data := testData + "UA,SFO,LAX,2,6,337,0\n"

	var out bytes.Buffer
	code := run(context.Background(), &out, writeFile(t, "flights.csv", data), "Sheet1", writeFile(t, "model.yaml", testModel))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `AIRLINE_CODE "UA" not known to the model`)
	assert.Contains(t, out.String(), `ORIGIN "SFO" not known to the model`)
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_BadDataset(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), &out, writeFile(t, "flights.csv", "AIRLINE_CODE,ORIGIN\nAA,JFK\n"), "Sheet1", writeFile(t, "model.yaml", testModel))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: load dataset")
}

func TestRun_BadModel(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), &out, writeFile(t, "flights.csv", testData), "Sheet1", writeFile(t, "model.yaml", "features: [DAY]\n"))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: load model")
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/apery/internal/config"
	"github.com/talgya/apery/internal/numerr"
)

func testCmd(t *testing.T, digits int) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cfg = config.Config{
		Digits:    digits,
		MaxDigits: 1000,
		Workers:   2,
		DBPath:    filepath.Join(t.TempDir(), "data", "apery.db"),
		LogLevel:  "error",
	}
	display, saveRun, failOnMiss = 12, false, false
	zetaMax, historyLimit = 5, 10

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestConstantCmd(t *testing.T) {
	cmd, buf := testCmd(t, 30)

	require.NoError(t, runConstant(cmd, []string{"pi"}))
	assert.Equal(t, "3.14159265358979323846264338328\n", buf.String())

	buf.Reset()
	require.NoError(t, runConstant(cmd, []string{"zeta", "3"}))
	assert.Equal(t, "1.20205690315959428539973816151\n", buf.String())

	buf.Reset()
	require.NoError(t, runConstant(cmd, nil))
	assert.Contains(t, buf.String(), "ζ(5)")
	assert.NotContains(t, buf.String(), "ζ(6)")

	err := runConstant(cmd, []string{"zeta", "1"})
	assert.ErrorIs(t, err, numerr.ErrDomain)
	err = runConstant(cmd, []string{"zeta"})
	assert.ErrorIs(t, err, numerr.ErrInvalidArgument)
	err = runConstant(cmd, []string{"e"})
	assert.ErrorIs(t, err, numerr.ErrInvalidArgument)
}

const sampleCatalog = `
formulas:
  - name: pi
    formula: pi
    reference: "3.14159"
    tolerance: "1e-5"
  - name: wrong
    formula: {mul: [2, pi]}
    reference: "6"
    tolerance: "1e-3"
`

func TestReportSaveAndHistory(t *testing.T) {
	cmd, buf := testCmd(t, 25)
	path := filepath.Join(t.TempDir(), "cat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))
	cfg.Catalog = path
	saveRun = true

	require.NoError(t, runReport(cmd, nil))
	out := buf.String()
	assert.Contains(t, out, "3.14159265359")
	assert.Contains(t, out, "2 entries at 25 digits")
	assert.Contains(t, out, "1 exact, 1 miss")
	require.Contains(t, out, "saved run ")

	id := strings.TrimSpace(out[strings.LastIndex(out, "saved run ")+len("saved run "):])

	buf.Reset()
	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, buf.String(), id[:8])
	assert.Contains(t, buf.String(), path)

	buf.Reset()
	require.NoError(t, runHistory(cmd, []string{id}))
	assert.Contains(t, buf.String(), "run "+id+" at 25 digits")
	assert.Contains(t, buf.String(), "miss")

	assert.Error(t, runHistory(cmd, []string{"nope"}))
}

func TestReportFailOnMiss(t *testing.T) {
	cmd, _ := testCmd(t, 20)
	path := filepath.Join(t.TempDir(), "cat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))
	cfg.Catalog = path
	failOnMiss = true

	err := runReport(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 entries missed or failed")
}

func TestBuiltinReport(t *testing.T) {
	cmd, buf := testCmd(t, 40)
	require.NoError(t, runReport(cmd, nil))
	assert.Contains(t, buf.String(), "proton_electron_mass_ratio")
	assert.Contains(t, buf.String(), "at 40 digits")
}

func TestHistoryEmpty(t *testing.T) {
	cmd, buf := testCmd(t, 20)
	require.NoError(t, runHistory(cmd, nil))
	assert.Equal(t, "no saved runs\n", buf.String())
}

func TestDigitsAboveRequestCeiling(t *testing.T) {
	cmd, buf := testCmd(t, 1500)
	require.NoError(t, cfg.Validate())

	require.NoError(t, runConstant(cmd, []string{"pi"}))
	out := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(out, "3.14159265358979323846264338327950288"), out)
	assert.Greater(t, len(out), 1490)

	err := runServe(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APERY_MAX_DIGITS 1000")
}

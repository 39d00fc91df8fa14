package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/roundup/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const request = `{
	"age": 29,
	"wage": 50000,
	"inflation": 5.5,
	"q_periods": [{"start": "2023-07-01 00:00:00", "end": "2023-07-31 23:59:59", "fixed": 0}],
	"p_periods": [{"start": "2023-10-01 08:00:00", "end": "2023-12-31 19:59:59", "extra": 25}],
	"k_periods": [
		{"start": "2023-03-01 00:00:00", "end": "2023-11-30 23:59:59"},
		{"start": "2023-01-01 00:00:00", "end": "2023-12-31 23:59:59"}
	],
	"transactions": [
		{"date": "2023-10-12 20:15:30", "amount": 250},
		{"date": "2023-02-28 15:49:20", "amount": 375},
		{"date": "2023-07-01 21:59:00", "amount": 620},
		{"date": "2023-12-17 08:09:45", "amount": 480}
	]
}`

const expectedResponse = `{
    "totalTransactionAmount": 1725,
    "totalCeiling": 1900,
    "savingsByDates": [
        {
            "start": "2023-03-01 00:00:00",
            "end": "2023-11-30 23:59:59",
            "amount": 75,
            "profit": 44.94,
            "taxBenefit": 0
        },
        {
            "start": "2023-01-01 00:00:00",
            "end": "2023-12-31 23:59:59",
            "amount": 145,
            "profit": 86.88,
            "taxBenefit": 0
        }
    ]
}
`

// execute runs the CLI in-process with an isolated home directory.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_EvaluatesStdin(t *testing.T) {
	stdout, _, err := execute(t, request, "--performance=false")
	require.NoError(t, err)
	assert.Equal(t, expectedResponse, stdout)
}

func TestRoot_Deterministic(t *testing.T) {
	first, _, err := execute(t, request, "--performance=false")
	require.NoError(t, err)
	second, _, err := execute(t, request, "--performance=false", "--parallelism", "1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRoot_PerformanceBlock(t *testing.T) {
	stdout, _, err := execute(t, request)
	require.NoError(t, err)

	var resp document.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Performance)
	assert.Equal(t, "Go sweep-line", resp.Performance.Engine)
}

func TestRoot_MalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
	}{
		{name: "empty", stdin: ""},
		{name: "truncated", stdin: `{"transactions": [`},
		{name: "wrong type", stdin: `{"age": "old"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.stdin)
			require.Error(t, err)
			assert.ErrorIs(t, err, document.ErrMalformedDocument)
			assert.Empty(t, stdout)
		})
	}
}

func TestRunRoot_FlushesTracesOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		wantErr error
		span    string
	}{
		{name: "canceled evaluation", stdin: request, wantErr: context.Canceled, span: "engine.sweep"},
		{name: "successful evaluation", stdin: request, span: "engine.project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.wantErr != nil {
				cancel()
			}

			var stdout, stderr bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs([]string{"--trace"})
			cmd.SetIn(strings.NewReader(tt.stdin))
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)

			err := runRoot(ctx, cmd)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, stdout.String())
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, stderr.String(), `"SpanContext"`)
			assert.Contains(t, stderr.String(), `"Name": "`+tt.span+`"`)
		})
	}
}

func TestRoot_TableFormat(t *testing.T) {
	stdout, _, err := execute(t, request, "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Round-up savings")
	assert.Contains(t, stdout, "1725.00")
	assert.Contains(t, stdout, "86.88")
}

func TestRoot_FormatFromEnv(t *testing.T) {
	t.Setenv("ROUNDUP_OUTPUT_FORMAT", "table")

	stdout, _, err := execute(t, request)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Round-up savings")
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, request, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  performance: false\n"), 0o600))

	stdout, _, err := execute(t, request, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, expectedResponse, stdout)
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(request), 0o600))

	stdout, _, err := execute(t, "", "run", "--performance=false", path)
	require.NoError(t, err)
	assert.Equal(t, expectedResponse, stdout)

	stdout, _, err = execute(t, request, "run", "--performance=false", "-")
	require.NoError(t, err)
	assert.Equal(t, expectedResponse, stdout)

	_, _, err = execute(t, "", "run", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.json"), []byte(request), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o600))

	stdout, _, err := execute(t, "", "batch", "--no-progress", "--performance=false",
		"--out-dir", outDir, filepath.Join(dir, "*.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 documents failed")
	assert.Contains(t, stdout, "Evaluated 1 of 2 documents")
	assert.Contains(t, stdout, outDir)

	data, err := os.ReadFile(filepath.Join(outDir, "good.result.json"))
	require.NoError(t, err)
	assert.Equal(t, expectedResponse, string(data))

	_, err = os.Stat(filepath.Join(outDir, "bad.result.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatch_NoMatches(t *testing.T) {
	_, _, err := execute(t, "", "batch", filepath.Join(t.TempDir(), "*.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files found")
}

func TestResultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("in", "jan.result.json"), resultPath(filepath.Join("in", "jan.json"), ""))
	assert.Equal(t, filepath.Join("out", "jan.result.json"), resultPath(filepath.Join("in", "jan.json"), "out"))
}

func TestTax(t *testing.T) {
	stdout, _, err := execute(t, "", "tax", "1200000")
	require.NoError(t, err)
	assert.JSONEq(t, `{"income": 1200000, "tax": 60000}`, stdout)

	stdout, _, err = execute(t, "", "tax", "--format", "table", "1200000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "60000.00")

	_, _, err = execute(t, "", "tax", "lots")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "roundup dev\n", stdout)
}

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/smecredit/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run executes the app with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(t.Context(), append([]string{appName, "--log-level", "error"}, args...))
	return out.String(), err
}

// initConfig writes the default configuration into a temp dir.
func initConfig(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "config")
	_, err := run(t, "--config-dir", dir, "init")
	require.NoError(t, err)
	return dir
}

func TestEncode(t *testing.T) {
	v := map[string]any{"rating": "BB", "pd": 0.025}

	var buf bytes.Buffer
	require.NoError(t, encode(&appConfig{Format: formatJSON, Out: &buf}, v))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "BB", got["rating"])

	buf.Reset()
	require.NoError(t, encode(&appConfig{Format: formatYAML, Out: &buf}, v))
	got = nil
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 0.025, got["pd"])
}

func TestApp_Format(t *testing.T) {
	dir := initConfig(t)

	out, err := run(t, "--config-dir", dir, "--format", "yml", "rating", "--pd", "0.025")
	require.NoError(t, err)
	assert.Contains(t, out, "rating: BB")

	_, err = run(t, "--config-dir", dir, "--format", "xml", "rating", "--pd", "0.025")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestApp_LogFile(t *testing.T) {
	dir := initConfig(t)
	logPath := filepath.Join(t.TempDir(), "run.log")

	_, err := run(t, "--config-dir", dir, "--log-file", logPath, "rating", "--label", "zz")
	require.NoError(t, err)

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "label not on the scale")
}

func TestGetConfig_NotInitialized(t *testing.T) {
	_, err := getConfig(newApp())
	assert.ErrorIs(t, err, errConfigNotInitialized)
}

func TestLoadEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(envFile, []byte("SME_TEST_ENV_FILE=from-file\n"), 0o600))
	t.Setenv("SME_TEST_ENV_FILE", "")
	require.NoError(t, os.Unsetenv("SME_TEST_ENV_FILE"))

	loadEnvFile(envFile)
	assert.Equal(t, "from-file", os.Getenv("SME_TEST_ENV_FILE"))

	// missing files are ignored
	loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	out, err := run(t, "--config-dir", dir, "init")
	require.NoError(t, err)
	var res initResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, dir, res.Dir)
	assert.Len(t, res.Written, 4)

	_, err = config.Load(dir)
	require.NoError(t, err)

	out, err = run(t, "--config-dir", dir, "init")
	require.NoError(t, err)
	res = initResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Written)

	other := filepath.Join(t.TempDir(), "other")
	out, err = run(t, "init", "--dir", other, "--force")
	require.NoError(t, err)
	res = initResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, other, res.Dir)
	assert.Len(t, res.Written, 4)
}

func TestRating(t *testing.T) {
	dir := initConfig(t)

	tests := []struct {
		name   string
		args   []string
		rating string
		pd     float64
		bound  bool
	}{
		{"pd in band", []string{"--pd", "0.025"}, "BB", 0.025, true},
		{"pd above scale", []string{"--pd", "2"}, "D", 2, true},
		{"label", []string{"--label", " bb "}, "BB", 0.0275, true},
		{"unknown label", []string{"--label", "ZZ"}, "ZZ", 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--config-dir", dir, "rating"}, tt.args...)...)
			require.NoError(t, err)

			var got ratingLookup
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.rating, got.Rating)
			assert.InDelta(t, tt.pd, got.PD, 1e-12)
			assert.Equal(t, tt.bound, got.Low != nil)
		})
	}

	_, err := run(t, "--config-dir", dir, "rating")
	assert.ErrorIs(t, err, errRatingArgs)

	_, err = run(t, "--config-dir", dir, "rating", "--pd", "0.1", "--label", "B")
	assert.ErrorIs(t, err, errRatingArgs)

	_, err = run(t, "--config-dir", filepath.Join(t.TempDir(), "missing"), "rating", "--pd", "0.1")
	assert.ErrorIs(t, err, config.ErrConfig)
}

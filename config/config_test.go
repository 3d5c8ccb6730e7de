package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 480.0, cfg.Stage.Width)
	assert.Equal(t, 360.0, cfg.Stage.Height)
	assert.Equal(t, CloneInherit, cfg.Physics.ClonePolicy)
	assert.InDelta(t, 1000.0/30.0, cfg.Physics.FixedStepMs, 1e-3)
	assert.Equal(t, 1.0, cfg.Physics.AngleTolerance)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesOnlyGivenFields(t *testing.T) {
	cfg, err := Parse([]byte("physics:\n  gravity: -2\n  clone_policy: disabled\n"), Default())
	require.NoError(t, err)
	assert.Equal(t, -2.0, cfg.Physics.Gravity)
	assert.Equal(t, CloneDisabled, cfg.Physics.ClonePolicy)
	assert.Equal(t, Default().Physics.Restitution, cfg.Physics.Restitution)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"zero_step", "physics:\n  fixed_step_ms: 0\n"},
		{"no_substeps", "physics:\n  substeps: 0\n"},
		{"bad_policy", "physics:\n  clone_policy: sometimes\n"},
		{"negative_tolerance", "physics:\n  angle_tolerance: -1\n"},
		{"empty_stage", "stage:\n  width: 0\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.doc), Default())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("physics: [\n"), Default())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	cfg, err := Parse(data, Config{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWatcherDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "physics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics:\n  gravity: -1\n"), 0o644))

	w, err := NewWatcher(path, Default())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("physics:\n  gravity: -3\n"), 0o644))

	select {
	case cfg := <-w.Configs:
		assert.Equal(t, -3.0, cfg.Physics.Gravity)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestNewLogger(t *testing.T) {
	cases := []struct {
		level   string
		dev     bool
		debug   bool
		wantErr bool
	}{
		{"debug", true, true, false},
		{"info", false, false, false},
		{"warn", true, false, false},
		{"loud", false, false, true},
	}
	for _, tc := range cases {
		logger, err := NewLogger(tc.level, tc.dev)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NewLogger(%q) should fail", tc.level)
			}
			continue
		}
		require.NoError(t, err)
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("NewLogger(%q) debug enabled = %v, want %v", tc.level, got, tc.debug)
		}
	}
}

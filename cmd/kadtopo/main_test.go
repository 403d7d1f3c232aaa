package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/kadtopo/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCLIConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      *CLIConfig
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid config with defaults",
			config:  &CLIConfig{nodes: 100, logLevel: "info", logFormat: "text"},
			wantErr: false,
		},
		{
			name:    "config file without num_nodes",
			config:  &CLIConfig{configFile: "batch.yaml", logLevel: "info", logFormat: "json"},
			wantErr: false,
		},
		{
			name:        "missing num_nodes",
			config:      &CLIConfig{logLevel: "info", logFormat: "text"},
			wantErr:     true,
			errContains: "num_nodes is required",
		},
		{
			name:        "negative num_nodes",
			config:      &CLIConfig{nodes: -3, configFile: "batch.yaml", logLevel: "info", logFormat: "text"},
			wantErr:     true,
			errContains: "cannot be negative",
		},
		{
			name:        "unknown log level",
			config:      &CLIConfig{nodes: 100, logLevel: "chatty", logFormat: "text"},
			wantErr:     true,
			errContains: "invalid log level",
		},
		{
			name:        "unknown log format",
			config:      &CLIConfig{nodes: 100, logLevel: "info", logFormat: "xml"},
			wantErr:     true,
			errContains: "invalid log format",
		},
		{
			name:        "malformed bounds",
			config:      &CLIConfig{nodes: 100, logLevel: "info", logFormat: "text", bounds: "5-10"},
			wantErr:     true,
			errContains: "expected min:max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCLIConfig(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseCLIFlags(t *testing.T) {
	config, _, err := parseCLIFlags([]string{"-strategy", "kademlia", "-workers", "3", "250"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 250, config.nodes)
	assert.Equal(t, "kademlia", config.strategies)
	assert.Equal(t, 3, config.workers)
	assert.True(t, config.set["strategy"])
	assert.True(t, config.set["workers"])
	assert.False(t, config.set["seed"])
	assert.Equal(t, int64(simulation.DefaultSeed), config.seed)

	_, _, err = parseCLIFlags([]string{"ten"}, io.Discard)
	assert.ErrorContains(t, err, "must be an integer")

	_, _, err = parseCLIFlags([]string{"10", "20"}, io.Discard)
	assert.ErrorContains(t, err, "unexpected arguments")

	_, _, err = parseCLIFlags([]string{"-no-such-flag", "10"}, io.Discard)
	assert.Error(t, err)
}

func TestParseBounds(t *testing.T) {
	bounds, err := parseBounds("5:10, 7:14")
	require.NoError(t, err)
	assert.Equal(t, []simulation.PeerBounds{{MinPeers: 5, MaxPeers: 10}, {MinPeers: 7, MaxPeers: 14}}, bounds)

	for _, bad := range []string{"5", "a:10", "5:b", ""} {
		_, err := parseBounds(bad)
		assert.Error(t, err, bad)
	}
}

func TestCreateBatchConfig(t *testing.T) {
	t.Run("DefaultsWithoutFlags", func(t *testing.T) {
		config, _, err := parseCLIFlags([]string{"120"}, io.Discard)
		require.NoError(t, err)

		batch, err := createBatchConfig(config)
		require.NoError(t, err)
		assert.Equal(t, simulation.DefaultBatchConfig(120), batch)
	})

	t.Run("FlagsOverrideFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "batch.yaml")
		doc := "batch:\n  nodes: 40\n  strategies: [equal-fingers]\n  seed: 9\n  workers: 2\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		config, _, err := parseCLIFlags([]string{
			"-config", path, "-strategy", "kademlia,random", "-bounds", "2:4", "-id-bits", "64",
		}, io.Discard)
		require.NoError(t, err)

		batch, err := createBatchConfig(config)
		require.NoError(t, err)
		assert.Equal(t, 40, batch.Nodes)
		assert.Equal(t, []string{"kademlia", "random"}, batch.Strategies)
		assert.Equal(t, []simulation.PeerBounds{{MinPeers: 2, MaxPeers: 4}}, batch.Bounds)
		assert.Equal(t, 64, batch.IDBits)
		assert.Equal(t, int64(9), batch.Seed, "unset flags keep file values")
		assert.Equal(t, 2, batch.Workers)
	})

	t.Run("MissingFile", func(t *testing.T) {
		config := &CLIConfig{configFile: filepath.Join(t.TempDir(), "none.yaml"), set: map[string]bool{}}
		_, err := createBatchConfig(config)
		assert.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-strategy", "kademlia,random-closest",
		"-bounds", "2:4",
		"-id-bits", "32",
		"-log-level", "error",
		"12",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "strategy\tset_num_nodes\tset_min_peers\tset_max_peers"))
	assert.True(t, strings.HasPrefix(lines[1], "kademlia\t12\t2\t4\t"))
	assert.True(t, strings.HasPrefix(lines[2], "random-closest\t12\t2\t4\t"))
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no arguments", nil, 1},
		{"invalid num_nodes", []string{"many"}, 1},
		{"num_nodes out of range", []string{"1"}, 1},
		{"unknown strategy", []string{"-strategy", "ring", "10"}, 1},
		{"help", []string{"-help"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, &stdout, &stderr))
			if tt.code == 0 {
				assert.Contains(t, stdout.String(), "Usage:")
			} else {
				assert.Contains(t, stderr.String(), "Usage:")
				assert.Empty(t, stdout.String())
			}
		})
	}
}

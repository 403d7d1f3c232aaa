package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/kadtopo/limits"
	"github.com/opd-ai/kadtopo/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultBatchConfig(t *testing.T) {
	b := DefaultBatchConfig(100)
	require.NoError(t, b.Validate())

	assert.Equal(t, []string{string(strategy.KindRandomClosest)}, b.Strategies)
	assert.Equal(t, []PeerBounds{{5, 10}, {7, 14}, {9, 18}}, b.Bounds)
	assert.Equal(t, int64(DefaultSeed), b.Seed)
	assert.Equal(t, limits.DefaultIDBits, b.IDBits)
	assert.Equal(t, 1, b.Workers)

	runs := b.Runs()
	require.Len(t, runs, 3)
	for i, run := range runs {
		assert.Equal(t, 100, run.Nodes)
		assert.Equal(t, b.Bounds[i].MinPeers, run.MinPeers)
		assert.Equal(t, b.Bounds[i].MaxPeers, run.MaxPeers)
		assert.Equal(t, 16, run.BucketSize)
		assert.Equal(t, 3, run.Alpha)
	}
}

func TestRunsOrder(t *testing.T) {
	b := DefaultBatchConfig(10)
	b.Strategies = []string{"kademlia", "equal-fingers"}
	b.Bounds = []PeerBounds{{1, 2}, {3, 6}}

	var got [][2]interface{}
	for _, run := range b.Runs() {
		got = append(got, [2]interface{}{run.MinPeers, run.Strategy})
	}
	assert.Equal(t, [][2]interface{}{
		{1, "kademlia"}, {1, "equal-fingers"},
		{3, "kademlia"}, {3, "equal-fingers"},
	}, got)
}

func TestBatchValidateCollectsEveryError(t *testing.T) {
	b := DefaultBatchConfig(1)
	b.Workers = 0
	b.Bounds = []PeerBounds{{0, 1}, {5, 3}}

	err := b.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.ErrorIs(t, err, limits.ErrNodeCount)
	assert.ErrorIs(t, err, limits.ErrWorkers)
	assert.ErrorIs(t, err, limits.ErrPeerBounds)

	b = DefaultBatchConfig(10)
	b.Strategies = nil
	b.Bounds = nil
	assert.Error(t, b.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Nodes: 20, MinPeers: 2, MaxPeers: 4, IDBits: 8, BucketSize: 16, Alpha: 3}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"TooFewNodes", func(c *Config) { c.Nodes = 1 }, limits.ErrNodeCount},
		{"NodesExceedSpace", func(c *Config) { c.IDBits = 4 }, limits.ErrNodeCount},
		{"MinAboveMax", func(c *Config) { c.MinPeers = 5 }, limits.ErrPeerBounds},
		{"IDBits", func(c *Config) { c.IDBits = 1024 }, limits.ErrIDBits},
		{"BucketSize", func(c *Config) { c.BucketSize = 0 }, limits.ErrBucketSize},
		{"Alpha", func(c *Config) { c.Alpha = 99 }, limits.ErrAlpha},
		{"Strategy", func(c *Config) { c.Strategy = "ring" }, strategy.ErrUnknownStrategy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), tt.target)
		})
	}
}

func TestParseBatchConfig(t *testing.T) {
	doc := []byte(`
batch:
  nodes: 50
  strategies: [kademlia, equal-fingers]
  bounds:
    - {min_peers: 3, max_peers: 6}
  workers: 2
`)
	b, err := ParseBatchConfig(doc)
	require.NoError(t, err)
	require.NoError(t, b.Validate())

	assert.Equal(t, 50, b.Nodes)
	assert.Equal(t, []string{"kademlia", "equal-fingers"}, b.Strategies)
	assert.Equal(t, []PeerBounds{{3, 6}}, b.Bounds)
	assert.Equal(t, 2, b.Workers)
	assert.Equal(t, limits.DefaultIDBits, b.IDBits, "omitted fields keep their defaults")
	assert.Equal(t, int64(DefaultSeed), b.Seed)
	assert.Len(t, b.Runs(), 2)

	_, err = ParseBatchConfig([]byte("batch:\n  nodez: 5\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestLoadBatchConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  nodes: 12\n  seed: 7\n"), 0o600))

	b, err := LoadBatchConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, b.Nodes)
	assert.Equal(t, int64(7), b.Seed)

	_, err = LoadBatchConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package simulation

import (
	"fmt"
	"os"

	"github.com/opd-ai/kadtopo/interfaces"
	"github.com/opd-ai/kadtopo/limits"
	"github.com/opd-ai/kadtopo/strategy"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// DefaultSeed seeds every run unless configured otherwise.
const DefaultSeed = 42

// Config describes a single simulation run.
type Config struct {
	Nodes           int    `yaml:"nodes"`
	MinPeers        int    `yaml:"min_peers"`
	MaxPeers        int    `yaml:"max_peers"`
	Strategy        string `yaml:"strategy"`
	LegacyTolerance bool   `yaml:"legacy_tolerance"`
	IDBits          int    `yaml:"id_bits"`
	Seed            int64  `yaml:"seed"`

	BucketSize          int `yaml:"bucket_size"`
	Alpha               int `yaml:"alpha"`
	MaxMessagesPerDrain int `yaml:"max_messages_per_drain"`
}

// RoutingConfig returns the substrate parameters of the run.
func (c *Config) RoutingConfig() *interfaces.RoutingConfig {
	return &interfaces.RoutingConfig{
		BucketSize:          c.BucketSize,
		Alpha:               c.Alpha,
		MaxMessagesPerDrain: c.MaxMessagesPerDrain,
	}
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	err := multierr.Combine(
		limits.ValidateNodeCount(c.Nodes),
		limits.ValidatePeerBounds(c.MinPeers, c.MaxPeers),
		limits.ValidateIDBits(c.IDBits),
		c.RoutingConfig().Validate(),
	)
	if c.Strategy != "" {
		_, kindErr := strategy.ParseKind(c.Strategy)
		err = multierr.Append(err, kindErr)
	}
	if c.IDBits >= limits.MinIDBits && c.IDBits < 31 && c.Nodes > 1<<uint(c.IDBits) {
		err = multierr.Append(err, fmt.Errorf("%w: %d nodes do not fit a %d-bit id space",
			limits.ErrNodeCount, c.Nodes, c.IDBits))
	}
	return err
}

// PeerBounds is one (min_peers, max_peers) setting of a batch.
type PeerBounds struct {
	MinPeers int `yaml:"min_peers"`
	MaxPeers int `yaml:"max_peers"`
}

// BatchConfig describes a set of runs: every strategy against every peer
// bound setting.
type BatchConfig struct {
	Nodes           int          `yaml:"nodes"`
	Strategies      []string     `yaml:"strategies"`
	Bounds          []PeerBounds `yaml:"bounds"`
	LegacyTolerance bool         `yaml:"legacy_tolerance"`
	IDBits          int          `yaml:"id_bits"`
	Seed            int64        `yaml:"seed"`
	Workers         int          `yaml:"workers"`

	BucketSize          int `yaml:"bucket_size"`
	Alpha               int `yaml:"alpha"`
	MaxMessagesPerDrain int `yaml:"max_messages_per_drain"`
}

// DefaultBatchConfig returns the reference batch: random-closest with
// min_peers 5, 7 and 9 and max_peers twice that.
func DefaultBatchConfig(nodes int) *BatchConfig {
	routing := interfaces.DefaultRoutingConfig()
	return &BatchConfig{
		Nodes:      nodes,
		Strategies: []string{string(strategy.KindRandomClosest)},
		Bounds: []PeerBounds{
			{MinPeers: 5, MaxPeers: 10},
			{MinPeers: 7, MaxPeers: 14},
			{MinPeers: 9, MaxPeers: 18},
		},
		IDBits:              limits.DefaultIDBits,
		Seed:                DefaultSeed,
		Workers:             1,
		BucketSize:          routing.BucketSize,
		Alpha:               routing.Alpha,
		MaxMessagesPerDrain: routing.MaxMessagesPerDrain,
	}
}

// LoadBatchConfig reads a YAML batch file. Settings live under a top-level
// "batch" key; fields the file leaves out keep their defaults.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	yamlBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading batch config file: %w", err)
	}
	return ParseBatchConfig(yamlBytes)
}

// ParseBatchConfig decodes a YAML batch document.
func ParseBatchConfig(yamlBytes []byte) (*BatchConfig, error) {
	nested := struct {
		Batch BatchConfig `yaml:"batch"`
	}{Batch: *DefaultBatchConfig(0)}
	if err := yaml.UnmarshalStrict(yamlBytes, &nested); err != nil {
		return nil, fmt.Errorf("error deserialising batch config file: %w", err)
	}
	return &nested.Batch, nil
}

// Validate reports every invalid setting of the batch and of the runs it
// expands to.
func (b *BatchConfig) Validate() error {
	var err error
	if len(b.Strategies) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: no strategies configured", strategy.ErrUnknownStrategy))
	}
	if len(b.Bounds) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: no peer bounds configured", limits.ErrPeerBounds))
	}
	err = multierr.Append(err, limits.ValidateWorkers(b.Workers))

	seen := make(map[string]bool)
	for _, c := range b.Runs() {
		for _, e := range multierr.Errors(c.Validate()) {
			// the same node count or id width error repeats for every run
			if !seen[e.Error()] {
				seen[e.Error()] = true
				err = multierr.Append(err, e)
			}
		}
	}
	return err
}

// Runs expands the batch in execution order: bounds in the outer loop,
// strategies in the inner one.
func (b *BatchConfig) Runs() []Config {
	runs := make([]Config, 0, len(b.Bounds)*len(b.Strategies))
	for _, bounds := range b.Bounds {
		for _, kind := range b.Strategies {
			runs = append(runs, Config{
				Nodes:               b.Nodes,
				MinPeers:            bounds.MinPeers,
				MaxPeers:            bounds.MaxPeers,
				Strategy:            kind,
				LegacyTolerance:     b.LegacyTolerance,
				IDBits:              b.IDBits,
				Seed:                b.Seed,
				BucketSize:          b.BucketSize,
				Alpha:               b.Alpha,
				MaxMessagesPerDrain: b.MaxMessagesPerDrain,
			})
		}
	}
	return runs
}

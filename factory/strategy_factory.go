package factory

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/strategy"
	"github.com/sirupsen/logrus"
)

// Environment variables read by NewStrategyFactory.
const (
	EnvStrategy              = "KADTOPO_STRATEGY"
	EnvLegacyHybridTolerance = "KADTOPO_LEGACY_HYBRID_TOLERANCE"
	DefaultStrategyKind      = strategy.KindRandomClosest
)

// StrategyConfig selects and tunes a strategy.
type StrategyConfig struct {
	Kind            strategy.Kind
	LegacyTolerance bool
}

// StrategyFactory creates strategies based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type StrategyFactory struct {
	mu            sync.RWMutex
	defaultConfig *StrategyConfig
}

// ConfigOption is a functional option for customizing a single strategy build.
type ConfigOption func(*StrategyConfig)

// NewStrategyFactory creates a new factory with default configuration
func NewStrategyFactory() *StrategyFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &StrategyFactory{
		defaultConfig: defaultConfig,
	}
}

// createDefaultConfig returns the batch defaults: random-closest with the
// distance-based hybrid tolerance.
func createDefaultConfig() *StrategyConfig {
	return &StrategyConfig{
		Kind:            DefaultStrategyKind,
		LegacyTolerance: false,
	}
}

// applyEnvironmentOverrides updates configuration based on KADTOPO_* environment variables.
func applyEnvironmentOverrides(config *StrategyConfig) {
	parseStrategySetting(config)
	parseLegacyToleranceSetting(config)
}

// parseStrategySetting updates Kind from KADTOPO_STRATEGY. Unknown kinds are
// logged and leave the config untouched.
func parseStrategySetting(config *StrategyConfig) {
	if kindStr := os.Getenv(EnvStrategy); kindStr != "" {
		kind, err := strategy.ParseKind(kindStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseStrategySetting",
				"env_var":     EnvStrategy,
				"value":       kindStr,
				"error":       err.Error(),
				"using_value": config.Kind,
			}).Warn("Failed to parse KADTOPO_STRATEGY environment variable, using default")
			return
		}
		config.Kind = kind
	}
}

// parseLegacyToleranceSetting updates LegacyTolerance from
// KADTOPO_LEGACY_HYBRID_TOLERANCE.
func parseLegacyToleranceSetting(config *StrategyConfig) {
	if legacyStr := os.Getenv(EnvLegacyHybridTolerance); legacyStr != "" {
		legacy, err := strconv.ParseBool(legacyStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseLegacyToleranceSetting",
				"env_var":     EnvLegacyHybridTolerance,
				"value":       legacyStr,
				"error":       err.Error(),
				"using_value": config.LegacyTolerance,
			}).Warn("Failed to parse KADTOPO_LEGACY_HYBRID_TOLERANCE environment variable, using default")
			return
		}
		config.LegacyTolerance = legacy
	}
}

func logConfigurationInfo(config *StrategyConfig) {
	logrus.WithFields(logrus.Fields{
		"function":         "NewStrategyFactory",
		"strategy":         config.Kind,
		"legacy_tolerance": config.LegacyTolerance,
	}).Debug("Created strategy factory with configuration")
}

// CreateStrategy creates a strategy from the factory's default configuration
func (f *StrategyFactory) CreateStrategy(space identity.Space, rng *rand.Rand) (strategy.Strategy, error) {
	return f.CreateStrategyWithConfig(space, rng, f.GetCurrentConfig())
}

// CreateStrategyWithConfig creates a strategy with a custom configuration.
// A nil config falls back to the factory default.
func (f *StrategyFactory) CreateStrategyWithConfig(space identity.Space, rng *rand.Rand, config *StrategyConfig) (strategy.Strategy, error) {
	if config == nil {
		config = f.GetCurrentConfig()
	}

	s, err := strategy.New(config.Kind, space, rng, strategy.Options{LegacyTolerance: config.LegacyTolerance})
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":         "CreateStrategyWithConfig",
		"strategy":         s.Name(),
		"legacy_tolerance": config.LegacyTolerance,
		"id_bits":          space.Bits(),
	}).Debug("Created connection strategy")

	return s, nil
}

// WithKind selects the strategy kind. An empty kind keeps the default.
func WithKind(kind strategy.Kind) ConfigOption {
	return func(c *StrategyConfig) {
		if kind != "" {
			c.Kind = kind
		}
	}
}

// WithLegacyTolerance toggles the legacy hybrid tolerance.
func WithLegacyTolerance(enabled bool) ConfigOption {
	return func(c *StrategyConfig) {
		c.LegacyTolerance = enabled
	}
}

// CreateStrategyWithOptions applies opts to a copy of the default
// configuration and builds the resulting strategy.
func (f *StrategyFactory) CreateStrategyWithOptions(space identity.Space, rng *rand.Rand, opts ...ConfigOption) (strategy.Strategy, error) {
	config := f.GetCurrentConfig()
	for _, opt := range opts {
		opt(config)
	}
	return f.CreateStrategyWithConfig(space, rng, config)
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *StrategyFactory) GetCurrentConfig() *StrategyConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return &StrategyConfig{
		Kind:            f.defaultConfig.Kind,
		LegacyTolerance: f.defaultConfig.LegacyTolerance,
	}
}

// UpdateConfig updates the factory's default configuration
func (f *StrategyFactory) UpdateConfig(config *StrategyConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if _, err := strategy.ParseKind(string(config.Kind)); err != nil {
		return fmt.Errorf("invalid strategy config: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":     "UpdateConfig",
		"old_strategy": f.defaultConfig.Kind,
		"new_strategy": config.Kind,
	}).Info("Updating factory configuration")

	f.defaultConfig = &StrategyConfig{
		Kind:            config.Kind,
		LegacyTolerance: config.LegacyTolerance,
	}
	return nil
}

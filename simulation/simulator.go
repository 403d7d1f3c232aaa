package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/opd-ai/kadtopo/dht"
	"github.com/opd-ai/kadtopo/factory"
	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/peering"
	"github.com/opd-ai/kadtopo/strategy"
	"github.com/opd-ai/kadtopo/topology"
	"github.com/sirupsen/logrus"
)

// MaxConnectsPerRound caps every node to one new connection per round.
const MaxConnectsPerRound = 1

// Run phases, in execution order.
const (
	PhaseBootstrap    = "bootstrap"
	PhaseSetupTargets = "setup_targets"
	PhaseFindTargets  = "find_targets"
	PhaseConnectPeers = "connect_peers"
	PhaseAnalyze      = "analyze"
)

// StepStatus represents the status of a run or one of its phases.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
)

// String returns a string representation of the status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "PENDING"
	case StepRunning:
		return "RUNNING"
	case StepPassed:
		return "PASSED"
	case StepFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// StepResult represents the result of one run phase.
type StepResult struct {
	Phase        string
	Status       StepStatus
	Duration     time.Duration
	ErrorMessage string
}

// Result holds the outcome of a run.
type Result struct {
	RunID          string
	Config         Config
	Strategy       string
	Status         StepStatus
	Rounds         int
	Connections    int
	Lookups        int
	LookupMessages int
	Duration       time.Duration
	Steps          []StepResult
	Report         *topology.Report
	Network        *peering.Network
}

// Simulator executes a single run.
type Simulator struct {
	config  Config
	clock   clock.Clock
	metrics *Metrics
	factory *factory.StrategyFactory
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithClock sets the clock used for timings.
func WithClock(c clock.Clock) Option {
	return func(s *Simulator) {
		s.clock = c
	}
}

// WithMetrics records run statistics in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Simulator) {
		s.metrics = m
	}
}

// WithFactory sets the strategy factory.
func WithFactory(f *factory.StrategyFactory) Option {
	return func(s *Simulator) {
		s.factory = f
	}
}

// NewSimulator validates config and creates a simulator for it.
func NewSimulator(config Config, opts ...Option) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	s := &Simulator{
		config: config,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = factory.NewStrategyFactory()
	}
	return s, nil
}

// run carries the state that flows between phases.
type run struct {
	space    identity.Space
	rng      *rand.Rand
	pop      *dht.Population
	network  *peering.Network
	strategy strategy.Strategy
}

// Run executes bootstrap, target setup, target lookup, negotiation to a
// fixed point and analysis. ctx is checked between phases and rounds.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := s.clock.Now()

	kind := s.config.Strategy
	if kind == "" {
		kind = string(s.factory.GetCurrentConfig().Kind)
	}

	result := &Result{
		RunID:    uuid.New().String(),
		Config:   s.config,
		Strategy: kind,
		Status:   StepRunning,
		Steps:    make([]StepResult, 0, 5),
	}
	log := logrus.WithFields(logrus.Fields{
		"run_id":    result.RunID,
		"strategy":  kind,
		"nodes":     s.config.Nodes,
		"min_peers": s.config.MinPeers,
		"max_peers": s.config.MaxPeers,
	})
	log.WithField("function", "Simulator.Run").Info("Running simulation")

	err := s.executeWorkflow(ctx, result, log)

	result.Duration = s.clock.Since(start)
	if err != nil {
		result.Status = StepFailed
	} else {
		result.Status = StepPassed
	}
	s.metrics.observeRun(kind, result.Status, result.Duration.Seconds())

	s.logSummary(log, result, err)
	return result, err
}

func (s *Simulator) executeWorkflow(ctx context.Context, result *Result, log *logrus.Entry) error {
	st := &run{}

	steps := []struct {
		phase     string
		operation func() error
	}{
		{PhaseBootstrap, func() error { return s.bootstrap(st) }},
		{PhaseSetupTargets, func() error { return s.setupTargets(st, result.Strategy) }},
		{PhaseFindTargets, func() error { return s.findTargets(ctx, st, result) }},
		{PhaseConnectPeers, func() error { return s.connectPeers(ctx, st, result) }},
		{PhaseAnalyze, func() error { return s.analyze(st, result, log) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.executeWithStepTracking(result, log, step.phase, step.operation); err != nil {
			return fmt.Errorf("%s: %w", step.phase, err)
		}
	}
	result.Network = st.network
	return nil
}

// executeWithStepTracking executes a phase with result tracking.
func (s *Simulator) executeWithStepTracking(result *Result, log *logrus.Entry, phase string, operation func() error) error {
	stepStart := s.clock.Now()

	log.WithFields(logrus.Fields{
		"function": "executeWithStepTracking",
		"phase":    phase,
	}).Debug("Executing phase")

	step := StepResult{Phase: phase, Status: StepRunning}
	err := operation()
	step.Duration = s.clock.Since(stepStart)

	if err != nil {
		step.Status = StepFailed
		step.ErrorMessage = err.Error()
		log.WithFields(logrus.Fields{
			"function": "executeWithStepTracking",
			"phase":    phase,
			"error":    err.Error(),
		}).Error("Phase failed")
	} else {
		step.Status = StepPassed
		log.WithFields(logrus.Fields{
			"function": "executeWithStepTracking",
			"phase":    phase,
			"duration": step.Duration,
		}).Debug("Phase completed")
	}

	result.Steps = append(result.Steps, step)
	return err
}

func (s *Simulator) bootstrap(st *run) error {
	space, err := identity.NewSpace(s.config.IDBits)
	if err != nil {
		return err
	}
	st.space = space
	st.rng = rand.New(rand.NewSource(s.config.Seed))

	pop, err := dht.Spawn(space, st.rng, s.config.Nodes, s.config.RoutingConfig())
	if err != nil {
		return fmt.Errorf("failed to bootstrap discovery protocols: %w", err)
	}
	st.pop = pop

	st.network = peering.NewNetwork(pop)
	for _, p := range pop.Protocols {
		if err := st.network.Add(peering.NewNode(p, s.config.MinPeers, s.config.MaxPeers)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) setupTargets(st *run, kind string) error {
	strat, err := s.factory.CreateStrategyWithOptions(st.space, st.rng,
		factory.WithKind(strategy.Kind(kind)),
		factory.WithLegacyTolerance(s.config.LegacyTolerance))
	if err != nil {
		return err
	}
	st.strategy = strat
	st.network.SetupTargets(strat)
	return nil
}

func (s *Simulator) findTargets(ctx context.Context, st *run, result *Result) error {
	before := st.pop.Wire.Stats().Delivered

	lookups, err := st.network.FindTargets(ctx)
	result.Lookups = lookups
	result.LookupMessages = int(st.pop.Wire.Stats().Delivered - before)
	s.metrics.observeLookups(result.Strategy, result.LookupMessages)
	return err
}

func (s *Simulator) connectPeers(ctx context.Context, st *run, result *Result) error {
	observer := func(round, connections int) {
		s.metrics.observeRound(result.Strategy, connections)
	}

	rounds, connections, err := st.network.Converge(ctx, MaxConnectsPerRound, observer)
	result.Rounds = rounds
	result.Connections = connections
	if err != nil {
		return err
	}

	if verr := st.network.Validate(); verr != nil {
		panic(fmt.Errorf("%w: %v", peering.ErrInvariant, verr))
	}
	return nil
}

func (s *Simulator) analyze(st *run, result *Result, log *logrus.Entry) error {
	nodes := st.network.Nodes()
	peers := make([]topology.Peer, len(nodes))
	for i, n := range nodes {
		peers[i] = n
	}

	result.Report = topology.Analyze(peers, st.space)
	if result.Report.Failed() {
		log.WithFields(logrus.Fields{
			"function": "analyze",
			"error":    result.Report.Err().Error(),
		}).Warn("Some topology metrics could not be computed")
	}
	return nil
}

func (s *Simulator) logSummary(log *logrus.Entry, result *Result, err error) {
	fields := logrus.Fields{
		"function":    "Simulator.Run",
		"status":      result.Status.String(),
		"rounds":      result.Rounds,
		"connections": result.Connections,
		"lookups":     result.Lookups,
		"duration":    result.Duration,
	}
	if err != nil {
		fields["error"] = err.Error()
		log.WithFields(fields).Error("Simulation failed")
		return
	}
	log.WithFields(fields).Info("Simulation completed")
}

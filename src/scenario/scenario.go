// Package scenario loads a run's agent population and market parameters
// from a YAML file, the declarative alternative to passing every count and
// timestamp as a CLI flag.
package scenario

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulation run: the symbols the exchange trades,
// the market session bounds, and how many of each agent type to spawn.
type Scenario struct {
	Seed  int64    `yaml:"seed"`
	Symbols []string `yaml:"symbols"`

	// MktOpen and MktClose bound the exchange's trading session, which may
	// be narrower than [start_time_ns, stop_time_ns] to leave room for
	// agent warm-up and end-of-run bookkeeping. Each is either a bare
	// nanosecond offset ("34200000000000") or an "HH:MM:SS" clock time
	// interpreted as nanoseconds since midnight.
	MktOpen  string `yaml:"mkt_open"`
	MktClose string `yaml:"mkt_close"`

	StartTime int64 `yaml:"start_time_ns"`
	StopTime  int64 `yaml:"stop_time_ns"`

	DefaultComputationDelay int64 `yaml:"default_computation_delay_ns"`
	DefaultLatency          int64 `yaml:"default_latency_ns"`

	PipelineDelay int64 `yaml:"pipeline_delay_ns"`
	StreamHistory int   `yaml:"stream_history"`
	BookLogging   bool  `yaml:"book_logging"`
	BookLogDepth  int   `yaml:"book_log_depth"`
	LogOrders     bool  `yaml:"log_orders"`

	OracleFiles map[string]string `yaml:"oracle_files"` // symbol -> CSV path

	NoiseAgents NoiseAgentsSpec `yaml:"noise_agents"`
}

// NoiseAgentsSpec configures the population of example noise traders.
type NoiseAgentsSpec struct {
	Count        int   `yaml:"count"`
	StartingCash int64 `yaml:"starting_cash"`
	// WakeupSpreadNs bounds how widely each noise agent's first wakeup is
	// jittered after StartTime, so they don't all fire simultaneously.
	WakeupSpreadNs int64 `yaml:"wakeup_spread_ns"`
}

// Load parses a YAML scenario file from path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	return &s, nil
}

// Validate reports whether the scenario has the minimum fields needed to
// construct a run.
func (s *Scenario) Validate() error {
	if len(s.Symbols) == 0 {
		return fmt.Errorf("scenario: at least one symbol is required")
	}
	if s.StopTime <= s.StartTime {
		return fmt.Errorf("scenario: stop_time_ns must be after start_time_ns")
	}
	if s.NoiseAgents.Count < 0 {
		return fmt.Errorf("scenario: noise_agents.count must be non-negative")
	}
	if _, err := s.MarketOpenNanos(); err != nil {
		return err
	}
	if _, err := s.MarketCloseNanos(); err != nil {
		return err
	}
	return nil
}

// MarketOpenNanos resolves MktOpen, defaulting to StartTime if unset.
func (s *Scenario) MarketOpenNanos() (int64, error) {
	if s.MktOpen == "" {
		return s.StartTime, nil
	}
	return parseSessionTime(s.MktOpen)
}

// MarketCloseNanos resolves MktClose, defaulting to StopTime if unset.
func (s *Scenario) MarketCloseNanos() (int64, error) {
	if s.MktClose == "" {
		return s.StopTime, nil
	}
	return parseSessionTime(s.MktClose)
}

// parseSessionTime accepts either a bare nanosecond integer or an
// "HH:MM:SS" clock time, returning nanoseconds since midnight for the
// latter.
func parseSessionTime(raw string) (int64, error) {
	if ns, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ns, nil
	}
	t, err := time.Parse("15:04:05", raw)
	if err != nil {
		return 0, fmt.Errorf("scenario: %q is neither a nanosecond offset nor an HH:MM:SS clock time", raw)
	}
	sinceMidnight := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	return int64(sinceMidnight), nil
}

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rust-practice/conn-mon/internal/domain"
)

// Config is the operator-supplied configuration. Duration scalars are whole
// seconds; everything except the target list has a default, so a minimal
// config needs only `targets`.
type Config struct {
	Targets []domain.Target `yaml:"targets"`

	// DefaultTimeout is how long ping waits for a reply unless a target
	// overrides it.
	DefaultTimeout domain.Seconds `yaml:"default_timeout"`
	// PingInterval is the pause between probes of the same target.
	PingInterval domain.Seconds `yaml:"ping_interval"`
	// MinTimeBetweenWrites paces each target's disk flushes.
	MinTimeBetweenWrites domain.Seconds `yaml:"min_time_between_writes"`
	// ReminderInterval spaces repeat notifications for an ongoing outage.
	ReminderInterval domain.Seconds `yaml:"reminder_interval"`
	// MinTimeToFirstAlert delays the first down notification to ride out
	// transient blips. 0 alerts on the first failed probe.
	MinTimeToFirstAlert domain.Seconds `yaml:"min_time_to_first_alert"`

	// HeartbeatTime is a wall-clock "15:04" or "15:04:05" at which a daily
	// still-alive notification goes out. Empty disables the heartbeat.
	HeartbeatTime string `yaml:"heartbeat_time"`

	EventsDir string `yaml:"events_dir"`
	LogDir    string `yaml:"log_dir"`
	// HTTPAddr is the bind address of the read-only status API. Empty
	// disables it.
	HTTPAddr string `yaml:"http_addr"`
}

// Load reads and validates the YAML config. Unknown fields are rejected to
// catch operator typos.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = 5
	}
	if c.PingInterval == 0 {
		c.PingInterval = 60
	}
	if c.MinTimeBetweenWrites == 0 {
		c.MinTimeBetweenWrites = 60
	}
	if c.ReminderInterval == 0 {
		c.ReminderInterval = 3600
	}
	// MinTimeToFirstAlert stays 0: alert on the first failed probe.
	if c.EventsDir == "" {
		c.EventsDir = "events"
	}
	if c.LogDir == "" {
		c.LogDir = "log"
	}
}

func (c *Config) validate() error {
	if len(c.Targets) == 0 {
		return errors.New("config has no targets")
	}
	seen := make(map[string]bool)
	for i, t := range c.Targets {
		if t.Host == "" {
			return fmt.Errorf("target %d has no host", i)
		}
		if t.Disabled {
			continue
		}
		name := t.Name()
		if seen[name] {
			return fmt.Errorf("duplicate target name %q: event log files would collide", name)
		}
		seen[name] = true
	}
	if c.HeartbeatTime != "" {
		if _, err := domain.ParseTimeOfDay(c.HeartbeatTime); err != nil {
			return fmt.Errorf("heartbeat_time: %w", err)
		}
	}
	return nil
}

// Enabled returns the targets that should be polled.
func (c *Config) Enabled() []domain.Target {
	out := make([]domain.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		if !t.Disabled {
			out = append(out, t)
		}
	}
	return out
}

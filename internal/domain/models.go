package domain

import "time"

// TargetID routes responses from pollers to the handler that owns the
// target. IDs are assigned sequentially at registration and never reused.
type TargetID int

// Seconds is a whole-second duration as it appears in the config file and
// on the ping command line.
type Seconds int

func (s Seconds) Duration() time.Duration { return time.Duration(s) * time.Second }

// Target is one host to monitor. Immutable after config load; each poller
// works on its own copy.
type Target struct {
	Host        string  `yaml:"host" json:"host"`
	DisplayName string  `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Timeout     Seconds `yaml:"timeout,omitempty" json:"timeout,omitempty"` // 0 = use global default
	Disabled    bool    `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// Name returns the user-facing name for the target, falling back to the
// host when no display name is configured.
func (t Target) Name() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Host
}

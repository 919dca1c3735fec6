package bno08x

import (
	"flag"
	"time"
)

// Config defines the timing and error policy of a Client.
type Config struct {
	// ReportInterval is the default interval requested when enabling a report.
	ReportInterval time.Duration
	// FeatureTimeout bounds the wait for a feature enable to be confirmed.
	FeatureTimeout time.Duration
	// CommandTimeout bounds the wait for a command response.
	CommandTimeout time.Duration
	// PacketTimeout bounds the wait for a single packet.
	PacketTimeout time.Duration
	// IDTimeout bounds the wait for the product ID response.
	IDTimeout time.Duration
	// ResetDelay is the wait after each soft reset packet.
	ResetDelay time.Duration
	// ResetPulse is the duration of each level of the hardware reset sequence.
	ResetPulse time.Duration
	// PollInterval is the pause between polls while waiting.
	PollInterval time.Duration
	// InitAttempts is the number of reset and identify attempts.
	InitAttempts int
	// MaxPacketsPerPoll limits packets processed per poll while enabling features.
	MaxPacketsPerPoll int
	// SoftTimeouts logs feature and calibration timeouts instead of returning them.
	SoftTimeouts bool
}

var defaultConfig = Config{
	ReportInterval:    50 * time.Millisecond,
	FeatureTimeout:    2 * time.Second,
	CommandTimeout:    2 * time.Second,
	PacketTimeout:     2 * time.Second,
	IDTimeout:         5 * time.Second,
	ResetDelay:        500 * time.Millisecond,
	ResetPulse:        10 * time.Millisecond,
	PollInterval:      time.Millisecond,
	InitAttempts:      3,
	MaxPacketsPerPoll: 10,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.ReportInterval, "report-interval", defaultConfig.ReportInterval, "Default sensor report interval.")
	flag.DurationVar(&defaultConfig.FeatureTimeout, "feature-timeout", defaultConfig.FeatureTimeout, "Timeout enabling a sensor report.")
	flag.DurationVar(&defaultConfig.CommandTimeout, "command-timeout", defaultConfig.CommandTimeout, "Timeout waiting for command responses.")
	flag.BoolVar(&defaultConfig.SoftTimeouts, "soft-timeouts", defaultConfig.SoftTimeouts, "Log feature and calibration timeouts instead of failing.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewClient creates a client using the config.
func (c *Config) NewClient(t Transport) *Client {
	cl := New(t)
	cl.Config = *c
	return cl
}

// Package env builds the runtime environment of the IMU programs:
// transport, driver, service and telemetry from flags, environment
// variables and an optional YAML file.
package env

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/imu.go/pkg/bno08x"
)

// Transport kinds.
const (
	TransportUART      = "uart"
	TransportI2C       = "i2c"
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
	TransportReplay    = "replay"
)

// Config is the complete configuration.
type Config struct {
	// ID names the IMU in telemetry topics, the machine ID by default.
	ID        string          `yaml:"id"`
	Transport TransportConfig `yaml:"transport"`
	Driver    DriverConfig    `yaml:"driver"`
	Features  []FeatureConfig `yaml:"features"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	// TraceFile captures all packets when set.
	TraceFile string `yaml:"trace"`
}

// TransportConfig selects how to reach the hub.
type TransportConfig struct {
	Kind string `yaml:"kind"`
	// Device is the serial port, the I2C bus number, host:port,
	// the websocket URL, or the trace file to replay.
	Device  string `yaml:"device"`
	Address uint16 `yaml:"address"`
	Baud    int    `yaml:"baud"`
	// ResetGPIO is the sysfs GPIO number of the reset line, negative for none.
	ResetGPIO int `yaml:"reset_gpio"`
}

// DriverConfig overrides driver timing.
type DriverConfig struct {
	ReportInterval time.Duration `yaml:"report_interval"`
	FeatureTimeout time.Duration `yaml:"feature_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	SoftTimeouts   bool          `yaml:"soft_timeouts"`
}

// FeatureConfig is a report to enable.
type FeatureConfig struct {
	Report   string        `yaml:"report"`
	Interval time.Duration `yaml:"interval"`
}

// MQTTConfig configures telemetry.
type MQTTConfig struct {
	// URL is like mqtt://host:port/topic-prefix, empty disables telemetry.
	URL    string        `yaml:"url"`
	Period time.Duration `yaml:"period"`
}

var defaultConfig = Config{
	Transport: TransportConfig{
		Kind:      TransportI2C,
		Device:    "1",
		Address:   0x4a,
		ResetGPIO: -1,
	},
	Features: []FeatureConfig{{Report: "rotation_vector"}},
	MQTT: MQTTConfig{
		Period: 100 * time.Millisecond,
	},
}

func init() {
	if val := os.Getenv("IMU_TRANSPORT"); val != "" {
		defaultConfig.Transport.Kind = val
	}
	if val := os.Getenv("IMU_DEVICE"); val != "" {
		defaultConfig.Transport.Device = val
	}
	if val := os.Getenv("IMU_MQTT_URL"); val != "" {
		defaultConfig.MQTT.URL = val
	}
	if val := os.Getenv("IMU_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "IMU ID in telemetry topics, machine ID if empty.")
	flag.StringVar(&defaultConfig.Transport.Kind, "transport", defaultConfig.Transport.Kind, "Transport: uart, i2c, tcp, websocket, replay.")
	flag.StringVar(&defaultConfig.Transport.Device, "device", defaultConfig.Transport.Device, "Serial port, I2C bus, address or trace file.")
	flag.IntVar(&defaultConfig.Transport.Baud, "baud", defaultConfig.Transport.Baud, "UART baud rate.")
	flag.IntVar(&defaultConfig.Transport.ResetGPIO, "reset-gpio", defaultConfig.Transport.ResetGPIO, "GPIO of the reset line, -1 for none.")
	flag.StringVar(&defaultConfig.MQTT.URL, "mqtt", defaultConfig.MQTT.URL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.TraceFile, "trace", defaultConfig.TraceFile, "Capture packets into a trace file.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Features = append([]FeatureConfig(nil), defaultConfig.Features...)
	return &conf
}

// Load reads a YAML file over the defaults, then validates and normalizes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse is Load on bytes.
func Parse(data []byte) (*Config, error) {
	conf := NewConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf.Normalize()
	return conf, nil
}

// Validate checks the configuration without changing it.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Transport.Kind) {
	case TransportUART, TransportI2C, TransportTCP, TransportWebSocket, TransportReplay:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport.Kind)
	}
	if c.Transport.Device == "" {
		return fmt.Errorf("transport %s requires a device", c.Transport.Kind)
	}
	if c.Transport.Address > 0x7f {
		return fmt.Errorf("invalid I2C address 0x%02x", c.Transport.Address)
	}
	if c.Transport.Baud < 0 {
		return fmt.Errorf("invalid baud rate %d", c.Transport.Baud)
	}
	if len(c.Features) == 0 {
		return fmt.Errorf("at least one feature is required")
	}
	for _, f := range c.Features {
		if _, ok := bno08x.ReportByName(f.Report); !ok {
			return fmt.Errorf("unknown report %q", f.Report)
		}
		if f.Interval < 0 {
			return fmt.Errorf("feature %s: negative interval", f.Report)
		}
	}
	if c.MQTT.Period < 0 {
		return fmt.Errorf("negative telemetry period")
	}
	return nil
}

// Normalize fills derived defaults, call after Validate.
func (c *Config) Normalize() {
	c.Transport.Kind = strings.ToLower(c.Transport.Kind)
	if c.Transport.Kind == TransportI2C && c.Transport.Address == 0 {
		c.Transport.Address = 0x4a
	}
	for i := range c.Features {
		c.Features[i].Report = strings.ToLower(strings.ReplaceAll(c.Features[i].Report, "-", "_"))
	}
	if c.MQTT.Period == 0 {
		c.MQTT.Period = 100 * time.Millisecond
	}
	if c.ID == "" {
		c.ID = MachineID()
	}
}

// DriverConfig returns the driver config with overrides applied.
func (c *Config) DriverConfig() *bno08x.Config {
	conf := bno08x.NewConfig()
	if d := c.Driver.ReportInterval; d > 0 {
		conf.ReportInterval = d
	}
	if d := c.Driver.FeatureTimeout; d > 0 {
		conf.FeatureTimeout = d
	}
	if d := c.Driver.CommandTimeout; d > 0 {
		conf.CommandTimeout = d
	}
	conf.SoftTimeouts = conf.SoftTimeouts || c.Driver.SoftTimeouts
	return conf
}

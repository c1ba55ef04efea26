package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// NumInputs is the number of analog inputs the bridge handles.
const NumInputs = 3

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	MIDI     MIDIConfig     `yaml:"midi"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the pot reader MCU.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig contains the pipeline sampling parameters.
type SamplingConfig struct {
	Period    time.Duration `yaml:"period"`     // Tick interval
	Alpha     float64       `yaml:"alpha"`      // Smoothing factor (0-1], lower = more smoothing
	RawMax    int           `yaml:"raw_max"`    // Full-scale raw reading (12-bit ADC = 4095)
	OutputMax int           `yaml:"output_max"` // Full-scale output value (7-bit MIDI data = 127)
}

// MIDIConfig contains MIDI output configuration.
type MIDIConfig struct {
	Port        string  `yaml:"port"`        // Out port name substring ("" = first available)
	Channel     uint8   `yaml:"channel"`     // MIDI channel 0-15
	Controllers []uint8 `yaml:"controllers"` // CC number per input
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	NoiseLevel  float64       `yaml:"noise_level"`  // Noise amplitude in raw ADC counts
	SweepPeriod time.Duration `yaml:"sweep_period"` // Period of the simulated pot sweep
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Sampling: SamplingConfig{
			Period:    10 * time.Millisecond,
			Alpha:     0.25,
			RawMax:    4095,
			OutputMax: 127,
		},
		MIDI: MIDIConfig{
			Port:        "",
			Channel:     0,
			Controllers: []uint8{1, 2, 3},
		},
		Mock: MockConfig{
			NoiseLevel:  8,
			SweepPeriod: 10 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.Period == 0 {
		c.Sampling.Period = def.Sampling.Period
	}
	if c.Sampling.Alpha == 0 {
		c.Sampling.Alpha = def.Sampling.Alpha
	}
	if c.Sampling.RawMax == 0 {
		c.Sampling.RawMax = def.Sampling.RawMax
	}
	if c.Sampling.OutputMax == 0 {
		c.Sampling.OutputMax = def.Sampling.OutputMax
	}

	if len(c.MIDI.Controllers) == 0 {
		c.MIDI.Controllers = def.MIDI.Controllers
	}

	// No backfill for NoiseLevel: zero is a valid setting (a noise-free
	// mock), not a missing value. Absent keys keep the Default() value
	// the unmarshal started from.
	if c.Mock.SweepPeriod == 0 {
		c.Mock.SweepPeriod = def.Mock.SweepPeriod
	}
}

// validate checks the configuration for values outside their legal ranges.
func (c *Config) validate() error {
	if c.Sampling.Alpha <= 0 || c.Sampling.Alpha > 1 {
		return fmt.Errorf("sampling alpha must be in (0, 1], got %v", c.Sampling.Alpha)
	}
	if c.MIDI.Channel > 15 {
		return fmt.Errorf("midi channel must be 0-15, got %d", c.MIDI.Channel)
	}
	if len(c.MIDI.Controllers) != NumInputs {
		return fmt.Errorf("expected %d midi controllers, got %d", NumInputs, len(c.MIDI.Controllers))
	}
	for i, cc := range c.MIDI.Controllers {
		if cc > 119 {
			return fmt.Errorf("controller %d for input %d is not a valid CC number (0-119)", cc, i)
		}
	}
	if c.Mock.NoiseLevel < 0 {
		return fmt.Errorf("mock noise level must be non-negative, got %v", c.Mock.NoiseLevel)
	}
	return nil
}

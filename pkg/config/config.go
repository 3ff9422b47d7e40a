package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingCredentials is returned by Validate when the selected alert
// backend lacks its endpoint or credentials.
var ErrMissingCredentials = errors.New("config: missing alert credentials")

// Alert backends.
const (
	AlertNone = "none"
	AlertNtfy = "ntfy"
	AlertMail = "mail"
)

// Config represents the application configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Threshold ThresholdConfig `yaml:"threshold"`
	Alert     AlertConfig     `yaml:"alert"`
	Web       WebConfig       `yaml:"web"`
	Mock      MockConfig      `yaml:"mock"`
}

// DeviceConfig contains the I2C bus and ADS1115 settings.
type DeviceConfig struct {
	Bus      int     `yaml:"bus"`       // i2c-dev bus number (/dev/i2c-<bus>)
	Address  uint8   `yaml:"address"`   // 7-bit device address
	Mux      string  `yaml:"mux"`       // input pair, e.g. "ain0_ain1"
	Gain     float64 `yaml:"gain"`      // full-scale range in volts
	DataRate int     `yaml:"data_rate"` // samples per second
}

// SamplingConfig contains acquisition loop parameters.
type SamplingConfig struct {
	Interval time.Duration `yaml:"interval"` // delay between two cycles
	Backlog  int           `yaml:"backlog"`  // per-subscriber buffered samples
}

// ThresholdConfig contains the initial alert threshold.
type ThresholdConfig struct {
	Default int32 `yaml:"default"` // raw ADC counts
}

// AlertConfig selects and configures the alert backend.
type AlertConfig struct {
	Backend  string        `yaml:"backend"`  // "ntfy", "mail" or "none"
	Timeout  time.Duration `yaml:"timeout"`  // per-delivery timeout
	Cooldown time.Duration `yaml:"cooldown"` // minimum delay between two alerts (0 = none)
	Ntfy     NtfyConfig    `yaml:"ntfy"`
	Mail     MailConfig    `yaml:"mail"`
}

// NtfyConfig contains the push service endpoint. Credentials are usually
// given through NTFY_URL, NTFY_USER and NTFY_PASSWORD.
type NtfyConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// MailConfig contains the SMTP relay used by the mail backend.
type MailConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// WebConfig contains the HTTP server settings.
type WebConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// MockConfig contains mock sampler configuration. All values are raw counts.
type MockConfig struct {
	Seed      int64         `yaml:"seed"`      // 0 = seeded from the clock
	Bias      float64       `yaml:"bias"`      // center value
	Amplitude float64       `yaml:"amplitude"` // sine amplitude
	Period    time.Duration `yaml:"period"`    // sine period
	Noise     float64       `yaml:"noise"`     // uniform noise half-width
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Bus:      1,
			Address:  0x48, // i2cdetect -y 1 should print 48
			Mux:      "ain0_ain1",
			Gain:     4.096,
			DataRate: 128,
		},
		Sampling: SamplingConfig{
			Interval: 100 * time.Millisecond,
			Backlog:  16,
		},
		Threshold: ThresholdConfig{
			Default: 10000,
		},
		Alert: AlertConfig{
			Backend:  AlertNtfy,
			Timeout:  10 * time.Second,
			Cooldown: 0,
			Mail: MailConfig{
				Port: 587,
			},
		},
		Web: WebConfig{
			Addr:      ":3000",
			StaticDir: "static",
		},
		Mock: MockConfig{
			Seed:      0,
			Bias:      0,
			Amplitude: 0,
			Period:    time.Minute,
			Noise:     32768,
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist or fields are missing, it uses
// default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// File doesn't exist, keep defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ensureDefaults()
	cfg.applyEnv(os.LookupEnv)

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the selected alert backend can be used.
func (c *Config) Validate() error {
	switch c.Alert.Backend {
	case AlertNone:
		return nil
	case AlertNtfy:
		var missing []string
		if c.Alert.Ntfy.URL == "" {
			missing = append(missing, "NTFY_URL")
		}
		if c.Alert.Ntfy.User == "" {
			missing = append(missing, "NTFY_USER")
		}
		if c.Alert.Ntfy.Password == "" {
			missing = append(missing, "NTFY_PASSWORD")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %v must be set", ErrMissingCredentials, missing)
		}
		return nil
	case AlertMail:
		if c.Alert.Mail.Server == "" || c.Alert.Mail.User == "" || len(c.Alert.Mail.To) == 0 {
			return fmt.Errorf("%w: mail server, user and recipients must be set", ErrMissingCredentials)
		}
		return nil
	default:
		return fmt.Errorf("config: unknown alert backend %q", c.Alert.Backend)
	}
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Device.Address == 0 {
		c.Device.Address = def.Device.Address
	}
	if c.Device.Mux == "" {
		c.Device.Mux = def.Device.Mux
	}
	if c.Device.Gain == 0 {
		c.Device.Gain = def.Device.Gain
	}
	if c.Device.DataRate == 0 {
		c.Device.DataRate = def.Device.DataRate
	}

	if c.Sampling.Interval == 0 {
		c.Sampling.Interval = def.Sampling.Interval
	}
	if c.Sampling.Backlog <= 0 {
		c.Sampling.Backlog = def.Sampling.Backlog
	}

	if c.Alert.Backend == "" {
		c.Alert.Backend = def.Alert.Backend
	}
	if c.Alert.Timeout == 0 {
		c.Alert.Timeout = def.Alert.Timeout
	}
	if c.Alert.Mail.Port == 0 {
		c.Alert.Mail.Port = def.Alert.Mail.Port
	}
	if c.Alert.Mail.From == "" {
		c.Alert.Mail.From = c.Alert.Mail.User
	}

	if c.Web.Addr == "" {
		c.Web.Addr = def.Web.Addr
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}

// applyEnv overrides alert credentials from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("NTFY_URL"); ok {
		c.Alert.Ntfy.URL = v
	}
	if v, ok := lookup("NTFY_USER"); ok {
		c.Alert.Ntfy.User = v
	}
	if v, ok := lookup("NTFY_PASSWORD"); ok {
		c.Alert.Ntfy.Password = v
	}
	if v, ok := lookup("SMTP_PASSWORD"); ok {
		c.Alert.Mail.Password = v
	}
}

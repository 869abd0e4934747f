package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvAPIKey      = "APM_API_KEY"
	EnvBackendBase = "APM_BACKEND_BASE"
)

// LoadFile reads and parses the configuration from a YAML file.
//
// A .env file next to the working directory is loaded first, so secrets such
// as the API key can stay out of the settings file. Variables already set in
// the environment win over .env.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML, applies environment overrides and defaults. It does
// not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.Timeouts = LoadTimeouts()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Backend.APIKey = v
	}
	if v := os.Getenv(EnvBackendBase); v != "" {
		c.Backend.BaseURL = v
	}
}

func (c *Config) applyDefaults() {
	b := &c.Backend
	if base := strings.TrimRight(b.BaseURL, "/"); base != "" {
		setDefault(&b.LoginURL, base+DefaultLoginPath)
		setDefault(&b.LogoutURL, base+DefaultLogoutPath)
		setDefault(&b.OrderSearchURL, base+DefaultOrderSearchPath)
		setDefault(&b.ProductsURL, base+DefaultProductsPath)
	}
	setDefault(&b.ProductStatus, "Годен")

	d := &c.Device
	setDefault(&d.Transport, "rtu")
	setDefault(&d.Parity, "N")
	if d.BaudRate == 0 {
		d.BaudRate = 115200
	}
	if d.DataBits == 0 {
		d.DataBits = 8
	}
	if d.StopBits == 0 {
		d.StopBits = 1
	}
	if d.SlaveID == 0 {
		d.SlaveID = 1
	}

	r := &d.FactoryNumberRegister
	setDefault(&r.Name, "SensorNumber_int2")
	if r.Address == 0 {
		r.Address = 0x0120
	}
	if len(r.Widths) == 0 {
		r.Widths = []uint16{1, 2}
	}

	setDefault(&c.Metrics.Job, "apm")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Package config loads the console settings: backend endpoints, device
// transport, metrics and report destinations.
package config

import "github.com/imamik/apmconsole/internal/device"

// Default route paths, appended to backend.base_url when the individual URLs
// are not configured.
const (
	DefaultLoginPath       = "/api/v1/auth/login"
	DefaultLogoutPath      = "/api/v1/auth/logout"
	DefaultOrderSearchPath = "/api/v1/orders/search"
	DefaultProductsPath    = "/api/v1/products"
)

// DefaultPath is the settings file read when --config is not given.
const DefaultPath = "settings.yml"

// Config holds the application configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Device  DeviceConfig  `yaml:"device"`
	Metrics MetricsConfig `yaml:"metrics"`
	Report  ReportConfig  `yaml:"report"`

	// Timeouts come from the environment, not the file.
	Timeouts *Timeouts `yaml:"-"`
}

// BackendConfig holds the product database API settings.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	LoginURL       string `yaml:"login_url"`
	LogoutURL      string `yaml:"logout_url"`
	OrderSearchURL string `yaml:"order_search_url"`
	ProductsURL    string `yaml:"products_url"`
	APIKey         string `yaml:"api_key"`
	ProductStatus  string `yaml:"product_status"`
}

// DeviceConfig selects the register transport.
type DeviceConfig struct {
	Transport             string         `yaml:"transport"` // rtu, tcp or sim
	Address               string         `yaml:"address"`   // serial port or host:port
	BaudRate              int            `yaml:"baud_rate"`
	DataBits              int            `yaml:"data_bits"`
	Parity                string         `yaml:"parity"`
	StopBits              int            `yaml:"stop_bits"`
	SlaveID               int            `yaml:"slave_id"`
	FactoryNumberRegister RegisterConfig `yaml:"factory_number_register"`
}

// RegisterConfig locates a register in the device memory map.
type RegisterConfig struct {
	Name    string   `yaml:"name"`
	Address uint16   `yaml:"address"`
	Widths  []uint16 `yaml:"widths"`
}

// Register converts the settings into a device register.
func (r RegisterConfig) Register() device.Register {
	return device.Register{Name: r.Name, Address: r.Address, Widths: r.Widths}
}

// MetricsConfig points at an optional Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// ReportConfig sets where the shift report is written on exit.
type ReportConfig struct {
	Path string `yaml:"path"`
}

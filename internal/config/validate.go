package config

import (
	"errors"
	"fmt"
	"net/url"
)

var validTransports = map[string]bool{"rtu": true, "tcp": true, "sim": true}

var validParity = map[string]bool{"N": true, "E": true, "O": true}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	b := c.Backend
	for name, u := range map[string]string{
		"backend.login_url":        b.LoginURL,
		"backend.logout_url":       b.LogoutURL,
		"backend.order_search_url": b.OrderSearchURL,
		"backend.products_url":     b.ProductsURL,
	} {
		if err := validateURL(name, u); err != nil {
			errs = append(errs, err)
		}
	}
	if b.APIKey == "" {
		errs = append(errs, fmt.Errorf("backend.api_key is required (or set %s)", EnvAPIKey))
	}

	d := c.Device
	if !validTransports[d.Transport] {
		errs = append(errs, fmt.Errorf("device.transport %q must be one of rtu, tcp, sim", d.Transport))
	}
	if d.Transport != "sim" && d.Address == "" {
		errs = append(errs, errors.New("device.address is required"))
	}
	if d.Transport == "rtu" && !validParity[d.Parity] {
		errs = append(errs, fmt.Errorf("device.parity %q must be N, E or O", d.Parity))
	}
	if d.SlaveID < 1 || d.SlaveID > 247 {
		errs = append(errs, fmt.Errorf("device.slave_id %d must be within 1..247", d.SlaveID))
	}
	if err := d.FactoryNumberRegister.Register().ValidateFactoryNumber(); err != nil {
		errs = append(errs, fmt.Errorf("device.factory_number_register: %w", err))
	}

	if c.Metrics.PushgatewayURL != "" {
		if err := validateURL("metrics.pushgateway_url", c.Metrics.PushgatewayURL); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required (or set backend.base_url)", name)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q is not an http(s) URL", name, raw)
	}
	return nil
}

// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/apmconsole/internal/backend"
	"github.com/imamik/apmconsole/internal/config"
	"github.com/imamik/apmconsole/internal/device"
	"github.com/imamik/apmconsole/internal/logging"
	"github.com/imamik/apmconsole/internal/report"
	"github.com/imamik/apmconsole/internal/ui/console"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads and validates settings.
	loadConfigFile = config.LoadFile

	// newLogger builds the debug journal.
	newLogger = logging.New

	// openDevice connects to the register transport.
	openDevice = device.Open

	// newPrompter picks the operator input method.
	newPrompter = func(plain bool) console.Prompter {
		return console.NewPrompter(os.Stdin, os.Stdout, plain)
	}

	// stdout receives operator-facing output.
	stdout io.Writer = os.Stdout

	// writeReport writes the shift report.
	writeReport = report.WriteFile

	// now is the report timestamp source.
	now = time.Now
)

func deviceConfig(cfg *config.Config) device.Config {
	d := cfg.Device
	return device.Config{
		Transport: d.Transport,
		Address:   d.Address,
		BaudRate:  d.BaudRate,
		DataBits:  d.DataBits,
		Parity:    d.Parity,
		StopBits:  d.StopBits,
		SlaveID:   byte(d.SlaveID),
		Timeout:   cfg.Timeouts.Device,
	}
}

func factoryNumberRegister(cfg *config.Config) device.Register {
	return cfg.Device.FactoryNumberRegister.Register()
}

func newBackendClient(cfg *config.Config, log logr.Logger, observe backend.Observer) *backend.Client {
	b := cfg.Backend
	return backend.NewClient(
		backend.Endpoints{
			LoginURL:       b.LoginURL,
			LogoutURL:      b.LogoutURL,
			OrderSearchURL: b.OrderSearchURL,
			ProductsURL:    b.ProductsURL,
			APIKey:         b.APIKey,
		},
		backend.WithTimeout(cfg.Timeouts.Backend),
		backend.WithLogger(log.WithName("backend")),
		backend.WithObserver(observe),
		backend.WithProductStatus(b.ProductStatus),
		backend.WithRetry(max(cfg.Timeouts.RetryMaxAttempts-1, 0), cfg.Timeouts.RetryInitialDelay),
	)
}

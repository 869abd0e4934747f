package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/apmconsole/internal/logging"
	"github.com/imamik/apmconsole/internal/metrics"
	"github.com/imamik/apmconsole/internal/provisioning"
	"github.com/imamik/apmconsole/internal/ui/console"
)

// ConsoleOptions are the flags of the console command.
type ConsoleOptions struct {
	ConfigPath string
	ReportPath string
	Plain      bool
	Verbose    bool
	LogFile    string
}

// Console runs the interactive provisioning session.
//
// The device is opened before login so a missing cable is reported before
// the operator types credentials. On exit the shift report is written when a
// path is configured and at least one number was written.
func Console(ctx context.Context, opts ConsoleOptions) error {
	log, flush, err := newLogger(logging.Options{Verbose: opts.Verbose, File: opts.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = flush() }()

	cfg, err := loadConfigFile(opts.ConfigPath)
	if err != nil {
		return err
	}

	recorder := metrics.New(metrics.WithPushgateway(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job))
	client := newBackendClient(cfg, log, recorder.ObserveBackend)

	dev, err := openDevice(deviceConfig(cfg), log.WithName("device"))
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Error(err, "failed to close device")
		}
	}()

	con := console.New(stdout, opts.Plain)
	con.Title("APM factory number console")

	ctrl := provisioning.NewController(client, dev, con, newPrompter(opts.Plain),
		provisioning.WithRegister(factoryNumberRegister(cfg)),
		provisioning.WithMetrics(recorder),
		provisioning.WithLogger(log.WithName("session")),
		provisioning.WithDeviceTimeout(cfg.Timeouts.Device),
		provisioning.WithInvalidSelectionPause(cfg.Timeouts.InvalidSelectionPause),
		provisioning.WithMetricsTimeout(cfg.Timeouts.MetricsPush),
	)

	session := provisioning.NewSession()
	runErr := ctrl.Run(ctx, session)

	reportPath := opts.ReportPath
	if reportPath == "" {
		reportPath = cfg.Report.Path
	}
	if reportPath != "" && len(session.History) > 0 {
		if err := writeReport(reportPath, session.History, now()); err != nil {
			con.Warn("%v", err)
		} else {
			con.Info("shift report with %d numbers written to %s", len(session.History), reportPath)
		}
	}

	return runErr
}

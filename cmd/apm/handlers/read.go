package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/imamik/apmconsole/internal/factorynumber"
)

// Read prints the factory number stored on the device.
func Read(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}

	dev, err := openDevice(deviceConfig(cfg), logr.Discard())
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	defer dev.Close()

	rctx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Device)
	defer cancel()

	reg := factoryNumberRegister(cfg)
	values, err := dev.ReadRegister(rctx, reg)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", reg.Name, err)
	}
	words, err := factorynumber.WordsFromValues(values)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", reg.Name, err)
	}

	printWords(out, factorynumber.Decode(words), words)
	return nil
}

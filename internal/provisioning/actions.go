package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imamik/apmconsole/internal/backend"
	"github.com/imamik/apmconsole/internal/factorynumber"
	"github.com/imamik/apmconsole/internal/ui/console"
)

// Action is one menu entry.
type Action interface {
	// Name is a stable identifier used in metrics.
	Name() string

	// Title is shown in the menu.
	Title() string

	// Execute runs the action against the session.
	Execute(ctx context.Context, s *Session) error
}

// registry returns the menu in its fixed order.
func (c *Controller) registry() []Action {
	return []Action{
		createAndWrite{c},
		retryWrite{c},
		changeOrderNumber{c},
		changeOrderYear{c},
		changeDecimalNumber{c},
		readFactoryNumber{c},
		reauthenticate{c},
		showParameters{c},
		exit{c},
	}
}

type createAndWrite struct{ c *Controller }

func (createAndWrite) Name() string  { return "create" }
func (createAndWrite) Title() string { return "Create and write factory number" }

func (a createAndWrite) Execute(ctx context.Context, s *Session) error {
	return a.c.createAndWrite(ctx, s)
}

type retryWrite struct{ c *Controller }

func (retryWrite) Name() string  { return "retry" }
func (retryWrite) Title() string { return "Retry writing the last factory number" }

func (a retryWrite) Execute(ctx context.Context, s *Session) error {
	return a.c.retryWrite(ctx, s)
}

type changeOrderNumber struct{ c *Controller }

func (changeOrderNumber) Name() string  { return "order_number" }
func (changeOrderNumber) Title() string { return "Change order number" }

func (a changeOrderNumber) Execute(ctx context.Context, s *Session) error {
	number, err := a.c.prompter.Input(ctx, "Order number", validateOrderNumber)
	if err != nil {
		return err
	}
	s.SetOrderNumber(strings.TrimSpace(number))
	return nil
}

type changeOrderYear struct{ c *Controller }

func (changeOrderYear) Name() string  { return "order_year" }
func (changeOrderYear) Title() string { return "Change order year" }

func (a changeOrderYear) Execute(ctx context.Context, s *Session) error {
	year, err := a.c.prompter.Input(ctx, "Order year", validateYear)
	if err != nil {
		return err
	}
	s.SetOrderYear(strings.TrimSpace(year))
	return nil
}

type changeDecimalNumber struct{ c *Controller }

func (changeDecimalNumber) Name() string  { return "decimal_number" }
func (changeDecimalNumber) Title() string { return "Change decimal number" }

func (a changeDecimalNumber) Execute(ctx context.Context, s *Session) error {
	decimal, err := a.c.prompter.Input(ctx, "Decimal number", notEmpty("decimal number"))
	if err != nil {
		return err
	}
	s.DecimalNumber = strings.TrimSpace(decimal)
	return nil
}

type readFactoryNumber struct{ c *Controller }

func (readFactoryNumber) Name() string  { return "read" }
func (readFactoryNumber) Title() string { return "Read factory number from device" }

func (a readFactoryNumber) Execute(ctx context.Context, s *Session) error {
	fn, err := a.c.readBack(ctx)
	if err != nil {
		return err
	}
	a.c.console.Info("factory number on device: %s", fn)
	return nil
}

type reauthenticate struct{ c *Controller }

func (reauthenticate) Name() string  { return "login" }
func (reauthenticate) Title() string { return "Change operator" }

func (a reauthenticate) Execute(ctx context.Context, s *Session) error {
	a.c.logout(ctx, s)
	return a.c.login(ctx, s)
}

type showParameters struct{ c *Controller }

func (showParameters) Name() string  { return "parameters" }
func (showParameters) Title() string { return "Show parameters" }

func (a showParameters) Execute(_ context.Context, s *Session) error {
	pending, _ := s.Pending()
	a.c.console.Fields("Parameters", []console.Field{
		{Key: "Operator", Value: s.Identity.Username},
		{Key: "Login", Value: a.c.loginStatus(s)},
		{Key: "Order number", Value: s.OrderNumber},
		{Key: "Order year", Value: s.OrderYear},
		{Key: "Order id", Value: string(s.OrderID)},
		{Key: "Decimal number", Value: s.DecimalNumber},
		{Key: "Pending number", Value: pending},
		{Key: "Written", Value: strconv.Itoa(len(s.History))},
	})
	return nil
}

func (c *Controller) loginStatus(s *Session) string {
	if !s.Authenticated() {
		return "logged out"
	}
	info, err := backend.InspectToken(s.Identity.Token)
	if err != nil || info.ExpiresAt.IsZero() {
		return "active"
	}
	if info.Expired(c.now()) {
		return "expired at " + info.ExpiresAt.Local().Format(time.DateTime)
	}
	return "valid until " + info.ExpiresAt.Local().Format(time.DateTime)
}

type exit struct{ c *Controller }

func (exit) Name() string  { return "exit" }
func (exit) Title() string { return "Exit" }

func (a exit) Execute(ctx context.Context, s *Session) error {
	if pending, ok := s.Pending(); ok {
		a.c.console.Warn("factory number %s was issued but not written", pending)
	}
	a.c.logout(ctx, s)
	return ErrExit
}

func validateOrderNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("order number is required")
	}
	if _, err := strconv.ParseUint(s, 10, 63); err != nil {
		return errors.New("order number must contain digits only")
	}
	return nil
}

func validateYear(s string) error {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return errors.New("year must have four digits")
	}
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("year must have four digits")
	}
	return nil
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// readBack reads and decodes the factory number register.
func (c *Controller) readBack(ctx context.Context) (factorynumber.FactoryNumber, error) {
	dctx, cancel := c.deviceContext(ctx)
	defer cancel()

	values, err := c.device.ReadRegister(dctx, c.register)
	if err != nil {
		return factorynumber.FactoryNumber{}, fmt.Errorf("read %s: %w", c.register.Name, err)
	}
	words, err := factorynumber.WordsFromValues(values)
	if err != nil {
		return factorynumber.FactoryNumber{}, fmt.Errorf("read %s: %w", c.register.Name, err)
	}
	return factorynumber.Decode(words), nil
}

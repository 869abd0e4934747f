package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/apmconsole/internal/backend"
	"github.com/imamik/apmconsole/internal/device"
	"github.com/imamik/apmconsole/internal/order"
	"github.com/imamik/apmconsole/internal/ui/console"
)

// Backend is the product database as the session uses it.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	SearchOrders(ctx context.Context, token, number string) ([]order.Order, error)
	CreateProduct(ctx context.Context, token string, orderID order.ID, decimalNumber string) (string, error)
}

// Metrics receives provisioning outcomes. *metrics.Recorder implements it.
type Metrics interface {
	ObserveAction(action string, err error)
	FactoryNumberIssued()
	WriteResult(outcome string)
	Push(ctx context.Context) error
}

type noopMetrics struct{}

func (noopMetrics) ObserveAction(string, error) {}
func (noopMetrics) FactoryNumberIssued()        {}
func (noopMetrics) WriteResult(string)          {}
func (noopMetrics) Push(context.Context) error  { return nil }

// Controller presents the action menu and runs the selected actions against
// a session.
type Controller struct {
	backend  Backend
	device   device.RegisterIO
	register device.Register
	console  *console.Console
	prompter console.Prompter
	metrics  Metrics
	log      logr.Logger
	now      func() time.Time

	deviceTimeout  time.Duration
	invalidPause   time.Duration
	metricsTimeout time.Duration

	actions []Action
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegister overrides the factory number register.
func WithRegister(reg device.Register) Option {
	return func(c *Controller) { c.register = reg }
}

// WithMetrics records outcomes in m.
func WithMetrics(m Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLogger sets the debug logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock sets the time source for history records.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDeviceTimeout bounds each register read or write.
func WithDeviceTimeout(d time.Duration) Option {
	return func(c *Controller) { c.deviceTimeout = d }
}

// WithInvalidSelectionPause sets the pause after an invalid menu choice.
func WithInvalidSelectionPause(d time.Duration) Option {
	return func(c *Controller) { c.invalidPause = d }
}

// WithMetricsTimeout bounds each metrics push.
func WithMetricsTimeout(d time.Duration) Option {
	return func(c *Controller) { c.metricsTimeout = d }
}

// NewController wires a controller. The device stays owned by the caller.
func NewController(b Backend, dev device.RegisterIO, con *console.Console, prompter console.Prompter, opts ...Option) *Controller {
	c := &Controller{
		backend:        b,
		device:         dev,
		register:       device.FactoryNumberRegister,
		console:        con,
		prompter:       prompter,
		metrics:        noopMetrics{},
		log:            logr.Discard(),
		now:            time.Now,
		deviceTimeout:  3 * time.Second,
		invalidPause:   500 * time.Millisecond,
		metricsTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.actions = c.registry()
	return c
}

// Actions returns the menu in display order.
func (c *Controller) Actions() []Action {
	return c.actions
}

// Run logs the operator in, collects the order context and runs the menu
// until the operator exits. Aborting input ends the run without error.
func (c *Controller) Run(ctx context.Context, s *Session) error {
	err := c.Start(ctx, s)
	if err == nil {
		err = c.Loop(ctx, s)
	}
	if errors.Is(err, console.ErrAborted) {
		c.logout(ctx, s)
		return nil
	}
	return err
}

// Start performs the login handshake and asks for order number, decimal
// number and order year.
func (c *Controller) Start(ctx context.Context, s *Session) error {
	if err := c.login(ctx, s); err != nil {
		return err
	}
	for _, a := range []Action{changeOrderNumber{c}, changeDecimalNumber{c}, changeOrderYear{c}} {
		if err := a.Execute(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Loop shows the menu and dispatches actions until exit.
func (c *Controller) Loop(ctx context.Context, s *Session) error {
	titles := make([]string, len(c.actions))
	for i, a := range c.actions {
		titles[i] = a.Title()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx, err := c.prompter.Select(ctx, c.menuTitle(s), titles)
		switch {
		case errors.Is(err, console.ErrInvalidSelection):
			c.console.Warn("choose an action between 1 and %d", len(titles))
			c.pause(ctx)
			continue
		case err != nil:
			return err
		}

		if err := c.Dispatch(ctx, s, c.actions[idx]); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
	}
}

// Dispatch runs one action and reports its failure to the operator. Only
// exit, aborted input and a canceled context are returned; every other error
// leaves the session running.
func (c *Controller) Dispatch(ctx context.Context, s *Session, a Action) error {
	start := time.Now()
	err := a.Execute(ctx, s)
	if !errors.Is(err, ErrExit) {
		c.metrics.ObserveAction(a.Name(), err)
		c.push(ctx)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrExit):
		return err
	case errors.Is(err, console.ErrAborted):
		c.console.Warn("%s canceled", a.Title())
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	}

	c.log.V(1).Info("action failed", "action", a.Name(), "elapsed", time.Since(start), "error", err.Error())
	c.report(a, err)
	return nil
}

func (c *Controller) report(a Action, err error) {
	switch {
	case backend.IsConnectivity(err):
		c.console.Warn("cannot reach the server, check the network and try again: %v", err)
	case backend.IsAPIErrorKind(err, backend.Unauthorized):
		c.console.Warn("%v", &ActionError{Action: a.Title(), Err: err})
		c.console.Warn("the login has expired, choose %q", reauthenticate{c}.Title())
	case IsVerification(err):
		c.console.Error("%v", &ActionError{Action: a.Title(), Err: err})
		c.console.Warn("the issued number stays pending, choose %q", retryWrite{c}.Title())
	case device.IsProtocolError(err):
		c.console.Warn("%v", &ActionError{Action: a.Title(), Err: err})
		c.console.Warn("no valid answer from the device, check the cable and power")
	default:
		c.console.Warn("%v", &ActionError{Action: a.Title(), Err: err})
	}
}

// login asks for credentials until the backend accepts them.
func (c *Controller) login(ctx context.Context, s *Session) error {
	for {
		username, err := c.prompter.Input(ctx, "Username", notEmpty("username"))
		if err != nil {
			return err
		}
		password, err := c.prompter.Password(ctx, "Password")
		if err != nil {
			return err
		}

		token, err := c.backend.Login(ctx, username, password)
		switch {
		case err == nil:
			s.SetIdentity(username, token)
			c.console.Info("logged in as %s", username)
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case backend.IsConnectivity(err):
			c.console.Warn("cannot reach the server, check the network and try again: %v", err)
		case backend.IsAuth(err):
			c.console.Warn("login rejected: %v", err)
		default:
			c.console.Warn("login failed: %v", err)
		}
	}
}

// logout ends the backend session. Failures are only logged.
func (c *Controller) logout(ctx context.Context, s *Session) {
	if !s.Authenticated() {
		return
	}
	if err := c.backend.Logout(ctx, s.Identity.Token); err != nil {
		c.log.Info("logout failed", "error", err.Error())
	}
	s.ClearIdentity()
}

func (c *Controller) push(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, c.metricsTimeout)
	defer cancel()
	if err := c.metrics.Push(pctx); err != nil {
		c.log.V(1).Info("metrics push failed", "error", err.Error())
	}
}

func (c *Controller) pause(ctx context.Context) {
	if c.invalidPause <= 0 {
		return
	}
	t := time.NewTimer(c.invalidPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c *Controller) menuTitle(s *Session) string {
	title := fmt.Sprintf("Order %s (%s), decimal number %s", s.OrderNumber, s.OrderYear, s.DecimalNumber)
	if pending, ok := s.Pending(); ok {
		title += ", awaiting write of " + pending
	}
	return title
}

func (c *Controller) deviceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.deviceTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.deviceTimeout)
}

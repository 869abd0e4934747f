package provisioning

import (
	"context"
	"fmt"

	"github.com/imamik/apmconsole/internal/factorynumber"
	"github.com/imamik/apmconsole/internal/metrics"
	"github.com/imamik/apmconsole/internal/order"
)

// createAndWrite resolves the order, has the backend issue a factory number
// and writes it to the device.
func (c *Controller) createAndWrite(ctx context.Context, s *Session) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}

	resolver := order.NewResolver(order.SearcherFunc(func(ctx context.Context, number string) ([]order.Order, error) {
		return c.backend.SearchOrders(ctx, s.Identity.Token, number)
	}))
	id, err := resolver.Resolve(ctx, s.OrderNumber, s.OrderYear)
	if err != nil {
		return err
	}
	s.OrderID = id

	if pending, ok := s.Pending(); ok {
		return fmt.Errorf("%w: %s", ErrPendingWrite, pending)
	}

	number, err := c.backend.CreateProduct(ctx, s.Identity.Token, id, s.DecimalNumber)
	if err != nil {
		return fmt.Errorf("create product for order %s: %w", id, err)
	}
	s.setPending(number)
	c.metrics.FactoryNumberIssued()
	c.console.Info("factory number %s issued for order %s", number, s.OrderNumber)
	c.log.Info("factory number issued", "factoryNumber", number, "orderID", string(id), "decimalNumber", s.DecimalNumber)

	return c.writeAndVerify(ctx, s, number)
}

// retryWrite writes the pending number again without asking the backend
// for a new one.
func (c *Controller) retryWrite(ctx context.Context, s *Session) error {
	pending, ok := s.Pending()
	if !ok {
		c.console.Warn("no factory number is awaiting write, choose %q to issue one", createAndWrite{c}.Title())
		return nil
	}
	return c.writeAndVerify(ctx, s, pending)
}

// writeAndVerify writes number, reads it back and clears the pending number
// only when the readback decodes to the same value.
func (c *Controller) writeAndVerify(ctx context.Context, s *Session, number string) error {
	want, err := factorynumber.Parse(number)
	if err != nil {
		return err
	}

	if err := c.write(ctx, want); err != nil {
		c.metrics.WriteResult(metrics.WriteFailed)
		return err
	}

	got, err := c.readBack(ctx)
	if err != nil {
		c.metrics.WriteResult(metrics.WriteFailed)
		return err
	}
	if got != want {
		c.metrics.WriteResult(metrics.WriteMismatch)
		return &VerificationError{Expected: want.String(), Actual: got.String()}
	}

	c.metrics.WriteResult(metrics.WriteVerified)
	rec := s.complete(c.now(), s.Identity.Username, want.String())
	c.console.Info("factory number %s written and verified", want)
	c.log.Info("factory number written", "factoryNumber", rec.FactoryNumber, "orderID", string(rec.OrderID))
	return nil
}

func (c *Controller) write(ctx context.Context, fn factorynumber.FactoryNumber) error {
	dctx, cancel := c.deviceContext(ctx)
	defer cancel()

	if err := c.device.WriteRegister(dctx, c.register, fn.Words().Values()); err != nil {
		return fmt.Errorf("write %s: %w", c.register.Name, err)
	}
	return nil
}

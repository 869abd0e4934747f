package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/apmconsole/internal/device"
	"github.com/imamik/apmconsole/internal/order"
	"github.com/imamik/apmconsole/internal/ui/console"
)

// MockBackend is a mock of the product database API.
type MockBackend struct {
	mock.Mock
}

// Login authenticates an operator.
func (m *MockBackend) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

// Logout ends a backend session.
func (m *MockBackend) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// SearchOrders runs an order search.
func (m *MockBackend) SearchOrders(ctx context.Context, token, number string) ([]order.Order, error) {
	args := m.Called(ctx, token, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

// CreateProduct issues a factory number.
func (m *MockBackend) CreateProduct(ctx context.Context, token string, orderID order.ID, decimalNumber string) (string, error) {
	args := m.Called(ctx, token, orderID, decimalNumber)
	return args.String(0), args.Error(1)
}

// MockRegisterIO is a mock device transport.
type MockRegisterIO struct {
	mock.Mock
}

// WriteRegister writes register words.
func (m *MockRegisterIO) WriteRegister(ctx context.Context, reg device.Register, values []uint32) error {
	args := m.Called(ctx, reg, values)
	return args.Error(0)
}

// ReadRegister reads register words.
func (m *MockRegisterIO) ReadRegister(ctx context.Context, reg device.Register) ([]uint32, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint32), args.Error(1)
}

// Close releases the transport.
func (m *MockRegisterIO) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPrompter is a mock of operator input.
type MockPrompter struct {
	mock.Mock
}

// Select returns the chosen option index.
func (m *MockPrompter) Select(ctx context.Context, title string, options []string) (int, error) {
	args := m.Called(ctx, title, options)
	return args.Int(0), args.Error(1)
}

// Input returns a line of text.
func (m *MockPrompter) Input(ctx context.Context, title string, validate func(string) error) (string, error) {
	args := m.Called(ctx, title, validate)
	return args.String(0), args.Error(1)
}

// Password returns a secret.
func (m *MockPrompter) Password(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ device.RegisterIO = (*MockRegisterIO)(nil)
	_ console.Prompter  = (*MockPrompter)(nil)
)

package device

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/goburrow/modbus"
)

// Transport names accepted by Open.
const (
	TransportRTU = "rtu"
	TransportTCP = "tcp"
	TransportSim = "sim"
)

// Config selects and parameterizes the device transport.
type Config struct {
	Transport string
	Address   string
	BaudRate  int
	DataBits  int
	Parity    string
	StopBits  int
	SlaveID   byte
	Timeout   time.Duration
}

// Open connects to the device described by cfg.
func Open(cfg Config, log logr.Logger) (RegisterIO, error) {
	switch cfg.Transport {
	case TransportSim:
		log.Info("using simulated device")
		return NewSim(), nil

	case TransportRTU:
		h := modbus.NewRTUClientHandler(cfg.Address)
		h.BaudRate = cfg.BaudRate
		h.DataBits = cfg.DataBits
		h.Parity = cfg.Parity
		h.StopBits = cfg.StopBits
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, &ProtocolError{Op: "connect", Register: cfg.Address, Err: err}
		}
		log.V(1).Info("connected to device", "transport", cfg.Transport, "port", cfg.Address, "baud", cfg.BaudRate)
		return NewModbus(modbus.NewClient(h), h, log), nil

	case TransportTCP:
		h := modbus.NewTCPClientHandler(cfg.Address)
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, &ProtocolError{Op: "connect", Register: cfg.Address, Err: err}
		}
		log.V(1).Info("connected to device", "transport", cfg.Transport, "address", cfg.Address)
		return NewModbus(modbus.NewClient(h), h, log), nil

	default:
		return nil, fmt.Errorf("unknown device transport %q", cfg.Transport)
	}
}

// holdingRegisters is the subset of modbus.Client the device uses.
type holdingRegisters interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Modbus accesses registers as Modbus holding registers.
type Modbus struct {
	client holdingRegisters
	closer io.Closer
	log    logr.Logger
}

// NewModbus wraps a connected Modbus client. closer may be nil.
func NewModbus(client holdingRegisters, closer io.Closer, log logr.Logger) *Modbus {
	return &Modbus{client: client, closer: closer, log: log}
}

// WriteRegister writes values to reg with a single write-multiple request.
func (m *Modbus) WriteRegister(ctx context.Context, reg Register, values []uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := pack(reg, values)
	if err != nil {
		return &ProtocolError{Op: "write", Register: reg.Name, Err: err}
	}

	m.log.V(1).Info("write register", "register", reg.Name, "address", reg.Address, "values", values)
	if _, err := m.client.WriteMultipleRegisters(reg.Address, reg.Quantity(), data); err != nil {
		return &ProtocolError{Op: "write", Register: reg.Name, Err: err}
	}
	return nil
}

// ReadRegister reads the words of reg.
func (m *Modbus) ReadRegister(ctx context.Context, reg Register) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := m.client.ReadHoldingRegisters(reg.Address, reg.Quantity())
	if err != nil {
		return nil, &ProtocolError{Op: "read", Register: reg.Name, Err: err}
	}

	values, err := unpack(reg, data)
	if err != nil {
		return nil, &ProtocolError{Op: "read", Register: reg.Name, Err: err}
	}
	m.log.V(1).Info("read register", "register", reg.Name, "address", reg.Address, "values", values)
	return values, nil
}

// Close releases the underlying port or connection.
func (m *Modbus) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

package device

import (
	"context"
	"sync"
)

// Sim is an in-memory register bank. It stores the same big-endian layout a
// Modbus device would, so reads see exactly what writes packed.
type Sim struct {
	mu        sync.Mutex
	regs      map[uint16]uint16
	corrupt   func(values []uint32) []uint32
	failWrite error
	failRead  error
	writes    int
}

// NewSim creates an empty simulated device.
func NewSim() *Sim {
	return &Sim{regs: make(map[uint16]uint16)}
}

// CorruptWrites makes every following write store fn(values) instead of
// values. Pass nil to restore faithful writes.
func (s *Sim) CorruptWrites(fn func(values []uint32) []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt = fn
}

// FailWrites makes writes fail with err until called again with nil.
func (s *Sim) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = err
}

// FailReads makes reads fail with err until called again with nil.
func (s *Sim) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = err
}

// Writes returns the number of successful writes.
func (s *Sim) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// WriteRegister stores values at reg.
func (s *Sim) WriteRegister(ctx context.Context, reg Register, values []uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrite != nil {
		return &ProtocolError{Op: "write", Register: reg.Name, Err: s.failWrite}
	}
	if s.corrupt != nil {
		values = s.corrupt(append([]uint32(nil), values...))
	}

	data, err := pack(reg, values)
	if err != nil {
		return &ProtocolError{Op: "write", Register: reg.Name, Err: err}
	}
	for i := 0; i < len(data); i += 2 {
		s.regs[reg.Address+uint16(i/2)] = uint16(data[i])<<8 | uint16(data[i+1])
	}
	s.writes++
	return nil
}

// ReadRegister returns the words stored at reg; unwritten registers read 0.
func (s *Sim) ReadRegister(ctx context.Context, reg Register) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failRead != nil {
		return nil, &ProtocolError{Op: "read", Register: reg.Name, Err: s.failRead}
	}

	data := make([]byte, 0, int(reg.Quantity())*2)
	for i := uint16(0); i < reg.Quantity(); i++ {
		v := s.regs[reg.Address+i]
		data = append(data, byte(v>>8), byte(v))
	}

	values, err := unpack(reg, data)
	if err != nil {
		return nil, &ProtocolError{Op: "read", Register: reg.Name, Err: err}
	}
	return values, nil
}

// Close is a no-op.
func (s *Sim) Close() error {
	return nil
}

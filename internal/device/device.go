// Package device reads and writes sensor registers over Modbus, or over an
// in-memory register bank when no hardware is attached.
package device

import (
	"context"
	"errors"
	"fmt"
)

// Register describes a multi-word register in the device memory map.
// Widths gives the size of each word in 16-bit Modbus registers, in order.
type Register struct {
	Name    string
	Address uint16
	Widths  []uint16
}

// Quantity is the number of 16-bit registers the register spans.
func (r Register) Quantity() uint16 {
	var n uint16
	for _, w := range r.Widths {
		n += w
	}
	return n
}

// Validate checks that every word width is 1 or 2 registers.
func (r Register) Validate() error {
	if len(r.Widths) == 0 {
		return fmt.Errorf("register %s: no words defined", r.Name)
	}
	for i, w := range r.Widths {
		if w != 1 && w != 2 {
			return fmt.Errorf("register %s: word %d has width %d, want 1 or 2", r.Name, i, w)
		}
	}
	return nil
}

// ValidateFactoryNumber checks that r can hold a factory number: a date
// word followed by a 32-bit serial word.
func (r Register) ValidateFactoryNumber() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if len(r.Widths) != 2 {
		return fmt.Errorf("register %s: needs 2 words (date, serial), got %d", r.Name, len(r.Widths))
	}
	if r.Widths[1] != 2 {
		return fmt.Errorf("register %s: serial word has width %d, want 2", r.Name, r.Widths[1])
	}
	return nil
}

// FactoryNumberRegister is the default location of the factory number:
// a 16-bit date word followed by a 32-bit serial.
var FactoryNumberRegister = Register{
	Name:    "SensorNumber_int2",
	Address: 0x0120,
	Widths:  []uint16{1, 2},
}

// RegisterIO reads and writes registers on a connected device.
type RegisterIO interface {
	WriteRegister(ctx context.Context, reg Register, values []uint32) error
	ReadRegister(ctx context.Context, reg Register) ([]uint32, error)
	Close() error
}

// ProtocolError is a failed exchange with the device.
type ProtocolError struct {
	Op       string
	Register string
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("device %s %s: %v", e.Op, e.Register, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err came from the device transport.
func IsProtocolError(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr)
}

// pack lays values out as big-endian register bytes according to reg.Widths.
func pack(reg Register, values []uint32) ([]byte, error) {
	if len(values) != len(reg.Widths) {
		return nil, fmt.Errorf("got %d values for %d words", len(values), len(reg.Widths))
	}

	buf := make([]byte, 0, int(reg.Quantity())*2)
	for i, w := range reg.Widths {
		v := values[i]
		switch w {
		case 1:
			if v > 0xFFFF {
				return nil, fmt.Errorf("word %d value %d does not fit 16 bits", i, v)
			}
			buf = append(buf, byte(v>>8), byte(v))
		case 2:
			buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		}
	}
	return buf, nil
}

// unpack is the inverse of pack.
func unpack(reg Register, data []byte) ([]uint32, error) {
	if len(data) != int(reg.Quantity())*2 {
		return nil, fmt.Errorf("got %d bytes, want %d", len(data), int(reg.Quantity())*2)
	}

	values := make([]uint32, 0, len(reg.Widths))
	for _, w := range reg.Widths {
		var v uint32
		for i := 0; i < int(w)*2; i++ {
			v = v<<8 | uint32(data[i])
		}
		data = data[int(w)*2:]
		values = append(values, v)
	}
	return values, nil
}

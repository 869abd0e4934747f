// Package factorynumber converts factory numbers between their printed form
// (YYMMNNNNNN) and the two register words stored by the sensor firmware.
//
// The firmware keeps the number in two words. The first word is a 16-bit
// window over the packed value (year<<4 | month) << 20 | serial, taken at its
// four leading hex digits; the second word carries the serial unpacked.
package factorynumber

import (
	"fmt"
	"strconv"
)

const (
	// serialBits is the width of the serial field inside the packed value.
	serialBits = 20

	// MaxSerial is the largest serial the packed layout can carry.
	MaxSerial = 1<<serialBits - 1

	// MinYear and MaxYear bound the two-digit years whose packed value spans
	// exactly eight hex digits. Outside this range the leading-hex-digit
	// window no longer lines up with the year and month nibbles.
	MinYear = 16
	MaxYear = 99

	// Width is the length of the canonical printed form.
	Width = 10

	serialDigits = Width - 4
)

// FactoryNumber is a decomposed factory number.
type FactoryNumber struct {
	Year   uint8
	Month  uint8
	Serial uint32
}

// Words are the register values as written to and read from the device.
type Words struct {
	Date   uint16
	Serial uint32
}

// Values returns the words in register order.
func (w Words) Values() []uint32 {
	return []uint32{uint32(w.Date), w.Serial}
}

// WordsFromValues builds Words from register values in register order.
func WordsFromValues(values []uint32) (Words, error) {
	if len(values) != 2 {
		return Words{}, fmt.Errorf("expected 2 register words, got %d", len(values))
	}
	if values[0] > 0xFFFF {
		return Words{}, fmt.Errorf("date word %#x does not fit 16 bits", values[0])
	}
	return Words{Date: uint16(values[0]), Serial: values[1]}, nil
}

// CodecError reports an identifier that cannot be encoded.
type CodecError struct {
	Identifier string
	Reason     string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("invalid factory number %q: %s", e.Identifier, e.Reason)
}

// Parse splits an identifier into year, month and serial.
func Parse(identifier string) (FactoryNumber, error) {
	if len(identifier) < 5 {
		return FactoryNumber{}, &CodecError{Identifier: identifier, Reason: "expected at least 5 digits"}
	}
	for _, r := range identifier {
		if r < '0' || r > '9' {
			return FactoryNumber{}, &CodecError{Identifier: identifier, Reason: "must contain digits only"}
		}
	}

	year, _ := strconv.Atoi(identifier[:2])
	month, _ := strconv.Atoi(identifier[2:4])
	serial, err := strconv.ParseUint(identifier[4:], 10, 32)
	if err != nil {
		return FactoryNumber{}, &CodecError{Identifier: identifier, Reason: "serial out of range"}
	}

	fn := FactoryNumber{Year: uint8(year), Month: uint8(month), Serial: uint32(serial)}
	if err := fn.validate(); err != nil {
		return FactoryNumber{}, &CodecError{Identifier: identifier, Reason: err.Error()}
	}
	return fn, nil
}

func (fn FactoryNumber) validate() error {
	switch {
	case fn.Year < MinYear || fn.Year > MaxYear:
		return fmt.Errorf("year %02d outside %d..%d", fn.Year, MinYear, MaxYear)
	case fn.Month < 1 || fn.Month > 12:
		return fmt.Errorf("month %02d outside 01..12", fn.Month)
	case fn.Serial > MaxSerial:
		return fmt.Errorf("serial %d exceeds %d", fn.Serial, MaxSerial)
	}
	return nil
}

// String returns the canonical fixed-width form: YYMM followed by the serial
// zero-padded to six digits.
func (fn FactoryNumber) String() string {
	return fmt.Sprintf("%02d%02d%0*d", fn.Year, fn.Month, serialDigits, fn.Serial)
}

// Words packs the factory number into register words.
func (fn FactoryNumber) Words() Words {
	datePrefix := uint32(fn.Year)<<4 | uint32(fn.Month)
	combined := datePrefix<<serialBits | fn.Serial

	return Words{
		Date:   uint16(combined >> ((hexDigits(combined) - 4) * 4)),
		Serial: fn.Serial,
	}
}

// Encode parses identifier and packs it into register words.
func Encode(identifier string) (Words, error) {
	fn, err := Parse(identifier)
	if err != nil {
		return Words{}, err
	}
	return fn.Words(), nil
}

// Decode unpacks register words read back from the device. It relies on the
// words alone: the year is the first two hex digits of the date word and the
// month the third.
func Decode(w Words) FactoryNumber {
	return FactoryNumber{
		Year:   uint8(w.Date >> 8),
		Month:  uint8(w.Date>>4) & 0xF,
		Serial: w.Serial,
	}
}

// hexDigits counts the hex digits of v without leading zeros.
func hexDigits(v uint32) uint32 {
	n := uint32(1)
	for v >>= 4; v != 0; v >>= 4 {
		n++
	}
	return n
}

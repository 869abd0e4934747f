package factorynumber

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_ReferenceIdentifier(t *testing.T) {
	t.Parallel()

	// year 22, month 10, serial 12345:
	// date prefix (22<<4)|10 = 362 = 0x16A, packed 0x16A03039.
	w, err := Encode("221012345")
	require.NoError(t, err)

	assert.Equal(t, uint16(0x16A0), w.Date)
	assert.Equal(t, uint32(12345), w.Serial)
	assert.Equal(t, []uint32{0x16A0, 12345}, w.Values())

	decoded := Decode(w)
	assert.Equal(t, FactoryNumber{Year: 22, Month: 10, Serial: 12345}, decoded)
	assert.Equal(t, "2210012345", decoded.String())
}

func TestEncode_DateWordBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		identifier string
		date       uint16
		serial     uint32
	}{
		{"1601000000", 0x1010, 0},
		{"2201000001", 0x1610, 1},
		{"2203983040", 0x163F, 983040}, // serial bits 16..19 land in the low nibble
		{"2412065535", 0x18C0, 65535},
		{"2412065536", 0x18C1, 65536},
		{"9912999999", 0x63CF, 999999},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.identifier, func(t *testing.T) {
			t.Parallel()
			w, err := Encode(tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.date, w.Date, "date word %#04x", w.Date)
			assert.Equal(t, tt.serial, w.Serial)
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	for year := MinYear; year <= MaxYear; year++ {
		for month := 1; month <= 12; month++ {
			for _, serial := range []int{0, 1, 9, 4095, 65535, 65536, 123456, 999999} {
				identifier := fmt.Sprintf("%02d%02d%06d", year, month, serial)

				w, err := Encode(identifier)
				require.NoError(t, err, identifier)
				require.Equal(t, identifier, Decode(w).String())
			}
		}
	}
}

func TestDecode_IgnoresSerialNibbleInDateWord(t *testing.T) {
	t.Parallel()

	fn := Decode(Words{Date: 0x163F, Serial: 983040})
	assert.Equal(t, uint8(22), fn.Year)
	assert.Equal(t, uint8(3), fn.Month)
	assert.Equal(t, "2203983040", fn.String())
}

func TestParse_ShortSerialNormalizes(t *testing.T) {
	t.Parallel()

	short, err := Parse("221012345")
	require.NoError(t, err)
	long, err := Parse("2210012345")
	require.NoError(t, err)

	assert.Equal(t, long, short)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identifier string
		reason     string
	}{
		{"empty", "", "at least 5 digits"},
		{"too short", "2210", "at least 5 digits"},
		{"letters", "22AB012345", "digits only"},
		{"sign", "-221012345", "digits only"},
		{"month zero", "2200012345", "month 00"},
		{"month thirteen", "2213012345", "month 13"},
		{"year below window", "1501012345", "year 15"},
		{"serial too wide", "22011048576", "exceeds"},
		{"serial overflow", "2201999999999999", "out of range"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Encode(tt.identifier)
			require.Error(t, err)

			var codecErr *CodecError
			require.True(t, errors.As(err, &codecErr))
			assert.Equal(t, tt.identifier, codecErr.Identifier)
			assert.Contains(t, codecErr.Reason, tt.reason)
		})
	}
}

func TestWordsFromValues(t *testing.T) {
	t.Parallel()

	w, err := WordsFromValues([]uint32{0x16A0, 12345})
	require.NoError(t, err)
	assert.Equal(t, Words{Date: 0x16A0, Serial: 12345}, w)

	_, err = WordsFromValues([]uint32{1})
	assert.Error(t, err)

	_, err = WordsFromValues([]uint32{0x10000, 1})
	assert.Error(t, err)
}

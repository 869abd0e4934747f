package handlers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/imamik/apmconsole/internal/factorynumber"
)

// Encode prints the register words for a factory number.
func Encode(out io.Writer, identifier string) error {
	fn, err := factorynumber.Parse(identifier)
	if err != nil {
		return err
	}
	printWords(out, fn, fn.Words())
	return nil
}

// Decode prints the factory number held by two register words.
func Decode(out io.Writer, dateWord, serialWord string) error {
	date, err := strconv.ParseUint(dateWord, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid date word %q: must fit 16 bits", dateWord)
	}
	serial, err := strconv.ParseUint(serialWord, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid serial word %q: must fit 32 bits", serialWord)
	}

	words := factorynumber.Words{Date: uint16(date), Serial: uint32(serial)}
	printWords(out, factorynumber.Decode(words), words)
	return nil
}

func printWords(out io.Writer, fn factorynumber.FactoryNumber, w factorynumber.Words) {
	fmt.Fprintf(out, "factory number: %s\n", fn)
	fmt.Fprintf(out, "date word:      0x%04X (%d)\n", w.Date, w.Date)
	fmt.Fprintf(out, "serial word:    %d\n", w.Serial)
}

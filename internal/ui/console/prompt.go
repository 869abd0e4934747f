package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrInvalidSelection is returned by Select for input that names no option.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrAborted is returned when the operator aborts input or input ends.
	ErrAborted = errors.New("aborted by operator")
)

// Prompter collects operator input.
type Prompter interface {
	// Select shows options and returns the zero-based index chosen.
	Select(ctx context.Context, title string, options []string) (int, error)
	// Input asks for a line of text, repeating until validate accepts it.
	// validate may be nil.
	Input(ctx context.Context, title string, validate func(string) error) (string, error)
	// Password asks for a secret without echoing it.
	Password(ctx context.Context, title string) (string, error)
}

// NewPrompter picks interactive forms when in is a terminal and plain is
// unset, and line-based prompts otherwise. Plain prompts on a terminal
// still read passwords with echo off.
func NewPrompter(in *os.File, out io.Writer, plain bool) Prompter {
	if !IsTerminal(in) {
		return NewLinePrompter(in, out)
	}
	if !plain {
		return NewFormPrompter()
	}
	return NewLinePrompter(in, out, WithSecretReader(func() ([]byte, error) {
		return term.ReadPassword(int(in.Fd()))
	}))
}

// LinePrompter reads answers line by line. It suits scripted input and
// terminals where full-screen forms are unwanted.
type LinePrompter struct {
	in     *bufio.Scanner
	out    io.Writer
	secret func() ([]byte, error)
}

// LineOption configures a LinePrompter.
type LineOption func(*LinePrompter)

// WithSecretReader makes Password read through fn instead of the line
// input. fn is expected to read one line without echoing it.
func WithSecretReader(fn func() ([]byte, error)) LineOption {
	return func(p *LinePrompter) { p.secret = fn }
}

// NewLinePrompter creates a line-based prompter.
func NewLinePrompter(in io.Reader, out io.Writer, opts ...LineOption) *LinePrompter {
	p := &LinePrompter{in: bufio.NewScanner(in), out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select prints a numbered menu and reads the option number.
func (p *LinePrompter) Select(ctx context.Context, title string, options []string) (int, error) {
	fmt.Fprintln(p.out, title)
	for i, o := range options {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, o)
	}

	line, err := p.readLine(ctx, "> ")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, line)
	}
	return n - 1, nil
}

// Input reads a line, re-asking while validate rejects it.
func (p *LinePrompter) Input(ctx context.Context, title string, validate func(string) error) (string, error) {
	for {
		line, err := p.readLine(ctx, title+": ")
		if err != nil {
			return "", err
		}
		if validate == nil {
			return line, nil
		}
		if err := validate(line); err != nil {
			fmt.Fprintf(p.out, "%s %v\n", warnMark, err)
			continue
		}
		return line, nil
	}
}

// Password reads a secret through the secret reader when one is set, and
// as a plain line otherwise.
func (p *LinePrompter) Password(ctx context.Context, title string) (string, error) {
	if p.secret == nil {
		return p.readLine(ctx, title+": ")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.out, title+": ")
	b, err := p.secret()
	fmt.Fprintln(p.out)
	switch {
	case errors.Is(err, io.EOF):
		return "", ErrAborted
	case err != nil:
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (p *LinePrompter) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", ErrAborted
	}
	return strings.TrimSpace(p.in.Text()), nil
}

package provisioning

import (
	"errors"
	"fmt"
)

var (
	// ErrExit ends the action loop.
	ErrExit = errors.New("exit requested")

	// ErrPendingWrite is returned by create while an issued number still
	// awaits a verified write.
	ErrPendingWrite = errors.New("a factory number is awaiting write, use retry instead")

	// ErrNotAuthenticated is returned by backend actions without a token.
	ErrNotAuthenticated = errors.New("not logged in")
)

// VerificationError reports a device readback that differs from the number
// written.
type VerificationError struct {
	Expected string
	Actual   string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("device holds %s, expected %s", e.Actual, e.Expected)
}

// IsVerification reports whether err is a readback mismatch.
func IsVerification(err error) bool {
	var verr *VerificationError
	return errors.As(err, &verr)
}

// ActionError wraps a failure with the action it came from.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("could not %s: %v", lowerFirst(e.Action), e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

// Package provisioning drives the operator session that issues factory
// numbers from the backend and writes them to devices.
//
// The session holds the operator's current order context and, between a
// successful backend creation and a verified device write, the pending
// factory number. Actions dispatched by the Controller read and mutate it.
package provisioning

import (
	"time"

	"github.com/imamik/apmconsole/internal/order"
)

// State is derived from whether a factory number awaits writing.
type State int

// Session states.
const (
	// Idle means no number is pending; create is allowed.
	Idle State = iota
	// PendingWrite means an issued number has not been verified on a
	// device yet; create refuses and retry is the way forward.
	PendingWrite
)

func (s State) String() string {
	if s == PendingWrite {
		return "pending write"
	}
	return "idle"
}

// Identity is the authenticated operator.
type Identity struct {
	Username string
	Token    string
}

// Record is one verified provisioning.
type Record struct {
	Time          time.Time
	Operator      string
	OrderNumber   string
	OrderYear     string
	OrderID       order.ID
	DecimalNumber string
	FactoryNumber string
}

// Session is the mutable context of one console run.
type Session struct {
	Identity      Identity
	OrderNumber   string
	OrderYear     string
	DecimalNumber string

	// OrderID is resolved on every create and dropped when the order
	// number changes.
	OrderID order.ID

	// History lists verified provisionings in order.
	History []Record

	// pending is the issued but unverified number together with the
	// order context it was issued for.
	pending *Record
}

// NewSession creates an idle, unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// State reports whether a number is pending.
func (s *Session) State() State {
	if s.pending != nil {
		return PendingWrite
	}
	return Idle
}

// Pending returns the issued but unverified factory number.
func (s *Session) Pending() (string, bool) {
	if s.pending == nil {
		return "", false
	}
	return s.pending.FactoryNumber, true
}

// setPending records a number the backend has just issued for the current
// order context. Later edits to the session do not change it.
func (s *Session) setPending(number string) {
	s.pending = &Record{
		OrderNumber:   s.OrderNumber,
		OrderYear:     s.OrderYear,
		OrderID:       s.OrderID,
		DecimalNumber: s.DecimalNumber,
		FactoryNumber: number,
	}
}

// complete clears the pending number after a verified write and appends it
// to the history under the order it was issued for. factoryNumber is the
// canonical form that was written; operator is who wrote it.
func (s *Session) complete(at time.Time, operator, factoryNumber string) Record {
	rec := *s.pending
	rec.Time = at
	rec.Operator = operator
	rec.FactoryNumber = factoryNumber

	s.pending = nil
	s.History = append(s.History, rec)
	return rec
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Identity.Token != ""
}

// SetIdentity stores the operator and token from a successful login.
func (s *Session) SetIdentity(username, token string) {
	s.Identity = Identity{Username: username, Token: token}
}

// ClearIdentity forgets the token. The username stays for display.
func (s *Session) ClearIdentity() {
	s.Identity.Token = ""
}

// SetOrderNumber changes the order and drops the resolved id.
func (s *Session) SetOrderNumber(number string) {
	if number != s.OrderNumber {
		s.OrderID = ""
	}
	s.OrderNumber = number
}

// SetOrderYear changes the order year and drops the resolved id.
func (s *Session) SetOrderYear(year string) {
	if year != s.OrderYear {
		s.OrderID = ""
	}
	s.OrderYear = year
}

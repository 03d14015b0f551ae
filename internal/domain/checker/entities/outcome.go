package entities

// Status is the terminal classification of one account within a batch
type Status string

const (
	StatusActive             Status = "active"
	StatusRestricted         Status = "restricted"
	StatusRecovered          Status = "recovered"
	StatusPermanentlyBlocked Status = "permanently_blocked"
	StatusNeedsCode          Status = "needs_code"
	StatusNeedsTwoFactor     Status = "needs_two_factor"
	StatusInvalidCode        Status = "invalid_code"
	StatusError              Status = "error"
)

// Statuses lists every outcome category in report order
var Statuses = []Status{
	StatusActive,
	StatusRestricted,
	StatusRecovered,
	StatusPermanentlyBlocked,
	StatusNeedsCode,
	StatusNeedsTwoFactor,
	StatusInvalidCode,
	StatusError,
}

// Outcome is the tagged result of processing one account
type Outcome struct {
	Status Status
	// Detail is set for StatusError and carries context for the other failure states
	Detail string
	// Attempts is the number of recovery attempts made (0 when recovery was not entered)
	Attempts int
}

func Active() Outcome             { return Outcome{Status: StatusActive} }
func Restricted() Outcome         { return Outcome{Status: StatusRestricted} }
func NeedsCode() Outcome          { return Outcome{Status: StatusNeedsCode} }
func NeedsTwoFactor() Outcome     { return Outcome{Status: StatusNeedsTwoFactor} }
func InvalidCode() Outcome        { return Outcome{Status: StatusInvalidCode} }
func Error(detail string) Outcome { return Outcome{Status: StatusError, Detail: detail} }

// ProbeStatus is the result of a single restriction probe
type ProbeStatus int

const (
	ProbeUnauthorized ProbeStatus = iota
	ProbeOK
	ProbeRestricted
	ProbeError
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeUnauthorized:
		return "unauthorized"
	case ProbeOK:
		return "ok"
	case ProbeRestricted:
		return "restricted"
	default:
		return "error"
	}
}

// ProbeResult carries the probe classification plus the reply text or failure detail
type ProbeResult struct {
	Status ProbeStatus
	Reply  string
	Detail string
}

package preflight

// Status represents the result of a single probe.
// Values are ordered by severity: StatusPass < StatusWarn < StatusFail.
type Status int

const (
	// StatusPass indicates the fact checked holds.
	StatusPass Status = iota
	// StatusWarn indicates a non-blocking problem.
	StatusWarn
	// StatusFail indicates the fact checked does not hold.
	StatusFail
)

// String returns the lowercase name of a Status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes a Status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Worst returns the more severe of two statuses.
func Worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Outcome is the recorded result of one probe.
type Outcome struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`

	// Critical marks outcomes whose failure blocks all further development:
	// foundational tools, the core package build and the root manifest.
	Critical bool `json:"critical"`

	// Group is the name of the CheckGroup that produced the outcome.
	Group string `json:"group,omitempty"`
}

// IsCritical returns true if this is a critical outcome that failed.
func (o Outcome) IsCritical() bool {
	return o.Critical && o.Status == StatusFail
}

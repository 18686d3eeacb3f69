package core

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"

	// SeverityUnknown marks rows whose impact could not be determined.
	// It is deliberately distinct from success so "confirmed healthy"
	// and "could not tell" never collapse into one another.
	SeverityUnknown Severity = "unknown"
)

// Rank maps a severity to its sort weight. Unrecognized labels rank
// below everything else.
func (s Severity) Rank() int {
	switch s {
	case SeverityDanger:
		return 3
	case SeverityWarning:
		return 2
	case SeveritySuccess:
		return 1
	default:
		return 0
	}
}

// SeverityFromClasses picks the severity out of a CSS class token
// list. The first recognized token wins; pages render healthy rows
// without any token, so none present means success.
func SeverityFromClasses(tokens []string) Severity {
	for _, t := range tokens {
		switch Severity(t) {
		case SeverityDanger, SeverityWarning, SeveritySuccess:
			return Severity(t)
		}
	}
	return SeveritySuccess
}

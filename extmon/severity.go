package extmon

// Severity of a finding or instrumentation event
type Severity string

// revive:disable:var-naming
const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
	SevLow      Severity = "low"
	SevInfo     Severity = "info"
)

// Valid returns true if the severity is one of the known levels
func (s Severity) Valid() bool {
	switch s {
	case SevCritical, SevHigh, SevMedium, SevLow, SevInfo:
		return true
	}
	return false
}

package extmon

import "time"

// FindingCategory is implied by the rule that fired
type FindingCategory string

// revive:disable:var-naming
const (
	CategoryActivity FindingCategory = "activity"
	CategoryNetwork  FindingCategory = "network"
	CategoryDom      FindingCategory = "dom"
)

// Finding is one classifier output: a triggering event plus a severity and a
// human readable reason. Findings are append-only and never deduplicated, the
// same event may produce several findings from different rules.
type Finding struct {
	Severity  Severity        `json:"severity"`
	Reason    string          `json:"reason"`
	Category  FindingCategory `json:"category"`
	Timestamp time.Time       `json:"timestamp"`

	// exactly one of these references the triggering event
	Network  *NetworkEvent  `json:"networkEvent,omitempty"`
	Dom      *DomEvent      `json:"domEvent,omitempty"`
	Activity *ActivityEvent `json:"activityEvent,omitempty"`
}

package extmon

import (
	"strconv"
	"time"
)

// ActivityEvent is one extension API invocation read from the browser's
// activity log (or a fallback listener based approximation).
type ActivityEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	ExtensionID string    `json:"extensionId"`
	ActionType  string    `json:"actionType,omitempty"`
	APIName     string    `json:"apiName"` // dotted path, e.g. cookies.getAll
	Args        string    `json:"args,omitempty"`
	PageURL     string    `json:"pageUrl,omitempty"`
	ArgURL      string    `json:"argUrl,omitempty"`
}

// DedupKey identifies a log record across overlapping poll reads. The
// underlying log may be re-read, so timestamp+apiName is the identity.
func (a *ActivityEvent) DedupKey() string {
	return strconv.FormatInt(a.Timestamp.UnixNano(), 10) + "|" + a.APIName
}

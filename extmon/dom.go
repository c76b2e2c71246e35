package extmon

import "time"

// DomEventType is the closed vocabulary produced by the in-page instrumentation
type DomEventType string

// revive:disable:var-naming
const (
	DomScriptInjected     DomEventType = "script_injected"
	DomIframeInjected     DomEventType = "iframe_injected"
	DomFormInjected       DomEventType = "form_injected"
	DomInputInjected      DomEventType = "input_injected"
	DomLinkInjected       DomEventType = "link_injected"
	DomOverlayDetected    DomEventType = "overlay_detected"
	DomFormActionChanged  DomEventType = "form_action_changed"
	DomLinkHrefChanged    DomEventType = "link_href_changed"
	DomScriptSrcChanged   DomEventType = "script_src_changed"
	DomKeyloggerSuspect   DomEventType = "keylogger_suspect"
	DomFormSubmitListener DomEventType = "form_submit_listener"
	DomClipboardListener  DomEventType = "clipboard_listener"
	DomFormSubmitted      DomEventType = "form_submitted"
	DomCookieRead         DomEventType = "cookie_read"
	DomCookieWrite        DomEventType = "cookie_write"
	DomStorageRead        DomEventType = "storage_read"
	DomStorageWrite       DomEventType = "storage_write"
	DomFetchRequest       DomEventType = "fetch_request"
	DomXHRRequest         DomEventType = "xhr_request"
	DomMonitorStarted     DomEventType = "monitor_started"
)

// DomEvent is one observation from inside a monitored page. Severity is
// assigned at the instrumentation boundary and never recomputed downstream.
type DomEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Type      DomEventType `json:"type"`
	Severity  Severity     `json:"severity"`
	URL       string       `json:"url"` // page context

	// type specific attributes
	Src       string `json:"src,omitempty"`
	Action    string `json:"action,omitempty"`
	Method    string `json:"method,omitempty"`
	Href      string `json:"href,omitempty"`
	OldValue  string `json:"oldValue,omitempty"`
	NewValue  string `json:"newValue,omitempty"`
	EventType string `json:"eventType,omitempty"`
	TargetTag string `json:"targetTag,omitempty"`
	Key       string `json:"key,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Content   string `json:"content,omitempty"`
	Message   string `json:"message,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
	HasBody   bool   `json:"hasBody,omitempty"`

	// Extra carries attributes outside the closed set; rules never read it.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// DefaultDomSeverity is the fixed instrumentation-boundary mapping used when
// an event arrives without a severity (defensive, the in-page script sets one).
func DefaultDomSeverity(t DomEventType) Severity {
	switch t {
	case DomScriptInjected, DomFormActionChanged, DomScriptSrcChanged, DomKeyloggerSuspect:
		return SevCritical
	case DomIframeInjected, DomFormInjected, DomOverlayDetected, DomCookieRead,
		DomCookieWrite, DomClipboardListener, DomFormSubmitListener:
		return SevHigh
	case DomInputInjected, DomStorageWrite, DomFormSubmitted, DomLinkHrefChanged:
		return SevMedium
	case DomLinkInjected, DomStorageRead, DomFetchRequest, DomXHRRequest:
		return SevLow
	case DomMonitorStarted:
		return SevInfo
	}
	return SevInfo
}

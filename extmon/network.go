package extmon

import "time"

// NetworkEventType tags a network event as the request or response half of an exchange
type NetworkEventType string

// revive:disable:var-naming
const (
	NetRequest  NetworkEventType = "request"
	NetResponse NetworkEventType = "response"
)

// NetworkEvent is one half of a captured exchange. The ID is the correlation
// key and is stable across request -> response -> body for a single exchange.
type NetworkEvent struct {
	ID            string           `json:"id"`
	Type          NetworkEventType `json:"type"`
	Timestamp     time.Time        `json:"timestamp"`
	URL           string           `json:"url"`
	FromExtension bool             `json:"fromExtension"`
	ExtensionID   string           `json:"extensionId,omitempty"`

	// request only
	Method       string            `json:"method,omitempty"`
	ResourceType string            `json:"resourceType,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	PostData     string            `json:"postData,omitempty"`
	HasPostData  bool              `json:"hasPostData,omitempty"`

	// response only, Body is populated asynchronously and may never arrive
	Status                int    `json:"status,omitempty"`
	StatusText            string `json:"statusText,omitempty"`
	MimeType              string `json:"mimeType,omitempty"`
	Body                  string `json:"body,omitempty"`
	BodyBase64            bool   `json:"bodyBase64,omitempty"`
	BodyTruncated         bool   `json:"bodyTruncated,omitempty"`
	ContainsSensitiveData bool   `json:"containsSensitiveData,omitempty"`

	// Extra carries forward-compatible metadata; classification rules never
	// read from it.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// IsRequest event
func (n *NetworkEvent) IsRequest() bool { return n.Type == NetRequest }

// IsResponse event
func (n *NetworkEvent) IsResponse() bool { return n.Type == NetResponse }

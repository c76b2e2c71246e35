package extmon

import "time"

// SessionStats are the aggregate counts computed at session stop
type SessionStats struct {
	TotalRequests          int `json:"totalRequests"`
	TotalResponses         int `json:"totalResponses"`
	RequestsWithBody       int `json:"requestsWithBody"`
	ResponsesWithBody      int `json:"responsesWithBody"`
	ExtensionRequests      int `json:"extensionRequests"`
	ExtensionActivities    int `json:"extensionActivities"`
	SensitiveDataTransfers int `json:"sensitiveDataTransfers"`
	DomEvents              int `json:"domEvents"`
	DomCritical            int `json:"domCritical"`
	UniqueDomains          int `json:"uniqueDomains"`
	AutomationActions      int `json:"automationActions"`
	Screenshots            int `json:"screenshots"`
}

// AutomationLog is one line emitted by the scripted action player
type AutomationLog struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Screenshot captured on a critical/high instrumentation event
type Screenshot struct {
	Timestamp time.Time `json:"timestamp"`
	Filename  string    `json:"filename"`
	Filepath  string    `json:"filepath"`
	Reason    string    `json:"reason"`
	URL       string    `json:"url"`
}

// SessionReport is the immutable snapshot of one monitoring run, created once
// at session stop and persisted keyed by session id.
type SessionReport struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Duration    float64   `json:"duration"` // seconds
	ProfilePath string    `json:"profilePath,omitempty"`

	Stats SessionStats `json:"stats"`

	NetworkEvents  []*NetworkEvent  `json:"networkEvents"`
	DomEvents      []*DomEvent      `json:"domEvents"`
	ActivityEvents []*ActivityEvent `json:"activityEvents"`
	AutomationLogs []*AutomationLog `json:"automationLogs"`
	Screenshots    []*Screenshot    `json:"screenshots"`

	// derived lists
	ExtensionRequests      []*NetworkEvent `json:"extensionRequests"`
	RequestsWithPayload    []*NetworkEvent `json:"requestsWithPayload"`
	SensitiveDataTransfers []*NetworkEvent `json:"sensitiveDataTransfers"`
	Domains                []string        `json:"domains"`
	SuspiciousActivities   []*Finding      `json:"suspiciousActivities"`
}

// NetworkTail is a trimmed recent network event for the live dashboard
type NetworkTail struct {
	Type      NetworkEventType `json:"type"`
	Method    string           `json:"method,omitempty"`
	URL       string           `json:"url"`
	Status    int              `json:"status,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// DomTail is a trimmed recent dom event for the live dashboard
type DomTail struct {
	Type      DomEventType `json:"type"`
	Severity  Severity     `json:"severity"`
	URL       string       `json:"url"`
	Timestamp time.Time    `json:"timestamp"`
}

// RealTimeStats is the pull based snapshot served while a session is running
type RealTimeStats struct {
	SessionID string  `json:"sessionId"`
	Running   bool    `json:"running"`
	Duration  float64 `json:"duration"` // seconds

	Requests         int `json:"requests"`
	Responses        int `json:"responses"`
	RequestsWithBody int `json:"requestsWithBody"`
	Activities       int `json:"activities"`
	DomEvents        int `json:"domEvents"`
	Screenshots      int `json:"screenshots"`

	RequestsPerSecond float64 `json:"requestsPerSecond"`

	CriticalEvents    int `json:"criticalEvents"`
	HighEvents        int `json:"highEvents"`
	ExtensionRequests int `json:"extensionRequests"`

	RecentNetworkEvents []*NetworkTail `json:"recentNetworkEvents"`
	RecentDomEvents     []*DomTail     `json:"recentDomEvents"`

	Domains    int      `json:"domains"`
	TopDomains []string `json:"topDomains"`
}

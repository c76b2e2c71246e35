package mock

import (
	"fmt"
	"time"

	"gitlab.com/extmon/extmon"
)

// MakeMockExchanges returns n correlated request/response pairs against
// example.com with ids "1"..."n"
func MakeMockExchanges(n int) []*extmon.NetworkEvent {
	events := make([]*extmon.NetworkEvent, 0, n*2)
	base := time.Date(2025, 4, 12, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%d", i+1)
		url := fmt.Sprintf("http://example.com/%d", i+1)
		events = append(events, &extmon.NetworkEvent{
			ID:           id,
			Type:         extmon.NetRequest,
			Timestamp:    base.Add(time.Duration(i) * time.Second),
			URL:          url,
			Method:       "GET",
			ResourceType: "Document",
			Headers:      map[string]string{"User-Agent": "mock"},
		})
		events = append(events, &extmon.NetworkEvent{
			ID:         id,
			Type:       extmon.NetResponse,
			Timestamp:  base.Add(time.Duration(i)*time.Second + 100*time.Millisecond),
			URL:        url,
			Status:     200,
			StatusText: "OK",
			MimeType:   "text/html",
			Headers:    map[string]string{"Content-Type": "text/html"},
		})
	}
	return events
}

// MakeMockExtensionRequest posting data to an external server
func MakeMockExtensionRequest(id, host, postData string) *extmon.RequestPaused {
	return &extmon.RequestPaused{
		ID:           id,
		URL:          "https://" + host + "/collect",
		Method:       "POST",
		ResourceType: "XHR",
		Headers:      map[string]string{"Content-Type": "application/json"},
		PostData:     postData,
		HasPostData:  postData != "",
		InitiatorURL: "chrome-extension://abcdefghijklmnop/background.js",
	}
}

// MakeMockDomEvent of the given type with the script's boundary severity
func MakeMockDomEvent(t extmon.DomEventType) *extmon.DomEvent {
	return &extmon.DomEvent{
		Timestamp: time.Date(2025, 4, 12, 10, 0, 0, 0, time.UTC),
		Type:      t,
		Severity:  extmon.DefaultDomSeverity(t),
		URL:       "http://example.com/page",
	}
}

// MakeMockActivities returns n records with distinct timestamps
func MakeMockActivities(n int) []*extmon.ActivityEvent {
	base := time.Date(2025, 4, 12, 10, 0, 0, 0, time.UTC)
	batch := make([]*extmon.ActivityEvent, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, &extmon.ActivityEvent{
			Timestamp:   base.Add(time.Duration(i) * time.Millisecond),
			ExtensionID: "abcdefghijklmnop",
			ActionType:  "1",
			APIName:     "tabs.query",
			Args:        "[{}]",
		})
	}
	return batch
}

package monitor

import (
	"time"
	"unicode/utf8"

	"gitlab.com/extmon/extmon"
)

const recentTail = 10

// snapshotStats assembles the live dashboard view from the current buffer
// state. Read only, safe to call at any point in the session lifecycle.
func snapshotStats(id string, running bool, start time.Time, buf *Buffer) *extmon.RealTimeStats {
	network := buf.NetworkEvents()
	dom := buf.DomEvents()
	activity := buf.ActivityEvents()
	screenshots := buf.Screenshots()

	var duration float64
	if !start.IsZero() {
		duration = time.Since(start).Seconds()
	}

	requests, responses, withBody, extRequests := 0, 0, 0, 0
	for _, ev := range network {
		if ev.IsRequest() {
			requests++
			if ev.PostData != "" {
				withBody++
			}
		}
		if ev.IsResponse() {
			responses++
		}
		if ev.FromExtension {
			extRequests++
		}
	}

	critical, high := 0, 0
	for _, ev := range dom {
		switch ev.Severity {
		case extmon.SevCritical:
			critical++
		case extmon.SevHigh:
			high++
		}
	}

	var rps float64
	if duration > 0 {
		rps = float64(requests) / duration
	}

	domains := uniqueDomains(network)
	top := domains
	if len(top) > 5 {
		top = top[:5]
	}

	return &extmon.RealTimeStats{
		SessionID:           id,
		Running:             running,
		Duration:            duration,
		Requests:            requests,
		Responses:           responses,
		RequestsWithBody:    withBody,
		Activities:          len(activity),
		DomEvents:           len(dom),
		Screenshots:         len(screenshots),
		RequestsPerSecond:   rps,
		CriticalEvents:      critical,
		HighEvents:          high,
		ExtensionRequests:   extRequests,
		RecentNetworkEvents: networkTails(network),
		RecentDomEvents:     domTails(dom),
		Domains:             len(domains),
		TopDomains:          top,
	}
}

// networkTails returns the last N network events, newest first
func networkTails(events []*extmon.NetworkEvent) []*extmon.NetworkTail {
	tails := make([]*extmon.NetworkTail, 0, recentTail)
	for i := len(events) - 1; i >= 0 && len(tails) < recentTail; i-- {
		ev := events[i]
		tails = append(tails, &extmon.NetworkTail{
			Type:      ev.Type,
			Method:    ev.Method,
			URL:       truncate(ev.URL, 60),
			Status:    ev.Status,
			Timestamp: ev.Timestamp,
		})
	}
	return tails
}

// domTails returns the last N dom events, newest first
func domTails(events []*extmon.DomEvent) []*extmon.DomTail {
	tails := make([]*extmon.DomTail, 0, recentTail)
	for i := len(events) - 1; i >= 0 && len(tails) < recentTail; i-- {
		ev := events[i]
		tails = append(tails, &extmon.DomTail{
			Type:      ev.Type,
			Severity:  ev.Severity,
			URL:       truncate(ev.URL, 40),
			Timestamp: ev.Timestamp,
		})
	}
	return tails
}

// truncate cuts on a rune boundary so multi-byte urls survive display
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

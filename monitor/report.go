package monitor

import (
	"net/url"
	"time"

	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/monitor/classify"
)

// BuildReport produces the immutable session snapshot from the current buffer
// state and accumulated findings. Pure with respect to its inputs: identical
// event sequences yield identical reports.
func BuildReport(id string, start, end time.Time, profilePath string,
	buf *Buffer, classifier *classify.Classifier) *extmon.SessionReport {

	network := buf.NetworkEvents()
	dom := buf.DomEvents()
	activity := buf.ActivityEvents()
	automation := buf.AutomationLogs()
	screenshots := buf.Screenshots()
	findings := classifier.Findings()

	var (
		requests      []*extmon.NetworkEvent
		responses     []*extmon.NetworkEvent
		withBody      []*extmon.NetworkEvent
		respWithBody  []*extmon.NetworkEvent
		fromExtension []*extmon.NetworkEvent
		sensitive     []*extmon.NetworkEvent
	)
	for _, ev := range network {
		if ev.IsRequest() {
			requests = append(requests, ev)
			if ev.PostData != "" {
				withBody = append(withBody, ev)
			}
		}
		if ev.IsResponse() {
			responses = append(responses, ev)
			if ev.Body != "" {
				respWithBody = append(respWithBody, ev)
			}
			if ev.ContainsSensitiveData {
				sensitive = append(sensitive, ev)
			}
		}
		if ev.FromExtension {
			fromExtension = append(fromExtension, ev)
		}
	}

	domCritical := 0
	for _, ev := range dom {
		if ev.Severity == extmon.SevCritical {
			domCritical++
		}
	}

	domains := uniqueDomains(network)

	name := id
	if len(name) > 8 {
		name = name[:8]
	}

	return &extmon.SessionReport{
		ID:          id,
		Name:        "Session " + name,
		StartTime:   start,
		EndTime:     end,
		Duration:    end.Sub(start).Seconds(),
		ProfilePath: profilePath,
		Stats: extmon.SessionStats{
			TotalRequests:          len(requests),
			TotalResponses:         len(responses),
			RequestsWithBody:       len(withBody),
			ResponsesWithBody:      len(respWithBody),
			ExtensionRequests:      len(fromExtension),
			ExtensionActivities:    len(activity),
			SensitiveDataTransfers: len(sensitive),
			DomEvents:              len(dom),
			DomCritical:            domCritical,
			UniqueDomains:          len(domains),
			AutomationActions:      len(automation),
			Screenshots:            len(screenshots),
		},
		NetworkEvents:          network,
		DomEvents:              dom,
		ActivityEvents:         activity,
		AutomationLogs:         automation,
		Screenshots:            screenshots,
		ExtensionRequests:      fromExtension,
		RequestsWithPayload:    withBody,
		SensitiveDataTransfers: sensitive,
		Domains:                domains,
		SuspiciousActivities:   findings,
	}
}

// uniqueDomains extracts deduplicated hostnames from every event URL that
// parses, first-seen order. Malformed URLs are skipped, never errors.
func uniqueDomains(events []*extmon.NetworkEvent) []string {
	seen := make(map[string]struct{})
	domains := make([]string, 0)
	for _, ev := range events {
		if ev.URL == "" {
			continue
		}
		u, err := url.Parse(ev.URL)
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := u.Hostname()
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		domains = append(domains, host)
	}
	return domains
}

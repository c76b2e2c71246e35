package classify

import (
	"fmt"
	"net/url"

	"gitlab.com/extmon/extmon"
)

// exfilPostDataLen is the payload size past which an extension initiated
// request is treated as data exfiltration.
const exfilPostDataLen = 50

func requestRules(ev *extmon.NetworkEvent) []*extmon.Finding {
	var out []*extmon.Finding

	if ev.FromExtension && !extmon.IsExtensionURL(ev.URL) {
		out = append(out, networkFinding(ev, extmon.SevHigh,
			"Extension sending data to external server"))
	}
	if ev.FromExtension && len(ev.PostData) > exfilPostDataLen {
		out = append(out, networkFinding(ev, extmon.SevCritical,
			fmt.Sprintf("Extension sending %d bytes to %s", len(ev.PostData), hostnameOf(ev.URL))))
	}
	return out
}

func responseRules(ev *extmon.NetworkEvent) []*extmon.Finding {
	if !ev.ContainsSensitiveData {
		return nil
	}
	return []*extmon.Finding{networkFinding(ev, extmon.SevHigh,
		"Sensitive data detected in response")}
}

func networkFinding(ev *extmon.NetworkEvent, sev extmon.Severity, reason string) *extmon.Finding {
	return &extmon.Finding{
		Severity:  sev,
		Reason:    reason,
		Category:  extmon.CategoryNetwork,
		Timestamp: ev.Timestamp,
		Network:   ev,
	}
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}

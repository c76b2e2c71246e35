package classify

import (
	"strings"

	"gitlab.com/extmon/extmon"
)

func activityRules(ev *extmon.ActivityEvent) []*extmon.Finding {
	var out []*extmon.Finding

	if strings.Contains(ev.APIName, "cookies") {
		out = append(out, activityFinding(ev, extmon.SevHigh, "Cookie access detected"))
	}
	if strings.Contains(ev.APIName, "webRequest") {
		out = append(out, activityFinding(ev, extmon.SevHigh, "Network interception detected"))
	}
	if strings.Contains(ev.APIName, "storage") {
		out = append(out, activityFinding(ev, extmon.SevMedium, "Storage access detected"))
	}
	return out
}

func activityFinding(ev *extmon.ActivityEvent, sev extmon.Severity, reason string) *extmon.Finding {
	return &extmon.Finding{
		Severity:  sev,
		Reason:    reason,
		Category:  extmon.CategoryActivity,
		Timestamp: ev.Timestamp,
		Activity:  ev,
	}
}

package classify

import (
	"fmt"

	"gitlab.com/extmon/extmon"
)

func domRules(ev *extmon.DomEvent) []*extmon.Finding {
	var out []*extmon.Finding

	// The critical catch-all skips types that have a dedicated rule below, so
	// one script injection yields one finding, not two with the same story.
	if ev.Severity == extmon.SevCritical && !hasDedicatedRule(ev.Type) {
		out = append(out, domFinding(ev, extmon.SevCritical,
			fmt.Sprintf("DOM: %s - %s", ev.Type, srcOrAction(ev))))
	}

	switch ev.Type {
	case extmon.DomScriptInjected:
		src := ev.Src
		if src == "" || src == "[inline]" {
			src = "[inline code]"
		}
		out = append(out, domFinding(ev, extmon.SevCritical,
			fmt.Sprintf("Script injected: %s", src)))
	case extmon.DomFormActionChanged:
		out = append(out, domFinding(ev, extmon.SevCritical,
			fmt.Sprintf("Form hijacked: action changed to %s", ev.NewValue)))
	case extmon.DomKeyloggerSuspect:
		out = append(out, domFinding(ev, extmon.SevCritical,
			fmt.Sprintf("Potential keylogger: %s listener on %s", ev.EventType, ev.TargetTag)))
	case extmon.DomIframeInjected:
		if ev.Hidden {
			out = append(out, domFinding(ev, extmon.SevHigh,
				fmt.Sprintf("Hidden iframe injected: %s", ev.Src)))
		}
	case extmon.DomCookieRead:
		out = append(out, domFinding(ev, extmon.SevHigh, "Cookie read by page script"))
	case extmon.DomCookieWrite:
		out = append(out, domFinding(ev, extmon.SevHigh, "Cookie written by page script"))
	}
	return out
}

func hasDedicatedRule(t extmon.DomEventType) bool {
	switch t {
	case extmon.DomScriptInjected, extmon.DomFormActionChanged, extmon.DomKeyloggerSuspect:
		return true
	}
	return false
}

func srcOrAction(ev *extmon.DomEvent) string {
	if ev.Src != "" {
		return ev.Src
	}
	if ev.Action != "" {
		return ev.Action
	}
	return "unknown"
}

func domFinding(ev *extmon.DomEvent, sev extmon.Severity, reason string) *extmon.Finding {
	return &extmon.Finding{
		Severity:  sev,
		Reason:    reason,
		Category:  extmon.CategoryDom,
		Timestamp: ev.Timestamp,
		Dom:       ev,
	}
}

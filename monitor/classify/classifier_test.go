package classify_test

import (
	"fmt"
	"testing"
	"time"

	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/mock"
	"gitlab.com/extmon/monitor/classify"
)

func TestExtensionExfiltration(t *testing.T) {
	c := classify.New()
	payload := `{"cookies":"session=abc; auth=def","history":["a","b"]}`
	c.Request(&extmon.NetworkEvent{
		ID:            "1",
		Type:          extmon.NetRequest,
		Timestamp:     time.Now(),
		URL:           "https://collect.example.com/upload",
		Method:        "POST",
		FromExtension: true,
		ExtensionID:   "abcdefghijklmnop",
		PostData:      payload,
		HasPostData:   true,
	})

	findings := c.Findings()
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings got %d", len(findings))
	}
	if findings[0].Severity != extmon.SevHigh ||
		findings[0].Reason != "Extension sending data to external server" {
		t.Fatalf("unexpected first finding: %+v", findings[0])
	}
	want := fmt.Sprintf("Extension sending %d bytes to collect.example.com", len(payload))
	if findings[1].Severity != extmon.SevCritical || findings[1].Reason != want {
		t.Fatalf("unexpected exfil finding: %+v", findings[1])
	}
	if findings[1].Category != extmon.CategoryNetwork || findings[1].Network == nil {
		t.Fatalf("finding not linked to network event")
	}
}

func TestExtensionInternalTrafficIgnored(t *testing.T) {
	c := classify.New()
	c.Request(&extmon.NetworkEvent{
		ID:            "1",
		Type:          extmon.NetRequest,
		URL:           "chrome-extension://abcdefghijklmnop/options.html",
		FromExtension: true,
	})
	if len(c.Findings()) != 0 {
		t.Fatalf("internal extension traffic should not be flagged")
	}
}

func TestSmallExtensionPayloadSingleFinding(t *testing.T) {
	c := classify.New()
	c.Request(&extmon.NetworkEvent{
		ID:            "1",
		Type:          extmon.NetRequest,
		URL:           "https://api.example.com/ping",
		FromExtension: true,
		PostData:      "ok",
	})
	findings := c.Findings()
	if len(findings) != 1 {
		t.Fatalf("expected only the external-server finding, got %d", len(findings))
	}
	if findings[0].Severity != extmon.SevHigh {
		t.Fatalf("unexpected severity %s", findings[0].Severity)
	}
}

func TestSensitiveResponse(t *testing.T) {
	c := classify.New()
	c.Response(&extmon.NetworkEvent{
		ID:                    "1",
		Type:                  extmon.NetResponse,
		URL:                   "http://example.com/",
		Status:                200,
		ContainsSensitiveData: true,
	})
	c.Response(&extmon.NetworkEvent{
		ID:     "2",
		Type:   extmon.NetResponse,
		URL:    "http://example.com/clean",
		Status: 200,
	})

	findings := c.Findings()
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding got %d", len(findings))
	}
	if findings[0].Reason != "Sensitive data detected in response" {
		t.Fatalf("unexpected reason: %s", findings[0].Reason)
	}
}

func TestScriptInjectedExactlyOneFinding(t *testing.T) {
	c := classify.New()
	ev := mock.MakeMockDomEvent(extmon.DomScriptInjected)
	c.Dom(ev)

	findings := c.Findings()
	if len(findings) != 1 {
		t.Fatalf("script injection must yield exactly one finding, got %d", len(findings))
	}
	if findings[0].Reason != "Script injected: [inline code]" {
		t.Fatalf("unexpected reason: %s", findings[0].Reason)
	}
	if findings[0].Severity != extmon.SevCritical {
		t.Fatalf("unexpected severity: %s", findings[0].Severity)
	}
}

func TestScriptInjectedWithSrc(t *testing.T) {
	c := classify.New()
	ev := mock.MakeMockDomEvent(extmon.DomScriptInjected)
	ev.Src = "https://evil.test/payload.js"
	c.Dom(ev)

	findings := c.Findings()
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding got %d", len(findings))
	}
	if findings[0].Reason != "Script injected: https://evil.test/payload.js" {
		t.Fatalf("unexpected reason: %s", findings[0].Reason)
	}
}

func TestDomRules(t *testing.T) {
	type tc struct {
		name    string
		ev      *extmon.DomEvent
		reasons []string
	}
	formChanged := mock.MakeMockDomEvent(extmon.DomFormActionChanged)
	formChanged.NewValue = "https://evil.test/steal"

	keylogger := mock.MakeMockDomEvent(extmon.DomKeyloggerSuspect)
	keylogger.EventType = "keydown"
	keylogger.TargetTag = "INPUT"

	hiddenIframe := mock.MakeMockDomEvent(extmon.DomIframeInjected)
	hiddenIframe.Src = "https://evil.test/frame"
	hiddenIframe.Hidden = true

	visibleIframe := mock.MakeMockDomEvent(extmon.DomIframeInjected)
	visibleIframe.Src = "https://ads.example.com/frame"

	srcChanged := mock.MakeMockDomEvent(extmon.DomScriptSrcChanged)
	srcChanged.Src = "https://evil.test/v2.js"

	cases := []tc{
		{"form action changed", formChanged,
			[]string{"Form hijacked: action changed to https://evil.test/steal"}},
		{"keylogger", keylogger,
			[]string{"Potential keylogger: keydown listener on INPUT"}},
		{"hidden iframe", hiddenIframe,
			[]string{"Hidden iframe injected: https://evil.test/frame"}},
		{"visible iframe", visibleIframe, nil},
		{"cookie read", mock.MakeMockDomEvent(extmon.DomCookieRead),
			[]string{"Cookie read by page script"}},
		{"cookie write", mock.MakeMockDomEvent(extmon.DomCookieWrite),
			[]string{"Cookie written by page script"}},
		{"critical without dedicated rule", srcChanged,
			[]string{"DOM: script_src_changed - https://evil.test/v2.js"}},
		{"low severity ignored", mock.MakeMockDomEvent(extmon.DomStorageRead), nil},
	}

	for _, tt := range cases {
		c := classify.New()
		c.Dom(tt.ev)
		findings := c.Findings()
		if len(findings) != len(tt.reasons) {
			t.Fatalf("%s: expected %d findings got %d", tt.name, len(tt.reasons), len(findings))
		}
		for i, want := range tt.reasons {
			if findings[i].Reason != want {
				t.Fatalf("%s: got reason %q want %q", tt.name, findings[i].Reason, want)
			}
		}
	}
}

func TestActivityRules(t *testing.T) {
	cases := []struct {
		api      string
		reason   string
		severity extmon.Severity
	}{
		{"cookies.getAll", "Cookie access detected", extmon.SevHigh},
		{"webRequest.onBeforeRequest.addListener", "Network interception detected", extmon.SevHigh},
		{"storage.local.set", "Storage access detected", extmon.SevMedium},
	}
	for _, tt := range cases {
		c := classify.New()
		c.Activity(&extmon.ActivityEvent{
			Timestamp: time.Now(),
			APIName:   tt.api,
		})
		findings := c.Findings()
		if len(findings) != 1 {
			t.Fatalf("%s: expected 1 finding got %d", tt.api, len(findings))
		}
		if findings[0].Reason != tt.reason || findings[0].Severity != tt.severity {
			t.Fatalf("%s: got %+v", tt.api, findings[0])
		}
	}

	c := classify.New()
	c.Activity(&extmon.ActivityEvent{APIName: "tabs.query"})
	if len(c.Findings()) != 0 {
		t.Fatalf("benign api flagged")
	}
}

func TestClassifierResetAndNilSafety(t *testing.T) {
	c := classify.New()
	c.Request(nil)
	c.Response(nil)
	c.Dom(nil)
	c.Activity(nil)
	// a response fed to Request is ignored
	c.Request(&extmon.NetworkEvent{Type: extmon.NetResponse, ContainsSensitiveData: true})
	if len(c.Findings()) != 0 {
		t.Fatalf("expected no findings, got %d", len(c.Findings()))
	}

	c.Dom(mock.MakeMockDomEvent(extmon.DomCookieRead))
	if len(c.Findings()) != 1 {
		t.Fatalf("expected 1 finding")
	}
	c.Reset()
	if len(c.Findings()) != 0 {
		t.Fatalf("reset did not drop findings")
	}
}

package monitor_test

import (
	"testing"
	"time"

	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/mock"
	"gitlab.com/extmon/monitor"
)

func TestBufferCorrelation(t *testing.T) {
	buf := monitor.NewBuffer()
	for _, ev := range mock.MakeMockExchanges(3) {
		if ev.IsRequest() {
			buf.RecordRequest(ev)
		} else {
			buf.AppendResponse(ev)
		}
	}

	req := buf.FindRequestByID("2")
	if req == nil {
		t.Fatalf("request 2 not found")
	}
	if req.URL != "http://example.com/2" {
		t.Fatalf("wrong request correlated: %s", req.URL)
	}

	resp := buf.FindResponseByID("2")
	if resp == nil {
		t.Fatalf("response 2 not found")
	}
	if resp.Status != 200 {
		t.Fatalf("wrong response correlated: %d", resp.Status)
	}

	if buf.FindRequestByID("99") != nil {
		t.Fatalf("expected nil for unknown request id")
	}
	if buf.FindResponseByID("99") != nil {
		t.Fatalf("expected nil for unknown response id")
	}

	if len(buf.NetworkEvents()) != 6 {
		t.Fatalf("expected 6 network events got %d", len(buf.NetworkEvents()))
	}
}

func TestBufferAttachBody(t *testing.T) {
	buf := monitor.NewBuffer()
	for _, ev := range mock.MakeMockExchanges(1) {
		if ev.IsRequest() {
			buf.RecordRequest(ev)
		} else {
			buf.AppendResponse(ev)
		}
	}

	ok := buf.AttachBody("1", func(ev *extmon.NetworkEvent) {
		ev.Body = "<html></html>"
	})
	if !ok {
		t.Fatalf("attach to existing response failed")
	}
	if buf.FindResponseByID("1").Body != "<html></html>" {
		t.Fatalf("body mutation not visible")
	}

	if buf.AttachBody("nope", func(ev *extmon.NetworkEvent) {}) {
		t.Fatalf("attach to missing response should return false")
	}
}

func TestBufferFreeze(t *testing.T) {
	buf := monitor.NewBuffer()
	for _, ev := range mock.MakeMockExchanges(1) {
		if ev.IsRequest() {
			buf.RecordRequest(ev)
		} else {
			buf.AppendResponse(ev)
		}
	}
	buf.Freeze()

	buf.RecordRequest(&extmon.NetworkEvent{ID: "late", Type: extmon.NetRequest})
	buf.AppendDom(&extmon.DomEvent{Type: extmon.DomCookieRead})
	if buf.AppendActivity(mock.MakeMockActivities(1)[0]) {
		t.Fatalf("frozen buffer accepted activity")
	}
	if len(buf.NetworkEvents()) != 2 {
		t.Fatalf("frozen buffer accepted network event")
	}
	if len(buf.DomEvents()) != 0 {
		t.Fatalf("frozen buffer accepted dom event")
	}

	// body attachment stays allowed on a frozen buffer
	if !buf.AttachBody("1", func(ev *extmon.NetworkEvent) { ev.Body = "late body" }) {
		t.Fatalf("attach on frozen buffer failed")
	}
}

func TestBufferFinalize(t *testing.T) {
	buf := monitor.NewBuffer()
	for _, ev := range mock.MakeMockExchanges(1) {
		if ev.IsRequest() {
			buf.RecordRequest(ev)
		} else {
			buf.AppendResponse(ev)
		}
	}
	buf.Freeze()
	if !buf.AttachBody("1", func(ev *extmon.NetworkEvent) { ev.Body = "grace body" }) {
		t.Fatalf("attach during the grace window failed")
	}

	buf.Finalize()
	if buf.AttachBody("1", func(ev *extmon.NetworkEvent) { ev.Body = "late body" }) {
		t.Fatalf("finalized buffer accepted a body")
	}
	if buf.FindResponseByID("1").Body != "grace body" {
		t.Fatalf("finalized record mutated")
	}

	// clear reopens for the next session
	buf.Clear()
	buf.AppendResponse(&extmon.NetworkEvent{ID: "1", Type: extmon.NetResponse})
	if !buf.AttachBody("1", func(ev *extmon.NetworkEvent) { ev.Body = "fresh" }) {
		t.Fatalf("cleared buffer rejected attachment")
	}
}

func TestBufferActivityDedup(t *testing.T) {
	buf := monitor.NewBuffer()
	ts := time.Date(2025, 4, 12, 10, 0, 0, 0, time.UTC)
	a := &extmon.ActivityEvent{Timestamp: ts, APIName: "cookies.getAll"}
	b := &extmon.ActivityEvent{Timestamp: ts, APIName: "cookies.getAll"}
	c := &extmon.ActivityEvent{Timestamp: ts, APIName: "tabs.query"}

	if !buf.AppendActivity(a) {
		t.Fatalf("first record rejected")
	}
	if buf.AppendActivity(b) {
		t.Fatalf("duplicate record accepted")
	}
	if !buf.AppendActivity(c) {
		t.Fatalf("distinct api name rejected")
	}
	if len(buf.ActivityEvents()) != 2 {
		t.Fatalf("expected 2 activities got %d", len(buf.ActivityEvents()))
	}
}

func TestBufferClear(t *testing.T) {
	buf := monitor.NewBuffer()
	buf.RecordRequest(&extmon.NetworkEvent{ID: "1", Type: extmon.NetRequest})
	buf.AppendActivity(mock.MakeMockActivities(1)[0])
	buf.Freeze()
	buf.Clear()

	if len(buf.NetworkEvents()) != 0 || len(buf.ActivityEvents()) != 0 {
		t.Fatalf("clear left events behind")
	}
	// clear also unfreezes and resets dedup
	buf.RecordRequest(&extmon.NetworkEvent{ID: "1", Type: extmon.NetRequest})
	if len(buf.NetworkEvents()) != 1 {
		t.Fatalf("cleared buffer rejected append")
	}
	if !buf.AppendActivity(mock.MakeMockActivities(1)[0]) {
		t.Fatalf("cleared buffer kept dedup state")
	}
}

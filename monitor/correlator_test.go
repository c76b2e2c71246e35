package monitor_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/mock"
	"gitlab.com/extmon/monitor"
	"gitlab.com/extmon/monitor/classify"
)

func testCorrelator() (*monitor.Buffer, *classify.Classifier, *monitor.Correlator) {
	buf := monitor.NewBuffer()
	c := classify.New()
	return buf, c, monitor.NewCorrelator(buf, c)
}

func TestCorrelatorLifecycle(t *testing.T) {
	buf, classifier, cor := testCorrelator()

	cor.RequestPaused(&extmon.RequestPaused{
		ID:     "1",
		URL:    "http://example.com/login",
		Method: "GET",
	})
	cor.ResponseReceived(&extmon.ResponseReceived{
		ID:         "1",
		URL:        "http://example.com/login",
		Status:     200,
		StatusText: "OK",
		MimeType:   "text/html",
	})
	fetcher := &mock.BodyFetcher{
		ResponseBodyFn: func(id string) (string, bool, error) {
			return "<html>enter your password</html>", false, nil
		},
	}
	cor.LoadingFinished(&extmon.LoadingFinished{ID: "1"}, fetcher)
	cor.WaitBodies(time.Second)

	resp := buf.FindResponseByID("1")
	if resp == nil {
		t.Fatalf("response not recorded")
	}
	if resp.Body != "<html>enter your password</html>" {
		t.Fatalf("body not attached: %q", resp.Body)
	}
	if !resp.ContainsSensitiveData {
		t.Fatalf("sensitive body not flagged")
	}

	findings := classifier.Findings()
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding got %d", len(findings))
	}
	if findings[0].Reason != "Sensitive data detected in response" {
		t.Fatalf("unexpected reason: %s", findings[0].Reason)
	}
}

func TestCorrelatorTruncationScansFullBody(t *testing.T) {
	buf, _, cor := testCorrelator()

	cor.RequestPaused(&extmon.RequestPaused{ID: "1", URL: "http://example.com/big"})
	cor.ResponseReceived(&extmon.ResponseReceived{ID: "1", URL: "http://example.com/big", Status: 200})

	// the only sensitive match sits past the storage cap
	body := strings.Repeat("a", 10001) + "wallet"
	fetcher := &mock.BodyFetcher{
		ResponseBodyFn: func(id string) (string, bool, error) { return body, false, nil },
	}
	cor.LoadingFinished(&extmon.LoadingFinished{ID: "1"}, fetcher)
	cor.WaitBodies(time.Second)

	resp := buf.FindResponseByID("1")
	if len(resp.Body) != 10000 {
		t.Fatalf("body not capped, len=%d", len(resp.Body))
	}
	if !resp.BodyTruncated {
		t.Fatalf("truncation not flagged")
	}
	if !resp.ContainsSensitiveData {
		t.Fatalf("match past the cap was lost")
	}
}

func TestCorrelatorBase64Body(t *testing.T) {
	buf, classifier, cor := testCorrelator()

	cor.RequestPaused(&extmon.RequestPaused{ID: "1", URL: "http://example.com/img"})
	cor.ResponseReceived(&extmon.ResponseReceived{ID: "1", URL: "http://example.com/img", Status: 200})

	encoded := strings.Repeat("cGFzc3dvcmQ=", 30)
	fetcher := &mock.BodyFetcher{
		ResponseBodyFn: func(id string) (string, bool, error) { return encoded, true, nil },
	}
	cor.LoadingFinished(&extmon.LoadingFinished{ID: "1"}, fetcher)
	cor.WaitBodies(time.Second)

	resp := buf.FindResponseByID("1")
	if !strings.HasPrefix(resp.Body, "[BASE64] ") || !strings.HasSuffix(resp.Body, "...") {
		t.Fatalf("base64 placeholder malformed: %q", resp.Body)
	}
	if len(resp.Body) != len("[BASE64] ")+200+len("...") {
		t.Fatalf("preview not capped at 200, len=%d", len(resp.Body))
	}
	if !resp.BodyBase64 {
		t.Fatalf("base64 flag missing")
	}
	// binary payloads are never lexically scanned
	if resp.ContainsSensitiveData {
		t.Fatalf("encoded body should not be scanned")
	}
	if len(classifier.Findings()) != 0 {
		t.Fatalf("unexpected findings for binary body")
	}
}

func TestCorrelatorOrphanBody(t *testing.T) {
	_, classifier, cor := testCorrelator()

	fetcher := &mock.BodyFetcher{
		ResponseBodyFn: func(id string) (string, bool, error) { return "password", false, nil },
	}
	cor.LoadingFinished(&extmon.LoadingFinished{ID: "ghost"}, fetcher)
	cor.WaitBodies(time.Second)

	if len(classifier.Findings()) != 0 {
		t.Fatalf("orphan body produced findings")
	}
}

func TestCorrelatorExtensionAttribution(t *testing.T) {
	buf, _, cor := testCorrelator()

	cor.RequestPaused(mock.MakeMockExtensionRequest("1", "collect.example.com", "x"))
	cor.ResponseReceived(&extmon.ResponseReceived{ID: "1", URL: "https://collect.example.com/collect", Status: 200})
	// orphan response with no correlated request
	cor.ResponseReceived(&extmon.ResponseReceived{ID: "2", URL: "http://other.example.com/", Status: 200})

	req := buf.FindRequestByID("1")
	if !req.FromExtension {
		t.Fatalf("extension initiator not attributed")
	}
	if req.ExtensionID != "abcdefghijklmnop" {
		t.Fatalf("wrong extension id: %s", req.ExtensionID)
	}

	resp := buf.FindResponseByID("1")
	if !resp.FromExtension {
		t.Fatalf("attribution not copied to response")
	}
	orphan := buf.FindResponseByID("2")
	if orphan.FromExtension {
		t.Fatalf("orphan response attributed to extension")
	}
}

func TestCorrelatorLateBodyDropped(t *testing.T) {
	buf, classifier, cor := testCorrelator()

	cor.RequestPaused(&extmon.RequestPaused{ID: "1", URL: "http://example.com/slow"})
	cor.ResponseReceived(&extmon.ResponseReceived{ID: "1", URL: "http://example.com/slow", Status: 200})

	release := make(chan struct{})
	fetcher := &mock.BodyFetcher{
		ResponseBodyFn: func(id string) (string, bool, error) {
			<-release
			return "late password body", false, nil
		},
	}
	cor.LoadingFinished(&extmon.LoadingFinished{ID: "1"}, fetcher)

	// stop sequence: freeze, bounded grace, finalize
	buf.Freeze()
	cor.WaitBodies(30 * time.Millisecond)
	buf.Finalize()

	close(release)
	cor.WaitBodies(time.Second)

	resp := buf.FindResponseByID("1")
	if resp.Body != "" || resp.ContainsSensitiveData {
		t.Fatalf("retrieval past the grace window mutated a finalized record: %+v", resp)
	}
	if len(classifier.Findings()) != 0 {
		t.Fatalf("retrieval past the grace window produced findings")
	}
}

func TestCorrelatorFrozenRequestNotClassified(t *testing.T) {
	buf, classifier, cor := testCorrelator()
	buf.Freeze()

	cor.RequestPaused(mock.MakeMockExtensionRequest("1", "collect.example.com",
		strings.Repeat("x", 60)))

	if buf.FindRequestByID("1") != nil {
		t.Fatalf("frozen buffer recorded the request")
	}
	// a finding must never point at an event no list contains
	if len(classifier.Findings()) != 0 {
		t.Fatalf("rejected event was classified")
	}
}

func TestCorrelatorFetchFailureTolerated(t *testing.T) {
	buf, _, cor := testCorrelator()

	cor.RequestPaused(&extmon.RequestPaused{ID: "1", URL: "http://example.com/"})
	cor.ResponseReceived(&extmon.ResponseReceived{ID: "1", URL: "http://example.com/", Status: 204})

	fetcher := &mock.BodyFetcher{
		ResponseBodyFn: func(id string) (string, bool, error) {
			return "", false, errors.New("No data found for resource with given identifier")
		},
	}
	cor.LoadingFinished(&extmon.LoadingFinished{ID: "1"}, fetcher)
	cor.WaitBodies(time.Second)

	resp := buf.FindResponseByID("1")
	if resp.Body != "" || resp.BodyTruncated || resp.ContainsSensitiveData {
		t.Fatalf("failed fetch mutated the response record")
	}
}

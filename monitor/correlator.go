package monitor

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/monitor/classify"
)

const (
	// bodyCharLimit caps stored textual response bodies, the sensitive scan
	// runs over the full body before this is applied.
	bodyCharLimit = 10000
	// base64PreviewLen is how much of a binary body survives as placeholder
	base64PreviewLen = 200
)

// Correlator stitches together the three phase lifecycle of one network
// exchange: request paused -> response received -> loading finished. It
// observes, it never blocks or rewrites traffic.
type Correlator struct {
	buf        *Buffer
	classifier *classify.Classifier
	inflight   sync.WaitGroup
}

// NewCorrelator over the session buffer
func NewCorrelator(buf *Buffer, classifier *classify.Classifier) *Correlator {
	return &Correlator{buf: buf, classifier: classifier}
}

// RequestPaused records the outgoing request and tags extension attribution
func (c *Correlator) RequestPaused(ev *extmon.RequestPaused) {
	if ev == nil || ev.ID == "" {
		return
	}
	record := &extmon.NetworkEvent{
		ID:           ev.ID,
		Type:         extmon.NetRequest,
		Timestamp:    time.Now(),
		URL:          ev.URL,
		Method:       ev.Method,
		ResourceType: ev.ResourceType,
		Headers:      ev.Headers,
		PostData:     ev.PostData,
		HasPostData:  ev.HasPostData || ev.PostData != "",
	}

	if extmon.IsExtensionURL(ev.URL) || extmon.IsExtensionURL(ev.InitiatorURL) {
		record.FromExtension = true
		record.ExtensionID = extmon.ExtensionIDFromURL(ev.InitiatorURL)
		if record.ExtensionID == "" {
			record.ExtensionID = extmon.ExtensionIDFromURL(ev.URL)
		}
	}

	// a rejected event must not leave a finding behind with no backing record
	if !c.buf.RecordRequest(record) {
		return
	}
	c.classifier.Request(record)
}

// ResponseReceived records the response half, extension attribution is copied
// from the correlated request. An orphan response is tolerated with the
// defensive default false.
func (c *Correlator) ResponseReceived(ev *extmon.ResponseReceived) {
	if ev == nil || ev.ID == "" {
		return
	}
	record := &extmon.NetworkEvent{
		ID:         ev.ID,
		Type:       extmon.NetResponse,
		Timestamp:  time.Now(),
		URL:        ev.URL,
		Status:     ev.Status,
		StatusText: ev.StatusText,
		MimeType:   ev.MimeType,
		Headers:    ev.Headers,
	}
	if req := c.buf.FindRequestByID(ev.ID); req != nil {
		record.FromExtension = req.FromExtension
		record.ExtensionID = req.ExtensionID
	}
	c.buf.AppendResponse(record)
}

// LoadingFinished fetches the response body off the event delivery path and
// attaches it to the stored response record. Retrieval failures are expected
// (evicted bodies, non retrievable resource types) and leave the body unset.
func (c *Correlator) LoadingFinished(ev *extmon.LoadingFinished, fetcher extmon.BodyFetcher) {
	if ev == nil || ev.ID == "" || fetcher == nil {
		return
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.attachBody(ev.ID, fetcher)
	}()
}

func (c *Correlator) attachBody(id string, fetcher extmon.BodyFetcher) {
	body, encoded, err := fetcher.ResponseBody(id)
	if err != nil {
		log.Debug().Str("request_id", id).Err(err).Msg("no body captured")
		return
	}

	// scan before truncation so matches past the cap still flag
	sensitive := !encoded && ContainsSensitiveData(body)

	found := c.buf.AttachBody(id, func(resp *extmon.NetworkEvent) {
		if encoded {
			preview := body
			if len(preview) > base64PreviewLen {
				preview = preview[:base64PreviewLen]
			}
			resp.Body = "[BASE64] " + preview + "..."
			resp.BodyBase64 = true
			return
		}
		if len(body) > bodyCharLimit {
			resp.Body = body[:bodyCharLimit]
			resp.BodyTruncated = true
		} else {
			resp.Body = body
		}
		resp.ContainsSensitiveData = sensitive
	})
	if !found {
		// response evicted or the buffer already finalized, drop the body
		return
	}
	if resp := c.buf.FindResponseByID(id); resp != nil {
		c.classifier.Response(resp)
	}
}

// WaitBodies blocks until in-flight body retrievals settle or the grace
// period elapses, whichever is first.
func (c *Correlator) WaitBodies(grace time.Duration) {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		log.Warn().Dur("grace", grace).Msg("body retrievals still outstanding, finalizing without them")
	}
}

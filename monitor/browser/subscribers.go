package browser

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/extmon/extmon"
)

func (t *Tab) subscribeLoadEvent() {
	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		select {
		case t.navigationCh <- struct{}{}:
		default:
		}
	})
}

// subscribeNetworkEvents wires the response half of the exchange lifecycle.
// requestWillBeSent is only harvested for initiator attribution, the request
// record itself comes from the interception handler.
func (t *Tab) subscribeNetworkEvents() {
	t.t.Subscribe("Network.requestWillBeSent", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.NetworkRequestWillBeSentEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			return
		}
		p := message.Params
		if p.Initiator != nil {
			t.setInitiator(p.RequestId, p.Initiator.Url)
		}
	})

	t.t.Subscribe("Network.responseReceived", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.NetworkResponseReceivedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			return
		}
		p := message.Params
		if p.Response == nil {
			return
		}
		t.feed.ResponseReceived(&extmon.ResponseReceived{
			ID:         p.RequestId,
			URL:        p.Response.Url,
			Status:     p.Response.Status,
			StatusText: p.Response.StatusText,
			MimeType:   p.Response.MimeType,
			Headers:    headerMap(p.Response.Headers),
		})
	})

	t.t.Subscribe("Network.loadingFinished", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.NetworkLoadingFinishedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			return
		}
		t.feed.LoadingFinished(&extmon.LoadingFinished{ID: message.Params.RequestId}, t)
	})
}

// subscribeInterception observes paused requests and always lets them
// continue unmodified, monitoring never alters traffic.
func (t *Tab) subscribeInterception() {
	t.t.Subscribe("Fetch.requestPaused", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.FetchRequestPausedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			log.Warn().Err(err).Msg("unable to decode paused request")
			return
		}
		p := message.Params

		// release before any processing so monitoring cannot stall the page
		defer t.t.Fetch.ContinueRequestWithParams(&gcdapi.FetchContinueRequestParams{
			RequestId: p.RequestId,
		})

		if p.ResponseHeaders != nil {
			// response stage is not requested, ignore defensively
			return
		}
		if p.Request == nil {
			return
		}

		// the network domain keys the exchange by NetworkId
		id := p.NetworkId
		if id == "" {
			id = p.RequestId
		}

		t.feed.RequestPaused(&extmon.RequestPaused{
			ID:           id,
			URL:          p.Request.Url,
			Method:       p.Request.Method,
			ResourceType: p.ResourceType,
			Headers:      headerMap(p.Request.Headers),
			PostData:     p.Request.PostData,
			HasPostData:  p.Request.HasPostData,
			InitiatorURL: t.initiatorOf(id),
		})
	})
}

// subscribeDomBinding receives instrumentation reports pushed from inside
// monitored pages through the exposed binding.
func (t *Tab) subscribeDomBinding() {
	t.t.Subscribe("Runtime.bindingCalled", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.RuntimeBindingCalledEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			return
		}
		if message.Params.Name != domBindingName {
			return
		}
		ev := domEventFromPayload(message.Params.Payload)
		if ev == nil {
			return
		}
		t.dom.DomEvent(ev)
	})
}

// domEventFromPayload decodes the loosely typed report the page script sends.
// Unknown attributes land in Extra so nothing is silently dropped.
func domEventFromPayload(payload string) *extmon.DomEvent {
	if !gjson.Valid(payload) {
		return nil
	}
	ev := &extmon.DomEvent{
		Type:      extmon.DomEventType(gjson.Get(payload, "type").String()),
		Severity:  extmon.Severity(gjson.Get(payload, "severity").String()),
		URL:       gjson.Get(payload, "url").String(),
		Src:       gjson.Get(payload, "src").String(),
		Action:    gjson.Get(payload, "action").String(),
		Method:    gjson.Get(payload, "method").String(),
		Href:      gjson.Get(payload, "href").String(),
		OldValue:  gjson.Get(payload, "oldValue").String(),
		NewValue:  gjson.Get(payload, "newValue").String(),
		EventType: gjson.Get(payload, "eventType").String(),
		TargetTag: gjson.Get(payload, "targetTag").String(),
		Key:       gjson.Get(payload, "key").String(),
		Storage:   gjson.Get(payload, "storage").String(),
		Content:   gjson.Get(payload, "content").String(),
		Message:   gjson.Get(payload, "message").String(),
		Hidden:    gjson.Get(payload, "hidden").Bool(),
		HasBody:   gjson.Get(payload, "hasBody").Bool(),
	}
	if ts, err := time.Parse(time.RFC3339Nano, gjson.Get(payload, "timestamp").String()); err == nil {
		ev.Timestamp = ts
	}

	known := map[string]bool{
		"type": true, "severity": true, "url": true, "src": true,
		"action": true, "method": true, "href": true, "oldValue": true,
		"newValue": true, "eventType": true, "targetTag": true, "key": true,
		"storage": true, "content": true, "message": true, "hidden": true,
		"hasBody": true, "timestamp": true,
	}
	gjson.Parse(payload).ForEach(func(k, v gjson.Result) bool {
		if !known[k.String()] {
			if ev.Extra == nil {
				ev.Extra = make(map[string]interface{})
			}
			ev.Extra[k.String()] = v.Value()
		}
		return true
	})
	return ev
}

func headerMap(raw map[string]interface{}) map[string]string {
	if raw == nil {
		return nil
	}
	headers := make(map[string]string, len(raw))
	for k, v := range raw {
		switch rv := v.(type) {
		case string:
			headers[k] = rv
		case nil:
			headers[k] = ""
		default:
			log.Debug().Str("header_name", k).Msg("unable to encode header value")
		}
	}
	return headers
}

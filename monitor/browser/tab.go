package browser

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/extmon/extmon"
)

// domBindingName is exposed into every page, the injected monitor script
// reports through it
const domBindingName = "__extmonDomEvent"

var (
	ErrNavigating        = errors.New("navigation failed")
	ErrNavigationTimeout = errors.New("navigation timed out")
)

// Tab wraps one attached page target. Protocol events arrive on gcd's
// dispatch goroutine and are handed straight to the feeds, the feeds own
// their own locking.
type Tab struct {
	g    *gcd.Gcd
	t    *gcd.ChromeTarget
	feed extmon.NetworkFeed
	dom  extmon.DomFeed

	initMutex  sync.Mutex
	initiators map[string]string // request id -> initiator url

	navigationCh chan struct{}
	exitCh       chan struct{}
}

// NewTab attaches monitoring to the target: network capture with bodies,
// observe-only request interception and the in-page instrumentation script.
func NewTab(g *gcd.Gcd, target *gcd.ChromeTarget, feed extmon.NetworkFeed, dom extmon.DomFeed) (*Tab, error) {
	t := &Tab{
		g:            g,
		t:            target,
		feed:         feed,
		dom:          dom,
		initiators:   make(map[string]string),
		navigationCh: make(chan struct{}, 1),
		exitCh:       make(chan struct{}),
	}

	t.t.Page.Enable()
	t.t.Runtime.Enable()
	t.t.Network.EnableWithParams(&gcdapi.NetworkEnableParams{
		MaxPostDataSize:       -1,
		MaxResourceBufferSize: -1,
		MaxTotalBufferSize:    -1,
	})
	// request stage only, responses flow through the network domain
	t.t.Fetch.EnableWithParams(&gcdapi.FetchEnableParams{
		Patterns: []*gcdapi.FetchRequestPattern{
			{UrlPattern: "*", RequestStage: "Request"},
		},
		HandleAuthRequests: false,
	})

	t.t.Runtime.AddBindingWithParams(&gcdapi.RuntimeAddBindingParams{
		Name: domBindingName,
	})
	if _, err := t.t.Page.AddScriptToEvaluateOnNewDocumentWithParams(&gcdapi.PageAddScriptToEvaluateOnNewDocumentParams{
		Source: domMonitorScript,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to install instrumentation script")
	}

	t.subscribeLoadEvent()
	t.subscribeCrashed()
	t.subscribeNetworkEvents()
	t.subscribeInterception()
	t.subscribeDomBinding()
	return t, nil
}

// Navigate and wait for the load event or context expiry
func (t *Tab) Navigate(ctx context.Context, url string) error {
	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return err
	}
	if errText != "" {
		return errors.Wrap(ErrNavigating, errText)
	}

	select {
	case <-t.navigationCh:
		return nil
	case <-t.exitCh:
		return nil
	case <-ctx.Done():
		return ErrNavigationTimeout
	}
}

// ResponseBody for a finished exchange, implements extmon.BodyFetcher
func (t *Tab) ResponseBody(id string) (string, bool, error) {
	return t.t.Network.GetResponseBody(id)
}

// Screenshot returns a png image, base64 encoded, or error if failed
func (t *Tab) Screenshot() (string, error) {
	params := &gcdapi.PageCaptureScreenshotParams{
		Format:  "png",
		Quality: 100,
		Clip: &gcdapi.PageViewport{
			X:      0,
			Y:      0,
			Width:  1024,
			Height: 768,
			Scale:  float64(1)},
		FromSurface: true,
	}
	return t.t.Page.CaptureScreenshotWithParams(params)
}

// CaptureToFile takes a screenshot and writes it under dir, returning the
// record for the session buffer
func (t *Tab) CaptureToFile(dir, reason, pageURL string) (*extmon.Screenshot, error) {
	encoded, err := t.Screenshot()
	if err != nil {
		return nil, errors.Wrap(err, "failed to capture screenshot")
	}
	img, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode screenshot")
	}
	if err := os.MkdirAll(dir, 0766); err != nil {
		return nil, err
	}
	now := time.Now()
	filename := "screenshot_" + now.Format("20060102_150405.000") + ".png"
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, img, 0644); err != nil {
		return nil, errors.Wrap(err, "failed to write screenshot")
	}
	return &extmon.Screenshot{
		Timestamp: now,
		Filename:  filename,
		Filepath:  path,
		Reason:    reason,
		URL:       pageURL,
	}, nil
}

// Close detaches the tab, in-flight event handlers are abandoned
func (t *Tab) Close() {
	close(t.exitCh)
}

func (t *Tab) setInitiator(id, url string) {
	if id == "" || url == "" {
		return
	}
	t.initMutex.Lock()
	t.initiators[id] = url
	t.initMutex.Unlock()
}

func (t *Tab) initiatorOf(id string) string {
	t.initMutex.Lock()
	defer t.initMutex.Unlock()
	return t.initiators[id]
}

func (t *Tab) subscribeCrashed() {
	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		log.Warn().Msg("monitored tab crashed")
	})
}

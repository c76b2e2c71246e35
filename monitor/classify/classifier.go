// Package classify applies the fixed rule set to finalized events, producing
// suspicious activity findings. Rules are independent and order insensitive,
// a single event may satisfy several rules and every matching finding is
// emitted. Classification is total over malformed input, a bad event yields
// no findings rather than a panic.
package classify

import (
	"sync"

	"gitlab.com/extmon/extmon"
)

// Classifier accumulates findings for one session
type Classifier struct {
	mu       sync.Mutex
	findings []*extmon.Finding
}

// New classifier with an empty findings list
func New() *Classifier {
	return &Classifier{findings: make([]*extmon.Finding, 0)}
}

// Request classifies a finalized request event
func (c *Classifier) Request(ev *extmon.NetworkEvent) {
	if ev == nil || !ev.IsRequest() {
		return
	}
	c.add(requestRules(ev))
}

// Response classifies a response event after body attachment
func (c *Classifier) Response(ev *extmon.NetworkEvent) {
	if ev == nil || !ev.IsResponse() {
		return
	}
	c.add(responseRules(ev))
}

// Dom classifies an instrumentation event
func (c *Classifier) Dom(ev *extmon.DomEvent) {
	if ev == nil {
		return
	}
	c.add(domRules(ev))
}

// Activity classifies one extension API invocation
func (c *Classifier) Activity(ev *extmon.ActivityEvent) {
	if ev == nil {
		return
	}
	c.add(activityRules(ev))
}

// Findings returns the ordered, un-deduplicated findings list
func (c *Classifier) Findings() []*extmon.Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*extmon.Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Reset drops accumulated findings, invoked at session start
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.findings = make([]*extmon.Finding, 0)
	c.mu.Unlock()
}

func (c *Classifier) add(findings []*extmon.Finding) {
	if len(findings) == 0 {
		return
	}
	c.mu.Lock()
	c.findings = append(c.findings, findings...)
	c.mu.Unlock()
}

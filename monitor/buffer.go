package monitor

import (
	"sync"

	"gitlab.com/extmon/extmon"
)

// Buffer holds all events for the current session in arrival order and owns
// the correlation lookup from request id to request record. Event delivery
// comes from the debugger dispatch goroutine, the activity poller and the
// page binding callback, so every mutation happens under the lock.
type Buffer struct {
	mu        sync.Mutex
	frozen    bool
	finalized bool

	network     []*extmon.NetworkEvent
	dom         []*extmon.DomEvent
	activity    []*extmon.ActivityEvent
	automation  []*extmon.AutomationLog
	screenshots []*extmon.Screenshot

	requests     map[string]*extmon.NetworkEvent
	activitySeen map[string]struct{}
}

// NewBuffer ready for appends
func NewBuffer() *Buffer {
	return &Buffer{
		requests:     make(map[string]*extmon.NetworkEvent),
		activitySeen: make(map[string]struct{}),
	}
}

// RecordRequest inserts into the flat network list and the correlation map,
// returns false when the buffer no longer accepts events.
func (b *Buffer) RecordRequest(ev *extmon.NetworkEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return false
	}
	b.network = append(b.network, ev)
	b.requests[ev.ID] = ev
	return true
}

// AppendResponse to the flat network list, returns false when the buffer no
// longer accepts events.
func (b *Buffer) AppendResponse(ev *extmon.NetworkEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return false
	}
	b.network = append(b.network, ev)
	return true
}

// FindRequestByID returns the recorded request for an exchange, nil when no
// request with that id arrived.
func (b *Buffer) FindRequestByID(id string) *extmon.NetworkEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[id]
}

// FindResponseByID returns the most recent response event with a matching id,
// nil when the response hasn't arrived yet. Callers treat nil as a soft-fail,
// bodies legitimately arrive out of order or never.
func (b *Buffer) FindResponseByID(id string) *extmon.NetworkEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.network) - 1; i >= 0; i-- {
		if b.network[i].ID == id && b.network[i].IsResponse() {
			return b.network[i]
		}
	}
	return nil
}

// AttachBody mutates the matching response record in place. Attachment is
// allowed on a frozen buffer, the stop sequence grants in-flight retrievals a
// grace period before the report is built; after Finalize the records are
// immutable and the body is dropped. Returns false when the body was not
// attached.
func (b *Buffer) AttachBody(id string, mutate func(ev *extmon.NetworkEvent)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return false
	}
	for i := len(b.network) - 1; i >= 0; i-- {
		if b.network[i].ID == id && b.network[i].IsResponse() {
			mutate(b.network[i])
			return true
		}
	}
	return false
}

// AppendDom event, returns false when the buffer no longer accepts events
func (b *Buffer) AppendDom(ev *extmon.DomEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return false
	}
	b.dom = append(b.dom, ev)
	return true
}

// AppendActivity merges one activity record, returns false when a record with
// the same timestamp and api name was merged before (overlapping poll reads).
func (b *Buffer) AppendActivity(ev *extmon.ActivityEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return false
	}
	key := ev.DedupKey()
	if _, seen := b.activitySeen[key]; seen {
		return false
	}
	b.activitySeen[key] = struct{}{}
	b.activity = append(b.activity, ev)
	return true
}

// AppendAutomation log line
func (b *Buffer) AppendAutomation(entry *extmon.AutomationLog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return
	}
	b.automation = append(b.automation, entry)
}

// AppendScreenshot record
func (b *Buffer) AppendScreenshot(shot *extmon.Screenshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return
	}
	b.screenshots = append(b.screenshots, shot)
}

// Clear resets all lists and the correlation map, invoked once per session start
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = false
	b.finalized = false
	b.network = nil
	b.dom = nil
	b.activity = nil
	b.automation = nil
	b.screenshots = nil
	b.requests = make(map[string]*extmon.NetworkEvent)
	b.activitySeen = make(map[string]struct{})
}

// Freeze stops new appends. In place body attachment stays allowed until
// Finalize.
func (b *Buffer) Freeze() {
	b.mu.Lock()
	b.frozen = true
	b.mu.Unlock()
}

// Finalize makes the buffered records immutable. Body retrievals that outlive
// the stop grace period land here and are dropped.
func (b *Buffer) Finalize() {
	b.mu.Lock()
	b.frozen = true
	b.finalized = true
	b.mu.Unlock()
}

// NetworkEvents returns the arrival ordered network list (shared event
// pointers, callers must not mutate).
func (b *Buffer) NetworkEvents() []*extmon.NetworkEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*extmon.NetworkEvent, len(b.network))
	copy(out, b.network)
	return out
}

// DomEvents in arrival order
func (b *Buffer) DomEvents() []*extmon.DomEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*extmon.DomEvent, len(b.dom))
	copy(out, b.dom)
	return out
}

// ActivityEvents in arrival order
func (b *Buffer) ActivityEvents() []*extmon.ActivityEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*extmon.ActivityEvent, len(b.activity))
	copy(out, b.activity)
	return out
}

// AutomationLogs in arrival order
func (b *Buffer) AutomationLogs() []*extmon.AutomationLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*extmon.AutomationLog, len(b.automation))
	copy(out, b.automation)
	return out
}

// Screenshots in arrival order
func (b *Buffer) Screenshots() []*extmon.Screenshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*extmon.Screenshot, len(b.screenshots))
	copy(out, b.screenshots)
	return out
}

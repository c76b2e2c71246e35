package monitor

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/monitor/classify"
)

// revive:exported
var (
	ErrAlreadyRunning = errors.New("monitoring session already running")
	ErrNotRunning     = errors.New("no monitoring session running")
)

// Session is one bounded monitoring run with an explicit lifecycle. Exactly
// one session buffer exists at a time, starting while active fails fast.
type Session struct {
	mu  sync.Mutex
	cfg *extmon.Config

	store      extmon.ReportStorer
	buf        *Buffer
	classifier *classify.Classifier
	correlator *Correlator
	poller     *Poller
	source     extmon.ActivitySource

	id          string
	startTime   time.Time
	profilePath string
	running     bool
}

// NewSession with an optional report store, nil skips persistence
func NewSession(cfg *extmon.Config, store extmon.ReportStorer) *Session {
	buf := NewBuffer()
	classifier := classify.New()
	return &Session{
		cfg:        cfg,
		store:      store,
		buf:        buf,
		classifier: classifier,
		correlator: NewCorrelator(buf, classifier),
	}
}

// Start a new monitoring run. The activity source may be nil when no activity
// log is available.
func (s *Session) Start(source extmon.ActivitySource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	s.id = uuid.NewV4().String()
	s.startTime = time.Now()
	s.buf.Clear()
	s.classifier.Reset()
	s.correlator = NewCorrelator(s.buf, s.classifier)
	s.source = source

	if source != nil {
		s.poller = NewPoller(source, time.Duration(s.cfg.ActivityPoll())*time.Millisecond)
		s.poller.Start(s.MergeActivities)
	}

	s.running = true
	log.Info().Str("session_id", s.id).Msg("monitoring session started")
	return nil
}

// Stop freezes the buffer, cancels polling, grants in-flight body retrievals
// a bounded grace period and builds the report. The report is persisted when
// a store is configured; a persistence failure is returned to the caller but
// the in-memory report is still handed back.
func (s *Session) Stop() (*extmon.SessionReport, error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil, ErrNotRunning
	}
	s.running = false
	id := s.id
	start := s.startTime
	profilePath := s.profilePath
	poller := s.poller
	source := s.source
	correlator := s.correlator
	s.poller = nil
	s.source = nil
	s.mu.Unlock()

	end := time.Now()

	if poller != nil {
		poller.Stop()
	}
	// one final drain so records written between the last tick and stop land
	if source != nil {
		if batch, err := source.NewActivities(); err == nil && len(batch) > 0 {
			s.MergeActivities(batch)
		}
	}

	s.buf.Freeze()
	correlator.WaitBodies(time.Duration(s.cfg.BodyGrace()) * time.Millisecond)
	// retrievals still in flight past the grace window must not touch the
	// records the report is built from
	s.buf.Finalize()

	report := BuildReport(id, start, end, profilePath, s.buf, s.classifier)

	if s.store != nil {
		if err := s.store.Put(report); err != nil {
			return report, errors.Wrap(err, "failed to persist session report")
		}
	}

	log.Info().Str("session_id", id).
		Int("requests", report.Stats.TotalRequests).
		Int("findings", len(report.SuspiciousActivities)).
		Msg("monitoring session stopped")
	return report, nil
}

// Network returns the feed the transport adapter delivers into
func (s *Session) Network() extmon.NetworkFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correlator
}

// DomEvent consumes one instrumentation event from a monitored page
func (s *Session) DomEvent(ev *extmon.DomEvent) {
	if ev == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if !ev.Severity.Valid() {
		ev.Severity = extmon.DefaultDomSeverity(ev.Type)
	}
	if s.buf.AppendDom(ev) {
		s.classifier.Dom(ev)
	}
}

// MergeActivities merges one poll batch, deduplicating against previously
// merged records. Only first-seen records are classified.
func (s *Session) MergeActivities(batch []*extmon.ActivityEvent) {
	for _, ev := range batch {
		if ev == nil {
			continue
		}
		if s.buf.AppendActivity(ev) {
			s.classifier.Activity(ev)
		}
	}
}

// AddAutomationLog appends a scripted action player log line
func (s *Session) AddAutomationLog(entry *extmon.AutomationLog) {
	if entry == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	s.buf.AppendAutomation(entry)
}

// AddScreenshot record captured by the shell
func (s *Session) AddScreenshot(shot *extmon.Screenshot) {
	if shot == nil {
		return
	}
	s.buf.AppendScreenshot(shot)
}

// SetProfilePath recorded in the final report
func (s *Session) SetProfilePath(path string) {
	s.mu.Lock()
	s.profilePath = path
	s.mu.Unlock()
}

// Stats returns the pull based live snapshot
func (s *Session) Stats() *extmon.RealTimeStats {
	s.mu.Lock()
	id := s.id
	running := s.running
	start := s.startTime
	s.mu.Unlock()
	return snapshotStats(id, running, start, s.buf)
}

// HAR archive of the buffered exchanges
func (s *Session) HAR() *HAR {
	s.mu.Lock()
	id := s.id
	start := s.startTime
	s.mu.Unlock()
	return BuildHAR(id, start, s.buf)
}

// ID of the current (or last) session
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Running state
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

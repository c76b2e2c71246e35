package monitor

import (
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/extmon/extmon"
)

// Poller drives an ActivitySource on a fixed interval and hands each batch to
// the merge callback. Stop is synchronous: once it returns, no further merge
// call will be made.
type Poller struct {
	source   extmon.ActivitySource
	interval time.Duration
	done     chan struct{}
	finished chan struct{}
}

// NewPoller for the given source
func NewPoller(source extmon.ActivitySource, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start the poll loop
func (p *Poller) Start(merge func(batch []*extmon.ActivityEvent)) {
	go func() {
		defer close(p.finished)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				batch, err := p.source.NewActivities()
				if err != nil {
					log.Debug().Err(err).Msg("activity poll failed")
					continue
				}
				if len(batch) > 0 {
					merge(batch)
				}
			}
		}
	}()
}

// Stop the loop and wait for it to exit
func (p *Poller) Stop() {
	close(p.done)
	<-p.finished
}

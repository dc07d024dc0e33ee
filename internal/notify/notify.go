// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
)

// Action is the kind of record mutation.
type Action string

const (
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

const (
	TypeTheoryUpdate = "theory_update"
	TypeSyncRequest  = "sync_request"

	DefaultBackoff = 3 * time.Second
	queueSize      = 64
)

// Event is the wire message. Type is theory_update for mutations.
type Event struct {
	Type     string `json:"type,omitempty"`
	TheoryID string `json:"theory_id,omitempty"`
	Action   Action `json:"action,omitempty"`
}

// Sink receives events. Implementations must not block.
type Sink interface {
	Notify(Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(Event) {}

// Conn is one live connection to the channel.
type Conn interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Dialer opens a Conn.
type Dialer func(ctx context.Context) (Conn, error)

// Stats counts what the loop did.
type Stats struct {
	Published int64
	Dropped   int64
	Dials     int64
}

// Notifier forwards events to a Conn from a single background goroutine.
type Notifier struct {
	dial    Dialer
	backoff time.Duration
	events  chan Event

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// inflight counts events accepted by Notify that the loop has not yet
	// published or dropped.
	inflight  atomic.Int64
	published atomic.Int64
	dropped   atomic.Int64
	dials     atomic.Int64
	pending   atomic.Bool
}

// New starts the loop. A backoff <= 0 uses DefaultBackoff.
func New(ctx context.Context, dial Dialer, backoff time.Duration) *Notifier {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	ctx, cancel := context.WithCancel(ctx)
	n := &Notifier{
		dial:    dial,
		backoff: backoff,
		events:  make(chan Event, queueSize),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go n.run(ctx)
	return n
}

// Notify queues ev. When the queue is full the event is dropped.
func (n *Notifier) Notify(ev Event) {
	if ev.Type == "" {
		ev.Type = TypeTheoryUpdate
	}
	n.inflight.Add(1)
	select {
	case n.events <- ev:
	default:
		n.inflight.Add(-1)
		n.dropped.Add(1)
		log.Debugf("notify queue full, dropping %s %s", ev.Action, ev.TheoryID)
	}
}

// Close stops the loop, cancelling any pending reconnect, and waits for it
// to exit. Queued events that were not yet sent are discarded.
func (n *Notifier) Close() error {
	n.once.Do(n.cancel)
	<-n.done
	return nil
}

// Flush waits until every queued event has been published or dropped, or
// until ctx ends. An event being published counts as queued.
func (n *Notifier) Flush(ctx context.Context) {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for n.inflight.Load() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case <-t.C:
		}
	}
}

func (n *Notifier) Stats() Stats {
	return Stats{
		Published: n.published.Load(),
		Dropped:   n.dropped.Load(),
		Dials:     n.dials.Load(),
	}
}

// ReconnectPending reports whether a reconnect timer is armed.
func (n *Notifier) ReconnectPending() bool {
	return n.pending.Load()
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)

	var (
		conn  Conn
		timer *time.Timer
		retry <-chan time.Time
	)

	// At most one reconnect timer exists at a time.
	schedule := func() {
		if timer != nil {
			return
		}
		timer = time.NewTimer(n.backoff)
		retry = timer.C
		n.pending.Store(true)
	}

	connect := func() {
		n.dials.Add(1)
		c, err := n.dial(ctx)
		if err != nil {
			log.Debugf("notify connect failed: %v", err)
			schedule()
			return
		}
		conn = c
		log.Debug("notify connected")
	}

	connect()
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
				n.pending.Store(false)
			}
			if conn != nil {
				_ = conn.Close()
			}
			return

		case <-retry:
			timer, retry = nil, nil
			n.pending.Store(false)
			connect()

		case ev := <-n.events:
			n.deliver(ctx, &conn, ev, schedule)
		}
	}
}

// deliver publishes ev on *conn. A failed publish drops the connection and
// arms a reconnect.
func (n *Notifier) deliver(ctx context.Context, conn *Conn, ev Event, schedule func()) {
	defer n.inflight.Add(-1)

	if *conn == nil {
		n.dropped.Add(1)
		log.Debugf("notify disconnected, dropping %s %s", ev.Action, ev.TheoryID)
		return
	}
	if err := (*conn).Publish(ctx, ev); err != nil {
		n.dropped.Add(1)
		log.Debugf("notify publish failed: %v", err)
		_ = (*conn).Close()
		*conn = nil
		schedule()
		return
	}
	n.published.Add(1)
}

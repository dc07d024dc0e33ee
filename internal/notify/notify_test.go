// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	events []Event
	fail   bool
	closed bool
}

func (c *fakeConn) Publish(_ context.Context, ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// flakyDialer fails the first failures dials.
type flakyDialer struct {
	failures atomic.Int64
	conn     *fakeConn
}

func (d *flakyDialer) dial(context.Context) (Conn, error) {
	if d.failures.Add(-1) >= 0 {
		return nil, errors.New("connection refused")
	}
	return d.conn, nil
}

func TestNotifierPublishes(t *testing.T) {
	d := &flakyDialer{conn: &fakeConn{}}
	n := New(context.Background(), d.dial, time.Second)

	n.Notify(Event{TheoryID: "theory-001", Action: Create})
	n.Notify(Event{TheoryID: "theory-001", Action: Delete})

	require.Eventually(t, func() bool { return len(d.conn.received()) == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, n.Close())

	got := d.conn.received()
	assert.Equal(t, Event{Type: TypeTheoryUpdate, TheoryID: "theory-001", Action: Create}, got[0])
	assert.Equal(t, Delete, got[1].Action)
	assert.True(t, d.conn.closed)
	assert.Equal(t, int64(2), n.Stats().Published)
}

func TestNotifierReconnectsAfterBackoff(t *testing.T) {
	d := &flakyDialer{conn: &fakeConn{}}
	d.failures.Store(2)
	n := New(context.Background(), d.dial, 20*time.Millisecond)
	defer n.Close()

	require.Eventually(t, func() bool { return n.Stats().Dials == 3 && !n.ReconnectPending() },
		time.Second, 2*time.Millisecond)

	n.Notify(Event{TheoryID: "theory-002", Action: Update})
	require.Eventually(t, func() bool { return len(d.conn.received()) == 1 }, time.Second, 2*time.Millisecond)
}

func TestNotifierDropsWhileDisconnected(t *testing.T) {
	d := &flakyDialer{conn: &fakeConn{}}
	d.failures.Store(1)
	n := New(context.Background(), d.dial, time.Hour)
	defer n.Close()

	require.Eventually(t, n.ReconnectPending, time.Second, 2*time.Millisecond)

	n.Notify(Event{TheoryID: "theory-003", Action: Create})
	require.Eventually(t, func() bool { return n.Stats().Dropped == 1 }, time.Second, 2*time.Millisecond)
	assert.Empty(t, d.conn.received())
	assert.Equal(t, int64(1), n.Stats().Dials)
}

func TestNotifierSingleReconnectTimer(t *testing.T) {
	conn := &fakeConn{fail: true}
	var dials atomic.Int64
	dial := func(context.Context) (Conn, error) {
		dials.Add(1)
		return conn, nil
	}

	n := New(context.Background(), dial, 200*time.Millisecond)
	defer n.Close()

	// Many failing publishes in a row arm only one timer.
	for i := 0; i < 10; i++ {
		n.Notify(Event{TheoryID: "theory-004", Action: Update})
	}
	require.Eventually(t, func() bool { return n.Stats().Dropped == 10 }, time.Second, 2*time.Millisecond)
	assert.True(t, n.ReconnectPending())

	require.Eventually(t, func() bool { return dials.Load() == 2 }, time.Second, 2*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int64(2), dials.Load())
}

func TestNotifyNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	dial := func(ctx context.Context) (Conn, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil, errors.New("gave up")
	}
	n := New(context.Background(), dial, time.Hour)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*3; i++ {
			n.Notify(Event{TheoryID: "theory-005", Action: Create})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
	assert.Equal(t, int64(queueSize*2), n.Stats().Dropped)

	close(block)
	require.NoError(t, n.Close())
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	d := &flakyDialer{conn: &fakeConn{}}
	d.failures.Store(100)
	n := New(context.Background(), d.dial, 30*time.Millisecond)

	require.Eventually(t, n.ReconnectPending, time.Second, 2*time.Millisecond)
	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.False(t, n.ReconnectPending())

	dials := n.Stats().Dials
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dials, n.Stats().Dials)
}

// slowConn takes delay to publish each event.
type slowConn struct {
	fakeConn
	delay time.Duration
}

func (c *slowConn) Publish(ctx context.Context, ev Event) error {
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.fakeConn.Publish(ctx, ev)
}

func TestFlushWaitsForPublishInProgress(t *testing.T) {
	conn := &slowConn{delay: 20 * time.Millisecond}
	dial := func(context.Context) (Conn, error) { return conn, nil }
	n := New(context.Background(), dial, time.Hour)

	n.Notify(Event{TheoryID: "theory-006", Action: Create})
	n.Notify(Event{TheoryID: "theory-007", Action: Delete})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n.Flush(ctx)
	require.NoError(t, n.Close())

	assert.Len(t, conn.received(), 2)
	assert.Equal(t, int64(2), n.Stats().Published)
	assert.Zero(t, n.Stats().Dropped)
}

func TestFlushGivesUpWhenContextEnds(t *testing.T) {
	conn := &slowConn{delay: time.Hour}
	dial := func(context.Context) (Conn, error) { return conn, nil }
	n := New(context.Background(), dial, time.Hour)

	n.Notify(Event{TheoryID: "theory-008", Action: Update})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	n.Flush(ctx)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.NoError(t, n.Close())
	assert.Empty(t, conn.received())
}

func TestDecode(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"theory_update","theory_id":"theory-001","action":"update"}`))
	require.NoError(t, err)
	assert.Equal(t, Event{Type: TypeTheoryUpdate, TheoryID: "theory-001", Action: Update}, ev)

	ev, err = Decode([]byte(`{"type":"sync_request"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSyncRequest, ev.Type)

	_, err = Decode([]byte(`{"theory_id":"x"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`nope`))
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	var s Sink = Discard{}
	s.Notify(Event{TheoryID: "theory-001", Action: Create})
}

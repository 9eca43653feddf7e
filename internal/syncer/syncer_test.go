package syncer_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripbot/tripbot/internal/models"
	"github.com/tripbot/tripbot/internal/store"
	"github.com/tripbot/tripbot/internal/syncer"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSyncedStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	s.Load()
	s.UpdateSyncConfig(func(c *models.SyncConfig) {
		c.Enabled = true
		c.DocURL = "https://docs.google.com/document/d/test"
	})
	return s
}

// stubPublisher records publishes and optionally blocks until released
type stubPublisher struct {
	calls      atomic.Int64
	concurrent atomic.Int64
	maxSeen    atomic.Int64
	err        error
	block      chan struct{} // when non-nil, publish waits for a receive
	done       chan struct{} // signaled after every publish
}

func newStubPublisher() *stubPublisher {
	return &stubPublisher{done: make(chan struct{}, 64)}
}

func (p *stubPublisher) Publish(ctx context.Context, snap *models.Snapshot) error {
	cur := p.concurrent.Add(1)
	for {
		max := p.maxSeen.Load()
		if cur <= max || p.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	defer p.concurrent.Add(-1)

	if p.block != nil {
		<-p.block
	}
	p.calls.Add(1)
	p.done <- struct{}{}
	return p.err
}

func waitFor(t *testing.T, ch chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}

func TestTriggerPublishesSnapshot(t *testing.T) {
	st := newSyncedStore(t)
	pub := newStubPublisher()
	sy := syncer.New(st, pub, time.Second, testLogger())

	sy.Trigger()
	waitFor(t, pub.done, "publish never ran")

	assert.Equal(t, int64(1), pub.calls.Load())
	require.Eventually(t, func() bool {
		return st.SyncConfig().LastSyncStatus == models.SyncStatusSuccess
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, st.SyncConfig().LastSyncAt)
}

func TestTriggerNoopWhenDisabled(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	st.Load()
	pub := newStubPublisher()
	sy := syncer.New(st, pub, time.Second, testLogger())

	// Neither enabled nor a doc URL configured
	sy.Trigger()

	st.UpdateSyncConfig(func(c *models.SyncConfig) { c.DocURL = "https://docs.google.com/document/d/x" })
	sy.Trigger() // still disabled

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, pub.calls.Load())
	assert.Equal(t, models.SyncStatusNever, st.SyncConfig().LastSyncStatus)
}

func TestTriggerNowIgnoresDisabledFlag(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	st.Load()
	st.UpdateSyncConfig(func(c *models.SyncConfig) {
		c.Enabled = false
		c.DocURL = "https://docs.google.com/document/d/x"
	})
	pub := newStubPublisher()
	sy := syncer.New(st, pub, time.Second, testLogger())

	sy.TriggerNow()
	waitFor(t, pub.done, "manual sync never ran")
	assert.Equal(t, int64(1), pub.calls.Load())

	// Wait for the runner's final status write so it does not race with
	// TempDir cleanup.
	require.Eventually(t, func() bool {
		return st.SyncConfig().LastSyncStatus != models.SyncStatusInProgress
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublishesNeverOverlap(t *testing.T) {
	st := newSyncedStore(t)
	pub := newStubPublisher()
	pub.block = make(chan struct{})
	sy := syncer.New(st, pub, time.Second, testLogger())

	for i := 0; i < 10; i++ {
		sy.Trigger()
	}

	// Release all publishes that want to run
	go func() {
		for {
			pub.block <- struct{}{}
		}
	}()

	waitFor(t, pub.done, "first publish never finished")
	require.Eventually(t, func() bool {
		return st.SyncConfig().LastSyncStatus == models.SyncStatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(1), pub.maxSeen.Load(), "two publishes ran concurrently")
}

func TestRapidTriggersCoalesce(t *testing.T) {
	st := newSyncedStore(t)
	pub := newStubPublisher()
	pub.block = make(chan struct{})
	sy := syncer.New(st, pub, time.Second, testLogger())

	sy.Trigger()
	// Queue more requests while the first publish is blocked
	for i := 0; i < 5; i++ {
		sy.Trigger()
	}

	go func() {
		for {
			pub.block <- struct{}{}
		}
	}()

	require.Eventually(t, func() bool {
		return st.SyncConfig().LastSyncStatus == models.SyncStatusSuccess && pub.concurrent.Load() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// All queued requests collapse into at most one follow-up publish
	assert.LessOrEqual(t, pub.calls.Load(), int64(3))
	assert.GreaterOrEqual(t, pub.calls.Load(), int64(1))
}

func TestTriggerDuringPublishIsNotDropped(t *testing.T) {
	st := newSyncedStore(t)
	pub := newStubPublisher()
	pub.block = make(chan struct{})
	sy := syncer.New(st, pub, time.Second, testLogger())

	sy.Trigger()

	// Wait until the first publish is definitely in flight
	require.Eventually(t, func() bool {
		return pub.concurrent.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// A mutation arrives mid-publish
	sy.Trigger()

	// Release the first publish, then the follow-up
	pub.block <- struct{}{}
	waitFor(t, pub.done, "first publish never finished")
	pub.block <- struct{}{}
	waitFor(t, pub.done, "pending re-publish was dropped")

	assert.Equal(t, int64(2), pub.calls.Load())
}

func TestFailedPublishRecordsFailure(t *testing.T) {
	st := newSyncedStore(t)
	pub := newStubPublisher()
	pub.err = errors.New("doc rejected the write")
	sy := syncer.New(st, pub, time.Second, testLogger())

	sy.Trigger()
	waitFor(t, pub.done, "publish never ran")

	require.Eventually(t, func() bool {
		return st.SyncConfig().LastSyncStatus == models.SyncStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, st.SyncConfig().LastSyncAt)
}

package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gashibujar1988-crypto/Robotrna/internal/testutil"
)

func flush(t *testing.T, b *Broadcaster) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Flush(ctx))
}

func TestBroadcastLog_ReachesEveryObserver(t *testing.T) {
	b := New()
	defer b.Close()
	c1, c2 := testutil.NewRecordingConn(), testutil.NewRecordingConn()
	b.Attach(c1)
	b.Attach(c2)

	b.BroadcastLog(context.Background(), "x", LevelInfo)
	flush(t, b)

	want := []string{`{"type":"log","message":"x","level":"INFO"}`}
	assert.Equal(t, want, c1.Frames())
	assert.Equal(t, want, c2.Frames())
}

func TestDetach_StopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()
	c1, c2 := testutil.NewRecordingConn(), testutil.NewRecordingConn()
	b.Attach(c1)
	b.Attach(c2)

	b.Detach(c1)
	b.BroadcastLog(context.Background(), "after", LevelInfo)
	flush(t, b)

	assert.Empty(t, c1.Frames())
	assert.Equal(t, []string{"after"}, c2.Logs())
	assert.Equal(t, 1, b.Len())
}

func TestDetach_AbsentIsNoop(t *testing.T) {
	b := New()
	defer b.Close()
	c := testutil.NewRecordingConn()

	assert.NotPanics(t, func() {
		b.Detach(c)
		b.Attach(c)
		b.Detach(c)
		b.Detach(c)
	})
	assert.Equal(t, 0, b.Len())
}

// sliceConn has a non-comparable dynamic type.
type sliceConn []string

func (sliceConn) Send(context.Context, []byte) error { return nil }

func TestAttach_RejectsNonComparableConn(t *testing.T) {
	logger := &testutil.RecordingLogger{}
	b := New(func(o *Options) { o.Logger = logger })
	defer b.Close()

	good := testutil.NewRecordingConn()
	b.Attach(good)

	assert.NotPanics(t, func() {
		b.Attach(sliceConn{"a"})
		b.Detach(sliceConn{"a"})
		b.Attach(nil)
		b.Detach(nil)
	})
	assert.Equal(t, 1, b.Len())
	assert.True(t, logger.Has("error", "broadcast.observer_rejected"))

	b.BroadcastLog(context.Background(), "still works", LevelInfo)
	flush(t, b)
	assert.Equal(t, []string{"still works"}, good.Logs())
}

func TestBroadcastAgentStatus_WireFormat(t *testing.T) {
	b := New()
	defer b.Close()
	c := testutil.NewRecordingConn()
	b.Attach(c)

	b.BroadcastAgentStatus(context.Background(), "Hunter", StatusWorking)
	b.BroadcastAgentStatus(context.Background(), "Hunter", StatusSuccess)
	flush(t, b)

	assert.Equal(t, []string{
		`{"type":"agent_status","agent":"Hunter","status":"WORKING"}`,
		`{"type":"agent_status","agent":"Hunter","status":"SUCCESS"}`,
	}, c.Frames())
}

func TestBroadcastLog_EmptyLevelDefaultsToInfo(t *testing.T) {
	b := New()
	defer b.Close()
	c := testutil.NewRecordingConn()
	b.Attach(c)

	b.BroadcastLog(context.Background(), "hello", "")
	flush(t, b)

	require.Len(t, c.Events(), 1)
	assert.Equal(t, LevelInfo, c.Events()[0].Level)
}

func TestBroadcast_FailingObserverDoesNotAffectOthers(t *testing.T) {
	logger := &testutil.RecordingLogger{}
	b := New(func(o *Options) { o.Logger = logger })
	defer b.Close()

	bad := testutil.NewFailingConn(errors.New("broken pipe"))
	good := testutil.NewRecordingConn()
	b.Attach(bad)
	b.Attach(&testutil.PanickingConn{})
	b.Attach(good)

	b.BroadcastLog(context.Background(), "x", LevelInfo)
	flush(t, b)

	assert.Equal(t, []string{"x"}, good.Logs())
	assert.True(t, logger.Has("warn", "broadcast.send_failed"))
	// Failed observers stay attached until the transport detaches them.
	assert.Equal(t, 3, b.Len())
}

func TestBroadcast_StuckObserverDoesNotDelayCallers(t *testing.T) {
	b := New(func(o *Options) { o.SendTimeout = 200 * time.Millisecond })
	defer b.Close()

	good := testutil.NewRecordingConn()
	b.Attach(&testutil.BlockingConn{})
	b.Attach(good)

	start := time.Now()
	for i := 0; i < 5; i++ {
		b.BroadcastLog(context.Background(), fmt.Sprintf("step %d", i), LevelInfo)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	assert.Eventually(t, func() bool { return len(good.Logs()) == 5 }, 150*time.Millisecond, 5*time.Millisecond)
}

func TestBroadcast_FullQueueDropsEvents(t *testing.T) {
	logger := &testutil.RecordingLogger{}
	b := New(func(o *Options) {
		o.SendTimeout = 500 * time.Millisecond
		o.QueueSize = 1
		o.Logger = logger
	})
	defer b.Close()

	b.Attach(&testutil.BlockingConn{})

	for i := 0; i < 3; i++ {
		b.BroadcastLog(context.Background(), "x", LevelInfo)
	}

	assert.True(t, logger.Has("warn", "broadcast.queue_full"))
	assert.Equal(t, 1, b.Len())
}

func TestFlush_HonoursContext(t *testing.T) {
	b := New(func(o *Options) { o.SendTimeout = time.Second })
	defer b.Close()

	b.Attach(&testutil.BlockingConn{})
	b.BroadcastLog(context.Background(), "x", LevelInfo)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, b.Flush(ctx), context.DeadlineExceeded)
}

func TestBroadcast_CancelledCallerStillDelivers(t *testing.T) {
	b := New()
	defer b.Close()
	c := testutil.NewRecordingConn()
	b.Attach(c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.BroadcastLog(ctx, "late", LevelInfo)
	flush(t, b)

	assert.Equal(t, []string{"late"}, c.Logs())
}

func TestBroadcast_PreservesSequenceOrder(t *testing.T) {
	b := New()
	defer b.Close()
	c := testutil.NewRecordingConn()
	b.Attach(c)

	var want []string
	for i := 0; i < 50; i++ {
		msg := fmt.Sprintf("step %d", i)
		want = append(want, msg)
		b.BroadcastLog(context.Background(), msg, LevelInfo)
	}
	flush(t, b)

	assert.Equal(t, want, c.Logs())
}

func TestClose(t *testing.T) {
	b := New()
	c := testutil.NewRecordingConn()
	b.Attach(c)

	b.Close()
	b.BroadcastLog(context.Background(), "ignored", LevelInfo)
	b.Attach(testutil.NewRecordingConn())
	flush(t, b)

	assert.Empty(t, c.Frames())
	assert.Equal(t, 0, b.Len())
}

func TestBroadcast_ConcurrentAttachDetach(t *testing.T) {
	b := New(func(o *Options) { o.QueueSize = 256 })
	defer b.Close()
	stable := testutil.NewRecordingConn()
	b.Attach(stable)

	const events = 100

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < events; i++ {
			c := testutil.NewRecordingConn()
			b.Attach(c)
			b.Detach(c)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < events; i++ {
			b.BroadcastLog(context.Background(), fmt.Sprintf("%d", i), LevelInfo)
		}
	}()

	wg.Wait()
	flush(t, b)

	assert.Len(t, stable.Logs(), events)
	assert.Equal(t, 1, b.Len())
}

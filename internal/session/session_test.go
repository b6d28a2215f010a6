package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickTimeoutExpires(t *testing.T) {
	s := New(NewID(1), nil, 100*time.Millisecond, nil)
	require.False(t, s.TickTimeout(50*time.Millisecond))
	require.True(t, s.TickTimeout(60*time.Millisecond))
}

func TestResetTimeoutOnActivity(t *testing.T) {
	s := New(NewID(1), nil, 100*time.Millisecond, nil)
	require.False(t, s.TickTimeout(90*time.Millisecond))
	s.ResetTimeout()
	require.False(t, s.TickTimeout(90*time.Millisecond))
}

func TestTimeoutDisabledWhenZero(t *testing.T) {
	s := New(NewID(1), nil, 0, nil)
	require.False(t, s.TickTimeout(time.Hour))
}

func TestClockSyncDiscardsStaleReply(t *testing.T) {
	c := NewClockSync()
	now := time.Now()
	c.NextRequest(now)
	ok := c.ApplyReply(999, now, 20, now.Add(time.Second))
	require.False(t, ok)
}

func TestClockSyncAppliesFreshReply(t *testing.T) {
	c := NewClockSync()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	counter := c.NextRequest(t0)

	clientTime := t0.Add(-3 * time.Second) // client clock is 3s behind
	latencyMS := int32(40)
	serverNow := t0.Add(2 * time.Second)

	ok := c.ApplyReply(counter, clientTime, latencyMS, serverNow)
	require.True(t, ok)

	// clientOffset = serverNow - (clientTime + latency/2)
	// ClientNow(serverNow) = serverNow - clientOffset = clientTime + latency/2
	want := clientTime.Add(time.Duration(latencyMS/2) * time.Millisecond)
	require.Equal(t, want, c.ClientNow(serverNow))
}

func TestLatencyTracksMinMaxAvg(t *testing.T) {
	var l Latency
	for _, v := range []int32{50, 10, 90, 30} {
		l.Record(v)
	}
	require.Equal(t, int32(30), l.Latest)
	require.Equal(t, int32(10), l.Min)
	require.Equal(t, int32(90), l.Max)
	require.Equal(t, 45.0, l.Avg())
}

func TestDispatchDropsPacketBelowRequiredStatus(t *testing.T) {
	d := NewDispatcher(nopLogger())
	called := false
	d.Register(1, StatusLoggedIn, func(s *Session, body []byte) error {
		called = true
		return nil
	})

	s := New(NewID(1), nil, 0, nil)
	s.SetStatus(StatusAuthed)
	d.Dispatch(s, pkt(1, nil))
	require.False(t, called)
}

func TestDispatchAllowsPacketAtRequiredStatus(t *testing.T) {
	d := NewDispatcher(nopLogger())
	called := false
	d.Register(1, StatusAuthed, func(s *Session, body []byte) error {
		called = true
		return nil
	})

	s := New(NewID(1), nil, 0, nil)
	s.SetStatus(StatusLoggedIn) // higher than required is fine
	d.Dispatch(s, pkt(1, nil))
	require.True(t, called)
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d := NewDispatcher(nopLogger())
	d.Register(1, StatusNone, func(s *Session, body []byte) error {
		panic("boom")
	})
	s := New(NewID(1), nil, 0, nil)
	require.NotPanics(t, func() { d.Dispatch(s, pkt(1, nil)) })
}

package transport

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pipeSockets(t *testing.T, opt Options, onClosed OnClosed) (*Socket, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })
	s := NewSocket(server, opt, zap.NewNop(), nil, onClosed)
	return s, client
}

// P2 (send-queue bound): with SendQueueLimit = N, enqueueing N+1 packets in
// sequence closes the socket exactly once and drops no earlier packet.
func TestSendQueueBound(t *testing.T) {
	const limit = 3
	var closedCount atomic.Int32

	s, client := pipeSockets(t, Options{NumOpcodes: 8, SendQueueLimit: limit}, func(_ *Socket, reason string) {
		closedCount.Add(1)
		require.Equal(t, "send queue full", reason)
	})

	// net.Pipe is unbuffered/synchronous, so nobody is draining Update();
	// queue packets directly to exercise the bound without a live reactor.
	for i := 0; i < limit; i++ {
		s.QueuePacket(Packet{Opcode: 0, Body: []byte{byte(i)}})
		require.False(t, s.IsClosed())
	}
	require.Equal(t, limit, s.OutboxBacklog())

	s.QueuePacket(Packet{Opcode: 0, Body: []byte{99}})
	require.True(t, s.IsClosed())
	require.Equal(t, int32(1), closedCount.Load())

	// Further enqueues after close are no-ops, not additional closes.
	s.QueuePacket(Packet{Opcode: 0, Body: []byte{100}})
	require.Equal(t, int32(1), closedCount.Load())

	_ = client
}

func TestCloseIsIdempotent(t *testing.T) {
	var closedCount atomic.Int32
	s, _ := pipeSockets(t, Options{NumOpcodes: 8}, func(_ *Socket, _ string) {
		closedCount.Add(1)
	})

	for i := 0; i < 5; i++ {
		s.Close("test")
	}
	require.Equal(t, int32(1), closedCount.Load())
}

func TestUnboundedSendQueueNeverCloses(t *testing.T) {
	s, client := pipeSockets(t, Options{NumOpcodes: 8, SendQueueLimit: 0}, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		for {
			if _, err := client.Read(buf); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		s.QueuePacket(Packet{Opcode: 0, Body: []byte{byte(i)}})
	}
	require.False(t, s.IsClosed())
	s.Update()
	time.Sleep(10 * time.Millisecond)
	require.False(t, s.IsClosed())
	s.Close("done")
	<-done
}

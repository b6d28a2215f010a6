package ipc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireReleasePidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.pid")

	pf, err := Acquire(path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	pf.Release()
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestAcquireRejectsLiveProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.pid")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))

	_, err := Acquire(path)
	require.Error(t, err)
}

func TestQueueRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_msg_queue.sock")

	q, err := Bind(path, nil)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, Send(path, string(CmdStop)))

	select {
	case msg := <-q.Recv():
		require.Equal(t, string(CmdStop), msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ipc message")
	}
}

func TestRecognizedRejectsUnknownCommand(t *testing.T) {
	_, ok := Recognized(WorldCommands, "reload-realm")
	require.False(t, ok)

	cmd, ok := Recognized(AuthCommands, "reload-realm")
	require.True(t, ok)
	require.Equal(t, CmdReloadRealm, cmd)
}

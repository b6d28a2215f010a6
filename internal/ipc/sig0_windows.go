//go:build windows

package ipc

import "os"

// Windows has no signal-0 liveness probe; os.Process.Signal only supports
// os.Kill there. Sending the interrupt signal therefore always fails, so
// on this platform the liveness check reports every pid-file hit as not
// alive.
func syscallSig0() os.Signal { return os.Interrupt }

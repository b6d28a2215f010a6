//go:build windows

package ipc

import (
	"os"
	"syscall"
)

func extraSignals() []os.Signal { return []os.Signal{syscall.SIGBREAK} }

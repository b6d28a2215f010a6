//go:build !windows

package ipc

import "os"

func extraSignals() []os.Signal { return nil }

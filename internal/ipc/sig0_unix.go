//go:build !windows

package ipc

import "syscall"

func syscallSig0() syscall.Signal { return syscall.Signal(0) }

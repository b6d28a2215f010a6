package ipc

import (
	"os"
	"os/signal"
	"syscall"
)

// Notify returns a channel delivering SIGINT and SIGTERM (spec.md §4.10
// "Signals SIGINT/SIGTERM (+SIGBREAK on Windows) stop the I/O service").
// SIGBREAK only exists on Windows builds of the syscall package; Unix
// builds fold it into this same call via extra_unix.go/extra_windows.go.
func Notify() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, extraSignals()...)
	return ch
}

// Stop undoes Notify's registration.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}

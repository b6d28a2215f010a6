package daemon

import (
	"flag"
	"fmt"
	"os"

	"github.com/snowfight-go/battlecore/internal/ipc"
)

// Flags is the CLI surface spec.md §6 documents for each daemon. Auth
// alone recognizes ReloadBanned/ReloadRealm.
type Flags struct {
	Help         bool
	Version      bool
	ConfigPath   string
	Stop         bool
	ReloadBanned bool
	ReloadRealm  bool
}

// ParseFlags builds a FlagSet for one daemon. withAuthReload controls
// whether --reload-banned/--reload-realm are registered (auth only).
func ParseFlags(args []string, defaultConfigPath string, withAuthReload bool) (*Flags, error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	f := &Flags{}
	fs.BoolVar(&f.Help, "help", false, "show usage")
	fs.BoolVar(&f.Help, "h", false, "show usage (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "show version")
	fs.BoolVar(&f.Version, "v", false, "show version (shorthand)")
	fs.StringVar(&f.ConfigPath, "config", defaultConfigPath, "path to TOML config file")
	fs.StringVar(&f.ConfigPath, "c", defaultConfigPath, "path to TOML config file (shorthand)")
	fs.BoolVar(&f.Stop, "stop", false, "send stop to the running instance")
	if withAuthReload {
		fs.BoolVar(&f.ReloadBanned, "reload-banned", false, "send reload-banned to the running instance")
		fs.BoolVar(&f.ReloadRealm, "reload-realm", false, "send reload-realm to the running instance")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	return f, nil
}

// HandleControlFlags sends the requested IPC command to the running
// instance (identified by pidFilePath), if any control flag was given,
// and returns true once it is sent. If the pid file cannot be read or the
// send fails, it prints the error and exits the process with status 1.
// Returns false if no control flag applied and the caller should proceed
// to normal startup.
func HandleControlFlags(f *Flags, daemonName, pidFilePath string) (handled bool) {
	var cmd ipc.Command
	switch {
	case f.Stop:
		cmd = ipc.CmdStop
	case f.ReloadBanned:
		cmd = ipc.CmdReloadBanned
	case f.ReloadRealm:
		cmd = ipc.CmdReloadRealm
	default:
		return false
	}

	pid, err := readPid(pidFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: no running instance (%v)\n", daemonName, err)
		os.Exit(1)
	}
	path := ipc.QueueName(daemonName, pid)
	if err := ipc.Send(path, string(cmd)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: send %s failed: %v\n", daemonName, cmd, err)
		os.Exit(1)
	}
	fmt.Printf("%s: sent %s\n", daemonName, cmd)
	return true
}

func readPid(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, err
	}
	return pid, nil
}

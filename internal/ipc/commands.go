package ipc

// Command is one recognized IPC line (spec.md §6 "IPC queue protocol").
type Command string

const (
	CmdStop          Command = "stop"
	CmdReloadBanned  Command = "reload-banned"
	CmdReloadRealm   Command = "reload-realm"
)

// WorldCommands is the handleIPCMsg set for the world daemon: nothing
// beyond implicit signal-driven stop (spec.md §369).
var WorldCommands = map[Command]bool{
	CmdStop: true,
}

// AuthCommands is the larger handleIPCMsg set for the auth daemon
// (spec.md §6, §266-268).
var AuthCommands = map[Command]bool{
	CmdStop:         true,
	CmdReloadBanned: true,
	CmdReloadRealm:  true,
}

// Recognized reports whether msg is in the given daemon's command set.
// Unknown messages are ignored by the receiver (spec.md §281).
func Recognized(set map[Command]bool, msg string) (Command, bool) {
	c := Command(msg)
	return c, set[c]
}

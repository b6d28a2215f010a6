package ipc

import (
	"bufio"
	"fmt"
	"net"
	"os"

	"go.uber.org/zap"
)

// QueueCapacity and MaxMessageBytes match spec.md §6's named message queue
// contract ("capacity 15 messages × 1024 bytes").
const (
	QueueCapacity  = 15
	MaxMessageBytes = 1024
)

// QueueName builds the "<daemon>_msg_queue_<pid>" path spec.md §6 names,
// rooted under the OS temp directory since POSIX message queues are not
// available portably from Go's standard library; a Unix domain socket at
// a well-known path is the closest idiomatic stand-in (no pack library
// offers a named IPC queue primitive — see DESIGN.md).
func QueueName(daemon string, pid int) string {
	return fmt.Sprintf("%s/%s_msg_queue_%d.sock", os.TempDir(), daemon, pid)
}

// Queue is the receiving end bound by the running instance. Inbound
// commands are buffered up to QueueCapacity; a command that arrives while
// the buffer is full is logged and dropped, and the sender's Send call
// does not wait for room.
type Queue struct {
	path     string
	listener net.Listener
	log      *zap.Logger
	messages chan string
}

// Bind creates and listens on the named queue. Only the process that
// currently owns the pid file should call Bind (spec.md §6 "named message
// queue is created by the 'new' instance").
func Bind(path string, log *zap.Logger) (*Queue, error) {
	_ = os.Remove(path) // stale socket from an unclean shutdown
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("bind ipc queue %s: %w", path, err)
	}
	q := &Queue{path: path, listener: ln, log: log, messages: make(chan string, QueueCapacity)}
	go q.acceptLoop()
	return q, nil
}

func (q *Queue) acceptLoop() {
	for {
		conn, err := q.listener.Accept()
		if err != nil {
			return // listener closed by Close()
		}
		go q.readOne(conn)
	}
}

func (q *Queue) readOne(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, MaxMessageBytes), MaxMessageBytes)
	if !scanner.Scan() {
		return
	}
	msg := scanner.Text()
	select {
	case q.messages <- msg:
	default:
		if q.log != nil {
			q.log.Warn("ipc queue full on self-signal; dropping message", zap.String("message", msg))
		}
	}
}

// Recv blocks for the next queued command (spec.md §6 "Receiver blocks on
// recv").
func (q *Queue) Recv() <-chan string { return q.messages }

// Close stops accepting new connections and removes the socket file.
func (q *Queue) Close() {
	_ = q.listener.Close()
	_ = os.Remove(q.path)
}

// Send delivers one command to the instance listening at path (used by
// --stop / --reload-banned / --reload-realm).
func Send(path, message string) error {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return fmt.Errorf("dial ipc queue %s: %w", path, err)
	}
	defer conn.Close()
	if len(message) > MaxMessageBytes {
		message = message[:MaxMessageBytes]
	}
	_, err = fmt.Fprintln(conn, message)
	return err
}

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/snowfight-go/battlecore/internal/config"
	"github.com/snowfight-go/battlecore/internal/daemon"
	"github.com/snowfight-go/battlecore/internal/ipc"
	"github.com/snowfight-go/battlecore/internal/ntsproto"
	"github.com/snowfight-go/battlecore/internal/session"
	"github.com/snowfight-go/battlecore/internal/transport"
)

const daemonName = "ntsd"
const version = "v0.1.0"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// peer is the per-socket clock-sync state. ntsd has no session layer of
// its own (spec.md §4.3 clock sync is a standalone concern here, not tied
// to a world/auth Session) so it tracks just enough to pair a reply with
// the request that produced it.
type peer struct {
	mu     sync.Mutex
	clock  *session.ClockSync
	sentAt time.Time
}

func run(args []string) error {
	flags, err := daemon.ParseFlags(args, "config/nts.toml", false)
	if err != nil {
		return err
	}
	if flags.Help {
		fmt.Println("usage: ntsd [--config path] [--stop]")
		return nil
	}
	if flags.Version {
		fmt.Println(daemonName, version)
		return nil
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if daemon.HandleControlFlags(flags, daemonName, cfg.PidFile) {
		return nil
	}

	log, err := daemon.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	daemon.PrintBanner(daemonName, version)

	pf, err := ipc.Acquire(cfg.PidFile)
	if err != nil {
		return fmt.Errorf("single-instance check: %w", err)
	}
	defer pf.Release()

	queuePath := ipc.QueueName(daemonName, os.Getpid())
	queue, err := ipc.Bind(queuePath, log)
	if err != nil {
		return fmt.Errorf("bind ipc queue: %w", err)
	}
	defer queue.Close()

	var (
		mu    sync.Mutex
		peers = map[*transport.Socket]*peer{}
	)

	sockOpt := transport.Options{
		NumOpcodes:     ntsproto.NumOpcodes,
		TCPNoDelay:     cfg.Network.TcpNoDelay,
		SendQueueLimit: cfg.Network.SendQueueLimit,
	}

	sm, err := transport.NewSocketManager(
		cfg.Network.BindIP, cfg.Network.NTSServerPort, cfg.Network.ThreadPool,
		sockOpt, log,
		func(sock *transport.Socket) {
			mu.Lock()
			peers[sock] = &peer{clock: session.NewClockSync()}
			mu.Unlock()
		},
		func(sock *transport.Socket, pkt transport.Packet) {
			if pkt.Opcode != ntsproto.OpTimeSyncReply {
				return
			}
			counter, clientUnixNano, ok := ntsproto.DecodeReply(pkt.Body)
			if !ok {
				return
			}
			mu.Lock()
			p := peers[sock]
			mu.Unlock()
			if p == nil {
				return
			}
			now := time.Now()
			p.mu.Lock()
			latencyMS := int32(now.Sub(p.sentAt) / time.Millisecond)
			p.clock.ApplyReply(counter, time.Unix(0, clientUnixNano), latencyMS, now)
			p.mu.Unlock()
		},
		func(sock *transport.Socket, reason string) {
			mu.Lock()
			delete(peers, sock)
			mu.Unlock()
		},
	)
	if err != nil {
		return fmt.Errorf("socket manager: %w", err)
	}
	sm.Start()
	defer sm.Stop()

	daemon.PrintSection("ready")
	daemon.PrintReady(fmt.Sprintf("listening on %s", sm.Addr().String()))
	fmt.Println()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	sigCh := ipc.Notify()
	defer ipc.Stop(sigCh)

	for {
		select {
		case now := <-ticker.C:
			mu.Lock()
			for sock, p := range peers {
				p.mu.Lock()
				if p.clock.DueForSync(now) {
					counter := p.clock.NextRequest(now)
					p.sentAt = now
					p.clock.MarkTick(now)
					sock.QueuePacket(transport.Packet{Opcode: ntsproto.OpTimeSyncReq, Body: ntsproto.EncodeReq(counter)})
				}
				p.mu.Unlock()
			}
			mu.Unlock()

		case msg := <-queue.Recv():
			if cmd, ok := ipc.Recognized(ipc.WorldCommands, msg); ok && cmd == ipc.CmdStop {
				log.Info("ipc stop received")
				return nil
			}

		case sig := <-sigCh:
			log.Info("signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

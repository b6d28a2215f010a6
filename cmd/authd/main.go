package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/snowfight-go/battlecore/internal/accountproto"
	"github.com/snowfight-go/battlecore/internal/catalog"
	"github.com/snowfight-go/battlecore/internal/config"
	"github.com/snowfight-go/battlecore/internal/daemon"
	"github.com/snowfight-go/battlecore/internal/ipc"
	"github.com/snowfight-go/battlecore/internal/session"
	"github.com/snowfight-go/battlecore/internal/transport"
)

// realmState guards the realm list read by every login handler call
// against the reload-realm IPC command's writer, the same way worldd's
// clockSyncState guards its own small piece of cross-goroutine state.
type realmState struct {
	mu   sync.RWMutex
	list []catalog.RealmEntry
}

func (r *realmState) set(list []catalog.RealmEntry) {
	r.mu.Lock()
	r.list = list
	r.mu.Unlock()
}

func (r *realmState) get() []catalog.RealmEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list
}

// authd's own dense opcode numbering. Only opLogin is ever decoded
// inbound (transport.ReadPacket bounds against dispatcher.NumOpcodes());
// opAuthVerdict/opRealmList are outbound-only and need no registration.
const (
	opLogin       uint16 = 0
	opAuthVerdict uint16 = 1
	opRealmList   uint16 = 2
)

// registerAuthHandlers wires the session contract spec.md §1 keeps in
// scope: decode LoginRequest, reject banned accounts, otherwise promote
// the session to StatusAuthed and answer with the realm list. Which
// realm the client then picks is the out-of-scope business logic this
// daemon does not implement.
func registerAuthHandlers(d *session.Dispatcher, banList *catalog.BanList, realms *realmState) {
	d.Register(opLogin, session.StatusNone, func(s *session.Session, body []byte) error {
		req, err := accountproto.DecodeLoginRequest(body)
		if err != nil {
			return err
		}
		if _, banned := banList.IsBanned(req.Account, time.Now()); banned {
			s.Send(transport.Packet{Opcode: opAuthVerdict, Body: accountproto.EncodeAuthVerdict(accountproto.VerdictBanned, 0)})
			s.Socket.Close("banned account")
			return nil
		}

		s.SetStatus(session.StatusAuthed)
		s.Send(transport.Packet{Opcode: opAuthVerdict, Body: accountproto.EncodeAuthVerdict(accountproto.VerdictOK, 0)})

		list := realms.get()
		entries := make([]accountproto.RealmEntry, len(list))
		for i, r := range list {
			entries[i] = accountproto.RealmEntry{RealmID: r.RealmID, Name: r.Name, Host: r.Host, Port: r.Port}
		}
		s.Send(transport.Packet{Opcode: opRealmList, Body: accountproto.EncodeRealmList(entries)})
		return nil
	})
}

const daemonName = "authd"
const version = "v0.1.0"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := daemon.ParseFlags(args, "config/auth.toml", true)
	if err != nil {
		return err
	}
	if flags.Help {
		fmt.Println("usage: authd [--config path] [--stop] [--reload-banned] [--reload-realm]")
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

	daemon.PrintSection("catalog")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	catalogDB, err := catalog.NewDB(ctx, catalog.Config{
		DSN:             cfg.Catalog.DSN,
		MaxOpenConns:    cfg.Catalog.MaxOpenConns,
		MaxIdleConns:    cfg.Catalog.MaxIdleConns,
		ConnMaxLifetime: cfg.Catalog.ConnMaxLifetime(),
	}, log)
	if err != nil {
		return fmt.Errorf("catalog db: %w", err)
	}
	defer catalogDB.Close()
	if err := catalog.RunMigrations(ctx, catalogDB.Pool); err != nil {
		return fmt.Errorf("catalog migrations: %w", err)
	}

	realmRepo := catalog.NewRealmRepo(catalogDB)
	banRepo := catalog.NewBanRepo(catalogDB)
	banList := catalog.NewBanList()
	if err := banRepo.Reload(ctx, banList); err != nil {
		return fmt.Errorf("load ban list: %w", err)
	}
	realmList, err := realmRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load realm list: %w", err)
	}
	realms := &realmState{}
	realms.set(realmList)
	daemon.PrintOK(fmt.Sprintf("%d realms, ban list loaded", len(realmList)))

	dispatcher := session.NewDispatcher(log)
	registerAuthHandlers(dispatcher, banList, realms)

	sockOpt := transport.Options{
		NumOpcodes:     dispatcher.NumOpcodes(),
		TCPNoDelay:     cfg.Network.TcpNoDelay,
		SendQueueLimit: cfg.Network.SendQueueLimit,
	}

	var nextSessionCounter uint16
	sm, err := transport.NewSocketManager(
		cfg.Network.BindIP, cfg.Network.AuthServerPort, cfg.Network.ThreadPool,
		sockOpt, log,
		func(sock *transport.Socket) {
			nextSessionCounter++
			s := session.New(session.NewID(nextSessionCounter), sock, cfg.World.SessionTimeout(), log)
			sock.UserData = s
		},
		func(sock *transport.Socket, pkt transport.Packet) {
			s, _ := sock.UserData.(*session.Session)
			if s == nil {
				return
			}
			dispatcher.Dispatch(s, pkt)
		},
		func(sock *transport.Socket, reason string) {
			log.Debug("socket closed", zap.String("reason", reason))
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

	sigCh := ipc.Notify()
	defer ipc.Stop(sigCh)

	for {
		select {
		case msg := <-queue.Recv():
			cmd, ok := ipc.Recognized(ipc.AuthCommands, msg)
			if !ok {
				continue
			}
			switch cmd {
			case ipc.CmdStop:
				log.Info("ipc stop received")
				return nil
			case ipc.CmdReloadBanned:
				if err := banRepo.Reload(ctx, banList); err != nil {
					log.Warn("reload-banned failed", zap.Error(err))
				} else {
					log.Info("ban list reloaded")
				}
			case ipc.CmdReloadRealm:
				if fresh, err := realmRepo.Reload(ctx); err != nil {
					log.Warn("reload-realm failed", zap.Error(err))
				} else {
					realms.set(fresh)
					log.Info("realm list reloaded", zap.Int("count", len(fresh)))
				}
			}

		case sig := <-sigCh:
			log.Info("signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

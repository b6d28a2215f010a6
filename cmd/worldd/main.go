package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/snowfight-go/battlecore/internal/accountproto"
	"github.com/snowfight-go/battlecore/internal/catalog"
	"github.com/snowfight-go/battlecore/internal/config"
	"github.com/snowfight-go/battlecore/internal/daemon"
	"github.com/snowfight-go/battlecore/internal/entity"
	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/snowfight-go/battlecore/internal/ipc"
	"github.com/snowfight-go/battlecore/internal/ntsproto"
	"github.com/snowfight-go/battlecore/internal/scripting"
	"github.com/snowfight-go/battlecore/internal/session"
	"github.com/snowfight-go/battlecore/internal/theater"
	"github.com/snowfight-go/battlecore/internal/transport"
	"github.com/snowfight-go/battlecore/internal/worldmap"
)

// clockSyncState tracks, per in-band session, when the last TIME_SYNC_REQ
// was sent so the reply handler can recover the round-trip latency
// (spec.md §4.3; world sessions run this in-band rather than through the
// standalone ntsd, since the Session object itself owns Clock/Latency).
type clockSyncState struct {
	mu     sync.Mutex
	sentAt map[session.ID]time.Time
}

func newClockSyncState() *clockSyncState {
	return &clockSyncState{sentAt: make(map[session.ID]time.Time)}
}

const daemonName = "worldd"
const version = "v0.1.0"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := daemon.ParseFlags(args, "config/world.toml", false)
	if err != nil {
		return err
	}
	if flags.Help {
		fmt.Println("usage: worldd [--config path] [--stop]")
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
	daemon.PrintOK("catalog ready")

	mapTemplates, err := catalog.NewMapTemplateRepo(catalogDB).List(ctx)
	if err != nil {
		return fmt.Errorf("load map templates: %w", err)
	}
	daemon.PrintOK(fmt.Sprintf("%d map templates loaded", len(mapTemplates)))

	// worldd keeps its own ban-list snapshot: it is a separate process from
	// authd with no shared memory, and re-validates LOGIN independently
	// (spec.md §1, accountproto.LoginRequest doc).
	banRepo := catalog.NewBanRepo(catalogDB)
	banList := catalog.NewBanList()
	if err := banRepo.Reload(ctx, banList); err != nil {
		return fmt.Errorf("load ban list: %w", err)
	}

	scriptingEngine, err := scripting.NewEngine(cfg.World.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("load scripting engine: %w", err)
	}

	mgr := theater.NewManager(
		cfg.World.PlayerLimit,
		cfg.World.TheaterDeletionDelaySec*1000,
		cfg.World.QueuedSessionTimeoutMS,
		cfg.World.ExpiredSessionDelayMS,
		cfg.World.TheaterUpdateThreads,
	)

	clockSync := newClockSyncState()
	dispatcher := session.NewDispatcher(log)
	registerWorldHandlers(dispatcher, clockSync, banList, mgr)

	sockOpt := transport.Options{
		NumOpcodes:     dispatcher.NumOpcodes(),
		TCPNoDelay:     cfg.Network.TcpNoDelay,
		SendQueueLimit: cfg.Network.SendQueueLimit,
	}

	var nextSessionCounter uint16
	sm, err := transport.NewSocketManager(
		cfg.Network.BindIP, cfg.Network.WorldServerPort, cfg.Network.ThreadPool,
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
	daemon.PrintReady(fmt.Sprintf("world tick every %s", cfg.World.WorldUpdateInterval()))
	fmt.Println()

	ticker := time.NewTicker(cfg.World.WorldUpdateInterval())
	defer ticker.Stop()
	sigCh := ipc.Notify()
	defer ipc.Stop(sigCh)

	var lastTick time.Time
	for {
		select {
		case now := <-ticker.C:
			dt := cfg.World.WorldUpdateInterval()
			if !lastTick.IsZero() {
				dt = now.Sub(lastTick)
			}
			lastTick = now
			dtMS := dt.Milliseconds()

			admitPending(mgr, mapTemplates, scriptingEngine, cfg, now.UnixMilli())

			mgr.AdvanceAll(dtMS)
			mgr.TickAll(dt.Seconds())
			mgr.PurgeIdle(now.UnixMilli())
			mgr.ExpireGrace(now.UnixMilli())

			for _, s := range mgr.AllSessions() {
				if !s.Clock.DueForSync(now) {
					continue
				}
				counter := s.Clock.NextRequest(now)
				s.Clock.MarkTick(now)
				clockSync.mu.Lock()
				clockSync.sentAt[s.ID] = now
				clockSync.mu.Unlock()
				s.Socket.QueuePacket(transport.Packet{
					Opcode: opTimeSyncReq,
					Body:   ntsproto.EncodeReq(counter),
				})
			}

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

// worldd's own dense opcode numbering (distinct from internal/ntsproto's,
// which is ntsd's own table, and from authd's, which is a separate
// process on a separate port). opLogin is the only inbound opcode other
// than opTimeSyncReply; opAuthVerdict/opTheaterInfo/opUpdateObject are
// outbound-only and need no dispatcher registration.
const (
	opTimeSyncReq   uint16 = 0
	opTimeSyncReply uint16 = 1
	opLogin         uint16 = 2
	opAuthVerdict   uint16 = 3
	opTheaterInfo   uint16 = 4
	opUpdateObject  uint16 = 5
)

// registerWorldHandlers wires opcode handlers into the dispatcher: clock
// sync, and LOGIN (spec.md §4.4 step 1 "a lock-free queue receives
// newly-authenticated sockets" — here, the opLogin handler is that
// queue's producer, Manager.Enqueue). The rest of the opcode table's
// body payload format is opaque per spec.md §4.1 ("this spec does not
// fix per-opcode field layouts"), so movement/combat/item opcodes are
// left to whatever concrete wire format a client integration settles on;
// those handlers register here the same way once that format exists.
func registerWorldHandlers(d *session.Dispatcher, clockSync *clockSyncState, banList *catalog.BanList, mgr *theater.Manager) {
	d.Register(opTimeSyncReply, session.StatusLoggedIn, func(s *session.Session, body []byte) error {
		counter, clientUnixNano, ok := ntsproto.DecodeReply(body)
		if !ok {
			return fmt.Errorf("malformed time sync reply")
		}
		now := time.Now()
		clockSync.mu.Lock()
		sentAt, hadSentAt := clockSync.sentAt[s.ID]
		delete(clockSync.sentAt, s.ID)
		clockSync.mu.Unlock()
		if !hadSentAt {
			return nil
		}
		latencyMS := int32(now.Sub(sentAt) / time.Millisecond)
		s.Latency.Record(latencyMS)
		s.Clock.ApplyReply(counter, time.Unix(0, clientUnixNano), latencyMS, now)
		return nil
	})

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
		mgr.Enqueue(theater.PendingSession{
			Session:      s,
			PriorID:      session.ID(req.PriorSessionID),
			IsGM:         req.IsGM,
			IsTrainee:    req.IsTrainee,
			CombatPower:  req.CombatPower,
			SelectedKind: theater.MapKind(req.SelectedKind),
		})
		return nil
	})
}

// admitPending drains the manager's admission queue and runs each
// pending session through Admit, then SelectTheater/CreateTheater/
// JoinWithPlayer on success (spec.md §4.4 step 1). Called once per world
// tick from the single-threaded main loop, never concurrently with
// itself.
func admitPending(mgr *theater.Manager, templates []catalog.MapTemplate, scriptingEngine *scripting.Engine, cfg *config.Config, nowMS int64) {
	for _, p := range mgr.DrainPending() {
		switch mgr.Admit(p, nowMS) {
		case theater.VerdictAdmitted:
			t, ok := mgr.SelectTheater(p.SelectedKind, p.IsTrainee)
			if !ok {
				t = createTheaterFor(mgr, templates, scriptingEngine, cfg, p)
			}
			spawnPlayer(mgr, t, p)

		case theater.VerdictRestored:
			if t, ok := mgr.TheaterOfPlayer(p.Session.PlayerGUID); ok {
				p.Session.SetStatus(session.StatusLoggedIn)
				sendTheaterInfo(p.Session, t)
			}

		case theater.VerdictQueued:
			p.Session.Send(transport.Packet{
				Opcode: opAuthVerdict,
				Body:   accountproto.EncodeAuthVerdict(accountproto.VerdictWaitQueue, int32(mgr.QueueLen())),
			})

		case theater.VerdictExpired:
			p.Session.Send(transport.Packet{
				Opcode: opAuthVerdict,
				Body:   accountproto.EncodeAuthVerdict(accountproto.VerdictSessionExpired, 0),
			})
		}
	}
}

// spawnPlayer materializes a newly-admitted session's in-world player:
// fresh guid, map insertion, theater join, and the OK verdict plus
// theater info the client needs to enter (spec.md §4.4 step 1, §7
// scenario 1).
func spawnPlayer(mgr *theater.Manager, t *theater.Theater, p theater.PendingSession) {
	playerGUID := guid.NextPlayerGuid()
	player := entity.NewPlayer(playerGUID)
	player.CombatPower = p.CombatPower
	player.IsGM = p.IsGM
	player.MaxHealth, player.Health = 100, 100
	player.MaxStamina, player.Stamina = 100, 100
	player.AttackRange = 120
	player.Damage.Base = 10
	player.Defense.Base = 5
	player.AttackTakesStamina = 20
	player.ViewportW, player.ViewportH = 800, 600
	t.Map.AddPlayer(player)

	t.JoinWithPlayer(p.Session, playerGUID)
	mgr.BindSession(p.Session.ID, t)
	mgr.RegisterPlayer(uint32(playerGUID), t)

	p.Session.SetStatus(session.StatusLoggedIn)
	p.Session.Send(transport.Packet{Opcode: opAuthVerdict, Body: accountproto.EncodeAuthVerdict(accountproto.VerdictOK, 0)})
	sendTheaterInfo(p.Session, t)
}

func sendTheaterInfo(s *session.Session, t *theater.Theater) {
	s.Send(transport.Packet{
		Opcode: opTheaterInfo,
		Body: accountproto.EncodeTheaterInfo(accountproto.TheaterInfo{
			MapID: t.Map.ID,
			Kind:  uint8(t.Kind),
		}),
	})
}

// createTheaterFor builds a fresh theater from a catalog map template,
// picking the fixed training map for trainees/MapTraining requests and a
// weighted-random grade-banded battle map otherwise (spec.md §4.4 "Map
// selection for a player").
func createTheaterFor(mgr *theater.Manager, templates []catalog.MapTemplate, scriptingEngine *scripting.Engine, cfg *config.Config, p theater.PendingSession) *theater.Theater {
	var tmpl catalog.MapTemplate
	if p.SelectedKind == theater.MapTraining || p.IsTrainee {
		tmpl = trainingTemplate(templates)
	} else {
		candidates := catalog.FilterByGrade(templates, p.CombatPower)
		if len(candidates) == 0 {
			candidates = templates
		}
		if picked, ok := catalog.WeightedDraw(candidates, rand.Float64); ok {
			tmpl = picked
		}
	}

	id := mgr.NextTheaterID()
	m := worldmap.NewMap(id, tmpl.Width, tmpl.Height)
	t := theater.NewTheater(id, m, theater.MapKind(tmpl.Kind), cfg.World.WaitForPlayersTimeoutMS)
	t.GradeBandMin = tmpl.GradeBandMin
	t.GradeBandMax = tmpl.GradeBandMax
	t.PopulationCap = tmpl.PopulationCap
	t.Scripting = scriptingEngine
	t.Params = theater.SimParams{
		EnteringDangerDelayMS: cfg.World.EnteringDangerDelayMS,
		DangerHealthLoss:      cfg.World.DangerHealthLoss,
		HealthLossIntervalMS:  cfg.World.HealthLossIntervalMS,
		BaseXPOnKill:          cfg.World.BaseXPOnKill,
		UpdateObjectOpcode:    opUpdateObject,
	}
	mgr.CreateTheater(t)
	return t
}

func trainingTemplate(templates []catalog.MapTemplate) catalog.MapTemplate {
	for _, t := range templates {
		if t.Kind == catalog.MapTraining {
			return t
		}
	}
	return catalog.MapTemplate{Kind: catalog.MapTraining, Width: 256, Height: 256, PopulationCap: 1}
}

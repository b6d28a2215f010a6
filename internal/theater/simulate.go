package theater

import (
	"math"
	"math/rand"

	"github.com/snowfight-go/battlecore/internal/accountproto"
	"github.com/snowfight-go/battlecore/internal/ai"
	"github.com/snowfight-go/battlecore/internal/combat"
	"github.com/snowfight-go/battlecore/internal/entity"
	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/snowfight-go/battlecore/internal/itemfx"
	"github.com/snowfight-go/battlecore/internal/spatial"
	"github.com/snowfight-go/battlecore/internal/transport"
	"github.com/snowfight-go/battlecore/internal/worldmap"
)

// SimParams holds the per-theater constants the simulation pass reads
// every tick, sourced from config.WorldConfig (spec.md §4.6.1, §4.8) plus
// the outbound opcode the owning daemon registered for UPDATE_OBJECT.
type SimParams struct {
	EnteringDangerDelayMS int64
	DangerHealthLoss      int32
	HealthLossIntervalMS  int64
	BaseXPOnKill          int64
	UpdateObjectOpcode    uint16
}

// simState is the per-theater AI/interest bookkeeping that does not
// belong on the map or on any single entity (spec.md §4.9 "unit-threat
// manager", §4.7 "maintained server-side as two guid sets per player").
type simState struct {
	interest *spatial.Registry
	threat   map[guid.ObjectGuid]*ai.UnitThreatManager
	outcome  *BattleOutcome
}

func newSimState() *simState {
	return &simState{
		interest: spatial.NewRegistry(),
		threat:   make(map[guid.ObjectGuid]*ai.UnitThreatManager),
	}
}

func (s *simState) threatManager(id guid.ObjectGuid) *ai.UnitThreatManager {
	tm, ok := s.threat[id]
	if !ok {
		tm = ai.NewUnitThreatManager()
		s.threat[id] = tm
	}
	return tm
}

// BattleOutcome marks a theater's match resolution (spec.md §4.6 step 5).
type BattleOutcome struct {
	Resolved bool
	Winner   guid.ObjectGuid // zero if resolved without a single survivor
}

// Outcome reports the current battle resolution, zero value if unresolved.
func (t *Theater) Outcome() BattleOutcome {
	if t.sim.outcome == nil {
		return BattleOutcome{}
	}
	return *t.sim.outcome
}

const (
	interestQueryRadiusGrids = 2
	pickupRangeWorld         = 24.0
	attackBoxHalfExtent      = 16.0
	robotMoveSpeed           = 60.0
	robotSightDistanceTiles  = 10
	reactionMinMS            = 400
	reactionMaxMS            = 1200
	defaultViewportHalf      = 400.0
)

// natureThresholds is the escape health-floor/enemy-ceiling pair per
// nature (spec.md §4.9 "Combat sub-state", supplemented from
// original_source/SparringRobotAI.cpp's per-nature escape tuning).
var natureThresholds = map[entity.Nature]struct {
	HealthFloor  float64
	EnemyCeiling int
}{
	entity.NatureAggressive: {HealthFloor: 10, EnemyCeiling: 3},
	entity.NatureCautious:   {HealthFloor: 30, EnemyCeiling: 2},
	entity.NatureCowardly:   {HealthFloor: 50, EnemyCeiling: 1},
}

// runSimulation drives one tick's per-object update, AI, combat
// resolution, item effects, and interest-management broadcast (spec.md
// §4.6 steps 2-5). Called from Theater.Tick right after Map.Tick's
// zone-shrink pass.
func runSimulation(t *Theater, dtSeconds float64) {
	m := t.Map
	nowMS := int64(m.ElapsedSeconds * 1000)

	for _, u := range collectUnits(m) {
		updateDanger(u, m, t.Params, dtSeconds)
	}
	advanceItems(m, dtSeconds)
	for _, u := range collectUnits(m) {
		tryPickupItem(t, u, nowMS)
	}
	m.TickItemEffects(nowMS)

	for _, r := range m.Robots {
		updateRobot(t, r, dtSeconds)
	}
	for _, id := range collectDeadRobots(m) {
		m.DespawnRobot(id)
		delete(t.sim.threat, id)
	}

	for _, id := range advanceProjectiles(t, dtSeconds) {
		m.DespawnProjectile(id)
	}

	checkBattleOutcome(t)
	broadcastInterest(t)
}

func collectUnits(m *worldmap.Map) []*entity.Unit {
	units := make([]*entity.Unit, 0, len(m.Players)+len(m.Robots))
	for _, p := range m.Players {
		units = append(units, &p.Unit)
	}
	for _, r := range m.Robots {
		units = append(units, &r.Unit)
	}
	return units
}

func collectDeadRobots(m *worldmap.Map) []guid.ObjectGuid {
	var dead []guid.ObjectGuid
	for id, r := range m.Robots {
		if r.DeathState == entity.Dead {
			dead = append(dead, id)
		}
	}
	return dead
}

// updateDanger runs the Released -> Entering -> Entered safe-zone state
// machine and applies periodic health loss once Entered (spec.md
// §4.6.1, scenario 6).
func updateDanger(u *entity.Unit, m *worldmap.Map, p SimParams, dtSeconds float64) {
	dtMS := int64(dtSeconds * 1000)
	inside := m.IsInsideZone(u.Pos)

	switch u.Danger {
	case entity.DangerReleased:
		if !inside {
			u.Danger = entity.DangerEntering
			u.DangerElapsedMS = 0
		}
	case entity.DangerEntering:
		if inside {
			u.Danger = entity.DangerReleased
			u.DangerElapsedMS = 0
			break
		}
		u.DangerElapsedMS += dtMS
		if u.DangerElapsedMS >= p.EnteringDangerDelayMS {
			u.Danger = entity.DangerEntered
			u.DangerLossAccumMS = 0
		}
	case entity.DangerEntered:
		if inside {
			u.Danger = entity.DangerReleased
			u.DangerElapsedMS = 0
			u.DangerLossAccumMS = 0
			break
		}
		if p.HealthLossIntervalMS <= 0 {
			break
		}
		u.DangerLossAccumMS += dtMS
		for u.DangerLossAccumMS >= p.HealthLossIntervalMS {
			u.DangerLossAccumMS -= p.HealthLossIntervalMS
			u.Health -= p.DangerHealthLoss
			if u.Health < 0 {
				u.Health = 0
			}
		}
	}
}

// advanceItems runs a ground item's short drop-in animation before it
// becomes pickup-eligible (spec.md §3 Item "activating -> active").
func advanceItems(m *worldmap.Map, dtSeconds float64) {
	for _, it := range m.Items {
		if it.State != entity.ItemActivating {
			continue
		}
		it.Elapsed += dtSeconds
		if it.Elapsed >= it.Duration {
			it.State = entity.ItemActive
		}
	}
}

// tryPickupItem auto-collects any active item within pickup range,
// applying its scripted effects through itemfx (spec.md §4.10).
func tryPickupItem(t *Theater, u *entity.Unit, nowMS int64) {
	if u.DeathState == entity.Dead {
		return
	}
	m := t.Map
	for _, id := range m.QueryRadius(u.Pos, 1) {
		if id.Type() != guid.TypeItem {
			continue
		}
		item, ok := m.Items[id]
		if !ok || item.State != entity.ItemActive {
			continue
		}
		dx, dy := item.Pos.X-u.Pos.X, item.Pos.Y-u.Pos.Y
		if dx*dx+dy*dy > pickupRangeWorld*pickupRangeWorld {
			continue
		}
		applyItem(t, u, item.TemplateID, nowMS)
		m.DespawnItem(id)
		return
	}
}

func applyItem(t *Theater, u *entity.Unit, templateID int32, nowMS int64) {
	if t.Scripting == nil {
		return
	}
	effects := t.Scripting.GetItemEffects(templateID)
	if len(effects) == 0 {
		return
	}
	fx := t.Map.ItemEffectsFor(u.GUID)
	healthDelta, applied := itemfx.Apply(fx.Accumulators, nowMS, effects)
	for _, eff := range applied {
		fx.Timers.Add(eff)
	}
	u.Health += int32(healthDelta)
	if u.Health > u.MaxHealth {
		u.Health = u.MaxHealth
	}
	if u.Health < 0 {
		u.Health = 0
	}
}

func healthPercent(u *entity.Unit) float64 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return 100 * float64(u.Health) / float64(u.MaxHealth)
}

// updateRobot re-evaluates the robot's action once its reaction gate
// elapses, then always advances whatever move spline is in flight
// (spec.md §4.9).
func updateRobot(t *Theater, r *entity.Robot, dtSeconds float64) {
	if r.DeathState == entity.Dead {
		return
	}
	nowSeconds := t.Map.ElapsedSeconds
	if nowSeconds >= r.NextReactionAt {
		evaluateRobotAction(t, r, nowSeconds)
	}
	advanceRobotMovement(t.Map, r, dtSeconds)
}

func robotCoefficients(t *Theater, r *entity.Robot) ai.Coefficients {
	idx := 1
	if r.SubState == entity.SubStateEscape {
		idx = 2
	}
	if t.Scripting == nil {
		return ai.Coefficients{Distance: 1, Health: 1, Damage: 1, Charge: 1}
	}
	nc := t.Scripting.GetNatureCoefficients(int(r.Nature))
	return ai.Coefficients{
		Distance: nc.DistanceWeight[idx],
		Health:   nc.HealthWeight[idx],
		Damage:   nc.DamageWeight[idx],
		Charge:   nc.ChargeWeight[idx],
	}
}

// evaluateRobotAction implements spec.md §4.9's reaction cycle: rescore
// nearby players into the unit-threat manager, select the highest-
// priority pending action, and act on it.
func evaluateRobotAction(t *Theater, r *entity.Robot, nowSeconds float64) {
	m := t.Map
	tm := t.sim.threatManager(r.GUID)

	seenAny := false
	for _, id := range m.QueryRadius(r.Pos, interestQueryRadiusGrids) {
		p, ok := m.Players[id]
		if !ok || p.DeathState == entity.Dead {
			continue
		}
		seenAny = true
		dist := math.Hypot(p.Pos.X-r.Pos.X, p.Pos.Y-r.Pos.Y)
		missingHealth := 0.0
		if p.MaxHealth > 0 {
			missingHealth = 1 - float64(p.Health)/float64(p.MaxHealth)
		}
		contributors := ai.ThreatContributors{
			DistanceTerm: ai.DistanceTerm(dist, r.AttackRange*4),
			HealthTerm:   missingHealth,
		}
		coeffs := robotCoefficients(t, r)
		tm.Update(id, contributors, coeffs)
		r.UnitThreat[id] = ai.ThreatScore(contributors, coeffs)
	}
	if !seenAny {
		tm = ai.NewUnitThreatManager()
		t.sim.threat[r.GUID] = tm
		for id := range r.UnitThreat {
			delete(r.UnitThreat, id)
		}
	}

	pending := ai.PendingActions{}
	var targetPos entity.Position
	haveTarget := false
	if target, ok := tm.Highest(); ok {
		if p, ok2 := m.Players[target]; ok2 {
			targetPos, haveTarget = p.Pos, true
			if math.Hypot(p.Pos.X-r.Pos.X, p.Pos.Y-r.Pos.Y) <= r.AttackRange {
				pending[ai.ActionEngageCombat] = true
			} else {
				pending[ai.ActionSeekEnemySpot] = true
			}
		}
	}
	if !haveTarget {
		pending[ai.ActionExploreArea] = true
	}

	thresh := natureThresholds[r.Nature]
	r.SubState = ai.SubState(healthPercent(&r.Unit), len(r.Enemies), thresh.HealthFloor, thresh.EnemyCeiling)

	switch action, _ := ai.SelectAction(pending); action {
	case ai.ActionEngageCombat:
		fireAtTarget(t, r, targetPos)
	case ai.ActionSeekEnemySpot:
		stepToward(m, r, targetPos)
	default:
		exploreStep(r, m, nowSeconds)
	}

	gate := ai.ReactionGate{MinMS: reactionMinMS + int64(r.Proficiency)*50, MaxMS: reactionMaxMS + int64(r.Proficiency)*50}
	r.NextReactionAt = nowSeconds + float64(gate.NextDelayMS(rand.Float64))/1000.0
}

func startSpline(r *entity.Robot, next worldmap.TileCoord) {
	wx, wy := worldmap.TileToWorld(next)
	dist := math.Hypot(wx-r.Pos.X, wy-r.Pos.Y)
	r.Spline = entity.MoveSpline{
		From:     r.Pos,
		To:       entity.Position{X: wx, Y: wy},
		Duration: ai.SplineDuration(dist, robotMoveSpeed),
	}
}

func stepToward(m *worldmap.Map, r *entity.Robot, targetPos entity.Position) {
	if !r.Spline.Done() {
		return
	}
	from := worldmap.WorldToTile(r.Pos.X, r.Pos.Y)
	goal := worldmap.WorldToTile(targetPos.X, targetPos.Y)
	next, ok := ai.NextStep(m.Tiles, m.Districts, from, goal, true)
	if !ok {
		return
	}
	startSpline(r, next)
}

func advanceRobotMovement(m *worldmap.Map, r *entity.Robot, dtSeconds float64) {
	if r.Spline.Duration <= 0 {
		return
	}
	r.Spline.Elapsed += dtSeconds
	f := r.Spline.Progress()
	r.Pos = entity.Position{
		X: r.Spline.From.X + (r.Spline.To.X-r.Spline.From.X)*f,
		Y: r.Spline.From.Y + (r.Spline.To.Y-r.Spline.From.Y)*f,
	}
	m.MoveObject(r.GUID, r.Pos)
	if r.Spline.Done() {
		heading := math.Atan2(r.Spline.To.Y-r.Spline.From.Y, r.Spline.To.X-r.Spline.From.X)
		r.Heading = int(heading * 180 / math.Pi)
	}
}

// exploreStep implements the fallback exploration behavior (spec.md
// §4.9 "Exploration"): bucket the robot's neighborhood into ExplorAreas
// and pick the nearest unexplored, same-district, non-excluded, safe one.
func exploreStep(r *entity.Robot, m *worldmap.Map, nowSeconds float64) {
	if !r.Spline.Done() {
		return
	}
	from := worldmap.WorldToTile(r.Pos.X, r.Pos.Y)
	curArea := ai.ExplorAreaOf(from.X, from.Y, robotSightDistanceTiles)
	curDistrict := m.Districts.DistrictOf(from)

	step := robotSightDistanceTiles * ai.ExplorAreaSizeFactor
	offsets := []worldmap.TileCoord{{X: step}, {X: -step}, {Y: step}, {Y: -step}}

	candidates := make([]ai.AdjacentCandidate, 0, len(offsets))
	goalByArea := make(map[int32]worldmap.TileCoord, len(offsets))
	for _, off := range offsets {
		cand := worldmap.TileCoord{X: from.X + off.X, Y: from.Y + off.Y}
		if !m.Tiles.InBounds(cand) || !m.Tiles.IsPenetrable(cand) {
			continue
		}
		area := ai.ExplorAreaOf(cand.X, cand.Y, robotSightDistanceTiles)
		_, explored := r.ExploredSet[area]
		wx, wy := worldmap.TileToWorld(cand)
		candidates = append(candidates, ai.AdjacentCandidate{
			Area:           area,
			SameDistrict:   m.Districts.DistrictOf(cand) == curDistrict,
			Unexplored:     !explored,
			Excluded:       isAreaExcluded(r, area, nowSeconds),
			MoveDistance:   math.Hypot(wx-r.Pos.X, wy-r.Pos.Y),
			SafeDistanceOK: m.IsInsideZone(entity.Position{X: wx, Y: wy}),
		})
		goalByArea[area] = cand
	}

	choice, ok := ai.ChooseNextArea(candidates)
	if !ok {
		excludeArea(r, curArea, nowSeconds)
		return
	}
	r.ExploreArea = choice.Area
	r.ExploredSet[choice.Area] = struct{}{}
	r.ExploreState = entity.ExploreGotoUnexplored
	if goal, ok := goalByArea[choice.Area]; ok {
		startSpline(r, goal)
	}
}

// isAreaExcluded/excludeArea wire the robot's own ExcludedAreas field
// (spec.md §4.9: "Excluded areas expire after 30 s", mirroring
// ai.ExcludedAreaTTLSeconds).
func isAreaExcluded(r *entity.Robot, area int32, nowSeconds float64) bool {
	expiry, ok := r.ExcludedAreas[area]
	if !ok {
		return false
	}
	if nowSeconds >= expiry {
		delete(r.ExcludedAreas, area)
		return false
	}
	return true
}

func excludeArea(r *entity.Robot, area int32, nowSeconds float64) {
	r.ExcludedAreas[area] = nowSeconds + ai.ExcludedAreaTTLSeconds
}

// fireAtTarget launches a projectile along the bezier trajectory toward
// targetPos (spec.md §4.8). Every third attack is a charged shot, just
// enough variety to exercise ChargedMultiplier's curve branch rather
// than only its s<=a boundary.
func fireAtTarget(t *Theater, r *entity.Robot, targetPos entity.Position) {
	heading := math.Atan2(targetPos.Y-r.Pos.Y, targetPos.X-r.Pos.X)
	r.Heading = int(heading * 180 / math.Pi)

	r.AttackCounter++
	projType := entity.ProjectileNormal
	if r.AttackCounter%3 == 0 {
		projType = entity.ProjectileCharged
	}

	p0, p1, p2, p3 := combat.LaunchCurve(combat.Point{X: r.Pos.X, Y: r.Pos.Y}, heading, r.AttackRange)
	t.Map.SpawnProjectile(r.GUID, worldmap.BezierCurveArg{
		P0: worldmap.Position{X: p0.X, Y: p0.Y},
		P1: worldmap.Position{X: p1.X, Y: p1.Y},
		P2: worldmap.Position{X: p2.X, Y: p2.Y},
		P3: worldmap.Position{X: p3.X, Y: p3.Y},
	}, 0.4, projType)
}

// advanceProjectiles moves every active projectile by one tick, tracks
// projectile threat against nearby robots, and resolves collisions,
// returning the ids to despawn (spec.md §4.6 step 3's deferred removal).
func advanceProjectiles(t *Theater, dtSeconds float64) []guid.ObjectGuid {
	m := t.Map
	var despawn []guid.ObjectGuid
	for id, pr := range m.Projectiles {
		if pr.State != entity.ProjectileActive {
			despawn = append(despawn, id)
			continue
		}
		prevPos := pr.Position()
		pr.Elapsed += dtSeconds
		newPos := pr.Position()
		seg := combat.Segment{From: combat.Point{X: prevPos.X, Y: prevPos.Y}, To: combat.Point{X: newPos.X, Y: newPos.Y}}

		nearby := m.QueryRadius(newPos, 1)
		trackProjectileThreat(m, pr, nearby)

		if hitID, hitUnit := findProjectileHit(pr, seg, nearby, m); hitUnit != nil {
			resolveHit(t, pr, seg, hitID, hitUnit)
			despawn = append(despawn, id)
			clearProjectileThreat(m, id)
			continue
		}
		if pr.Elapsed >= pr.Duration {
			despawn = append(despawn, id)
			clearProjectileThreat(m, id)
			continue
		}
		m.MoveObject(id, newPos)
	}
	return despawn
}

func trackProjectileThreat(m *worldmap.Map, pr *entity.Projectile, nearby []guid.ObjectGuid) {
	for _, id := range nearby {
		if id.Type() != guid.TypeRobot || id == pr.Launcher {
			continue
		}
		if r, ok := m.Robots[id]; ok {
			r.ProjectileThreat[pr.GUID] = 1
		}
	}
}

func clearProjectileThreat(m *worldmap.Map, projectileID guid.ObjectGuid) {
	for _, r := range m.Robots {
		delete(r.ProjectileThreat, projectileID)
	}
}

func findProjectileHit(pr *entity.Projectile, seg combat.Segment, nearby []guid.ObjectGuid, m *worldmap.Map) (guid.ObjectGuid, *entity.Unit) {
	for _, id := range nearby {
		if id == pr.Launcher {
			continue
		}
		u := unitAt(m, id)
		if u == nil || u.DeathState == entity.Dead {
			continue
		}
		box := combat.BoundingBox{CenterX: u.Pos.X, CenterY: u.Pos.Y, HalfW: attackBoxHalfExtent, HalfH: attackBoxHalfExtent}
		if combat.IntersectsSwept(seg, box) {
			return id, u
		}
	}
	return 0, nil
}

func unitAt(m *worldmap.Map, id guid.ObjectGuid) *entity.Unit {
	switch id.Type() {
	case guid.TypePlayer:
		if p, ok := m.Players[id]; ok {
			return &p.Unit
		}
	case guid.TypeRobot:
		if r, ok := m.Robots[id]; ok {
			return &r.Unit
		}
	}
	return nil
}

// resolveHit applies damage per spec.md §4.8's formula and credits the
// launcher for kill-reward settlement on death.
func resolveHit(t *Theater, pr *entity.Projectile, seg combat.Segment, targetID guid.ObjectGuid, target *entity.Unit) {
	launcher := unitAt(t.Map, pr.Launcher)
	launcherDamage := 10.0
	if launcher != nil {
		launcherDamage = launcher.Damage.Final()
	}

	multiplier := 1.0
	switch pr.Type {
	case entity.ProjectileCharged:
		var stamina, maxStamina, a float64
		if launcher != nil {
			stamina, maxStamina, a = float64(launcher.Stamina), float64(launcher.MaxStamina), float64(launcher.AttackTakesStamina)
		}
		precision := combat.Precision(combat.PerpendicularDistance(seg, combat.Point{X: target.Pos.X, Y: target.Pos.Y}), attackBoxHalfExtent)
		multiplier = combat.ChargedMultiplier(combat.ChargeParams{
			StaminaAtChargeStart: stamina,
			MaxStamina:           maxStamina,
			AttackTakesStamina:   a,
			BonusRatio:           0.2,
			Precision:            precision,
		})
	case entity.ProjectileIntensified:
		multiplier = 1 + pr.DamageBonusRatio
	}

	dmg := combat.Damage(multiplier, launcherDamage, target.Defense.Final(), 0)
	target.Health -= dmg
	if target.Health < 0 {
		target.Health = 0
	}
	target.RecordIncomingDamage(pr.Launcher, dmg)

	if target.Health == 0 && target.DeathState != entity.Dead {
		killUnit(t, targetID, target)
	}
}

// killUnit settles kill-XP proportional to damage dealt (spec.md §4.8)
// and marks the unit's death/withdrawal state.
func killUnit(t *Theater, id guid.ObjectGuid, u *entity.Unit) {
	u.DeathState = entity.Dead
	if u.Rewards != nil {
		for _, award := range u.Rewards.Settle(u.MaxHealth, t.Params.BaseXPOnKill) {
			if attacker := unitAt(t.Map, award.Attacker); attacker != nil {
				attacker.Experience += award.XP
			}
		}
	}
	if id.Type() == guid.TypeRobot {
		u.Withdrawal = entity.WithdrawalDone
	} else {
		u.Withdrawal = entity.WithdrawalPending
	}
}

// checkBattleOutcome marks the theater resolved once at most one non-GM
// player remains alive (spec.md §4.6 step 5). Sticky: once resolved it
// never re-evaluates, so a later respawn can't un-resolve a match.
func checkBattleOutcome(t *Theater) {
	if t.sim.outcome != nil {
		return
	}
	m := t.Map
	if len(m.Players) == 0 {
		return
	}
	var alive []guid.ObjectGuid
	for id, p := range m.Players {
		if !p.IsGM && p.DeathState != entity.Dead {
			alive = append(alive, id)
		}
	}
	if len(alive) > 1 {
		return
	}
	outcome := &BattleOutcome{Resolved: true}
	if len(alive) == 1 {
		outcome.Winner = alive[0]
	}
	t.sim.outcome = outcome
}

// broadcastInterest classifies every nearby object against each
// player's client set and pushes one coalesced UPDATE_OBJECT packet per
// player carrying only what changed (spec.md §4.7).
func broadcastInterest(t *Theater) {
	m := t.Map
	for playerID, p := range m.Players {
		sessID, ok := t.PlayerSessions[playerID]
		if !ok {
			continue
		}
		sess, ok := t.Sessions[sessID]
		if !ok {
			continue
		}

		cs := t.sim.interest.Ensure(playerID)
		halfW, halfH := p.ViewportW/2, p.ViewportH/2
		if halfW == 0 {
			halfW = defaultViewportHalf
		}
		if halfH == 0 {
			halfH = defaultViewportHalf
		}
		vp := spatial.Viewport{CenterX: p.Pos.X, CenterY: p.Pos.Y, HalfW: halfW, HalfH: halfH}

		var deltas []accountproto.ObjectDelta
		for _, id := range m.QueryRadius(p.Pos, interestQueryRadiusGrids) {
			if id == playerID {
				continue
			}
			obj, ok := objectView(m, id)
			if !ok {
				continue
			}
			delta := cs.Classify(id, spatial.VisibleTo(obj, vp, p.IsGM, false), spatial.TrackedBy(obj, vp), true)
			if delta == spatial.DeltaNone {
				continue
			}
			deltas = append(deltas, accountproto.ObjectDelta{
				GUID: uint32(id),
				Kind: accountproto.ObjectDeltaKind(int(delta) - int(spatial.DeltaCreate)),
			})
		}
		if len(deltas) == 0 {
			continue
		}
		sess.Send(transport.Packet{Opcode: t.Params.UpdateObjectOpcode, Body: accountproto.EncodeObjectDeltas(deltas)})
	}
}

func objectView(m *worldmap.Map, id guid.ObjectGuid) (spatial.ObjectView, bool) {
	switch id.Type() {
	case guid.TypePlayer:
		p, ok := m.Players[id]
		if !ok {
			return spatial.ObjectView{}, false
		}
		return spatial.ObjectView{GUID: id, X: p.Pos.X, Y: p.Pos.Y, Visible: true, Concealed: p.Concealment == entity.Concealed, IsGM: p.IsGM}, true
	case guid.TypeRobot:
		r, ok := m.Robots[id]
		if !ok {
			return spatial.ObjectView{}, false
		}
		return spatial.ObjectView{GUID: id, X: r.Pos.X, Y: r.Pos.Y, Visible: true, Concealed: r.Concealment == entity.Concealed}, true
	case guid.TypeProjectile:
		pr, ok := m.Projectiles[id]
		if !ok {
			return spatial.ObjectView{}, false
		}
		pos := pr.Position()
		return spatial.ObjectView{GUID: id, X: pos.X, Y: pos.Y, Visible: true}, true
	case guid.TypeItem:
		it, ok := m.Items[id]
		if !ok {
			return spatial.ObjectView{}, false
		}
		return spatial.ObjectView{GUID: id, X: it.Pos.X, Y: it.Pos.Y, Visible: it.State == entity.ItemActive}, true
	case guid.TypeItemBox:
		b, ok := m.ItemBoxes[id]
		if !ok {
			return spatial.ObjectView{}, false
		}
		return spatial.ObjectView{GUID: id, X: b.Pos.X, Y: b.Pos.Y, Visible: true}, true
	case guid.TypeUnitLocator:
		l, ok := m.Locators[id]
		if !ok || !l.Alive {
			return spatial.ObjectView{}, false
		}
		return spatial.ObjectView{GUID: id, X: l.Pos.X, Y: l.Pos.Y, Visible: false, HasLocator: true}, true
	}
	return spatial.ObjectView{}, false
}

package entity

import "github.com/snowfight-go/battlecore/internal/guid"

// RobotVariant (spec.md §3 Robot "AI variant").
type RobotVariant int

const (
	VariantTraining RobotVariant = iota
	VariantSparring
)

// Nature drives the AI's per-nature threat-coefficient table
// (spec.md §4.9, supplemented from original_source/SparringRobotAI.cpp —
// see SPEC_FULL.md "Supplemented features").
type Nature int

const (
	NatureAggressive Nature = iota
	NatureCautious
	NatureCowardly
)

// ExploreState (spec.md §4.9 Exploration).
type ExploreState int

const (
	ExploreNone ExploreState = iota
	ExploreExploring
	ExploreGotoUnexplored
	ExploreGotoWaypoint
	ExploreGotoLinkedWaypoint
	ExplorePatrolling
	ExploreNoAreas
)

// MoveSpline is the robot's current interpolated move segment
// (spec.md §4.9 "Move spline duration = tile-step distance / move_speed").
type MoveSpline struct {
	From, To Position
	Elapsed, Duration float64
}

func (m *MoveSpline) Done() bool { return m.Duration <= 0 || m.Elapsed >= m.Duration }

// Progress returns 0..1 interpolation fraction along the spline.
func (m *MoveSpline) Progress() float64 {
	if m.Duration <= 0 {
		return 1
	}
	f := m.Elapsed / m.Duration
	if f > 1 {
		return 1
	}
	return f
}

// Robot is a Unit driven by AI (spec.md §3).
type Robot struct {
	Unit

	Variant     RobotVariant
	Nature      Nature
	Proficiency int32 // indexes [minTargetReactionTime, maxTargetReactionTime]

	Spline MoveSpline

	ExploreState  ExploreState
	ExploreArea   int32 // current ExplorArea bucket id
	ExploredSet   map[int32]struct{}
	ExcludedAreas map[int32]float64 // area id -> expiry (server clock seconds)

	SubState CombatSubState

	UnitThreat       map[guid.ObjectGuid]float64
	ProjectileThreat map[guid.ObjectGuid]float64

	WishList []int32 // item template ids the robot wants to collect/use

	NextReactionAt float64 // server clock seconds; gates reaction-delay

	AttackCounter uint32 // counts attacks fired, for charged-attack cadence
}

func NewRobot(id guid.ObjectGuid) *Robot {
	return &Robot{
		Unit:             NewUnit(id),
		ExploredSet:      make(map[int32]struct{}),
		ExcludedAreas:    make(map[int32]float64),
		UnitThreat:       make(map[guid.ObjectGuid]float64),
		ProjectileThreat: make(map[guid.ObjectGuid]float64),
	}
}

func (r *Robot) Reset() {
	r.Unit.Reset()
	*r = Robot{
		Unit:             r.Unit,
		ExploredSet:      make(map[int32]struct{}),
		ExcludedAreas:    make(map[int32]float64),
		UnitThreat:       make(map[guid.ObjectGuid]float64),
		ProjectileThreat: make(map[guid.ObjectGuid]float64),
	}
}

// Package spatial implements per-viewer interest management (spec.md
// §4.7): visibility rules, the in-sight / tracked client sets, and the
// CREATE/OUT_OF_RANGE/VALUES_UPDATE batching that feeds one
// UPDATE_OBJECT packet per player per tick.
package spatial

import "github.com/snowfight-go/battlecore/internal/guid"

// DiscoverConcealedUnitDistance is the radius within which a concealed
// unit becomes visible regardless of its Concealed state (spec.md §4.7
// "DISCOVER_CONCEALED_UNIT_DISTANCE").
const DiscoverConcealedUnitDistance = 3.0

// TrackingRadius is the radius within which an out-of-sight locator-
// carrying object is still tracked (spec.md §4.7 "tracking radius").
const TrackingRadius = 20.0

// ObjectView is the minimal per-object state visibility rules need.
// Callers adapt entity.Unit/Projectile/etc. into this at the call
// boundary, mirroring worldmap's Position pattern.
type ObjectView struct {
	GUID        guid.ObjectGuid
	X, Y        float64
	Visible     bool
	Concealed   bool
	IsGM        bool
	HasLocator  bool
}

// Viewport is a rectangle centered on the observing player (spec.md
// §4.7 "viewport rectangle centered on the player").
type Viewport struct {
	CenterX, CenterY float64
	HalfW, HalfH     float64
}

func (v Viewport) contains(x, y float64) bool {
	return x >= v.CenterX-v.HalfW && x <= v.CenterX+v.HalfW &&
		y >= v.CenterY-v.HalfH && y <= v.CenterY+v.HalfH
}

func dist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy // squared; callers compare against squared radii
}

// VisibleTo reports whether obj is visible to a non-GM observer with the
// given viewport and "can see concealed" flag (from an item effect).
func VisibleTo(obj ObjectView, vp Viewport, observerIsGM, canSeeConcealed bool) bool {
	if !obj.Visible {
		return false
	}
	if obj.IsGM && !observerIsGM {
		return false
	}
	if !vp.contains(obj.X, obj.Y) {
		return false
	}
	if obj.Concealed && !canSeeConcealed {
		d2 := dist(obj.X, obj.Y, vp.CenterX, vp.CenterY)
		if d2 > DiscoverConcealedUnitDistance*DiscoverConcealedUnitDistance {
			return false
		}
	}
	return true
}

// TrackedBy reports whether an out-of-sight obj is still tracked (spec.md
// §4.7: "carries a locator and the player is outside visible range but
// inside the tracking radius").
func TrackedBy(obj ObjectView, vp Viewport) bool {
	if !obj.HasLocator {
		return false
	}
	d2 := dist(obj.X, obj.Y, vp.CenterX, vp.CenterY)
	return d2 <= TrackingRadius*TrackingRadius
}

// Delta is the per-tick classification of one observed object relative
// to a viewer's prior client set (spec.md §4.7).
type Delta int

const (
	DeltaNone Delta = iota
	DeltaCreate
	DeltaOutOfRange
	DeltaValuesUpdate
)

// ClientSet tracks one player's in-sight and tracked guid sets across
// ticks, classifying each observed object into a Delta (spec.md §4.7:
// "maintained server-side as two guid sets per player").
type ClientSet struct {
	InSight map[guid.ObjectGuid]struct{}
	Tracked map[guid.ObjectGuid]struct{}
}

func NewClientSet() *ClientSet {
	return &ClientSet{
		InSight: make(map[guid.ObjectGuid]struct{}),
		Tracked: make(map[guid.ObjectGuid]struct{}),
	}
}

// Classify updates the client set for one candidate object this tick and
// returns the delta kind that applies. dirty is consulted only when the
// object stays in the same set across ticks (DeltaValuesUpdate is only
// emitted when dirty is true, so unchanged objects produce no packet).
func (cs *ClientSet) Classify(id guid.ObjectGuid, inSightNow, trackedNow, dirty bool) Delta {
	_, wasInSight := cs.InSight[id]
	_, wasTracked := cs.Tracked[id]
	wasVisible := wasInSight || wasTracked
	isVisible := inSightNow || trackedNow

	switch {
	case !wasVisible && isVisible:
		cs.set(id, inSightNow, trackedNow)
		return DeltaCreate
	case wasVisible && !isVisible:
		delete(cs.InSight, id)
		delete(cs.Tracked, id)
		return DeltaOutOfRange
	case wasVisible && isVisible:
		cs.set(id, inSightNow, trackedNow)
		if dirty {
			return DeltaValuesUpdate
		}
		return DeltaNone
	default:
		return DeltaNone
	}
}

func (cs *ClientSet) set(id guid.ObjectGuid, inSight, tracked bool) {
	if inSight {
		cs.InSight[id] = struct{}{}
	} else {
		delete(cs.InSight, id)
	}
	if tracked {
		cs.Tracked[id] = struct{}{}
	} else {
		delete(cs.Tracked, id)
	}
}

// Contains reports whether id is in either client set — the predicate
// the broadcast primitive uses (spec.md §4.7: "for each player with this
// object in their client set").
func (cs *ClientSet) Contains(id guid.ObjectGuid) bool {
	if _, ok := cs.InSight[id]; ok {
		return true
	}
	_, ok := cs.Tracked[id]
	return ok
}

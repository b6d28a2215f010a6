package spatial

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/stretchr/testify/require"
)

func TestVisibleToRequiresViewportAndConcealment(t *testing.T) {
	vp := Viewport{CenterX: 0, CenterY: 0, HalfW: 10, HalfH: 10}

	visible := ObjectView{Visible: true, X: 5, Y: 5}
	require.True(t, VisibleTo(visible, vp, false, false))

	outside := ObjectView{Visible: true, X: 50, Y: 50}
	require.False(t, VisibleTo(outside, vp, false, false))

	concealedFar := ObjectView{Visible: true, Concealed: true, X: 8, Y: 8}
	require.False(t, VisibleTo(concealedFar, vp, false, false))

	concealedNear := ObjectView{Visible: true, Concealed: true, X: 1, Y: 1}
	require.True(t, VisibleTo(concealedNear, vp, false, false))

	gmObj := ObjectView{Visible: true, IsGM: true, X: 1, Y: 1}
	require.False(t, VisibleTo(gmObj, vp, false, false))
	require.True(t, VisibleTo(gmObj, vp, true, false))
}

func TestClientSetClassifyCreateUpdateOutOfRange(t *testing.T) {
	cs := NewClientSet()
	id := guid.New(guid.TypeRobot, 1)

	require.Equal(t, DeltaCreate, cs.Classify(id, true, false, false))
	require.Equal(t, DeltaNone, cs.Classify(id, true, false, false))
	require.Equal(t, DeltaValuesUpdate, cs.Classify(id, true, false, true))
	require.Equal(t, DeltaOutOfRange, cs.Classify(id, false, false, false))
	require.False(t, cs.Contains(id))
}

func TestBroadcastToFindsAllContainingPlayers(t *testing.T) {
	reg := NewRegistry()
	p1 := guid.New(guid.TypePlayer, 1)
	p2 := guid.New(guid.TypePlayer, 2)
	obj := guid.New(guid.TypeRobot, 1)

	reg.Ensure(p1).Classify(obj, true, false, false)
	reg.Ensure(p2)

	targets := reg.BroadcastTo(obj)
	require.Equal(t, []guid.ObjectGuid{p1}, targets)
}

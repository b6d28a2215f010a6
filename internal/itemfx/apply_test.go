package itemfx

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/scripting"
	"github.com/stretchr/testify/require"
)

func TestApplyOrdersPercentFlatHealth(t *testing.T) {
	acc := NewAccumulators()
	acc.ensure("damage", 100)

	effects := []scripting.ItemEffect{
		{Kind: scripting.EffectHealth, Value: 5},
		{Kind: scripting.EffectFlat, Stat: "damage", Value: 10},
		{Kind: scripting.EffectPercent, Stat: "damage", Value: 50},
	}
	healthDelta, applied := Apply(acc, 1000, effects)

	require.Equal(t, float64(5), healthDelta)
	require.Equal(t, scripting.EffectPercent, applied[0].Kind)
	require.Equal(t, scripting.EffectFlat, applied[1].Kind)
	require.Equal(t, scripting.EffectHealth, applied[2].Kind)

	// base 100 * (1 + 50/100) + 10 = 160
	require.Equal(t, float64(160), acc.Final("damage"))
}

func TestTimerMapUndoesInReverseOnExpiry(t *testing.T) {
	acc := NewAccumulators()
	acc.ensure("damage", 0)
	tm := NewTimerMap()

	_, applied := Apply(acc, 0, []scripting.ItemEffect{
		{Kind: scripting.EffectFlat, Stat: "damage", Value: 10, DurationMS: 500},
		{Kind: scripting.EffectFlat, Stat: "damage", Value: 20, DurationMS: 500},
	})
	for _, eff := range applied {
		tm.Add(eff)
	}
	require.Equal(t, float64(30), acc.Final("damage"))

	removed := tm.ExpireDue(acc, 500)
	require.Equal(t, 2, removed)
	require.Equal(t, float64(0), acc.Final("damage"))
	require.Equal(t, 0, tm.Len())
}

func TestCooldownTrackerReadyAfterExpiry(t *testing.T) {
	ct := NewCooldownTracker()
	ct.Start(7, 0, 1000)
	require.False(t, ct.Ready(7, 500))
	require.True(t, ct.Ready(7, 1500))
}

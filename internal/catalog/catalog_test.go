package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBanListHonorsExpiry(t *testing.T) {
	list := NewBanList()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	list.replace(map[string]banEntry{
		"expired_acct":   {reason: "spam", expiresAt: &past},
		"active_acct":    {reason: "cheating", expiresAt: &future},
		"permanent_acct": {reason: "abuse", expiresAt: nil},
	})

	_, banned := list.IsBanned("expired_acct", time.Now())
	require.False(t, banned)

	reason, banned := list.IsBanned("active_acct", time.Now())
	require.True(t, banned)
	require.Equal(t, "cheating", reason)

	_, banned = list.IsBanned("permanent_acct", time.Now().Add(100*365*24*time.Hour))
	require.True(t, banned)

	_, banned = list.IsBanned("unknown", time.Now())
	require.False(t, banned)
}

func TestFilterByGradeExcludesTrainingAndOutOfBand(t *testing.T) {
	templates := []MapTemplate{
		{MapID: 1, Kind: MapTraining, GradeBandMin: 0, GradeBandMax: 9999},
		{MapID: 2, Kind: MapBattle, GradeBandMin: 0, GradeBandMax: 100},
		{MapID: 3, Kind: MapBattle, GradeBandMin: 101, GradeBandMax: 200},
	}
	got := FilterByGrade(templates, 150)
	require.Len(t, got, 1)
	require.Equal(t, int32(3), got[0].MapID)
}

func TestWeightedDrawIsDeterministicWithFixedRand(t *testing.T) {
	templates := []MapTemplate{
		{MapID: 1, Weight: 1},
		{MapID: 2, Weight: 3},
	}
	pick, ok := WeightedDraw(templates, func() float64 { return 0.9 }) // lands in the second (weight 3/4 span)
	require.True(t, ok)
	require.Equal(t, int32(2), pick.MapID)
}

func TestRollAppliesChanceAndQuantityRange(t *testing.T) {
	entries := []LootEntry{
		{ItemID: 10, Chance: 1.0, MinQty: 2, MaxQty: 2},
		{ItemID: 20, Chance: 0.0, MinQty: 1, MaxQty: 1},
	}
	drops := Roll(entries, func() float64 { return 0.0 })
	require.Len(t, drops, 1)
	require.Equal(t, int32(10), drops[0].ItemID)
	require.Equal(t, int32(2), drops[0].Qty)
}

package combat

import (
	"testing"

	"github.com/snowfight-go/battlecore/internal/guid"
	"github.com/stretchr/testify/require"
)

func TestRewardManagerProportionalSplit(t *testing.T) {
	r := NewRewardManager()
	a := guid.New(guid.TypePlayer, 1)
	b := guid.New(guid.TypePlayer, 2)
	r.RecordDamage(a, 75)
	r.RecordDamage(b, 25)

	awards := r.Settle(100, 1000)
	require.Len(t, awards, 2)
	total := int64(0)
	for _, aw := range awards {
		total += aw.XP
	}
	require.Equal(t, int64(1000), total)
}

func TestRewardManagerCapsCompletionAtOne(t *testing.T) {
	r := NewRewardManager()
	a := guid.New(guid.TypePlayer, 1)
	r.RecordDamage(a, 500) // far more than maxHealth
	awards := r.Settle(100, 1000)
	require.Len(t, awards, 1)
	require.Equal(t, int64(1000), awards[0].XP)
}

func TestResolveLauncherNoCreditWhenGone(t *testing.T) {
	ref := LauncherRef{GUID: guid.New(guid.TypePlayer, 1)}
	_, ok := ResolveLauncher(ref, func(guid.ObjectGuid) bool { return false })
	require.False(t, ok)
}

func TestResolveLauncherEmptyRef(t *testing.T) {
	_, ok := ResolveLauncher(LauncherRef{}, func(guid.ObjectGuid) bool { return true })
	require.False(t, ok)
}

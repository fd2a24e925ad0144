package progression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		totalXP int
		level   int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{999, 2},
		{1000, 3},
		{-10, 1},
	}

	for _, tc := range cases {
		require.Equal(t, tc.level, LevelForXP(tc.totalXP), "totalXP=%d", tc.totalXP)
	}
}

func TestApplyXPLevelUp(t *testing.T) {
	result, err := ApplyXP(State{TotalXP: 450, CurrentLevel: 1}, 60)
	require.NoError(t, err)
	require.Equal(t, 510, result.TotalXP)
	require.Equal(t, 2, result.CurrentLevel)
	require.True(t, result.LeveledUp)
}

func TestApplyXPNoLevelUp(t *testing.T) {
	result, err := ApplyXP(State{TotalXP: 450, CurrentLevel: 1}, 10)
	require.NoError(t, err)
	require.Equal(t, 460, result.TotalXP)
	require.Equal(t, 1, result.CurrentLevel)
	require.False(t, result.LeveledUp)
}

func TestApplyXPRejectsNegativeDelta(t *testing.T) {
	_, err := ApplyXP(State{TotalXP: 100, CurrentLevel: 1}, -5)
	require.Error(t, err)
}

func TestApplyXPRepairsStaleLevel(t *testing.T) {
	// A record whose stored level drifted from its XP is corrected on the
	// next mutation.
	result, err := ApplyXP(State{TotalXP: 1200, CurrentLevel: 1}, 0)
	require.NoError(t, err)
	require.Equal(t, 3, result.CurrentLevel)
	require.True(t, result.LeveledUp)
}

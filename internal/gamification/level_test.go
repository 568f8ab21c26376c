package gamification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{180, 2},
		{230, 3},
		{999, 10},
		{1000, 11},
	}

	for _, tc := range cases {
		require.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelForXPNegativeClampsToFloor(t *testing.T) {
	require.Equal(t, 1, LevelForXP(-50))
}

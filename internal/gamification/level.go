package gamification

// LevelForXP maps accumulated XP to a level. Every 100 XP is one level, so
// a fresh student (0 XP) starts at level 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/100 + 1
}

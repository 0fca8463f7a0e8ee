package progression

const xpPerLevelStep = 100

// XPForLevel returns the total XP needed to reach level. Level 1 needs 0 XP
// and moving from level n to n+1 costs 100*n.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return xpPerLevelStep * (level - 1) * level / 2
}

// LevelForXP returns the level reached with totalXP.
func LevelForXP(totalXP int) int {
	level := 1
	for XPForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

// XPToNextLevel returns how much XP is still missing for the next level.
func XPToNextLevel(totalXP int) int {
	return XPForLevel(LevelForXP(totalXP)+1) - totalXP
}

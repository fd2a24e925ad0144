package progression

import "fmt"

// XPPerLevel is the amount of experience required to advance one level.
const XPPerLevel = 500

// State is the progression snapshot read from the student record.
type State struct {
	TotalXP      int
	CurrentLevel int
}

// Result is the outcome of applying an XP delta to a progression state.
type Result struct {
	TotalXP      int
	CurrentLevel int
	LeveledUp    bool
}

// LevelForXP derives the level for a total XP amount. Levels start at 1.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}

	level := totalXP/XPPerLevel + 1
	if level < 1 {
		level = 1
	}
	return level
}

// ApplyXP adds a non-negative delta to the current state and re-derives the
// level. The level is never carried over from the input; it is always
// recomputed from the new total so it cannot drift from the XP counter.
func ApplyXP(current State, delta int) (Result, error) {
	if delta < 0 {
		return Result{}, fmt.Errorf("xp delta must not be negative, got %d", delta)
	}

	newTotal := current.TotalXP + delta
	newLevel := LevelForXP(newTotal)

	return Result{
		TotalXP:      newTotal,
		CurrentLevel: newLevel,
		LeveledUp:    newLevel != current.CurrentLevel,
	}, nil
}

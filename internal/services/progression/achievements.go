package progression

import "github.com/benvon/life-rpg/internal/models"

// Stats is the snapshot of a character that achievement rules look at.
type Stats struct {
	BrainDumps         int
	QuestsCompleted    int
	CurrentStreak      int
	Level              int
	CompletedMultiStep bool
}

// StatsFor builds Stats from a character.
func StatsFor(c *models.Character, completedMultiStep bool) Stats {
	return Stats{
		BrainDumps:         c.BrainDumpsCount,
		QuestsCompleted:    c.QuestsCompleted,
		CurrentStreak:      c.CurrentStreak,
		Level:              c.Level,
		CompletedMultiStep: completedMultiStep,
	}
}

type achievementRule struct {
	models.Achievement
	unlocked func(Stats) bool
}

var catalog = []achievementRule{
	{models.Achievement{Key: "first_brain_dump", Name: "Mind Sweep", Description: "Submit your first brain dump", XPBonus: 10},
		func(s Stats) bool { return s.BrainDumps >= 1 }},
	{models.Achievement{Key: "brain_dumps_25", Name: "Clear Headed", Description: "Submit 25 brain dumps", XPBonus: 50},
		func(s Stats) bool { return s.BrainDumps >= 25 }},
	{models.Achievement{Key: "first_quest", Name: "Adventurer", Description: "Complete your first quest", XPBonus: 10},
		func(s Stats) bool { return s.QuestsCompleted >= 1 }},
	{models.Achievement{Key: "quests_10", Name: "Seasoned", Description: "Complete 10 quests", XPBonus: 50},
		func(s Stats) bool { return s.QuestsCompleted >= 10 }},
	{models.Achievement{Key: "quests_50", Name: "Veteran", Description: "Complete 50 quests", XPBonus: 200},
		func(s Stats) bool { return s.QuestsCompleted >= 50 }},
	{models.Achievement{Key: "streak_3", Name: "Warming Up", Description: "Stay active 3 days in a row", XPBonus: 15},
		func(s Stats) bool { return s.CurrentStreak >= 3 }},
	{models.Achievement{Key: "streak_7", Name: "On a Roll", Description: "Stay active 7 days in a row", XPBonus: 50},
		func(s Stats) bool { return s.CurrentStreak >= 7 }},
	{models.Achievement{Key: "streak_30", Name: "Unstoppable", Description: "Stay active 30 days in a row", XPBonus: 250},
		func(s Stats) bool { return s.CurrentStreak >= 30 }},
	{models.Achievement{Key: "level_5", Name: "Rising Hero", Description: "Reach level 5", XPBonus: 0},
		func(s Stats) bool { return s.Level >= 5 }},
	{models.Achievement{Key: "level_10", Name: "Legend", Description: "Reach level 10", XPBonus: 0},
		func(s Stats) bool { return s.Level >= 10 }},
	{models.Achievement{Key: "multi_step_master", Name: "Multi-Step Master", Description: "Complete a multi-step quest", XPBonus: 25},
		func(s Stats) bool { return s.CompletedMultiStep }},
}

// Catalog returns every achievement in catalog order.
func Catalog() []models.Achievement {
	out := make([]models.Achievement, len(catalog))
	for i, r := range catalog {
		out[i] = r.Achievement
	}
	return out
}

// LookupAchievement returns the catalog entry for key.
func LookupAchievement(key string) (models.Achievement, bool) {
	for _, r := range catalog {
		if r.Key == key {
			return r.Achievement, true
		}
	}
	return models.Achievement{}, false
}

// Check returns the achievements stats qualifies for that are not already in
// unlocked, in catalog order.
func Check(stats Stats, unlocked map[string]bool) []models.Achievement {
	var out []models.Achievement
	for _, r := range catalog {
		if unlocked[r.Key] {
			continue
		}
		if r.unlocked(stats) {
			out = append(out, r.Achievement)
		}
	}
	return out
}

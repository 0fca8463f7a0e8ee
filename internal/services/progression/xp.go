// Package progression holds the RPG rules: quest XP rewards, levels, streaks
// and achievements. The rule functions are pure; Engine applies them to stored
// characters.
package progression

import (
	"math"

	"github.com/benvon/life-rpg/internal/models"
)

const (
	taskBaseXP  = 15
	stepBonusXP = 10
)

var baseXPByQuestType = map[models.QuestType]int{
	models.QuestTypeUrgent:    50,
	models.QuestTypeMultiStep: 100,
	models.QuestTypeDaily:     25,
	models.QuestTypeWeekly:    75,
	models.QuestTypeStandard:  30,
}

var priorityMultiplier = map[models.Priority]float64{
	models.PriorityLow:      1.0,
	models.PriorityMedium:   1.25,
	models.PriorityHigh:     1.5,
	models.PriorityCritical: 2.0,
}

// QuestXP returns the XP awarded for completing a quest of the given shape.
// Unknown quest types are treated as standard, unknown priorities as low.
func QuestXP(kind models.QuestKind, questType models.QuestType, priority models.Priority, steps int) int {
	base := taskBaseXP
	if kind != models.QuestKindTask {
		b, ok := baseXPByQuestType[questType]
		if !ok {
			b = baseXPByQuestType[models.QuestTypeStandard]
		}
		base = b
	}
	if steps > 1 {
		base += (steps - 1) * stepBonusXP
	}

	mult, ok := priorityMultiplier[priority]
	if !ok {
		mult = 1.0
	}
	return int(math.Round(float64(base) * mult))
}

// SplitSkillXP divides xp evenly across skills. Any remainder goes to the
// first skill. No skills yields an empty map.
func SplitSkillXP(xp int, skills []string) map[string]int {
	out := make(map[string]int, len(skills))
	if len(skills) == 0 || xp <= 0 {
		return out
	}
	share := xp / len(skills)
	for _, s := range skills {
		out[s] += share
	}
	out[skills[0]] += xp - share*len(skills)
	return out
}

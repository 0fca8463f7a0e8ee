package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
)

// Outcome describes what a progression event changed.
type Outcome struct {
	Character *models.Character    `json:"character"`
	XPAwarded int                  `json:"xp_awarded"`
	LeveledUp bool                 `json:"leveled_up"`
	Unlocked  []models.Achievement `json:"unlocked_achievements"`
	XPToNext  int                  `json:"xp_to_next_level"`
}

// Engine applies progression rules to stored characters
type Engine struct {
	characters database.CharacterRepositoryInterface
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine creates a new progression engine
func NewEngine(characters database.CharacterRepositoryInterface, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		characters: characters,
		logger:     logger,
		now:        time.Now,
	}
}

// CompleteQuest awards the quest's XP to its owner, splits it over the quest's
// skill trees, extends the streak and unlocks any achievements now earned.
func (e *Engine) CompleteQuest(ctx context.Context, quest *models.Quest) (*Outcome, error) {
	xp := quest.XPReward
	if xp <= 0 {
		xp = QuestXP(quest.Kind, quest.QuestType, quest.Priority, len(quest.Steps))
	}
	multiStep := quest.Kind == models.QuestKindQuest && quest.QuestType == models.QuestTypeMultiStep

	return e.progress(ctx, quest.UserID, xp, multiStep, func(c *models.Character, now time.Time) {
		if c.SkillXP == nil {
			c.SkillXP = make(map[string]int)
		}
		for skill, amount := range SplitSkillXP(xp, quest.Metadata.SkillTrees) {
			c.SkillXP[skill] += amount
		}
		c.QuestsCompleted++
		RecordActivity(c, now)
	})
}

// RecordBrainDump counts a submitted brain dump toward the user's character
// and streak.
func (e *Engine) RecordBrainDump(ctx context.Context, userID uuid.UUID) (*Outcome, error) {
	return e.progress(ctx, userID, 0, false, func(c *models.Character, now time.Time) {
		c.BrainDumpsCount++
		RecordActivity(c, now)
	})
}

// progress applies change and xp to the locked character, then awards every
// achievement the new stats earn.
func (e *Engine) progress(ctx context.Context, userID uuid.UUID, xp int, multiStep bool, change func(c *models.Character, now time.Time)) (*Outcome, error) {
	now := e.now()
	var startLevel int
	var newly []models.Achievement

	c, err := e.characters.Progress(ctx, userID, now, func(c *models.Character, unlocked map[string]bool) ([]string, error) {
		newly = nil
		startLevel = LevelForXP(c.TotalXP)
		change(c, now)
		c.TotalXP += xp
		c.Level = LevelForXP(c.TotalXP)

		// Bonus XP can raise the level, which can unlock level achievements.
		var keys []string
		for {
			found := Check(StatsFor(c, multiStep), unlocked)
			if len(found) == 0 {
				break
			}
			for _, a := range found {
				unlocked[a.Key] = true
				c.TotalXP += a.XPBonus
				newly = append(newly, a)
				keys = append(keys, a.Key)
			}
			c.Level = LevelForXP(c.TotalXP)
		}
		return keys, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}

	for _, a := range newly {
		e.logger.Info("achievement_unlocked",
			zap.String("user_id", userID.String()),
			zap.String("achievement", a.Key),
		)
	}
	if c.Level > startLevel {
		e.logger.Info("character_leveled_up",
			zap.String("user_id", userID.String()),
			zap.Int("level", c.Level),
		)
	}

	if newly == nil {
		newly = []models.Achievement{}
	}
	return &Outcome{
		Character: c,
		XPAwarded: xp,
		LeveledUp: c.Level > startLevel,
		Unlocked:  newly,
		XPToNext:  XPToNextLevel(c.TotalXP),
	}, nil
}

package progression

import (
	"time"

	"github.com/benvon/life-rpg/internal/models"
)

// activityDay truncates t to its UTC calendar day.
func activityDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordActivity updates the character's streak for activity at now.
// Activity on the same day leaves the streak unchanged, the next day extends
// it and any longer gap restarts it at 1.
func RecordActivity(c *models.Character, now time.Time) {
	today := activityDay(now)

	switch {
	case c.LastActiveOn == nil:
		c.CurrentStreak = 1
	default:
		last := activityDay(*c.LastActiveOn)
		switch {
		case !today.After(last):
			if c.CurrentStreak == 0 {
				c.CurrentStreak = 1
			}
			return
		case today.Sub(last) == 24*time.Hour:
			c.CurrentStreak++
		default:
			c.CurrentStreak = 1
		}
	}

	if c.CurrentStreak > c.LongestStreak {
		c.LongestStreak = c.CurrentStreak
	}
	c.LastActiveOn = &today
}

// StreakCutoff returns the earliest activity day that still keeps a streak
// alive at now. Streaks last active before it are stale.
func StreakCutoff(now time.Time) time.Time {
	return activityDay(now).AddDate(0, 0, -1)
}

// IsStreakStale reports whether the character's streak should be reset at now.
func IsStreakStale(c *models.Character, now time.Time) bool {
	if c.CurrentStreak == 0 || c.LastActiveOn == nil {
		return false
	}
	return activityDay(*c.LastActiveOn).Before(StreakCutoff(now))
}

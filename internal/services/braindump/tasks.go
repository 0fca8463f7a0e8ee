package braindump

import (
	"strings"

	"github.com/benvon/life-rpg/internal/models"
)

const minTaskChars = 3

// extractTasks applies every task pattern to the original-case text. A fragment
// can be matched by more than one pattern; each match yields its own task.
func extractTasks(raw string) []models.ExtractedTask {
	tasks := []models.ExtractedTask{}
	for _, re := range taskPatterns {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			text := strings.TrimSpace(m[1])
			if len(text) <= minTaskChars {
				continue
			}
			lower := strings.ToLower(text)
			tasks = append(tasks, models.ExtractedTask{
				Text:     text,
				Urgency:  detectUrgency(lower),
				Category: detectCategories(lower)[0],
			})
		}
	}
	return tasks
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/services/progression"
)

// CharacterHandler serves the player's character sheet and achievements
type CharacterHandler struct {
	characters   database.CharacterRepositoryInterface
	achievements database.AchievementRepositoryInterface
	logger       *zap.Logger
	now          func() time.Time
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(
	characters database.CharacterRepositoryInterface,
	achievements database.AchievementRepositoryInterface,
	logger *zap.Logger,
) *CharacterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CharacterHandler{characters: characters, achievements: achievements, logger: logger, now: time.Now}
}

// RegisterRoutes registers character routes on the API router
func (h *CharacterHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/character", h.GetCharacter).Methods("GET")
	r.HandleFunc("/achievements", h.ListAchievements).Methods("GET")
}

// CharacterSheet is the character plus derived level figures
type CharacterSheet struct {
	*models.Character
	XPToNextLevel int  `json:"xp_to_next_level"`
	NextLevelXP   int  `json:"next_level_xp"`
	StreakExpired bool `json:"streak_expired"`
}

// AchievementStatus is a catalog entry annotated with the player's unlock
type AchievementStatus struct {
	models.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// GetCharacter returns the player's character, creating it on first visit
func (h *CharacterHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	c, err := h.characters.GetOrCreate(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_get_character", zap.Error(err), zap.String("user_id", user.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve character")
		return
	}

	respondJSON(w, http.StatusOK, CharacterSheet{
		Character:     c,
		XPToNextLevel: progression.XPToNextLevel(c.TotalXP),
		NextLevelXP:   progression.XPForLevel(c.Level + 1),
		StreakExpired: progression.IsStreakStale(c, h.now()),
	})
}

// ListAchievements returns the full catalog with the player's unlocks
func (h *CharacterHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	unlocked, err := h.achievements.ListByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_list_achievements", zap.Error(err), zap.String("user_id", user.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve achievements")
		return
	}

	at := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.Key] = u.UnlockedAt
	}

	catalog := progression.Catalog()
	statuses := make([]AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		status := AchievementStatus{Achievement: a}
		if t, ok := at[a.Key]; ok {
			status.Unlocked = true
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}

	respondJSON(w, http.StatusOK, statuses)
}

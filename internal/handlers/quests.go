package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/services/progression"
	"github.com/benvon/life-rpg/internal/validation"
)

// QuestCompleter awards progression for a completed quest
type QuestCompleter interface {
	CompleteQuest(ctx context.Context, quest *models.Quest) (*progression.Outcome, error)
}

// QuestHandler handles quest-related requests
type QuestHandler struct {
	quests    database.QuestRepositoryInterface
	completer QuestCompleter
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuestHandler creates a new quest handler
func NewQuestHandler(quests database.QuestRepositoryInterface, completer QuestCompleter, logger *zap.Logger) *QuestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestHandler{quests: quests, completer: completer, logger: logger, now: time.Now}
}

// RegisterRoutes registers quest routes on a router already prefixed with /quests
func (h *QuestHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListQuests).Methods("GET")
	r.HandleFunc("/{id}", h.GetQuest).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateQuest).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteQuest).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteQuest).Methods("POST")
}

// UpdateQuestRequest represents a quest update. Completion goes through
// POST /quests/{id}/complete so XP is awarded exactly once.
type UpdateQuestRequest struct {
	Title          *string             `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string             `json:"description,omitempty" validate:"omitempty,max=2000"`
	Priority       *models.Priority    `json:"priority,omitempty" validate:"omitempty,priority"`
	Status         *models.QuestStatus `json:"status,omitempty" validate:"omitempty,quest_status"`
	CompletedSteps []int               `json:"completed_steps,omitempty" validate:"omitempty,dive,min=0"`
}

// CompleteQuestResponse is returned by POST /quests/{id}/complete
type CompleteQuestResponse struct {
	Quest    *models.Quest        `json:"quest"`
	Progress *progression.Outcome `json:"progress,omitempty"`
}

// ListQuests lists the player's quests, optionally filtered by status
func (h *QuestHandler) ListQuests(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var status *models.QuestStatus
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateQuestStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		st := models.QuestStatus(s)
		status = &st
	}

	page, pageSize := pagination(r)
	quests, total, err := h.quests.GetByUserIDPaginated(r.Context(), user.ID, status, page, pageSize)
	if err != nil {
		h.logger.Error("failed_to_list_quests", zap.Error(err), zap.String("user_id", user.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve quests")
		return
	}

	respondJSON(w, http.StatusOK, newPage(quests, page, pageSize, total))
}

// GetQuest retrieves a quest by ID
func (h *QuestHandler) GetQuest(w http.ResponseWriter, r *http.Request) {
	quest, ok := h.ownedQuest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, quest)
}

// UpdateQuest edits an active or abandoned quest
func (h *QuestHandler) UpdateQuest(w http.ResponseWriter, r *http.Request) {
	quest, ok := h.ownedQuest(w, r)
	if !ok {
		return
	}
	if quest.Status == models.QuestStatusCompleted {
		respondJSONError(w, http.StatusConflict, "Conflict", "Completed quests cannot be modified")
		return
	}

	var req UpdateQuestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		quest.Title = title
	}
	if req.Description != nil {
		quest.Description = validation.SanitizeText(*req.Description)
	}
	if req.Priority != nil {
		quest.Priority = *req.Priority
	}
	if req.Status != nil {
		if *req.Status == models.QuestStatusCompleted {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Use the complete endpoint to complete a quest")
			return
		}
		quest.Status = *req.Status
	}
	for _, idx := range req.CompletedSteps {
		if idx >= len(quest.Steps) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Step %d does not exist", idx))
			return
		}
		quest.Steps[idx].Done = true
	}

	quest.UpdatedAt = h.now().UTC()
	if err := h.quests.Update(r.Context(), quest); err != nil {
		if errors.Is(err, database.ErrConflict) {
			respondJSONError(w, http.StatusConflict, "Conflict", "Completed quests cannot be modified")
			return
		}
		h.logger.Error("failed_to_update_quest", zap.Error(err), zap.String("quest_id", quest.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update quest")
		return
	}

	respondJSON(w, http.StatusOK, quest)
}

// DeleteQuest deletes a quest
func (h *QuestHandler) DeleteQuest(w http.ResponseWriter, r *http.Request) {
	quest, ok := h.ownedQuest(w, r)
	if !ok {
		return
	}

	if err := h.quests.Delete(r.Context(), quest.ID); err != nil {
		h.logger.Error("failed_to_delete_quest", zap.Error(err), zap.String("quest_id", quest.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete quest")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteQuest marks a quest completed and awards its XP
func (h *QuestHandler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	quest, ok := h.ownedQuest(w, r)
	if !ok {
		return
	}
	if quest.Status == models.QuestStatusCompleted {
		respondJSONError(w, http.StatusConflict, "Conflict", "Quest is already completed")
		return
	}

	ctx := r.Context()
	for i := range quest.Steps {
		quest.Steps[i].Done = true
	}

	// Complete only succeeds for one caller, so XP below is awarded once.
	if err := h.quests.Complete(ctx, quest, h.now().UTC()); err != nil {
		switch {
		case errors.Is(err, database.ErrConflict):
			respondJSONError(w, http.StatusConflict, "Conflict", "Quest is already completed")
			return
		case errors.Is(err, database.ErrNotFound):
			respondJSONError(w, http.StatusNotFound, "Not Found", "Quest not found")
			return
		}
		h.logger.Error("failed_to_complete_quest", zap.Error(err), zap.String("quest_id", quest.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete quest")
		return
	}

	resp := CompleteQuestResponse{Quest: quest}
	if h.completer != nil {
		outcome, err := h.completer.CompleteQuest(ctx, quest)
		if err != nil {
			h.logger.Error("failed_to_award_quest_xp",
				zap.Error(err),
				zap.String("quest_id", quest.ID.String()),
				zap.String("user_id", quest.UserID.String()),
			)
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Quest completed but XP could not be awarded")
			return
		}
		resp.Progress = outcome
		h.logger.Info("quest_completed",
			zap.String("quest_id", quest.ID.String()),
			zap.Int("xp_awarded", outcome.XPAwarded),
			zap.Bool("leveled_up", outcome.LeveledUp),
		)
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *QuestHandler) ownedQuest(w http.ResponseWriter, r *http.Request) (*models.Quest, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r, "quest")
	if !ok {
		return nil, false
	}

	quest, err := h.quests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Quest not found")
			return nil, false
		}
		h.logger.Error("failed_to_get_quest", zap.Error(err), zap.String("quest_id", id.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve quest")
		return nil, false
	}
	if quest.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Quest does not belong to user")
		return nil, false
	}
	return quest, true
}

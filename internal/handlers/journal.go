package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/validation"
)

// JournalHandler serves the player's notes, reminders and reflections
type JournalHandler struct {
	journal database.JournalRepositoryInterface
	logger  *zap.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journal database.JournalRepositoryInterface, logger *zap.Logger) *JournalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalHandler{journal: journal, logger: logger}
}

// RegisterRoutes registers journal routes on the API router
func (h *JournalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/journal", h.ListEntries).Methods("GET")
}

// ListEntries lists journal entries, optionally filtered by kind
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var kind *models.JournalKind
	if k := r.URL.Query().Get("kind"); k != "" {
		if err := validation.ValidateJournalKind(k); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		jk := models.JournalKind(k)
		kind = &jk
	}

	page, pageSize := pagination(r)
	entries, total, err := h.journal.GetByUserIDPaginated(r.Context(), user.ID, kind, page, pageSize)
	if err != nil {
		h.logger.Error("failed_to_list_journal_entries", zap.Error(err), zap.String("user_id", user.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve journal entries")
		return
	}

	respondJSON(w, http.StatusOK, newPage(entries, page, pageSize, total))
}

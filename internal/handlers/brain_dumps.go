package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/services/progression"
	"github.com/benvon/life-rpg/internal/validation"
)

// ActivityRecorder credits a submitted brain dump to the player's character
type ActivityRecorder interface {
	RecordBrainDump(ctx context.Context, userID uuid.UUID) (*progression.Outcome, error)
}

// BrainDumpHandler handles brain dump requests
type BrainDumpHandler struct {
	dumps      database.BrainDumpRepositoryInterface
	classifier TextClassifier
	activity   ActivityRecorder
	jobQueue   queue.Enqueuer
	logger     *zap.Logger
	now        func() time.Time
}

// NewBrainDumpHandler creates a new brain dump handler. jobQueue may be nil,
// in which case dumps stay classified until reprocessed.
func NewBrainDumpHandler(
	dumps database.BrainDumpRepositoryInterface,
	classifier TextClassifier,
	activity ActivityRecorder,
	jobQueue queue.Enqueuer,
	logger *zap.Logger,
) *BrainDumpHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrainDumpHandler{
		dumps:      dumps,
		classifier: classifier,
		activity:   activity,
		jobQueue:   jobQueue,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterRoutes registers brain dump routes on a router already prefixed with /brain-dumps
func (h *BrainDumpHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListBrainDumps).Methods("GET")
	r.HandleFunc("", h.CreateBrainDump).Methods("POST")
	r.HandleFunc("/{id}", h.GetBrainDump).Methods("GET")
	r.HandleFunc("/{id}/reprocess", h.ReprocessBrainDump).Methods("POST")
}

// CreateBrainDumpResponse is returned by POST /brain-dumps
type CreateBrainDumpResponse struct {
	BrainDump *models.BrainDump    `json:"brain_dump"`
	Progress  *progression.Outcome `json:"progress,omitempty"`
	Queued    bool                 `json:"queued"`
}

// CreateBrainDump classifies and stores a brain dump, then queues it for processing
func (h *BrainDumpHandler) CreateBrainDump(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ClassifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	text, ok := sanitizeBrainDumpText(w, req.Text)
	if !ok {
		return
	}

	ctx := r.Context()
	now := h.now().UTC()
	dump := &models.BrainDump{
		ID:             uuid.New(),
		UserID:         user.ID,
		RawText:        text,
		Status:         models.BrainDumpStatusClassified,
		Classification: h.classifier.Classify(text),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.dumps.Create(ctx, dump); err != nil {
		h.logger.Error("failed_to_create_brain_dump", zap.Error(err), zap.String("user_id", user.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create brain dump")
		return
	}

	// The dump is stored; progression and queueing failures are logged but do not undo it.
	resp := CreateBrainDumpResponse{BrainDump: dump}
	if h.activity != nil {
		outcome, err := h.activity.RecordBrainDump(ctx, user.ID)
		if err != nil {
			h.logger.Warn("failed_to_record_brain_dump_activity", zap.Error(err), zap.String("user_id", user.ID.String()))
		} else {
			resp.Progress = outcome
		}
	}
	resp.Queued = h.enqueue(ctx, dump)

	h.logger.Info("brain_dump_created",
		zap.String("brain_dump_id", dump.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("suggested_action", string(dump.Classification.SuggestedAction)),
		zap.Bool("queued", resp.Queued),
	)
	respondJSON(w, http.StatusCreated, resp)
}

// ListBrainDumps lists the player's brain dumps, newest first, optionally filtered by status
func (h *BrainDumpHandler) ListBrainDumps(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var status *models.BrainDumpStatus
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateBrainDumpStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		st := models.BrainDumpStatus(s)
		status = &st
	}

	page, pageSize := pagination(r)
	dumps, total, err := h.dumps.ListByUserIDPaginated(r.Context(), user.ID, status, page, pageSize)
	if err != nil {
		h.logger.Error("failed_to_list_brain_dumps", zap.Error(err), zap.String("user_id", user.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve brain dumps")
		return
	}

	respondJSON(w, http.StatusOK, newPage(dumps, page, pageSize, total))
}

// GetBrainDump returns one of the player's brain dumps
func (h *BrainDumpHandler) GetBrainDump(w http.ResponseWriter, r *http.Request) {
	dump, ok := h.ownedDump(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, dump)
}

// ReprocessBrainDump re-classifies a dump that has not produced quests yet and queues it again
func (h *BrainDumpHandler) ReprocessBrainDump(w http.ResponseWriter, r *http.Request) {
	dump, ok := h.ownedDump(w, r)
	if !ok {
		return
	}
	if dump.Status == models.BrainDumpStatusProcessed {
		respondJSONError(w, http.StatusConflict, "Conflict", "Brain dump has already been processed")
		return
	}
	if h.jobQueue == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Job queue is not available")
		return
	}

	ctx := r.Context()
	dump.Classification = h.classifier.Classify(dump.RawText)
	dump.Status = models.BrainDumpStatusClassified
	dump.Error = nil
	dump.UpdatedAt = h.now().UTC()
	if err := h.dumps.Update(ctx, dump); err != nil {
		if errors.Is(err, database.ErrConflict) {
			respondJSONError(w, http.StatusConflict, "Conflict", "Brain dump has already been processed")
			return
		}
		h.logger.Error("failed_to_update_brain_dump", zap.Error(err), zap.String("brain_dump_id", dump.ID.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update brain dump")
		return
	}

	if !h.enqueue(ctx, dump) {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue brain dump")
		return
	}
	respondJSON(w, http.StatusAccepted, dump)
}

func (h *BrainDumpHandler) enqueue(ctx context.Context, dump *models.BrainDump) bool {
	if h.jobQueue == nil {
		return false
	}
	job := queue.NewJob(queue.JobTypeProcessBrainDump, dump.UserID, &dump.ID)
	if err := h.jobQueue.Enqueue(ctx, job); err != nil {
		h.logger.Error("failed_to_enqueue_brain_dump_job",
			zap.Error(err),
			zap.String("brain_dump_id", dump.ID.String()),
		)
		return false
	}
	return true
}

func (h *BrainDumpHandler) ownedDump(w http.ResponseWriter, r *http.Request) (*models.BrainDump, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r, "brain dump")
	if !ok {
		return nil, false
	}

	dump, err := h.dumps.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Brain dump not found")
			return nil, false
		}
		h.logger.Error("failed_to_get_brain_dump", zap.Error(err), zap.String("brain_dump_id", id.String()))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve brain dump")
		return nil, false
	}
	if dump.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Brain dump does not belong to user")
		return nil, false
	}
	return dump, true
}

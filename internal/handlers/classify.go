package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/benvon/life-rpg/internal/models"
)

// TextClassifier turns raw brain dump text into a classification
type TextClassifier interface {
	Classify(raw string) *models.ClassificationResult
}

// ClassifyRequest is the body of POST /classify and POST /brain-dumps
type ClassifyRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// ClassifyHandler serves the stateless classification preview
type ClassifyHandler struct {
	classifier TextClassifier
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(classifier TextClassifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier}
}

// RegisterRoutes registers the classify route on the API router
func (h *ClassifyHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/classify", h.Classify).Methods("POST")
}

// Classify classifies text without storing anything
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
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

	respondJSON(w, http.StatusOK, h.classifier.Classify(text))
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/services/braindump"
	"github.com/benvon/life-rpg/internal/services/progression"
)

func brainDumpRoutes(h *BrainDumpHandler) func(r *mux.Router) {
	return func(r *mux.Router) {
		h.RegisterRoutes(r.PathPrefix("/api/v1/brain-dumps").Subrouter())
	}
}

func TestClassifyHandler(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "hero@example.com"}
	h := NewClassifyHandler(braindump.NewClassifier())

	tests := []struct {
		name       string
		user       *models.User
		body       string
		wantStatus int
	}{
		{"classifies text", user, `{"text":"remember to water the plants"}`, http.StatusOK},
		{"requires identity", nil, `{"text":"hello"}`, http.StatusUnauthorized},
		{"rejects missing text", user, `{}`, http.StatusBadRequest},
		{"rejects invalid json", user, `{"text":`, http.StatusBadRequest},
		{"rejects control-only text", user, `{"text":"\u0000\u0001"}`, http.StatusBadRequest},
		{"rejects oversized text", user, `{"text":"` + strings.Repeat("a", 10001) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("POST", "/classify", strings.NewReader(tt.body))
			w := serveAs(tt.user, h.RegisterRoutes, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var result models.ClassificationResult
			decodeEnvelope(t, w, &result)
			if result.SuggestedAction != models.ActionCreateReminder {
				t.Errorf("Expected create_reminder, got %s", result.SuggestedAction)
			}
		})
	}
}

func TestCreateBrainDump(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Email: "hero@example.com"}
	repo := newMockBrainDumpRepo()
	jobs := &mockEnqueuer{}
	activity := &mockActivity{outcome: &progression.Outcome{Character: &models.Character{UserID: user.ID, BrainDumpsCount: 1}}}
	h := NewBrainDumpHandler(repo, braindump.NewClassifier(), activity, jobs, nil)

	req := httptest.NewRequest("POST", "/api/v1/brain-dumps", jsonBody(t, ClassifyRequest{Text: "  I need to call the dentist tomorrow  "}))
	w := serveAs(user, brainDumpRoutes(h), req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp CreateBrainDumpResponse
	decodeEnvelope(t, w, &resp)
	if resp.BrainDump == nil || resp.BrainDump.Classification == nil {
		t.Fatal("Expected a classified brain dump in the response")
	}
	if resp.BrainDump.RawText != "I need to call the dentist tomorrow" {
		t.Errorf("Expected sanitized text, got %q", resp.BrainDump.RawText)
	}
	if resp.BrainDump.Status != models.BrainDumpStatusClassified {
		t.Errorf("Expected status classified, got %s", resp.BrainDump.Status)
	}
	if !resp.Queued {
		t.Error("Expected the dump to be queued")
	}
	if resp.Progress == nil || resp.Progress.Character.BrainDumpsCount != 1 {
		t.Errorf("Expected progress to be returned, got %+v", resp.Progress)
	}
	if activity.calls != 1 {
		t.Errorf("Expected activity to be recorded once, got %d", activity.calls)
	}

	if len(jobs.jobs) != 1 {
		t.Fatalf("Expected one job, got %d", len(jobs.jobs))
	}
	job := jobs.jobs[0]
	if job.Type != queue.JobTypeProcessBrainDump || job.UserID != user.ID || *job.BrainDumpID != resp.BrainDump.ID {
		t.Errorf("Unexpected job %+v", job)
	}
	if _, err := repo.GetByID(context.Background(), resp.BrainDump.ID); err != nil {
		t.Errorf("Expected dump to be stored: %v", err)
	}
}

func TestCreateBrainDump_Degraded(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}

	t.Run("queue and progression failures keep the dump", func(t *testing.T) {
		t.Parallel()

		h := NewBrainDumpHandler(newMockBrainDumpRepo(), braindump.NewClassifier(),
			&mockActivity{err: errors.New("db down")}, &mockEnqueuer{err: errors.New("broker down")}, nil)
		w := serveAs(user, brainDumpRoutes(h), httptest.NewRequest("POST", "/api/v1/brain-dumps", strings.NewReader(`{"text":"feeling great today"}`)))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		var resp CreateBrainDumpResponse
		decodeEnvelope(t, w, &resp)
		if resp.Queued || resp.Progress != nil {
			t.Errorf("Expected neither queueing nor progress, got %+v", resp)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()

		repo := newMockBrainDumpRepo()
		repo.createErr = errors.New("insert failed")
		jobs := &mockEnqueuer{}
		h := NewBrainDumpHandler(repo, braindump.NewClassifier(), nil, jobs, nil)
		w := serveAs(user, brainDumpRoutes(h), httptest.NewRequest("POST", "/api/v1/brain-dumps", strings.NewReader(`{"text":"hello"}`)))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected status 500, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "insert failed") {
			t.Error("Expected internal error not to be exposed")
		}
		if len(jobs.jobs) != 0 {
			t.Error("Expected no job for an unsaved dump")
		}
	})
}

func TestGetBrainDump(t *testing.T) {
	t.Parallel()

	owner := &models.User{ID: uuid.New()}
	other := &models.User{ID: uuid.New()}
	dump := &models.BrainDump{ID: uuid.New(), UserID: owner.ID, RawText: "hi", Status: models.BrainDumpStatusProcessed}
	h := NewBrainDumpHandler(newMockBrainDumpRepo(dump), braindump.NewClassifier(), nil, nil, nil)

	tests := []struct {
		name       string
		user       *models.User
		path       string
		wantStatus int
	}{
		{"owner", owner, "/api/v1/brain-dumps/" + dump.ID.String(), http.StatusOK},
		{"other user", other, "/api/v1/brain-dumps/" + dump.ID.String(), http.StatusForbidden},
		{"unknown id", owner, "/api/v1/brain-dumps/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", owner, "/api/v1/brain-dumps/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serveAs(tt.user, brainDumpRoutes(h), httptest.NewRequest("GET", tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestListBrainDumps(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	repo := newMockBrainDumpRepo()
	var gotStatus *models.BrainDumpStatus
	var gotPage, gotSize int
	repo.listFunc = func(_ context.Context, userID uuid.UUID, status *models.BrainDumpStatus, page, pageSize int) ([]*models.BrainDump, int, error) {
		gotStatus, gotPage, gotSize = status, page, pageSize
		return []*models.BrainDump{{ID: uuid.New(), UserID: userID}}, 41, nil
	}
	h := NewBrainDumpHandler(repo, braindump.NewClassifier(), nil, nil, nil)

	w := serveAs(user, brainDumpRoutes(h), httptest.NewRequest("GET", "/api/v1/brain-dumps?status=failed&page=2&page_size=20", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var page Page[*models.BrainDump]
	decodeEnvelope(t, w, &page)
	if gotStatus == nil || *gotStatus != models.BrainDumpStatusFailed {
		t.Errorf("Expected failed status filter, got %v", gotStatus)
	}
	if gotPage != 2 || gotSize != 20 {
		t.Errorf("Expected page 2 size 20, got %d/%d", gotPage, gotSize)
	}
	if page.Total != 41 || page.TotalPages != 3 || len(page.Items) != 1 {
		t.Errorf("Unexpected page %+v", page)
	}

	w = serveAs(user, brainDumpRoutes(h), httptest.NewRequest("GET", "/api/v1/brain-dumps?status=bogus", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid status, got %d", w.Code)
	}
}

func TestReprocessBrainDump(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	failure := "llm unavailable"

	tests := []struct {
		name       string
		status     models.BrainDumpStatus
		jobs       *mockEnqueuer
		updateErr  error
		wantStatus int
		wantJobs   int
	}{
		{"failed dump is requeued", models.BrainDumpStatusFailed, &mockEnqueuer{}, nil, http.StatusAccepted, 1},
		{"processed dump conflicts", models.BrainDumpStatusProcessed, &mockEnqueuer{}, nil, http.StatusConflict, 0},
		{"processed while reprocessing", models.BrainDumpStatusClassified, &mockEnqueuer{}, fmt.Errorf("brain dump %w", database.ErrConflict), http.StatusConflict, 0},
		{"no queue", models.BrainDumpStatusFailed, nil, nil, http.StatusServiceUnavailable, 0},
		{"enqueue failure", models.BrainDumpStatusPending, &mockEnqueuer{err: errors.New("down")}, nil, http.StatusServiceUnavailable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dump := &models.BrainDump{ID: uuid.New(), UserID: user.ID, RawText: "remember to water the plants", Status: tt.status, Error: &failure}
			var jobQueue queue.Enqueuer
			if tt.jobs != nil {
				jobQueue = tt.jobs
			}
			repo := newMockBrainDumpRepo(dump)
			repo.updateErr = tt.updateErr
			h := NewBrainDumpHandler(repo, braindump.NewClassifier(), nil, jobQueue, nil)

			w := serveAs(user, brainDumpRoutes(h), httptest.NewRequest("POST", "/api/v1/brain-dumps/"+dump.ID.String()+"/reprocess", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.jobs != nil && len(tt.jobs.jobs) != tt.wantJobs {
				t.Errorf("Expected %d jobs, got %d", tt.wantJobs, len(tt.jobs.jobs))
			}
			if tt.wantStatus == http.StatusAccepted {
				if dump.Status != models.BrainDumpStatusClassified || dump.Error != nil || dump.Classification == nil {
					t.Errorf("Expected dump reset to classified, got %+v", dump)
				}
			}
		})
	}
}

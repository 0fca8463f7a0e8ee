package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/request"
)

type mockUserRepo struct {
	getOrCreateFunc func(ctx context.Context, email string) (*models.User, error)
	emails          []string
}

func (m *mockUserRepo) GetOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	m.emails = append(m.emails, email)
	if m.getOrCreateFunc != nil {
		return m.getOrCreateFunc(ctx, email)
	}
	return &models.User{ID: uuid.New(), Email: email}, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, database.ErrNotFound
}

var _ database.UserRepositoryInterface = (*mockUserRepo)(nil)

func TestIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		repoErr    error
		wantStatus int
		wantEmail  string
	}{
		{"resolves user", "Player@Example.com", nil, http.StatusOK, "player@example.com"},
		{"missing header", "", nil, http.StatusUnauthorized, ""},
		{"invalid email", "not-an-email", nil, http.StatusUnauthorized, ""},
		{"repository failure", "player@example.com", errors.New("db down"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockUserRepo{}
			if tt.repoErr != nil {
				repo.getOrCreateFunc = func(context.Context, string) (*models.User, error) { return nil, tt.repoErr }
			}

			var seen *models.User
			handler := Identity(repo, "", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = request.UserFromContext(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/api/v1/character", nil)
			if tt.header != "" {
				req.Header.Set(DefaultIdentityHeader, tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantEmail == "" {
				if seen != nil {
					t.Errorf("Expected handler not to run, got user %+v", seen)
				}
				return
			}
			if seen == nil || seen.Email != tt.wantEmail {
				t.Errorf("Expected user %s in context, got %+v", tt.wantEmail, seen)
			}
		})
	}
}

func TestIdentity_CustomHeader(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{}
	handler := Identity(repo, "X-Auth-Request-Email", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Auth-Request-Email", "a@b.io")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if len(repo.emails) != 1 || repo.emails[0] != "a@b.io" {
		t.Errorf("Expected lookup of a@b.io, got %v", repo.emails)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if seen == "" {
		t.Fatal("Expected a generated request ID")
	}
	if got := w.Header().Get(request.RequestIDHeader); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(request.RequestIDHeader, "upstream-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-1" {
		t.Errorf("Expected upstream request ID to be kept, got %q", seen)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/transport/http/middleware"
)

type fakeGroupRequestUsecase struct {
	listPending   func(ctx context.Context, masterID, actorID int64) ([]*domain.GroupRequest, error)
	createRequest func(ctx context.Context, groupID, requesterID int64) (*domain.GroupRequest, error)
	accept        func(ctx context.Context, groupID, requestID, actorID int64) (*domain.GroupRequest, error)
	destroy       func(ctx context.Context, groupID, requestID, actorID int64) error
}

func (f *fakeGroupRequestUsecase) ListPending(ctx context.Context, masterID, actorID int64) ([]*domain.GroupRequest, error) {
	return f.listPending(ctx, masterID, actorID)
}

func (f *fakeGroupRequestUsecase) CreateRequest(ctx context.Context, groupID, requesterID int64) (*domain.GroupRequest, error) {
	return f.createRequest(ctx, groupID, requesterID)
}

func (f *fakeGroupRequestUsecase) Accept(ctx context.Context, groupID, requestID, actorID int64) (*domain.GroupRequest, error) {
	return f.accept(ctx, groupID, requestID, actorID)
}

func (f *fakeGroupRequestUsecase) Destroy(ctx context.Context, groupID, requestID, actorID int64) error {
	return f.destroy(ctx, groupID, requestID, actorID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requestRouter mounts the handler behind a stub auth layer that pins
// the actor id, the way the real router wires the middleware.
func requestRouter(uc *fakeGroupRequestUsecase, actorID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.UserIDKey, actorID) })

	h := NewGroupRequestHandler(uc, testLogger())
	r.GET("/groups/:id/requests", h.List)
	r.POST("/groups/:id/requests", h.Create)
	r.POST("/groups/:id/requests/:requestId/accept", h.Accept)
	r.DELETE("/groups/:id/requests/:requestId", h.Destroy)
	return r
}

func decodeError(t *testing.T, body string) errorBody {
	t.Helper()
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return eb
}

func TestListRequests_MasterQueryRequired(t *testing.T) {
	r := requestRouter(&fakeGroupRequestUsecase{}, 1)

	for _, target := range []string{"/groups/10/requests", "/groups/10/requests?master=abc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("GET %s: status = %d, want 422", target, w.Code)
		}
		eb := decodeError(t, w.Body.String())
		if eb.Message != "master query should be provided" {
			t.Errorf("GET %s: message = %q", target, eb.Message)
		}
	}
}

func TestListRequests_OK(t *testing.T) {
	uc := &fakeGroupRequestUsecase{
		listPending: func(_ context.Context, masterID, actorID int64) ([]*domain.GroupRequest, error) {
			if masterID != 1 || actorID != 1 {
				t.Errorf("ListPending(%d, %d), want (1, 1)", masterID, actorID)
			}
			return []*domain.GroupRequest{{
				ID:      100,
				GroupID: 10,
				UserID:  2,
				Status:  domain.RequestPending,
				Group:   &domain.GroupSummary{ID: 10, Name: "D&D", Master: 1},
				User:    &domain.UserSummary{ID: 2, Username: "jaskier"},
			}}, nil
		},
	}
	r := requestRouter(uc, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/groups/10/requests?master=1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		GroupRequests []groupRequestResponse `json:"groupRequests"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.GroupRequests) != 1 {
		t.Fatalf("got %d requests, want 1", len(resp.GroupRequests))
	}
	gr := resp.GroupRequests[0]
	if gr.Status != domain.RequestPending || gr.User == nil || gr.User.Username != "jaskier" {
		t.Errorf("unexpected payload: %+v", gr)
	}
}

func TestCreateRequest_StatusMapping(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"duplicate", domain.ErrRequestExists, http.StatusConflict, "group request already exists"},
		{"member", domain.ErrAlreadyInGroup, http.StatusUnprocessableEntity, "user is already in the group"},
		{"unknown group", domain.ErrGroupNotFound, http.StatusNotFound, "Group not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeGroupRequestUsecase{
				createRequest: func(_ context.Context, _, _ int64) (*domain.GroupRequest, error) {
					return nil, tc.err
				},
			}
			r := requestRouter(uc, 2)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/10/requests", nil))

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			eb := decodeError(t, w.Body.String())
			if eb.Code != "BAD_REQUEST" || eb.Status != tc.wantStatus || eb.Message != tc.wantMessage {
				t.Errorf("body = %+v", eb)
			}
		})
	}
}

func TestCreateRequest_Created(t *testing.T) {
	uc := &fakeGroupRequestUsecase{
		createRequest: func(_ context.Context, groupID, requesterID int64) (*domain.GroupRequest, error) {
			return &domain.GroupRequest{ID: 100, GroupID: groupID, UserID: requesterID, Status: domain.RequestPending}, nil
		},
	}
	r := requestRouter(uc, 2)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/10/requests", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"PENDING"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAcceptRequest(t *testing.T) {
	t.Run("forbidden", func(t *testing.T) {
		uc := &fakeGroupRequestUsecase{
			accept: func(_ context.Context, _, _, _ int64) (*domain.GroupRequest, error) {
				return nil, domain.ErrForbidden
			},
		}
		r := requestRouter(uc, 2)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/10/requests/100/accept", nil))
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("resolved reads as not found", func(t *testing.T) {
		uc := &fakeGroupRequestUsecase{
			accept: func(_ context.Context, _, _, _ int64) (*domain.GroupRequest, error) {
				return nil, domain.ErrRequestNotFound
			},
		}
		r := requestRouter(uc, 1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/10/requests/100/accept", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("accepted", func(t *testing.T) {
		uc := &fakeGroupRequestUsecase{
			accept: func(_ context.Context, groupID, requestID, actorID int64) (*domain.GroupRequest, error) {
				if groupID != 10 || requestID != 100 || actorID != 1 {
					t.Errorf("Accept(%d, %d, %d), want (10, 100, 1)", groupID, requestID, actorID)
				}
				return &domain.GroupRequest{ID: requestID, GroupID: groupID, UserID: 2, Status: domain.RequestAccepted}, nil
			},
		}
		r := requestRouter(uc, 1)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/10/requests/100/accept", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"status":"ACCEPTED"`) {
			t.Errorf("body = %s", w.Body.String())
		}
	})
}

func TestDestroyRequest_NoContent(t *testing.T) {
	var destroyed bool
	uc := &fakeGroupRequestUsecase{
		destroy: func(_ context.Context, groupID, requestID, actorID int64) error {
			destroyed = true
			if groupID != 10 || requestID != 100 || actorID != 1 {
				t.Errorf("Destroy(%d, %d, %d), want (10, 100, 1)", groupID, requestID, actorID)
			}
			return nil
		},
	}
	r := requestRouter(uc, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/groups/10/requests/100", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if !destroyed {
		t.Error("usecase was not called")
	}
}

func TestRequestIDParams_UnparsableReadAsNotFound(t *testing.T) {
	r := requestRouter(&fakeGroupRequestUsecase{}, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/abc/requests", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("group id: status = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/groups/10/requests/abc/accept", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("request id: status = %d, want 404", w.Code)
	}
}

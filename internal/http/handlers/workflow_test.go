package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/services"
)

type stubLifecycle struct {
	applyAsset *types.MarketingAsset
	applyErr   error
	next       []services.Transition
}

func (s *stubLifecycle) ListTransitions(dbc dbctx.Context, assetID uuid.UUID) ([]services.Transition, error) {
	return s.next, nil
}

func (s *stubLifecycle) ApplyTransition(dbc dbctx.Context, assetID uuid.UUID, action string) (*types.MarketingAsset, error) {
	return s.applyAsset, s.applyErr
}

func (s *stubLifecycle) SyncStatus(dbc dbctx.Context, assetID uuid.UUID) (*types.MarketingAsset, error) {
	return s.applyAsset, nil
}

func (s *stubLifecycle) EnforceFileVisibility(dbc dbctx.Context, asset *types.MarketingAsset) error {
	return nil
}

func postTransition(t *testing.T, lifecycle services.LifecycleService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewWorkflowHandler(log, lifecycle)

	r := gin.New()
	r.POST("/assets/:id/transitions", h.ApplyTransition)

	req := httptest.NewRequest(http.MethodPost, "/assets/"+uuid.NewString()+"/transitions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApplyTransitionSuccessIncludesNextTransitions(t *testing.T) {
	lifecycle := &stubLifecycle{
		applyAsset: &types.MarketingAsset{ID: uuid.New(), Title: "Hero", Status: types.StatusPeerReview},
		next:       []services.Transition{{Action: "Approve", NextState: types.StatusHODApproval, Style: "primary"}},
	}
	w := postTransition(t, lifecycle, `{"action":"Submit for Review"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Status string                `json:"status"`
		Next   []services.Transition `json:"next_transitions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "success" {
		t.Fatalf("status field = %q", body.Status)
	}
	if len(body.Next) != 1 || body.Next[0].Action != "Approve" {
		t.Fatalf("next_transitions = %+v", body.Next)
	}
}

func TestApplyTransitionRejectionIsStructured(t *testing.T) {
	lifecycle := &stubLifecycle{
		applyErr: apierr.InvalidTransition("no transition %q from %q", "Approve", types.StatusDraft),
	}
	w := postTransition(t, lifecycle, `{"action":"Approve"}`)
	// The review UI reads these as results, not transport failures.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "error" || body.Message == "" {
		t.Fatalf("body = %+v, want structured error", body)
	}
}

func TestApplyTransitionInternalErrorStaysAnError(t *testing.T) {
	lifecycle := &stubLifecycle{applyErr: apierr.NotFound("asset not found")}
	w := postTransition(t, lifecycle, `{"action":"Approve"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

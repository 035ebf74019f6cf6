package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/glowclinic/refillhub/internal/app/service/refillqueue"
	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/types"
)

type stubEngine struct {
	sweepResult *refillqueue.SweepResult
	approved    *models.RefillQueueItem
	approveErr  error
}

func (s *stubEngine) TriggerRefillForSubscriptionPayment(_ context.Context, _ string) error {
	panic("not used")
}

func (s *stubEngine) ProcessDueRefills(_ context.Context, _ string) (*refillqueue.SweepResult, error) {
	return s.sweepResult, nil
}

func (s *stubEngine) GetAdminRefillQueue(_ context.Context, _ *refillqueue.QueueQuery) (*refillqueue.QueueResult, error) {
	return &refillqueue.QueueResult{
		Items: []*models.RefillQueueItem{{ID: "item-1", Status: types.RefillStatusPendingAdmin}},
		Total: 1,
	}, nil
}

func (s *stubEngine) GetRefillQueueStats(_ context.Context, clinicID string) (*refillqueue.QueueStats, error) {
	return &refillqueue.QueueStats{
		ClinicID: clinicID,
		ByStatus: map[types.RefillStatus]int64{types.RefillStatusScheduled: 4},
		Total:    4,
		DueNow:   2,
	}, nil
}

func (s *stubEngine) AdminApprove(_ context.Context, _ *refillqueue.AdminDecisionRequest) (*models.RefillQueueItem, error) {
	return s.approved, s.approveErr
}

func (s *stubEngine) HoldItem(_ context.Context, _ *refillqueue.AdminDecisionRequest) (*models.RefillQueueItem, error) {
	panic("not used")
}

func (s *stubEngine) CancelItem(_ context.Context, _ *refillqueue.AdminDecisionRequest) (*models.RefillQueueItem, error) {
	panic("not used")
}

func (s *stubEngine) ReleaseHold(_ context.Context, _ *refillqueue.AdminDecisionRequest) (*models.RefillQueueItem, error) {
	panic("not used")
}

func (s *stubEngine) PrescribeAndDispatch(_ context.Context, _ *refillqueue.PrescribeRequest) (*models.RefillQueueItem, error) {
	panic("not used")
}

func (s *stubEngine) HoldActiveItems(_ context.Context, _ string, _ string) error {
	panic("not used")
}

func (s *stubEngine) CancelActiveItems(_ context.Context, _ string, _ string) error {
	panic("not used")
}

func TestApiProcessDueRefills_SkippedWhenLockHeld(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	engine := &stubEngine{sweepResult: &refillqueue.SweepResult{Skipped: true, Reason: "sweep already running"}}
	r.POST("/cron/process-due-refills", ApiProcessDueRefills(engine))

	req := httptest.NewRequest(http.MethodPost, "/cron/process-due-refills", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"skipped":true`)
	require.Contains(t, w.Body.String(), "sweep already running")
}

func TestApiProcessDueRefills_ReportsPartialFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	engine := &stubEngine{sweepResult: &refillqueue.SweepResult{
		Processed: 3,
		Errors:    []string{"item item-9: charge declined"},
	}}
	r.POST("/cron/process-due-refills", ApiProcessDueRefills(engine))

	req := httptest.NewRequest(http.MethodPost, "/cron/process-due-refills?clinic_id=clinic-1", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"processed":3`)
	require.Contains(t, w.Body.String(), "charge declined")
}

func TestApiQueryRefillQueue_ReturnsItems(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/admin/refill-queue/query", ApiQueryRefillQueue(&stubEngine{}))

	body, _ := json.Marshal(map[string]any{"clinic_id": "clinic-1", "statuses": []string{"pending_admin"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/refill-queue/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "item-1")
	require.Contains(t, w.Body.String(), `"total":1`)
}

func TestApiApproveRefillItem_ValidationErrorIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	engine := &stubEngine{approveErr: refillqueue.ErrValidation}
	r.POST("/api/v1/admin/refill-queue/:id/approve", ApiApproveRefillItem(engine))

	body, _ := json.Marshal(map[string]any{"clinic_id": "clinic-1", "notes": "lab review ok"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/refill-queue/item-1/approve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"code":40000`)
}

func TestApiRefillQueueStats_ReturnsAggregates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/admin/refill-queue/stats", ApiRefillQueueStats(&stubEngine{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/refill-queue/stats?clinic_id=clinic-1", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"due_now":2`)
	require.Contains(t, w.Body.String(), `"scheduled":4`)
}

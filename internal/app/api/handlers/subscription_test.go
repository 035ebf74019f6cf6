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

	subsvc "github.com/glowclinic/refillhub/internal/app/service/subscription"
	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/types"
)

type stubManager struct {
	createResult *subsvc.CreateSubscriptionResult
	cancelErr    error
}

func (s *stubManager) CreateSubscription(_ context.Context, _ *subsvc.CreateSubscriptionRequest) (*subsvc.CreateSubscriptionResult, error) {
	return s.createResult, nil
}

func (s *stubManager) PauseSubscription(_ context.Context, _ *subsvc.PauseSubscriptionRequest) (*models.Subscription, error) {
	panic("not used")
}

func (s *stubManager) ResumeSubscription(_ context.Context, _ *subsvc.ResumeSubscriptionRequest) (*models.Subscription, error) {
	panic("not used")
}

func (s *stubManager) CancelSubscription(_ context.Context, _ *subsvc.CancelSubscriptionRequest) (*models.Subscription, error) {
	return nil, s.cancelErr
}

func (s *stubManager) ListActions(_ context.Context, _ string, _ string) ([]*models.SubscriptionAction, error) {
	return []*models.SubscriptionAction{
		{ID: "act-2", ActionType: types.SubscriptionActionPaused},
		{ID: "act-1", ActionType: types.SubscriptionActionCreated},
	}, nil
}

func (s *stubManager) ReconcileBillingSync(_ context.Context, _ string) (*subsvc.ReconcileResult, error) {
	return &subsvc.ReconcileResult{Skipped: true, Reason: "reconciliation already running"}, nil
}

func TestApiCreateSubscription_ReportsDegradedBillingSync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mgr := &stubManager{createResult: &subsvc.CreateSubscriptionResult{
		Subscription:  &models.Subscription{ID: "sub-1", BillingSyncStatus: types.BillingSyncFailed},
		BillingSynced: false,
		SyncError:     "billing provider error: card_declined",
	}}
	r.POST("/api/v1/subscriptions", ApiCreateSubscription(mgr))

	body, _ := json.Marshal(map[string]any{"clinic_id": "clinic-1", "patient_id": "patient-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	// creation succeeds even though the remote leg failed
	require.Contains(t, w.Body.String(), `"code":0`)
	require.Contains(t, w.Body.String(), `"billing_synced":false`)
	require.Contains(t, w.Body.String(), "card_declined")
}

func TestApiCancelSubscription_DoubleCancelIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mgr := &stubManager{cancelErr: subsvc.ErrValidation}
	r.POST("/api/v1/subscriptions/:id/cancel", ApiCancelSubscription(mgr))

	body, _ := json.Marshal(map[string]any{"clinic_id": "clinic-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/sub-1/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"code":40000`)
}

func TestApiListSubscriptionActions_NewestFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/subscriptions/:id/actions", ApiListSubscriptionActions(&stubManager{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/sub-1/actions?clinic_id=clinic-1", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Less(t, bytes.Index(w.Body.Bytes(), []byte("act-2")), bytes.Index(w.Body.Bytes(), []byte("act-1")))
}

func TestApiReconcileBilling_ReportsSkip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/cron/reconcile-billing", ApiReconcileBilling(&stubManager{}))

	req := httptest.NewRequest(http.MethodPost, "/cron/reconcile-billing", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"skipped":true`)
}

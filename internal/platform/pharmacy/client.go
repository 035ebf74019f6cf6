package pharmacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	cfgpkg "github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/logctx"
)

// ErrHandoff marks a failed fulfillment handoff.
var ErrHandoff = errors.New("pharmacy handoff failed")

// HandoffRequest is the dispensation order sent to the fulfillment partner
// once a refill item is prescribed.
type HandoffRequest struct {
	ClinicID           string `json:"clinic_id"`
	PatientID          string `json:"patient_id"`
	MedicationName     string `json:"medication_name"`
	MedicationStrength string `json:"medication_strength"`
	MedicationForm     string `json:"medication_form"`
	VialCount          int    `json:"vial_count"`
}

type handoffResponse struct {
	OrderID string `json:"order_id"`
}

// Client submits finalized refill items to the pharmacy partner and returns
// the fulfillment order reference.
type Client interface {
	SubmitOrder(ctx context.Context, req *HandoffRequest) (string, error)
}

type httpClient struct {
	cfg  *cfgpkg.Config
	log  *zap.SugaredLogger
	http *retryablehttp.Client
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Pharmacy.MaxRetries
	rc.HTTPClient.Timeout = cfg.Pharmacy.Timeout
	rc.Logger = nil
	return &httpClient{cfg: cfg, log: log, http: rc}
}

func (c *httpClient) SubmitOrder(ctx context.Context, req *HandoffRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrHandoff, err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Pharmacy.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrHandoff, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Pharmacy.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logctx.FromCtx(ctx, c.log).Errorw("pharmacy request failed", "err", err)
		return "", fmt.Errorf("%w: %v", ErrHandoff, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logctx.FromCtx(ctx, c.log).Errorw("pharmacy rejected order", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrHandoff, resp.StatusCode)
	}

	var out handoffResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrHandoff, err)
	}
	if out.OrderID == "" {
		return "", fmt.Errorf("%w: empty order id", ErrHandoff)
	}
	return out.OrderID, nil
}

package handlers

import (
	"github.com/glowclinic/refillhub/internal/app/service/refillqueue"
	"github.com/glowclinic/refillhub/internal/app/service/subscription"
	"github.com/glowclinic/refillhub/internal/models"
	"github.com/glowclinic/refillhub/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCreateSubscription wraps CreateSubscriptionResult in the standard envelope.
type RespCreateSubscription struct {
	Code    response.APIResponseCode              `json:"code"`
	Message string                                `json:"message"`
	Data    subscription.CreateSubscriptionResult `json:"data"`
}

// RespSubscription wraps a subscription row in the standard envelope.
type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

// RespSubscriptionActions wraps the lifecycle audit trail in the standard envelope.
type RespSubscriptionActions struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    []*models.SubscriptionAction `json:"data"`
}

// RespRefillQueue wraps the admin queue projection in the standard envelope.
type RespRefillQueue struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    refillqueue.QueueResult  `json:"data"`
}

// RespRefillQueueStats wraps per-status queue aggregates in the standard envelope.
type RespRefillQueueStats struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    refillqueue.QueueStats   `json:"data"`
}

// RespRefillItem wraps a single queue item in the standard envelope.
type RespRefillItem struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.RefillQueueItem   `json:"data"`
}

// RespSweepResult wraps the batch sweep outcome in the standard envelope.
type RespSweepResult struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    refillqueue.SweepResult  `json:"data"`
}

// RespReconcileResult wraps the billing reconciliation outcome in the standard envelope.
type RespReconcileResult struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    subscription.ReconcileResult `json:"data"`
}

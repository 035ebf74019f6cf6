package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	subsvc "github.com/glowclinic/refillhub/internal/app/service/subscription"
	"github.com/glowclinic/refillhub/internal/platform/billing"
	"github.com/glowclinic/refillhub/pkg/response"
)

// subscriptionErrorCode maps service errors onto the response envelope.
// Precondition failures are the caller's fault; everything else, including
// billing provider failures, is a server-side error.
func subscriptionErrorCode(err error) response.APIResponseCode {
	if errors.Is(err, subsvc.ErrValidation) || errors.Is(err, subsvc.ErrNotFound) {
		return response.APIResponseCodeBadRequest
	}
	if errors.Is(err, billing.ErrRemoteGateway) {
		return response.APIResponseCodeError
	}
	return response.APIResponseCodeError
}

// @Summary      Create Subscription
// @Description  Enrolls a patient in a recurring billing plan and schedules the first refill.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateSubscriptionRequest true "Subscription terms"
// @Success      200  {object}  handlers.RespCreateSubscription
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.CreateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := mgr.CreateSubscription(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](subscriptionErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type pauseSubscriptionBody struct {
	ClinicID string `json:"clinic_id"`
	Reason   string `json:"reason"`
	ResumeAt *int64 `json:"resume_at"` // unix seconds, optional auto-resume
}

// @Summary      Pause Subscription
// @Description  Pauses billing remote-first and parks in-flight refill items.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        request body handlers.pauseSubscriptionBody true "Pause options"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscriptions/{id}/pause [post]
func ApiPauseSubscription(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body pauseSubscriptionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		req := &subsvc.PauseSubscriptionRequest{
			ClinicID:       body.ClinicID,
			SubscriptionID: c.Param("id"),
			Reason:         body.Reason,
		}
		if body.ResumeAt != nil {
			t := unixTime(*body.ResumeAt)
			req.ResumeAt = &t
		}

		sub, err := mgr.PauseSubscription(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](subscriptionErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

type lifecycleBody struct {
	ClinicID string `json:"clinic_id"`
	Reason   string `json:"reason"`
}

// @Summary      Resume Subscription
// @Description  Resumes a paused subscription; period bounds restart from now.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        request body handlers.lifecycleBody true "Resume options"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscriptions/{id}/resume [post]
func ApiResumeSubscription(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body lifecycleBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		sub, err := mgr.ResumeSubscription(c.Request.Context(), &subsvc.ResumeSubscriptionRequest{
			ClinicID:       body.ClinicID,
			SubscriptionID: c.Param("id"),
			Reason:         body.Reason,
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](subscriptionErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

type cancelSubscriptionBody struct {
	ClinicID          string `json:"clinic_id"`
	Reason            string `json:"reason"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// @Summary      Cancel Subscription
// @Description  Cancels immediately or at period end. A second cancel on a canceled subscription fails.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        request body handlers.cancelSubscriptionBody true "Cancellation options"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscriptions/{id}/cancel [post]
func ApiCancelSubscription(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body cancelSubscriptionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		sub, err := mgr.CancelSubscription(c.Request.Context(), &subsvc.CancelSubscriptionRequest{
			ClinicID:          body.ClinicID,
			SubscriptionID:    c.Param("id"),
			Reason:            body.Reason,
			CancelAtPeriodEnd: body.CancelAtPeriodEnd,
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](subscriptionErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      List Subscription Actions
// @Description  Returns the lifecycle audit trail, newest first.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        clinic_id query string true "Clinic ID"
// @Success      200  {object}  handlers.RespSubscriptionActions
// @Router       /api/v1/subscriptions/{id}/actions [get]
func ApiListSubscriptionActions(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		actions, err := mgr.ListActions(c.Request.Context(), c.Query("clinic_id"), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](subscriptionErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(actions))
	}
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0) }

func RegisterSubscriptionRoutes(r gin.IRouter, mgr subsvc.Manager) {
	r.POST("/subscriptions", ApiCreateSubscription(mgr))
	r.POST("/subscriptions/:id/pause", ApiPauseSubscription(mgr))
	r.POST("/subscriptions/:id/resume", ApiResumeSubscription(mgr))
	r.POST("/subscriptions/:id/cancel", ApiCancelSubscription(mgr))
	r.GET("/subscriptions/:id/actions", ApiListSubscriptionActions(mgr))
}

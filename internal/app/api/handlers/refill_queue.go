package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glowclinic/refillhub/internal/app/service/refillqueue"
	"github.com/glowclinic/refillhub/internal/platform/pharmacy"
	"github.com/glowclinic/refillhub/pkg/response"
)

func refillErrorCode(err error) response.APIResponseCode {
	if errors.Is(err, refillqueue.ErrValidation) || errors.Is(err, refillqueue.ErrNotFound) {
		return response.APIResponseCodeBadRequest
	}
	if errors.Is(err, pharmacy.ErrHandoff) {
		return response.APIResponseCodeError
	}
	return response.APIResponseCodeError
}

// @Summary      Query Admin Refill Queue
// @Description  Paginated, filterable projection of the clinic's refill queue.
// @Tags         RefillQueue
// @Accept       json
// @Produce      json
// @Param        request body refillqueue.QueueQuery true "Queue filters"
// @Success      200  {object}  handlers.RespRefillQueue
// @Router       /api/v1/admin/refill-queue/query [post]
func ApiQueryRefillQueue(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refillqueue.QueueQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := engine.GetAdminRefillQueue(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Refill Queue Stats
// @Description  Item counts per status for a clinic, plus the currently due backlog.
// @Tags         RefillQueue
// @Produce      json
// @Param        clinic_id query string true "Clinic ID"
// @Success      200  {object}  handlers.RespRefillQueueStats
// @Router       /api/v1/admin/refill-queue/stats [get]
func ApiRefillQueueStats(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := engine.GetRefillQueueStats(c.Request.Context(), c.Query("clinic_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(stats))
	}
}

type refillDecisionBody struct {
	ClinicID string `json:"clinic_id"`
	Notes    string `json:"notes"`
}

func refillDecision(c *gin.Context) (*refillqueue.AdminDecisionRequest, bool) {
	var body refillDecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
		return nil, false
	}
	return &refillqueue.AdminDecisionRequest{
		ClinicID: body.ClinicID,
		ItemID:   c.Param("id"),
		Notes:    body.Notes,
	}, true
}

// @Summary      Approve Refill Item
// @Description  Admin checkpoint: moves a pending-admin item to approved.
// @Tags         RefillQueue
// @Accept       json
// @Produce      json
// @Param        id path string true "Refill item ID"
// @Param        request body handlers.refillDecisionBody true "Decision"
// @Success      200  {object}  handlers.RespRefillItem
// @Router       /api/v1/admin/refill-queue/{id}/approve [post]
func ApiApproveRefillItem(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := refillDecision(c)
		if !ok {
			return
		}
		item, err := engine.AdminApprove(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

// @Summary      Hold Refill Item
// @Description  Parks any active item on hold with a note.
// @Tags         RefillQueue
// @Accept       json
// @Produce      json
// @Param        id path string true "Refill item ID"
// @Param        request body handlers.refillDecisionBody true "Decision"
// @Success      200  {object}  handlers.RespRefillItem
// @Router       /api/v1/admin/refill-queue/{id}/hold [post]
func ApiHoldRefillItem(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := refillDecision(c)
		if !ok {
			return
		}
		item, err := engine.HoldItem(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

// @Summary      Cancel Refill Item
// @Description  Force-cancels any active item.
// @Tags         RefillQueue
// @Accept       json
// @Produce      json
// @Param        id path string true "Refill item ID"
// @Param        request body handlers.refillDecisionBody true "Decision"
// @Success      200  {object}  handlers.RespRefillItem
// @Router       /api/v1/admin/refill-queue/{id}/cancel [post]
func ApiCancelRefillItem(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := refillDecision(c)
		if !ok {
			return
		}
		item, err := engine.CancelItem(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

// @Summary      Release Held Refill Item
// @Description  Reinstates a held item: to the admin gate when payment was captured, otherwise back to scheduled.
// @Tags         RefillQueue
// @Accept       json
// @Produce      json
// @Param        id path string true "Refill item ID"
// @Param        request body handlers.refillDecisionBody true "Decision"
// @Success      200  {object}  handlers.RespRefillItem
// @Router       /api/v1/admin/refill-queue/{id}/release [post]
func ApiReleaseRefillItem(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := refillDecision(c)
		if !ok {
			return
		}
		item, err := engine.ReleaseHold(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

type dispatchBody struct {
	ClinicID string `json:"clinic_id"`
}

// @Summary      Prescribe And Dispatch
// @Description  Provider checkpoint: hands an approved item to the pharmacy and marks it dispensed.
// @Tags         RefillQueue
// @Accept       json
// @Produce      json
// @Param        id path string true "Refill item ID"
// @Param        request body handlers.dispatchBody true "Dispatch request"
// @Success      200  {object}  handlers.RespRefillItem
// @Router       /api/v1/admin/refill-queue/{id}/dispatch [post]
func ApiDispatchRefillItem(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dispatchBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		item, err := engine.PrescribeAndDispatch(c.Request.Context(), &refillqueue.PrescribeRequest{
			ClinicID: body.ClinicID,
			ItemID:   c.Param("id"),
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

func RegisterRefillQueueRoutes(r gin.IRouter, engine refillqueue.Engine) {
	r.POST("/refill-queue/query", ApiQueryRefillQueue(engine))
	r.GET("/refill-queue/stats", ApiRefillQueueStats(engine))
	r.POST("/refill-queue/:id/approve", ApiApproveRefillItem(engine))
	r.POST("/refill-queue/:id/hold", ApiHoldRefillItem(engine))
	r.POST("/refill-queue/:id/cancel", ApiCancelRefillItem(engine))
	r.POST("/refill-queue/:id/release", ApiReleaseRefillItem(engine))
	r.POST("/refill-queue/:id/dispatch", ApiDispatchRefillItem(engine))
}

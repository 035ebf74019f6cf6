package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glowclinic/refillhub/internal/app/service/refillqueue"
	subsvc "github.com/glowclinic/refillhub/internal/app/service/subscription"
	"github.com/glowclinic/refillhub/pkg/response"
)

// @Summary      Process Due Refills
// @Description  Batch sweep: charges and advances every scheduled item whose refill date elapsed. Returns skipped=true when another instance holds the sweep lock.
// @Tags         Cron
// @Produce      json
// @Param        clinic_id query string false "Restrict the sweep to one clinic"
// @Success      200  {object}  handlers.RespSweepResult
// @Router       /cron/process-due-refills [post]
func ApiProcessDueRefills(engine refillqueue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := engine.ProcessDueRefills(c.Request.Context(), c.Query("clinic_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](refillErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Reconcile Billing Sync
// @Description  Retries the remote billing leg for subscriptions whose create never reached the provider.
// @Tags         Cron
// @Produce      json
// @Param        clinic_id query string false "Restrict reconciliation to one clinic"
// @Success      200  {object}  handlers.RespReconcileResult
// @Router       /cron/reconcile-billing [post]
func ApiReconcileBilling(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mgr.ReconcileBillingSync(c.Request.Context(), c.Query("clinic_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](subscriptionErrorCode(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterCronRoutes(r gin.IRouter, engine refillqueue.Engine, mgr subsvc.Manager) {
	r.POST("/process-due-refills", ApiProcessDueRefills(engine))
	r.POST("/reconcile-billing", ApiReconcileBilling(mgr))
}

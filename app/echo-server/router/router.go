package router

import (
	"clinicCommission/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRepRoutes(api *echo.Group, handler *rest.RepHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	reps := api.Group("/reps")

	reps.POST("/register", handler.Register)
	reps.POST("/login", handler.Login)

	admin := api.Group("/admin/reps", authRequired, adminOnly)
	admin.POST("/invite", handler.NewInvite)
	admin.GET("/:id", handler.GetRep)
	admin.PUT("/:id/plan", handler.AssignPlan)
	admin.POST("/:id/suspend", handler.Suspend)
}

func SetupPlanRoutes(api *echo.Group, handler *rest.PlanHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	plans := api.Group("/admin/plans", authRequired, adminOnly)

	plans.POST("", handler.CreatePlan)
	plans.GET("", handler.ListPlans)
	plans.GET("/:id", handler.GetPlan)
	plans.PUT("/:id", handler.UpdatePlan)
	plans.DELETE("/:id", handler.DeactivatePlan)
	plans.PUT("/:id/rules", handler.ReplaceRules)
}

func SetupSaleRoutes(api *echo.Group, handler *rest.SaleHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	sales := api.Group("/sales", authRequired, adminOnly)
	sales.POST("", handler.CreateSale)
}

func SetupCommissionRoutes(api *echo.Group, handler *rest.CommissionHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	me := api.Group("/reps/me", authRequired)
	me.GET("/commissions", handler.MyCommissions)
	me.GET("/summary", handler.MySummary)

	admin := api.Group("/admin/commissions", authRequired, adminOnly)
	admin.GET("/sale/:id", handler.GetForSale)
	admin.POST("/release", handler.Release)
}

func SetWebhookRoutes(api *echo.Group, handler *rest.RefundWebhookHandler) {
	webhook := api.Group("/webhook")
	webhook.POST("/refund", handler.HandleRefund)
}

package handler

import (
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 看板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary 管理端汇总
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	result, err := h.svc.AdminSummary(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Factory 工厂看板
// GET /api/v1/dashboard/factory
func (h *DashboardHandler) Factory(c *gin.Context) {
	views, err := h.svc.FactoryDashboard(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, views)
}

// Warehouse 仓库看板
// GET /api/v1/dashboard/warehouse
func (h *DashboardHandler) Warehouse(c *gin.Context) {
	views, err := h.svc.WarehouseDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, views)
}

// CP 渠道商看板
// GET /api/v1/dashboard/cp
func (h *DashboardHandler) CP(c *gin.Context) {
	views, err := h.svc.CPDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, views)
}

// JSR JSR看板
// GET /api/v1/dashboard/jsr
func (h *DashboardHandler) JSR(c *gin.Context) {
	result, err := h.svc.JSRDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Inspection 检验看板
// GET /api/v1/dashboard/inspection
func (h *DashboardHandler) Inspection(c *gin.Context) {
	result, err := h.svc.InspectionDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// AssignedOrders 当前角色的工单下拉
// GET /api/v1/dashboard/assigned-orders
func (h *DashboardHandler) AssignedOrders(c *gin.Context) {
	orders, err := h.svc.AssignedOrders(c.Request.Context(), GetUserRole(c), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, orders)
}

// UsersByRole 按角色列用户
// GET /api/v1/dashboard/users?role=xxx
func (h *DashboardHandler) UsersByRole(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		BadRequest(c, "缺少role参数")
		return
	}
	users, err := h.svc.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, users)
}

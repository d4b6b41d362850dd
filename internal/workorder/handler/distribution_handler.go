package handler

import (
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-gonic/gin"
)

// DistributionHandler 仓库/渠道商分发处理器
type DistributionHandler struct {
	svc       *service.DistributionService
	dashboard *service.DashboardService
}

func NewDistributionHandler(svc *service.DistributionService, dashboard *service.DashboardService) *DistributionHandler {
	return &DistributionHandler{svc: svc, dashboard: dashboard}
}

// SubmitWarehouseUnits 提交仓库收货数量
// POST /api/v1/workorders/:id/warehouse-units
func (h *DistributionHandler) SubmitWarehouseUnits(c *gin.Context) {
	var req service.StageSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.SubmitWarehouseUnits(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// SubmitCPUnits 提交渠道商收货数量
// POST /api/v1/workorders/:id/cp-units
func (h *DistributionHandler) SubmitCPUnits(c *gin.Context) {
	var req service.StageSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.SubmitCPUnits(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// AssignToCP 仓库→渠道商分配
// POST /api/v1/workorders/:id/assign-cp
func (h *DistributionHandler) AssignToCP(c *gin.Context) {
	var req service.AssignToCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.AssignUnitsToCP(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// AssignToFarmer 渠道商→农户分配
// POST /api/v1/workorders/:id/assign-farmer
func (h *DistributionHandler) AssignToFarmer(c *gin.Context) {
	var req service.AssignToFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.AssignUnitsToFarmer(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// ListCPAssignments 渠道商分配批次列表
// GET /api/v1/workorders/:id/cp-assignments
func (h *DistributionHandler) ListCPAssignments(c *gin.Context) {
	recs, err := h.svc.ListCPAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, recs)
}

// ListFarmerAssignments 农户分配记录列表
// GET /api/v1/workorders/:id/farmer-assignments
func (h *DistributionHandler) ListFarmerAssignments(c *gin.Context) {
	recs, err := h.svc.ListFarmerAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, recs)
}

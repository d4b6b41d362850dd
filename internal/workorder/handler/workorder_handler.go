package handler

import (
	"fmt"
	"time"

	"github.com/agrisetu/pumptrack/internal/storage"
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-gonic/gin"
)

// WorkOrderHandler 工单处理器
type WorkOrderHandler struct {
	svc   *service.WorkOrderService
	store storage.FileStore
}

func NewWorkOrderHandler(svc *service.WorkOrderService, store storage.FileStore) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc, store: store}
}

// Create 创建工单
// POST /api/v1/workorders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, wo)
}

// List 工单列表
// GET /api/v1/workorders?status=xxx&region=xxx
func (h *WorkOrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"region": c.Query("region"),
	}

	result, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		Fail(c, err)
		return
	}

	totalPages := int(result.Total) / pageSize
	if int(result.Total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: result.Items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(result.Total),
			TotalPages: totalPages,
		},
	})
}

// Get 工单详情
// GET /api/v1/workorders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, detail)
}

// Update 更新工单
// PUT /api/v1/workorders/:id
func (h *WorkOrderHandler) Update(c *gin.Context) {
	var req service.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// Delete 删除工单及其全部阶段记录
// DELETE /api/v1/workorders/:id
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// UploadFarmerList 上传农户名单附件
// POST /api/v1/workorders/:id/farmer-list
func (h *WorkOrderHandler) UploadFarmerList(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少文件: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "读取文件失败: "+err.Error())
		return
	}
	defer file.Close()

	ref, err := h.store.Save(c.Request.Context(), "farmer-lists", file,
		fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		InternalError(c, "上传文件失败: "+err.Error())
		return
	}

	wo, err := h.svc.Update(c.Request.Context(), c.Param("id"), &service.UpdateWorkOrderRequest{
		FarmerListFile: &ref,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// Progress 工单进度（固定六阶段视图）
// GET /api/v1/workorders/:id/progress
func (h *WorkOrderHandler) Progress(c *gin.Context) {
	result, err := h.svc.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Summary 工单状态汇总
// GET /api/v1/workorders/summary
func (h *WorkOrderHandler) Summary(c *gin.Context) {
	result, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Export 导出工单台账
// GET /api/v1/workorders/export
func (h *WorkOrderHandler) Export(c *gin.Context) {
	f, err := h.svc.ExportRegister(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}

	fileName := fmt.Sprintf("workorders_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "导出失败: "+err.Error())
	}
}

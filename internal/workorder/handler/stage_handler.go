package handler

import (
	"mime/multipart"

	"github.com/agrisetu/pumptrack/internal/storage"
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-gonic/gin"
)

// StageHandler 工厂/PDI/JSR阶段处理器
type StageHandler struct {
	svc       *service.StageService
	dashboard *service.DashboardService
	store     storage.FileStore
}

func NewStageHandler(svc *service.StageService, dashboard *service.DashboardService, store storage.FileStore) *StageHandler {
	return &StageHandler{svc: svc, dashboard: dashboard, store: store}
}

// SubmitManufactured 提交工厂生产数量
// POST /api/v1/workorders/:id/manufactured
func (h *StageHandler) SubmitManufactured(c *gin.Context) {
	var req service.StageSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.SubmitManufacturedUnits(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// SubmitPDI 提交PDI检验数量
// POST /api/v1/workorders/:id/pdi
func (h *StageHandler) SubmitPDI(c *gin.Context) {
	var req service.StageSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.SubmitPDIVerification(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// UpdateFactoryStatus 工厂收尾并路由JSR
// POST /api/v1/workorders/:id/factory-status
func (h *StageHandler) UpdateFactoryStatus(c *gin.Context) {
	var req service.FactoryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	rec, created, err := h.svc.UpdateFactoryStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{
		"assignment": rec,
		"created":    created,
	})
}

// Dispatch 发往仓库
// POST /api/v1/workorders/:id/dispatch
func (h *StageHandler) Dispatch(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	dispatch, err := h.svc.DispatchToWarehouse(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, dispatch)
}

// SaveJSRUnits 保存JSR核验数量
// POST /api/v1/workorders/:id/jsr-units
func (h *StageHandler) SaveJSRUnits(c *gin.Context) {
	var req service.JSRUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	rec, err := h.svc.SaveJSRUnits(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, rec)
}

// 安装照片表单字段
var jsrPhotoFields = []string{
	"installation_photo",
	"site_photo",
	"installation_site_photo",
	"lineman_installation_set",
	"setup_close_photo",
}

// UpdateJSRStage 更新JSR安装阶段（multipart, 照片可选）
// POST /api/v1/workorders/:id/jsr-stage
func (h *StageHandler) UpdateJSRStage(c *gin.Context) {
	req := service.JSRStageRequest{
		LinemanName: c.PostForm("lineman_name"),
		FarmerName:  c.PostForm("farmer_name"),
		Completed:   c.PostForm("completed") == "true",
	}

	refs := make(map[string]string, len(jsrPhotoFields))
	for _, field := range jsrPhotoFields {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			continue
		}
		ref, err := h.savePhoto(c, fileHeader)
		if err != nil {
			InternalError(c, "上传照片失败: "+err.Error())
			return
		}
		refs[field] = ref
	}
	req.InstallationPhoto = refs["installation_photo"]
	req.SitePhoto = refs["site_photo"]
	req.InstallationSitePhoto = refs["installation_site_photo"]
	req.LinemanInstallationSet = refs["lineman_installation_set"]
	req.SetupClosePhoto = refs["setup_close_photo"]

	rec, err := h.svc.UpdateJSRStage(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, rec)
}

func (h *StageHandler) savePhoto(c *gin.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.store.Save(c.Request.Context(), "jsr-photos", file,
		fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
}

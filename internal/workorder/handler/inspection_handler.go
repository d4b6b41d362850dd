package handler

import (
	"mime/multipart"

	"github.com/agrisetu/pumptrack/internal/storage"
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-gonic/gin"
)

// InspectionHandler 现场检验处理器
type InspectionHandler struct {
	svc       *service.InspectionService
	dashboard *service.DashboardService
	store     storage.FileStore
}

func NewInspectionHandler(svc *service.InspectionService, dashboard *service.DashboardService, store storage.FileStore) *InspectionHandler {
	return &InspectionHandler{svc: svc, dashboard: dashboard, store: store}
}

// SubmitUnits 提交检验数量
// POST /api/v1/workorders/:id/inspection-units
func (h *InspectionHandler) SubmitUnits(c *gin.Context) {
	var req service.StageSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	rec, err := h.svc.SubmitInspectionUnits(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, rec)
}

// UploadPhotos 批量上传检验照片（multipart）
// POST /api/v1/workorders/:id/inspection-photos
func (h *InspectionHandler) UploadPhotos(c *gin.Context) {
	photo := service.InspectionPhotoInput{Notes: c.PostForm("notes")}

	fields := map[string]*string{
		"site_photo":     &photo.SitePhoto,
		"lineman_photo":  &photo.LinemanPhoto,
		"close_up_photo": &photo.CloseUpPhoto,
	}
	for field, dest := range fields {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			continue
		}
		ref, err := h.savePhoto(c, fileHeader)
		if err != nil {
			InternalError(c, "上传照片失败: "+err.Error())
			return
		}
		*dest = ref
	}

	recs, err := h.svc.UploadInspectionPhotos(c.Request.Context(), c.Param("id"), []service.InspectionPhotoInput{photo})
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, recs)
}

// Complete 完成检验
// POST /api/v1/workorders/:id/inspection-complete
func (h *InspectionHandler) Complete(c *gin.Context) {
	var req service.CompleteInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.CompleteInspection(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	h.dashboard.InvalidateSummary(c.Request.Context())
	Success(c, wo)
}

// ReportDefect 农户上报缺陷（multipart, 照片可选）
// POST /api/v1/pumps/defects
func (h *InspectionHandler) ReportDefect(c *gin.Context) {
	req := service.DefectReportRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}

	fields := map[string]*string{
		"photo_1": &req.Photo1,
		"photo_2": &req.Photo2,
		"photo_3": &req.Photo3,
	}
	for field, dest := range fields {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			continue
		}
		ref, err := h.savePhoto(c, fileHeader)
		if err != nil {
			InternalError(c, "上传照片失败: "+err.Error())
			return
		}
		*dest = ref
	}

	rec, err := h.svc.SubmitDefectReport(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, rec)
}

// ListDefects 农户缺陷上报列表
// GET /api/v1/pumps/defects
func (h *InspectionHandler) ListDefects(c *gin.Context) {
	recs, err := h.svc.ListDefects(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, recs)
}

// PumpProgress 农户泵机进度时间线
// GET /api/v1/pumps/progress
func (h *InspectionHandler) PumpProgress(c *gin.Context) {
	recs, err := h.svc.GetPumpProgress(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, recs)
}

// InspectionProgress 工单检验进度
// GET /api/v1/workorders/:id/inspection-progress
func (h *InspectionHandler) InspectionProgress(c *gin.Context) {
	result, err := h.svc.GetInspectionProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

func (h *InspectionHandler) savePhoto(c *gin.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	return h.store.Save(c.Request.Context(), "inspection-photos", file,
		fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
}

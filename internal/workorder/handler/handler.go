package handler

import (
	"strconv"

	"github.com/agrisetu/pumptrack/internal/storage"
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	WorkOrder    *WorkOrderHandler
	Stage        *StageHandler
	Distribution *DistributionHandler
	Inspection   *InspectionHandler
	Dashboard    *DashboardHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(services *service.Services, store storage.FileStore) *Handlers {
	return &Handlers{
		WorkOrder:    NewWorkOrderHandler(services.WorkOrder, store),
		Stage:        NewStageHandler(services.Stage, services.Dashboard, store),
		Distribution: NewDistributionHandler(services.Distribution, services.Dashboard),
		Inspection:   NewInspectionHandler(services.Inspection, services.Dashboard, store),
		Dashboard:    NewDashboardHandler(services.Dashboard),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// 业务错误类别 → 错误码
var kindCodes = map[service.Kind]int{
	service.KindValidation:            40000,
	service.KindQuantityMismatch:      40001,
	service.KindQuantityExceedsTarget: 40002,
	service.KindNotFound:              40400,
	service.KindConflict:              40900,
	service.KindNoActorFound:          42200,
	service.KindPersistence:           50000,
}

// Fail maps a service error onto the response envelope.
func Fail(c *gin.Context, err error) {
	code, ok := kindCodes[service.KindOf(err)]
	if !ok {
		code = 50000
	}
	Error(c, code, err.Error())
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

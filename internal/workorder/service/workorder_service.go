package service

import (
	"context"
	"errors"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// WorkOrderService 工单服务
type WorkOrderService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewWorkOrderService(db *gorm.DB, repos *repository.Repositories) *WorkOrderService {
	return &WorkOrderService{db: db, repos: repos}
}

// wrap keeps service-kinded errors intact and folds everything else
// into a PersistenceError.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return persistenceErr(msg, err)
}

// TimelineInput 阶段工期输入
type TimelineInput struct {
	Stage        string `json:"stage" binding:"required"`
	DurationDays int    `json:"duration_days"`
}

// StakeholderInput 干系人输入
type StakeholderInput struct {
	FactoryContact    string `json:"factory_contact"`
	PDIOfficer        string `json:"pdi_officer"`
	WarehouseManager  string `json:"warehouse_manager"`
	JSROfficer        string `json:"jsr_officer"`
	ChannelPartner    string `json:"channel_partner"`
	InspectionOfficer string `json:"inspection_officer"`
}

// CreateWorkOrderRequest 创建工单请求
type CreateWorkOrderRequest struct {
	Title        string     `json:"title" binding:"required"`
	Region       string     `json:"region"`
	Quantity3HP  int        `json:"quantity_3hp"`
	Quantity5HP  int        `json:"quantity_5hp"`
	Quantity75HP int        `json:"quantity_7_5hp"`
	StartDate    *time.Time `json:"start_date"`

	// Opaque reference produced by the file store; may be empty.
	FarmerListFile string `json:"farmer_list_file"`

	Stakeholders *StakeholderInput `json:"stakeholders"`
	Timelines    []TimelineInput   `json:"timelines"`
}

// Create 创建工单, seeds the Factory stage log as Pending.
func (s *WorkOrderService) Create(ctx context.Context, userID string, req *CreateWorkOrderRequest) (*entity.WorkOrder, error) {
	if req.Title == "" {
		return nil, validationErr("title is required")
	}
	b := Breakdown{HP3: req.Quantity3HP, HP5: req.Quantity5HP, HP75: req.Quantity75HP}
	if b.HP3 < 0 || b.HP5 < 0 || b.HP75 < 0 {
		return nil, validationErr("quantities must be non-negative")
	}
	if b.Total() == 0 {
		return nil, validationErr("total quantity must be positive")
	}

	var wo *entity.WorkOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		orderNumber, err := repos.WorkOrder.GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}

		wo = &entity.WorkOrder{
			ID:             uuid.New().String()[:32],
			OrderNumber:    orderNumber,
			Title:          req.Title,
			Region:         req.Region,
			Quantity3HP:    b.HP3,
			Quantity5HP:    b.HP5,
			Quantity75HP:   b.HP75,
			TotalQuantity:  b.Total(),
			Status:         entity.StatusPending,
			StartDate:      req.StartDate,
			FarmerListFile: req.FarmerListFile,
			CreatedBy:      userID,
		}
		if err := repos.WorkOrder.Create(ctx, wo); err != nil {
			return err
		}

		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID: wo.ID,
			Stage:       entity.StageFactory,
			Status:      entity.StageStatusPending,
			StartedAt:   &now,
		}); err != nil {
			return err
		}

		if req.Stakeholders != nil {
			if err := repos.Stakeholder.Upsert(ctx, stakeholderRecord(wo.ID, req.Stakeholders)); err != nil {
				return err
			}
		}
		return repos.Stakeholder.ReplaceTimelines(ctx, wo.ID, timelineRecords(req.Timelines))
	})
	if err != nil {
		return nil, wrap(err, "create work order")
	}
	return wo, nil
}

func stakeholderRecord(workOrderID string, in *StakeholderInput) *entity.WorkOrderStakeholders {
	return &entity.WorkOrderStakeholders{
		WorkOrderID:       workOrderID,
		FactoryContact:    in.FactoryContact,
		PDIOfficer:        in.PDIOfficer,
		WarehouseManager:  in.WarehouseManager,
		JSROfficer:        in.JSROfficer,
		ChannelPartner:    in.ChannelPartner,
		InspectionOfficer: in.InspectionOfficer,
	}
}

func timelineRecords(in []TimelineInput) []entity.WorkOrderTimeline {
	out := make([]entity.WorkOrderTimeline, 0, len(in))
	for _, t := range in {
		out = append(out, entity.WorkOrderTimeline{
			Stage:        t.Stage,
			DurationDays: t.DurationDays,
		})
	}
	return out
}

// WorkOrderListResult 工单列表结果
type WorkOrderListResult struct {
	Items    []entity.WorkOrder `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// List 工单列表
func (s *WorkOrderService) List(ctx context.Context, page, pageSize int, filters map[string]string) (*WorkOrderListResult, error) {
	items, total, err := s.repos.WorkOrder.FindAll(ctx, page, pageSize, filters)
	if err != nil {
		return nil, wrap(err, "list work orders")
	}
	return &WorkOrderListResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// WorkOrderDetail 工单详情
type WorkOrderDetail struct {
	*entity.WorkOrder
	StageLogs    []entity.StageLog             `json:"stage_logs"`
	Stakeholders *entity.WorkOrderStakeholders `json:"stakeholders"`
	Timelines    []entity.WorkOrderTimeline    `json:"timelines"`
}

// Get 工单详情, accepts id or order number.
func (s *WorkOrderService) Get(ctx context.Context, idOrNumber string) (*WorkOrderDetail, error) {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("work order %s not found", idOrNumber)
		}
		return nil, wrap(err, "find work order")
	}

	logs, err := s.repos.StageLog.FindByWorkOrder(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "find stage logs")
	}
	timelines, err := s.repos.Stakeholder.FindTimelines(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "find timelines")
	}
	stakeholders, err := s.repos.Stakeholder.Find(ctx, wo.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, wrap(err, "find stakeholders")
	}

	return &WorkOrderDetail{
		WorkOrder:    wo,
		StageLogs:    logs,
		Stakeholders: stakeholders,
		Timelines:    timelines,
	}, nil
}

// UpdateWorkOrderRequest 更新工单请求
type UpdateWorkOrderRequest struct {
	Title        *string    `json:"title"`
	Region       *string    `json:"region"`
	Quantity3HP  *int       `json:"quantity_3hp"`
	Quantity5HP  *int       `json:"quantity_5hp"`
	Quantity75HP *int       `json:"quantity_7_5hp"`
	StartDate    *time.Time `json:"start_date"`

	FarmerListFile *string `json:"farmer_list_file"`

	Stakeholders *StakeholderInput `json:"stakeholders"`
	Timelines    []TimelineInput   `json:"timelines"`
}

// Update 更新工单. Timelines and stakeholders are replaced in the same
// transaction when provided.
func (s *WorkOrderService) Update(ctx context.Context, idOrNumber string, req *UpdateWorkOrderRequest) (*entity.WorkOrder, error) {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("work order %s not found", idOrNumber)
		}
		return nil, wrap(err, "find work order")
	}

	if req.Title != nil {
		wo.Title = *req.Title
	}
	if req.Region != nil {
		wo.Region = *req.Region
	}
	if req.Quantity3HP != nil {
		wo.Quantity3HP = *req.Quantity3HP
	}
	if req.Quantity5HP != nil {
		wo.Quantity5HP = *req.Quantity5HP
	}
	if req.Quantity75HP != nil {
		wo.Quantity75HP = *req.Quantity75HP
	}
	if req.StartDate != nil {
		wo.StartDate = req.StartDate
	}
	if req.FarmerListFile != nil {
		wo.FarmerListFile = *req.FarmerListFile
	}

	if wo.Quantity3HP < 0 || wo.Quantity5HP < 0 || wo.Quantity75HP < 0 {
		return nil, validationErr("quantities must be non-negative")
	}
	wo.TotalQuantity = wo.Quantity3HP + wo.Quantity5HP + wo.Quantity75HP
	if wo.TotalQuantity == 0 {
		return nil, validationErr("total quantity must be positive")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.WorkOrder.Save(ctx, wo); err != nil {
			return err
		}
		if req.Stakeholders != nil {
			if err := repos.Stakeholder.Upsert(ctx, stakeholderRecord(wo.ID, req.Stakeholders)); err != nil {
				return err
			}
		}
		if req.Timelines != nil {
			if err := repos.Stakeholder.ReplaceTimelines(ctx, wo.ID, timelineRecords(req.Timelines)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update work order")
	}
	return wo, nil
}

// Delete removes the work order and every dependent stage record in one
// transaction. Partial deletion is never observable.
func (s *WorkOrderService) Delete(ctx context.Context, idOrNumber string) error {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundErr("work order %s not found", idOrNumber)
		}
		return wrap(err, "find work order")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.StageLog.DeleteByWorkOrder(ctx, wo.ID); err != nil {
			return err
		}
		if err := repos.Factory.DeleteByWorkOrder(ctx, wo.ID); err != nil {
			return err
		}
		if err := repos.JSR.DeleteByWorkOrder(ctx, wo.ID); err != nil {
			return err
		}
		if err := repos.Distribution.DeleteByWorkOrder(ctx, wo.ID); err != nil {
			return err
		}
		if err := repos.Inspection.DeleteByWorkOrder(ctx, wo.ID); err != nil {
			return err
		}
		if err := repos.Stakeholder.DeleteByWorkOrder(ctx, wo.ID); err != nil {
			return err
		}
		return repos.WorkOrder.Delete(ctx, wo.ID)
	})
	return wrap(err, "delete work order")
}

// StageProgress 单阶段进度
type StageProgress struct {
	Stage             string     `json:"stage"`
	Label             string     `json:"label"`
	Status            string     `json:"status"`
	CompletedQuantity int        `json:"completed_quantity"`
	StartedAt         *time.Time `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
}

// ProgressResult 工单进度
type ProgressResult struct {
	WorkOrder *entity.WorkOrder `json:"work_order"`
	Stages    []StageProgress   `json:"stages"`
}

// Progress projects the stage logs onto the fixed six-stage pipeline
// view. Stages with no log yet report Pending and zero quantity.
func (s *WorkOrderService) Progress(ctx context.Context, idOrNumber string) (*ProgressResult, error) {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("work order %s not found", idOrNumber)
		}
		return nil, wrap(err, "find work order")
	}

	logs, err := s.repos.StageLog.FindByWorkOrder(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "find stage logs")
	}
	byStage := make(map[string]entity.StageLog, len(logs))
	for _, l := range logs {
		byStage[l.Stage] = l
	}

	stages := make([]StageProgress, 0, len(entity.ProgressStages))
	for _, ps := range entity.ProgressStages {
		p := StageProgress{
			Stage:  ps.Stage,
			Label:  ps.Label,
			Status: entity.StageStatusPending,
		}
		if l, ok := byStage[ps.Stage]; ok {
			p.Status = l.Status
			p.CompletedQuantity = l.CompletedQuantity
			p.StartedAt = l.StartedAt
			p.CompletedAt = l.CompletedAt
		}
		stages = append(stages, p)
	}

	return &ProgressResult{WorkOrder: wo, Stages: stages}, nil
}

// SummaryResult 工单汇总
type SummaryResult struct {
	TotalOrders   int64            `json:"total_orders"`
	ByStatus      map[string]int64 `json:"by_status"`
	TotalQuantity int              `json:"total_quantity"`
}

// Summary 工单状态汇总
func (s *WorkOrderService) Summary(ctx context.Context) (*SummaryResult, error) {
	counts, err := s.repos.WorkOrder.CountByStatus(ctx)
	if err != nil {
		return nil, wrap(err, "count work orders")
	}

	result := &SummaryResult{ByStatus: make(map[string]int64)}
	for _, c := range counts {
		result.ByStatus[c.Status] = c.Count
		result.TotalOrders += c.Count
	}

	orders, err := s.repos.WorkOrder.FindEvery(ctx)
	if err != nil {
		return nil, wrap(err, "load work orders")
	}
	for _, wo := range orders {
		result.TotalQuantity += wo.TotalQuantity
	}
	return result, nil
}

// ExportRegister renders the full work-order register as an xlsx
// workbook.
func (s *WorkOrderService) ExportRegister(ctx context.Context) (*excelize.File, error) {
	orders, err := s.repos.WorkOrder.FindEvery(ctx)
	if err != nil {
		return nil, wrap(err, "load work orders")
	}

	f := excelize.NewFile()
	const sheet = "WorkOrders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order Number", "Title", "Region", "3HP", "5HP", "7.5HP", "Total", "Status", "Start Date", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, wo := range orders {
		startDate := ""
		if wo.StartDate != nil {
			startDate = wo.StartDate.Format("2006-01-02")
		}
		values := []interface{}{
			wo.OrderNumber, wo.Title, wo.Region,
			wo.Quantity3HP, wo.Quantity5HP, wo.Quantity75HP,
			wo.TotalQuantity, wo.Status, startDate,
			wo.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return f, nil
}

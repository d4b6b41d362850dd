package service

import (
	"context"
	"errors"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"gorm.io/gorm"
)

// InspectionService 现场检验服务
type InspectionService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewInspectionService(db *gorm.DB, repos *repository.Repositories) *InspectionService {
	return &InspectionService{db: db, repos: repos}
}

func (s *InspectionService) resolve(ctx context.Context, idOrNumber string) (*entity.WorkOrder, error) {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("work order %s not found", idOrNumber)
		}
		return nil, wrap(err, "find work order")
	}
	return wo, nil
}

// SubmitInspectionUnits 提交检验数量. Inspection starts only once units
// reached farmers; earlier submissions conflict.
func (s *InspectionService) SubmitInspectionUnits(ctx context.Context, userID, idOrNumber string, req *StageSubmissionRequest) (*entity.InspectionUnits, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	b := req.breakdown()
	if err := validateBreakdown(b, req.Total); err != nil {
		return nil, err
	}
	if err := checkTarget(b, wo); err != nil {
		return nil, err
	}
	if wo.Status != entity.StatusAssignedToFarmer && wo.Status != entity.StatusInspected {
		return nil, conflictErr("cannot inspect in status %s", wo.Status)
	}

	rec := &entity.InspectionUnits{
		WorkOrderID:    wo.ID,
		HP3:            b.HP3,
		HP5:            b.HP5,
		HP75:           b.HP75,
		TotalInspected: b.Total(),
		InspectedBy:    userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Inspection.UpsertUnits(ctx, rec); err != nil {
			return err
		}
		now := time.Now()
		return repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageInspection,
			Status:            entity.StageStatusInProgress,
			CompletedQuantity: b.Total(),
			Remarks:           req.Remarks,
			StartedAt:         &now,
		})
	})
	if err != nil {
		return nil, wrap(err, "submit inspection units")
	}
	return rec, nil
}

// InspectionPhotoInput 一组检验照片 — opaque file-store references.
type InspectionPhotoInput struct {
	SitePhoto    string `json:"site_photo"`
	LinemanPhoto string `json:"lineman_photo"`
	CloseUpPhoto string `json:"close_up_photo"`
	Notes        string `json:"notes"`
}

// UploadInspectionPhotos 批量登记检验照片
func (s *InspectionService) UploadInspectionPhotos(ctx context.Context, idOrNumber string, photos []InspectionPhotoInput) ([]entity.InspectionPhoto, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, validationErr("at least one photo set is required")
	}

	recs := make([]entity.InspectionPhoto, 0, len(photos))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		for _, p := range photos {
			rec := entity.InspectionPhoto{
				WorkOrderID:  wo.ID,
				SitePhoto:    p.SitePhoto,
				LinemanPhoto: p.LinemanPhoto,
				CloseUpPhoto: p.CloseUpPhoto,
				Notes:        p.Notes,
			}
			if err := repos.Inspection.CreatePhoto(ctx, &rec); err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "upload inspection photos")
	}
	return recs, nil
}

// CompleteInspectionRequest 完成检验请求
type CompleteInspectionRequest struct {
	FarmerID string `json:"farmer_id"`
	Remarks  string `json:"remarks"`
}

// CompleteInspection closes the pipeline: the work order moves to
// inspected and the farmer timeline gains its final stage row.
func (s *InspectionService) CompleteInspection(ctx context.Context, userID, idOrNumber string, req *CompleteInspectionRequest) (*entity.WorkOrder, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	next, err := transition(wo, entity.EventInspected)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.StageLog.MarkCompleted(ctx, wo.ID, entity.StageInspection, entity.StageStatusCompleted); err != nil {
			return err
		}
		if err := repos.Inspection.CreateProgress(ctx, &entity.PumpProgress{
			WorkOrderID: wo.ID,
			FarmerID:    req.FarmerID,
			Stage:       "Farm Inspection",
			Remarks:     req.Remarks,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "complete inspection")
	}
	wo.Status = next
	return wo, nil
}

// DefectReportRequest 农户缺陷上报请求
type DefectReportRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`

	Photo1 string `json:"photo_1"`
	Photo2 string `json:"photo_2"`
	Photo3 string `json:"photo_3"`
}

// SubmitDefectReport 农户上报泵机缺陷
func (s *InspectionService) SubmitDefectReport(ctx context.Context, farmerID string, req *DefectReportRequest) (*entity.PumpDefect, error) {
	if req.Title == "" || req.Description == "" {
		return nil, validationErr("title and description are required")
	}
	rec := &entity.PumpDefect{
		FarmerID:    farmerID,
		Title:       req.Title,
		Description: req.Description,
		Photo1:      req.Photo1,
		Photo2:      req.Photo2,
		Photo3:      req.Photo3,
	}
	if err := s.repos.Inspection.CreateDefect(ctx, rec); err != nil {
		return nil, wrap(err, "create defect report")
	}
	return rec, nil
}

// ListDefects 查询农户的缺陷上报
func (s *InspectionService) ListDefects(ctx context.Context, farmerID string) ([]entity.PumpDefect, error) {
	recs, err := s.repos.Inspection.FindDefectsByFarmer(ctx, farmerID)
	if err != nil {
		return nil, wrap(err, "find defect reports")
	}
	return recs, nil
}

// GetPumpProgress 查询农户的泵机进度时间线
func (s *InspectionService) GetPumpProgress(ctx context.Context, farmerID string) ([]entity.PumpProgress, error) {
	recs, err := s.repos.Inspection.FindProgressByFarmer(ctx, farmerID)
	if err != nil {
		return nil, wrap(err, "find pump progress")
	}
	return recs, nil
}

// InspectionProgressResult 工单检验进度
type InspectionProgressResult struct {
	WorkOrder      *entity.WorkOrder `json:"work_order"`
	TotalInspected int               `json:"total_inspected"`
	TargetQuantity int               `json:"target_quantity"`
	PercentDone    int               `json:"percent_done"`
}

// GetInspectionProgress 工单检验进度, per-officer records summed.
func (s *InspectionService) GetInspectionProgress(ctx context.Context, idOrNumber string) (*InspectionProgressResult, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}

	logs, err := s.repos.StageLog.FindByWorkOrder(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "find stage logs")
	}
	var inspected int
	for _, l := range logs {
		if l.Stage == entity.StageInspection {
			inspected = l.CompletedQuantity
		}
	}

	result := &InspectionProgressResult{
		WorkOrder:      wo,
		TotalInspected: inspected,
		TargetQuantity: wo.TotalQuantity,
	}
	if wo.TotalQuantity > 0 {
		result.PercentDone = inspected * 100 / wo.TotalQuantity
	}
	return result, nil
}

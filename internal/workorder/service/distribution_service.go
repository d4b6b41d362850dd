package service

import (
	"context"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"gorm.io/gorm"
)

// DistributionService 仓库/渠道商分发服务
type DistributionService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewDistributionService(db *gorm.DB, repos *repository.Repositories) *DistributionService {
	return &DistributionService{db: db, repos: repos}
}

func (s *DistributionService) resolve(ctx context.Context, idOrNumber string) (*entity.WorkOrder, error) {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, notFoundErr("work order %s not found", idOrNumber)
		}
		return nil, wrap(err, "find work order")
	}
	return wo, nil
}

// SubmitWarehouseUnits 提交仓库收货数量. One record per
// (work order, manager); re-submission overwrites it.
func (s *DistributionService) SubmitWarehouseUnits(ctx context.Context, userID, idOrNumber string, req *StageSubmissionRequest) (*entity.WorkOrder, error) {
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
	next, err := transition(wo, entity.EventWarehouseReceived)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Distribution.UpsertWarehouseUnits(ctx, &entity.WarehouseUnits{
			WorkOrderID: wo.ID,
			HP3:         b.HP3,
			HP5:         b.HP5,
			HP75:        b.HP75,
			Total:       b.Total(),
			CreatedBy:   userID,
		}); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageWarehouse,
			Status:            entity.StageStatusCompleted,
			CompletedQuantity: b.Total(),
			Remarks:           req.Remarks,
			StartedAt:         &now,
			CompletedAt:       &now,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "submit warehouse units")
	}
	wo.Status = next
	return wo, nil
}

// SubmitCPUnits 提交渠道商收货数量
func (s *DistributionService) SubmitCPUnits(ctx context.Context, userID, idOrNumber string, req *StageSubmissionRequest) (*entity.WorkOrder, error) {
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
	next, err := transition(wo, entity.EventCPReceived)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Distribution.UpsertCPUnits(ctx, &entity.CPUnits{
			WorkOrderID: wo.ID,
			HP3:         b.HP3,
			HP5:         b.HP5,
			HP75:        b.HP75,
			Total:       b.Total(),
			CreatedBy:   userID,
		}); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageCP,
			Status:            entity.StageStatusInProgress,
			CompletedQuantity: b.Total(),
			Remarks:           req.Remarks,
			StartedAt:         &now,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "submit cp units")
	}
	wo.Status = next
	return wo, nil
}

// CPAssignmentInput 单批渠道商分配
type CPAssignmentInput struct {
	Region   string `json:"region" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Notes    string `json:"notes"`
}

// AssignToCPRequest 仓库→渠道商分配请求
type AssignToCPRequest struct {
	Assignments []CPAssignmentInput `json:"assignments" binding:"required"`
}

// AssignUnitsToCP appends assignment batches. The running total across
// all batches stays bounded by the work order target.
func (s *DistributionService) AssignUnitsToCP(ctx context.Context, userID, idOrNumber string, req *AssignToCPRequest) (*entity.WorkOrder, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if len(req.Assignments) == 0 {
		return nil, validationErr("at least one assignment is required")
	}
	var batchTotal int
	for _, a := range req.Assignments {
		if a.Region == "" {
			return nil, validationErr("region is required")
		}
		if a.Quantity <= 0 {
			return nil, validationErr("quantity must be positive")
		}
		batchTotal += a.Quantity
	}

	assigned, err := s.repos.Distribution.SumCPAssigned(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "sum cp assignments")
	}
	if assigned+batchTotal > wo.TotalQuantity {
		return nil, quantityExceedsErr("assigning %d would exceed work order target %d (already assigned %d)",
			batchTotal, wo.TotalQuantity, assigned)
	}

	next, err := transition(wo, entity.EventAssignedToCP)
	if err != nil {
		return nil, err
	}

	recs := make([]entity.CPAssignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		recs = append(recs, entity.CPAssignment{
			WorkOrderID: wo.ID,
			Region:      a.Region,
			Quantity:    a.Quantity,
			Notes:       a.Notes,
			AssignedBy:  userID,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Distribution.CreateCPAssignments(ctx, recs); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageCP,
			Status:            entity.StageStatusAssigned,
			CompletedQuantity: assigned + batchTotal,
			StartedAt:         &now,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "assign units to cp")
	}
	wo.Status = next
	return wo, nil
}

// 可分配的泵型号
var validHPUnits = map[string]bool{
	"3HP":   true,
	"5HP":   true,
	"7.5HP": true,
}

// AssignToFarmerRequest 渠道商→农户分配请求
type AssignToFarmerRequest struct {
	FarmerName string `json:"farmer_name" binding:"required"`
	HPUnit     string `json:"hp_unit" binding:"required"`
	Notes      string `json:"notes"`
}

// AssignUnitsToFarmer appends one unit assignment per farmer. The
// number of assignment rows stays bounded by the work order target.
func (s *DistributionService) AssignUnitsToFarmer(ctx context.Context, userID, idOrNumber string, req *AssignToFarmerRequest) (*entity.WorkOrder, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if req.FarmerName == "" {
		return nil, validationErr("farmer_name is required")
	}
	if !validHPUnits[req.HPUnit] {
		return nil, validationErr("hp_unit must be one of 3HP, 5HP, 7.5HP")
	}

	count, err := s.repos.Distribution.CountFarmerAssignments(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "count farmer assignments")
	}
	if int(count) >= wo.TotalQuantity {
		return nil, quantityExceedsErr("all %d units are already assigned to farmers", wo.TotalQuantity)
	}

	next, err := transition(wo, entity.EventAssignedToFarmer)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Distribution.CreateFarmerAssignment(ctx, &entity.FarmerAssignment{
			WorkOrderID: wo.ID,
			FarmerName:  req.FarmerName,
			HPUnit:      req.HPUnit,
			Notes:       req.Notes,
			Status:      entity.StageStatusAssigned,
			AssignedBy:  userID,
		}); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageCP,
			Status:            entity.StageStatusCompleted,
			CompletedQuantity: int(count) + 1,
			StartedAt:         &now,
			CompletedAt:       &now,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "assign unit to farmer")
	}
	wo.Status = next
	return wo, nil
}

// ListCPAssignments 查询渠道商分配批次
func (s *DistributionService) ListCPAssignments(ctx context.Context, idOrNumber string) ([]entity.CPAssignment, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	recs, err := s.repos.Distribution.FindCPAssignments(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "find cp assignments")
	}
	return recs, nil
}

// ListFarmerAssignments 查询农户分配记录
func (s *DistributionService) ListFarmerAssignments(ctx context.Context, idOrNumber string) ([]entity.FarmerAssignment, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	recs, err := s.repos.Distribution.FindFarmerAssignments(ctx, wo.ID)
	if err != nil {
		return nil, wrap(err, "find farmer assignments")
	}
	return recs, nil
}

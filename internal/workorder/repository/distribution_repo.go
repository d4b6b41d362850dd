package repository

import (
	"context"
	"errors"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DistributionRepository 仓库/渠道商分发记录仓库
type DistributionRepository struct {
	db *gorm.DB
}

func NewDistributionRepository(db *gorm.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// UpsertWarehouseUnits 写入/覆盖仓库收货记录, keyed (work_order_id, created_by).
func (r *DistributionRepository) UpsertWarehouseUnits(ctx context.Context, rec *entity.WarehouseUnits) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}, {Name: "created_by"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hp_3", "hp_5", "hp_7_5", "total", "updated_at",
		}),
	}).Create(rec).Error
}

// FindWarehouseUnits 查询某仓库经理的收货记录
func (r *DistributionRepository) FindWarehouseUnits(ctx context.Context, workOrderID, createdBy string) (*entity.WarehouseUnits, error) {
	var rec entity.WarehouseUnits
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND created_by = ?", workOrderID, createdBy).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// SumWarehouseReceived 某仓库经理已收货合计, missing rows coalesce to zero.
func (r *DistributionRepository) SumWarehouseReceived(ctx context.Context, createdBy string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entity.WarehouseUnits{}).
		Select("COALESCE(SUM(total), 0)").
		Where("created_by = ?", createdBy).
		Scan(&total).Error
	return total, err
}

// UpsertCPUnits 写入/覆盖渠道商收货记录, keyed (work_order_id, created_by).
func (r *DistributionRepository) UpsertCPUnits(ctx context.Context, rec *entity.CPUnits) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}, {Name: "created_by"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hp_3", "hp_5", "hp_7_5", "total", "updated_at",
		}),
	}).Create(rec).Error
}

// FindCPUnits 查询某渠道商的收货记录
func (r *DistributionRepository) FindCPUnits(ctx context.Context, workOrderID, createdBy string) (*entity.CPUnits, error) {
	var rec entity.CPUnits
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND created_by = ?", workOrderID, createdBy).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// CreateCPAssignments 批量写入仓库→渠道商分配 (append-only).
func (r *DistributionRepository) CreateCPAssignments(ctx context.Context, recs []entity.CPAssignment) error {
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = uuid.New().String()[:32]
		}
	}
	return r.db.WithContext(ctx).Create(&recs).Error
}

// FindCPAssignments 查询工单的渠道商分配批次
func (r *DistributionRepository) FindCPAssignments(ctx context.Context, workOrderID string) ([]entity.CPAssignment, error) {
	var recs []entity.CPAssignment
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// SumCPAssigned 工单已分配给渠道商的合计
func (r *DistributionRepository) SumCPAssigned(ctx context.Context, workOrderID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entity.CPAssignment{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("work_order_id = ?", workOrderID).
		Scan(&total).Error
	return total, err
}

// CreateFarmerAssignment 写入渠道商→农户分配 (append-only).
func (r *DistributionRepository) CreateFarmerAssignment(ctx context.Context, rec *entity.FarmerAssignment) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// FindFarmerAssignments 查询工单的农户分配记录
func (r *DistributionRepository) FindFarmerAssignments(ctx context.Context, workOrderID string) ([]entity.FarmerAssignment, error) {
	var recs []entity.FarmerAssignment
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// CountFarmerAssignments 工单已分配农户的台数 (one row per unit).
func (r *DistributionRepository) CountFarmerAssignments(ctx context.Context, workOrderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.FarmerAssignment{}).
		Where("work_order_id = ?", workOrderID).
		Count(&count).Error
	return count, err
}

// DeleteByWorkOrder 级联删除分发相关记录
func (r *DistributionRepository) DeleteByWorkOrder(ctx context.Context, workOrderID string) error {
	for _, model := range []interface{}{
		&entity.WarehouseUnits{},
		&entity.CPUnits{},
		&entity.CPAssignment{},
		&entity.FarmerAssignment{},
	} {
		if err := r.db.WithContext(ctx).
			Where("work_order_id = ?", workOrderID).
			Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

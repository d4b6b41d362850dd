package repository

import (
	"context"
	"errors"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InspectionRepository 现场检验记录仓库
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// UpsertUnits 写入/覆盖检验记录, keyed (work_order_id, inspected_by).
func (r *InspectionRepository) UpsertUnits(ctx context.Context, rec *entity.InspectionUnits) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}, {Name: "inspected_by"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hp_3", "hp_5", "hp_7_5", "total_inspected", "updated_at",
		}),
	}).Create(rec).Error
}

// FindUnits 查询某检验员的检验记录
func (r *InspectionRepository) FindUnits(ctx context.Context, workOrderID, inspectedBy string) (*entity.InspectionUnits, error) {
	var rec entity.InspectionUnits
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND inspected_by = ?", workOrderID, inspectedBy).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// SumInspected 某检验员已检验合计, missing rows coalesce to zero.
func (r *InspectionRepository) SumInspected(ctx context.Context, inspectedBy string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entity.InspectionUnits{}).
		Select("COALESCE(SUM(total_inspected), 0)").
		Where("inspected_by = ?", inspectedBy).
		Scan(&total).Error
	return total, err
}

// CreatePhoto 写入检验照片记录 (append-only).
func (r *InspectionRepository) CreatePhoto(ctx context.Context, rec *entity.InspectionPhoto) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// FindPhotos 查询工单的检验照片
func (r *InspectionRepository) FindPhotos(ctx context.Context, workOrderID string) ([]entity.InspectionPhoto, error) {
	var recs []entity.InspectionPhoto
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// CreateProgress 写入泵机进度记录 (append-only).
func (r *InspectionRepository) CreateProgress(ctx context.Context, rec *entity.PumpProgress) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// FindProgressByFarmer 查询农户的泵机进度时间线
func (r *InspectionRepository) FindProgressByFarmer(ctx context.Context, farmerID string) ([]entity.PumpProgress, error) {
	var recs []entity.PumpProgress
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// FindProgressByWorkOrder 查询工单的泵机进度时间线
func (r *InspectionRepository) FindProgressByWorkOrder(ctx context.Context, workOrderID string) ([]entity.PumpProgress, error) {
	var recs []entity.PumpProgress
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

// CreateDefect 写入农户缺陷上报
func (r *InspectionRepository) CreateDefect(ctx context.Context, rec *entity.PumpDefect) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// FindDefectsByFarmer 查询农户的缺陷上报列表
func (r *InspectionRepository) FindDefectsByFarmer(ctx context.Context, farmerID string) ([]entity.PumpDefect, error) {
	var recs []entity.PumpDefect
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

// DeleteByWorkOrder 级联删除检验相关记录
func (r *InspectionRepository) DeleteByWorkOrder(ctx context.Context, workOrderID string) error {
	for _, model := range []interface{}{
		&entity.InspectionUnits{},
		&entity.InspectionPhoto{},
		&entity.PumpProgress{},
	} {
		if err := r.db.WithContext(ctx).
			Where("work_order_id = ?", workOrderID).
			Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"errors"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FactoryRepository 工厂/PDI阶段记录仓库
type FactoryRepository struct {
	db *gorm.DB
}

func NewFactoryRepository(db *gorm.DB) *FactoryRepository {
	return &FactoryRepository{db: db}
}

// UpsertManufactured 写入/覆盖工厂生产记录
func (r *FactoryRepository) UpsertManufactured(ctx context.Context, rec *entity.ManufacturedUnits) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hp_3", "hp_5", "hp_7_5", "total", "created_by", "updated_at",
		}),
	}).Create(rec).Error
}

// FindManufactured 查询工厂生产记录; missing record is not an error here,
// readers coalesce it to zero.
func (r *FactoryRepository) FindManufactured(ctx context.Context, workOrderID string) (*entity.ManufacturedUnits, error) {
	var rec entity.ManufacturedUnits
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// UpsertPDI 写入/覆盖PDI检验记录
func (r *FactoryRepository) UpsertPDI(ctx context.Context, rec *entity.PDIVerification) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hp_3", "hp_5", "hp_7_5", "total", "verified_by", "updated_at",
		}),
	}).Create(rec).Error
}

// FindPDI 查询PDI检验记录
func (r *FactoryRepository) FindPDI(ctx context.Context, workOrderID string) (*entity.PDIVerification, error) {
	var rec entity.PDIVerification
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteByWorkOrder 级联删除工厂/PDI记录
func (r *FactoryRepository) DeleteByWorkOrder(ctx context.Context, workOrderID string) error {
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.ManufacturedUnits{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.PDIVerification{}).Error
}

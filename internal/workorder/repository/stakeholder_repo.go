package repository

import (
	"context"
	"errors"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StakeholderRepository 工单干系人/工期仓库
type StakeholderRepository struct {
	db *gorm.DB
}

func NewStakeholderRepository(db *gorm.DB) *StakeholderRepository {
	return &StakeholderRepository{db: db}
}

// Upsert 写入/覆盖工单干系人记录
func (r *StakeholderRepository) Upsert(ctx context.Context, rec *entity.WorkOrderStakeholders) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"factory_contact", "pdi_officer", "warehouse_manager",
			"jsr_officer", "channel_partner", "inspection_officer",
			"updated_at",
		}),
	}).Create(rec).Error
}

// Find 查询工单干系人
func (r *StakeholderRepository) Find(ctx context.Context, workOrderID string) (*entity.WorkOrderStakeholders, error) {
	var rec entity.WorkOrderStakeholders
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindByActor returns the stakeholder rows naming userID in the given
// role column. Callers pass only known column names.
func (r *StakeholderRepository) FindByActor(ctx context.Context, roleColumn, userID string) ([]entity.WorkOrderStakeholders, error) {
	var recs []entity.WorkOrderStakeholders
	err := r.db.WithContext(ctx).
		Where(roleColumn+" = ?", userID).
		Find(&recs).Error
	return recs, err
}

// ReplaceTimelines deletes and rewrites the per-stage duration rows of a
// work order in one shot. Run inside the caller's transaction.
func (r *StakeholderRepository) ReplaceTimelines(ctx context.Context, workOrderID string, timelines []entity.WorkOrderTimeline) error {
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.WorkOrderTimeline{}).Error; err != nil {
		return err
	}
	if len(timelines) == 0 {
		return nil
	}
	for i := range timelines {
		if timelines[i].ID == "" {
			timelines[i].ID = uuid.New().String()[:32]
		}
		timelines[i].WorkOrderID = workOrderID
	}
	return r.db.WithContext(ctx).Create(&timelines).Error
}

// FindTimelines 查询工单的阶段工期
func (r *StakeholderRepository) FindTimelines(ctx context.Context, workOrderID string) ([]entity.WorkOrderTimeline, error) {
	var recs []entity.WorkOrderTimeline
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Find(&recs).Error
	return recs, err
}

// DeleteByWorkOrder 级联删除干系人与工期记录
func (r *StakeholderRepository) DeleteByWorkOrder(ctx context.Context, workOrderID string) error {
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.WorkOrderStakeholders{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.WorkOrderTimeline{}).Error
}

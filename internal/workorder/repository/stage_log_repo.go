package repository

import (
	"context"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StageLogRepository 阶段日志仓库
type StageLogRepository struct {
	db *gorm.DB
}

func NewStageLogRepository(db *gorm.DB) *StageLogRepository {
	return &StageLogRepository{db: db}
}

// Upsert writes the single logical row for (work_order_id, stage),
// overwriting status/quantity/remarks on re-submission.
func (r *StageLogRepository) Upsert(ctx context.Context, log *entity.StageLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}, {Name: "stage"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "completed_quantity", "remarks", "started_at", "completed_at",
		}),
	}).Create(log).Error
}

// MarkCompleted flips the stage row to the given terminal status and
// stamps completed_at, creating the row when the stage was never
// opened so the progress projection cannot show a Pending stage on a
// closed work order.
func (r *StageLogRepository) MarkCompleted(ctx context.Context, workOrderID, stage, status string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&entity.StageLog{}).
		Where("work_order_id = ? AND stage = ?", workOrderID, stage).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entity.StageLog{
		ID:          uuid.New().String()[:32],
		WorkOrderID: workOrderID,
		Stage:       stage,
		Status:      status,
		StartedAt:   &now,
		CompletedAt: &now,
	}).Error
}

// FindByWorkOrder 查询工单的全部阶段日志
func (r *StageLogRepository) FindByWorkOrder(ctx context.Context, workOrderID string) ([]entity.StageLog, error) {
	var logs []entity.StageLog
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Find(&logs).Error
	return logs, err
}

// FindPendingByStage 查询某阶段处于指定状态的日志（看板用）
func (r *StageLogRepository) FindPendingByStage(ctx context.Context, stage, status string, limit int) ([]entity.StageLog, error) {
	var logs []entity.StageLog
	err := r.db.WithContext(ctx).
		Where("stage = ? AND status = ?", stage, status).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// DeleteByWorkOrder 删除工单的阶段日志（级联删除用）
func (r *StageLogRepository) DeleteByWorkOrder(ctx context.Context, workOrderID string) error {
	return r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.StageLog{}).Error
}

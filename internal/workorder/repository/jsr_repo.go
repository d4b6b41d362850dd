package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JSRRepository JSR核验与仓库调度记录仓库
type JSRRepository struct {
	db *gorm.DB
}

func NewJSRRepository(db *gorm.DB) *JSRRepository {
	return &JSRRepository{db: db}
}

// UpsertVerification merges the non-zero quantity buckets into the
// (work_order_id, jsr_id) row. Buckets absent from a follow-up dispatch
// keep their stored values and total_quantity is recomputed from the
// merged row; status is written only on first insert so an Assigned row
// is not silently reset by a quantity update.
func (r *JSRRepository) UpsertVerification(ctx context.Context, rec *entity.JSRVerification) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	assigns := map[string]interface{}{"updated_at": time.Now()}
	terms := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	for _, b := range []struct {
		col string
		qty int
	}{{"hp_3", rec.HP3}, {"hp_5", rec.HP5}, {"hp_7_5", rec.HP75}} {
		if b.qty > 0 {
			assigns[b.col] = b.qty
			terms = append(terms, "?")
			args = append(args, b.qty)
		} else {
			// Column references in DO UPDATE SET read the stored row.
			terms = append(terms, b.col)
		}
	}
	assigns["total_quantity"] = gorm.Expr(strings.Join(terms, " + "), args...)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "work_order_id"}, {Name: "jsr_id"}},
		DoUpdates: clause.Assignments(assigns),
	}).Create(rec).Error
}

// CreateVerificationIfAbsent inserts the first JSR assignment for a
// work order; it is a no-op when any verification row already exists.
func (r *JSRRepository) CreateVerificationIfAbsent(ctx context.Context, rec *entity.JSRVerification) (created bool, err error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.JSRVerification{}).
		Where("work_order_id = ?", rec.WorkOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return true, r.db.WithContext(ctx).Create(rec).Error
}

// FindVerificationByJSR 查询某JSR在某工单上的核验记录
func (r *JSRRepository) FindVerificationByJSR(ctx context.Context, workOrderID, jsrID string) (*entity.JSRVerification, error) {
	var rec entity.JSRVerification
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND jsr_id = ?", workOrderID, jsrID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateVerificationByJSR updates one officer's verification row.
func (r *JSRRepository) UpdateVerificationByJSR(ctx context.Context, workOrderID, jsrID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&entity.JSRVerification{}).
		Where("work_order_id = ? AND jsr_id = ?", workOrderID, jsrID).
		Updates(updates).Error
}

// UpdateVerificationStage updates the installation fields of every
// verification row of a work order.
func (r *JSRRepository) UpdateVerificationStage(ctx context.Context, workOrderID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&entity.JSRVerification{}).
		Where("work_order_id = ?", workOrderID).
		Updates(updates).Error
}

// FindVerifications 查询工单的JSR核验记录
func (r *JSRRepository) FindVerifications(ctx context.Context, workOrderID string) ([]entity.JSRVerification, error) {
	var recs []entity.JSRVerification
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Find(&recs).Error
	return recs, err
}

// FindAllVerifications 按分配时间倒序查询全部JSR核验记录（看板用）
func (r *JSRRepository) FindAllVerifications(ctx context.Context) ([]entity.JSRVerification, error) {
	var recs []entity.JSRVerification
	err := r.db.WithContext(ctx).
		Order("assigned_at DESC").
		Find(&recs).Error
	return recs, err
}

// JSRUnitSums 每工单分配给某JSR的单元合计
type JSRUnitSums struct {
	WorkOrderID string `json:"work_order_id" gorm:"column:work_order_id"`
	Units3HP    int    `json:"units_3hp" gorm:"column:units_3hp"`
	Units5HP    int    `json:"units_5hp" gorm:"column:units_5hp"`
	Units75HP   int    `json:"units_7_5hp" gorm:"column:units_7_5hp"`
	TotalUnits  int    `json:"total_units" gorm:"column:total_units"`
}

// SumVerificationsByJSR aggregates assigned units per work order for
// one officer. No rows means nothing assigned, never an error.
func (r *JSRRepository) SumVerificationsByJSR(ctx context.Context, jsrID string) ([]JSRUnitSums, error) {
	var sums []JSRUnitSums
	err := r.db.WithContext(ctx).
		Model(&entity.JSRVerification{}).
		Select("work_order_id, SUM(hp_3) AS units_3hp, SUM(hp_5) AS units_5hp, SUM(hp_7_5) AS units_7_5hp, SUM(hp_3 + hp_5 + hp_7_5) AS total_units").
		Where("jsr_id = ?", jsrID).
		Group("work_order_id").
		Scan(&sums).Error
	return sums, err
}

// SumVerifiedByJSR 某JSR已核验单元合计
func (r *JSRRepository) SumVerifiedByJSR(ctx context.Context, jsrID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entity.JSRVerification{}).
		Select("COALESCE(SUM(verified_quantity), 0)").
		Where("jsr_id = ?", jsrID).
		Scan(&total).Error
	return total, err
}

// UpsertDispatch 写入/覆盖发往仓库记录
func (r *JSRRepository) UpsertDispatch(ctx context.Context, rec *entity.WarehouseDispatch) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "work_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"warehouse_location", "units_3hp", "units_5hp", "units_7_5hp",
			"dispatched", "dispatched_by", "updated_at",
		}),
	}).Create(rec).Error
}

// FindDispatch 查询发往仓库记录
func (r *JSRRepository) FindDispatch(ctx context.Context, workOrderID string) (*entity.WarehouseDispatch, error) {
	var rec entity.WarehouseDispatch
	err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// DeleteByWorkOrder 级联删除JSR相关记录
func (r *JSRRepository) DeleteByWorkOrder(ctx context.Context, workOrderID string) error {
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.JSRVerification{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&entity.WarehouseDispatch{}).Error
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"gorm.io/gorm"
)

// WorkOrderRepository 工单仓库
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// Create 创建工单
func (r *WorkOrderRepository) Create(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

// FindByID 根据ID查找工单
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// Resolve accepts either a work order id or a human-readable order
// number (e.g. "WO02") and returns the work order.
func (r *WorkOrderRepository) Resolve(ctx context.Context, idOrNumber string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).
		Where("id = ? OR order_number = ?", idOrNumber, idOrNumber).
		First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// FindAll 查询工单列表
func (r *WorkOrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.WorkOrder, int64, error) {
	var items []entity.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if region := filters["region"]; region != "" {
		query = query.Where("region = ?", region)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindEvery 查询全部工单 (register export).
func (r *WorkOrderRepository) FindEvery(ctx context.Context) ([]entity.WorkOrder, error) {
	var items []entity.WorkOrder
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error
	return items, err
}

// StatusCount 状态计数
type StatusCount struct {
	Status string `json:"status" gorm:"column:status"`
	Count  int64  `json:"count" gorm:"column:count"`
}

// CountByStatus 按状态统计工单数 (summary dashboards).
func (r *WorkOrderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&entity.WorkOrder{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	return counts, err
}

// Save 保存工单
func (r *WorkOrderRepository) Save(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Save(wo).Error
}

// UpdateStatus 更新工单状态
func (r *WorkOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&entity.WorkOrder{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the work order row only. Dependent rows are removed by
// the caller inside the same transaction.
func (r *WorkOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.WorkOrder{}).Error
}

// GenerateOrderNumber 生成工单编号 WO-{year}-{4位}
func (r *WorkOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("WO-%s-", year)

	var maxNumber string
	err := r.db.WithContext(ctx).
		Model(&entity.WorkOrder{}).
		Select("COALESCE(MAX(order_number), '')").
		Where("order_number LIKE ?", prefix+"%").
		Scan(&maxNumber).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxNumber != "" {
		fmt.Sscanf(maxNumber, "WO-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("WO-%s-%04d", year, seq), nil
}

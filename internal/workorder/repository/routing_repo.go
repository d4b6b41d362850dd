package repository

import (
	"context"
	"errors"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoutingRepository 调度路由仓库 — warehouse→JSR mapping plus the user
// lookups the routers and dashboards need.
type RoutingRepository struct {
	db *gorm.DB
}

func NewRoutingRepository(db *gorm.DB) *RoutingRepository {
	return &RoutingRepository{db: db}
}

// FindWarehouseJSR resolves the JSR officer mapped to a warehouse
// location. ErrNotFound means no mapping is configured.
func (r *RoutingRepository) FindWarehouseJSR(ctx context.Context, warehouseLocation string) (*entity.WarehouseJSRMapping, error) {
	var rec entity.WarehouseJSRMapping
	err := r.db.WithContext(ctx).
		Where("warehouse_location = ?", warehouseLocation).
		Order("id ASC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// UpsertWarehouseJSR 写入仓库→JSR映射 (configuration surface).
func (r *RoutingRepository) UpsertWarehouseJSR(ctx context.Context, rec *entity.WarehouseJSRMapping) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:32]
	}
	var existing entity.WarehouseJSRMapping
	err := r.db.WithContext(ctx).
		Where("warehouse_location = ?", rec.WarehouseLocation).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(rec).Error
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entity.WarehouseJSRMapping{}).
		Where("id = ?", existing.ID).
		Update("jsr_id", rec.JSRID).Error
}

// FindFieldJSR resolves the JSR officer covering a (district, taluka,
// village) area. Ties break to the lowest user id so repeated lookups
// stay deterministic. ErrNotFound means no officer covers the area.
func (r *RoutingRepository) FindFieldJSR(ctx context.Context, district, taluka, village string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND district = ? AND taluka = ? AND village = ?",
			entity.RoleJSR, district, taluka, village).
		Order("id ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID 根据ID查找用户
func (r *RoutingRepository) FindUserByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUsersByRole 按角色查询用户 (dropdowns).
func (r *RoutingRepository) FindUsersByRole(ctx context.Context, role string) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

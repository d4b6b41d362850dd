package service

import (
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	WorkOrder    *WorkOrderService
	Stage        *StageService
	Distribution *DistributionService
	Inspection   *InspectionService
	Dashboard    *DashboardService
}

// NewServices 创建服务集合. rdb may be nil; dashboards then skip the
// cache.
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client) *Services {
	return &Services{
		WorkOrder:    NewWorkOrderService(db, repos),
		Stage:        NewStageService(db, repos),
		Distribution: NewDistributionService(db, repos),
		Inspection:   NewInspectionService(db, repos),
		Dashboard:    NewDashboardService(db, repos, rdb),
	}
}

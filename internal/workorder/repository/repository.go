package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 工单仓库集合. Construct over a transaction handle to make
// every member operate inside that transaction.
type Repositories struct {
	WorkOrder    *WorkOrderRepository
	StageLog     *StageLogRepository
	Factory      *FactoryRepository
	JSR          *JSRRepository
	Distribution *DistributionRepository
	Inspection   *InspectionRepository
	Stakeholder  *StakeholderRepository
	Routing      *RoutingRepository
}

// NewRepositories 创建工单仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WorkOrder:    NewWorkOrderRepository(db),
		StageLog:     NewStageLogRepository(db),
		Factory:      NewFactoryRepository(db),
		JSR:          NewJSRRepository(db),
		Distribution: NewDistributionRepository(db),
		Inspection:   NewInspectionRepository(db),
		Stakeholder:  NewStakeholderRepository(db),
		Routing:      NewRoutingRepository(db),
	}
}

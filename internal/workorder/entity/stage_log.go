package entity

import "time"

// StageLog 工单阶段日志
//
// One logical row per (work_order_id, stage); re-submissions update the
// row in place rather than appending history.
type StageLog struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex:uniq_stage_log,priority:1"`
	Stage       string `json:"stage" gorm:"size:20;not null;uniqueIndex:uniq_stage_log,priority:2"`

	Status            string `json:"status" gorm:"size:20;default:Pending"`
	CompletedQuantity int    `json:"completed_quantity" gorm:"default:0"`
	Remarks           string `json:"remarks" gorm:"type:text"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (StageLog) TableName() string {
	return "workorder_stage_logs"
}

// 流水线阶段名
const (
	StageFactory      = "Factory"
	StagePDI          = "PDI"
	StageWarehouse    = "Warehouse"
	StageJSR          = "JSR"
	StageCP           = "CP"
	StageInstallation = "Installation"
	StageInspection   = "Inspection"
)

// 阶段内状态
const (
	StageStatusPending    = "Pending"
	StageStatusAssigned   = "Assigned"
	StageStatusInProgress = "InProgress"
	StageStatusVerified   = "Verified"
	StageStatusCompleted  = "Completed"
)

// ProgressStages is the fixed six-stage view every progress projection
// reports, in pipeline order.
var ProgressStages = []struct {
	Stage string
	Label string
}{
	{StageFactory, "Factory Assigned"},
	{StageWarehouse, "Dispatch to Warehouse"},
	{StageJSR, "JSR Done"},
	{StageCP, "CP Assigned"},
	{StageInstallation, "Installed at Farm"},
	{StageInspection, "Farm Inspection"},
}

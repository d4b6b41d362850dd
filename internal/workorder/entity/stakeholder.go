package entity

import "time"

// WorkOrderStakeholders 工单干系人 — one row per work order naming the
// designated actor for each pipeline role. Read by the dispatch router
// and the per-role dashboards.
type WorkOrderStakeholders struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex"`

	FactoryContact    string `json:"factory_contact" gorm:"size:32"`
	PDIOfficer        string `json:"pdi_officer" gorm:"size:32"`
	WarehouseManager  string `json:"warehouse_manager" gorm:"size:32"`
	JSROfficer        string `json:"jsr_officer" gorm:"size:32"`
	ChannelPartner    string `json:"channel_partner" gorm:"size:32"`
	InspectionOfficer string `json:"inspection_officer" gorm:"size:32"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkOrderStakeholders) TableName() string {
	return "workorder_stakeholders"
}

// WorkOrderTimeline 阶段工期 — duration budget per stage.
type WorkOrderTimeline struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex:uniq_timeline,priority:1"`
	Stage       string `json:"stage" gorm:"size:20;not null;uniqueIndex:uniq_timeline,priority:2"`

	DurationDays int `json:"duration_days" gorm:"not null"`
}

func (WorkOrderTimeline) TableName() string {
	return "workorder_timelines"
}

// WarehouseJSRMapping 仓库→JSR静态映射 — owned by configuration, not by
// any workflow actor.
type WarehouseJSRMapping struct {
	ID                string `json:"id" gorm:"primaryKey;size:32"`
	WarehouseLocation string `json:"warehouse_location" gorm:"size:100;not null;index"`
	JSRID             string `json:"jsr_id" gorm:"size:32;not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (WarehouseJSRMapping) TableName() string {
	return "warehouse_jsr_mapping"
}

package entity

import "time"

// ManufacturedUnits 工厂生产记录 — one row per work order, upserted.
type ManufacturedUnits struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex"`

	HP3   int `json:"hp_3" gorm:"column:hp_3;default:0"`
	HP5   int `json:"hp_5" gorm:"column:hp_5;default:0"`
	HP75  int `json:"hp_7_5" gorm:"column:hp_7_5;default:0"`
	Total int `json:"total" gorm:"default:0"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ManufacturedUnits) TableName() string {
	return "units_manufactured"
}

// PDIVerification 发货前检验记录 — one row per work order, upserted.
type PDIVerification struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex"`

	HP3   int `json:"hp_3" gorm:"column:hp_3;default:0"`
	HP5   int `json:"hp_5" gorm:"column:hp_5;default:0"`
	HP75  int `json:"hp_7_5" gorm:"column:hp_7_5;default:0"`
	Total int `json:"total" gorm:"default:0"`

	VerifiedBy string    `json:"verified_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (PDIVerification) TableName() string {
	return "pdi_verification"
}

// JSRVerification 安装核验记录 — scoped per officer, upserted on
// (work_order_id, jsr_id).
type JSRVerification struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex:uniq_jsr_verification,priority:1"`
	JSRID       string `json:"jsr_id" gorm:"size:32;uniqueIndex:uniq_jsr_verification,priority:2"`

	HP3           int `json:"hp_3" gorm:"column:hp_3;default:0"`
	HP5           int `json:"hp_5" gorm:"column:hp_5;default:0"`
	HP75          int `json:"hp_7_5" gorm:"column:hp_7_5;default:0"`
	TotalQuantity int `json:"total_quantity" gorm:"default:0"`

	VerifiedQuantity int    `json:"verified_quantity" gorm:"default:0"`
	Status           string `json:"status" gorm:"size:20;default:Pending"`

	LinemanName string `json:"lineman_name" gorm:"size:100"`
	FarmerName  string `json:"farmer_name" gorm:"size:100"`
	State       string `json:"state" gorm:"size:100"`
	District    string `json:"district" gorm:"size:100"`
	Taluka      string `json:"taluka" gorm:"size:100"`
	Village     string `json:"village" gorm:"size:100"`

	// Opaque file-store references.
	InstallationPhoto      string `json:"installation_photo" gorm:"size:500"`
	SitePhoto              string `json:"site_photo" gorm:"size:500"`
	InstallationSitePhoto  string `json:"installation_site_photo" gorm:"size:500"`
	LinemanInstallationSet string `json:"lineman_installation_set" gorm:"size:500"`
	SetupClosePhoto        string `json:"setup_close_photo" gorm:"size:500"`

	AssignedAt *time.Time `json:"assigned_at"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (JSRVerification) TableName() string {
	return "jsr_verification"
}

// WarehouseDispatch 发往仓库记录 — one row per work order, upserted.
type WarehouseDispatch struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex"`

	WarehouseLocation string `json:"warehouse_location" gorm:"size:100;not null"`

	Units3HP  int `json:"units_3hp" gorm:"column:units_3hp;default:0"`
	Units5HP  int `json:"units_5hp" gorm:"column:units_5hp;default:0"`
	Units75HP int `json:"units_7_5hp" gorm:"column:units_7_5hp;default:0"`

	Dispatched bool `json:"dispatched" gorm:"default:false"`

	DispatchedBy string    `json:"dispatched_by" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (WarehouseDispatch) TableName() string {
	return "jsr_dispatch_to_warehouse"
}

// WarehouseUnits 仓库收货记录 — scoped per manager, upserted on
// (work_order_id, created_by).
type WarehouseUnits struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex:uniq_warehouse_units,priority:1"`

	HP3   int `json:"hp_3" gorm:"column:hp_3;default:0"`
	HP5   int `json:"hp_5" gorm:"column:hp_5;default:0"`
	HP75  int `json:"hp_7_5" gorm:"column:hp_7_5;default:0"`
	Total int `json:"total" gorm:"default:0"`

	CreatedBy string    `json:"created_by" gorm:"size:32;uniqueIndex:uniq_warehouse_units,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WarehouseUnits) TableName() string {
	return "warehouse_units"
}

// CPUnits 渠道商收货记录 — scoped per partner, upserted on
// (work_order_id, created_by).
type CPUnits struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex:uniq_cp_units,priority:1"`

	HP3   int `json:"hp_3" gorm:"column:hp_3;default:0"`
	HP5   int `json:"hp_5" gorm:"column:hp_5;default:0"`
	HP75  int `json:"hp_7_5" gorm:"column:hp_7_5;default:0"`
	Total int `json:"total" gorm:"default:0"`

	CreatedBy string    `json:"created_by" gorm:"size:32;uniqueIndex:uniq_cp_units,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CPUnits) TableName() string {
	return "cp_units"
}

// CPAssignment 仓库→渠道商分配 — append-only batch rows.
type CPAssignment struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;index"`

	Region   string `json:"region" gorm:"size:100;not null"`
	Quantity int    `json:"quantity" gorm:"not null"`
	Notes    string `json:"notes" gorm:"type:text"`

	AssignedBy string    `json:"assigned_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CPAssignment) TableName() string {
	return "warehouse_stage_assignments"
}

// FarmerAssignment 渠道商→农户分配 — append-only rows.
type FarmerAssignment struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;index"`

	FarmerName string `json:"farmer_name" gorm:"size:100;not null"`
	HPUnit     string `json:"hp_unit" gorm:"size:10;not null"`
	Notes      string `json:"notes" gorm:"type:text"`
	Status     string `json:"status" gorm:"size:20;default:Assigned"`

	AssignedBy string    `json:"assigned_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FarmerAssignment) TableName() string {
	return "cp_stage_assignments"
}

// InspectionUnits 现场检验记录 — scoped per officer, upserted on
// (work_order_id, inspected_by).
type InspectionUnits struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;uniqueIndex:uniq_inspection_units,priority:1"`

	HP3            int `json:"hp_3" gorm:"column:hp_3;default:0"`
	HP5            int `json:"hp_5" gorm:"column:hp_5;default:0"`
	HP75           int `json:"hp_7_5" gorm:"column:hp_7_5;default:0"`
	TotalInspected int `json:"total_inspected" gorm:"default:0"`

	InspectedBy string    `json:"inspected_by" gorm:"size:32;uniqueIndex:uniq_inspection_units,priority:2"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (InspectionUnits) TableName() string {
	return "inspection_units"
}

// InspectionPhoto 检验照片 — append-only rows of opaque references.
type InspectionPhoto struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;index"`

	SitePhoto    string `json:"site_photo" gorm:"size:500"`
	LinemanPhoto string `json:"lineman_photo" gorm:"size:500"`
	CloseUpPhoto string `json:"close_up_photo" gorm:"size:500"`
	Notes        string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (InspectionPhoto) TableName() string {
	return "inspection_photos"
}

// PumpProgress 泵机进度时间线 — append-only stage labels per farmer.
type PumpProgress struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	WorkOrderID string `json:"work_order_id" gorm:"size:32;not null;index"`
	FarmerID    string `json:"farmer_id" gorm:"size:32;index"`

	Stage   string `json:"stage" gorm:"size:50;not null"`
	Remarks string `json:"remarks" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (PumpProgress) TableName() string {
	return "pump_progress"
}

// PumpDefect 农户缺陷上报.
type PumpDefect struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	FarmerID string `json:"farmer_id" gorm:"size:32;not null;index"`

	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text;not null"`

	Photo1 string `json:"photo_1" gorm:"size:500"`
	Photo2 string `json:"photo_2" gorm:"size:500"`
	Photo3 string `json:"photo_3" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
}

func (PumpDefect) TableName() string {
	return "pump_defects"
}

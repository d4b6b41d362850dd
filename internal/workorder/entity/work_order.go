package entity

import "time"

// WorkOrder 多方泵组生产交付工单
//
// A work order carries per-variant target quantities for the three pump
// variants (3HP/5HP/7.5HP). TotalQuantity always equals the sum of the
// three buckets; every stage submission reconciles against it.
type WorkOrder struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	OrderNumber string `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	Title       string `json:"title" gorm:"size:200;not null"`
	Region      string `json:"region" gorm:"size:100"`

	Quantity3HP  int `json:"quantity_3hp" gorm:"column:quantity_3hp;default:0"`
	Quantity5HP  int `json:"quantity_5hp" gorm:"column:quantity_5hp;default:0"`
	Quantity75HP int `json:"quantity_7_5hp" gorm:"column:quantity_7_5hp;default:0"`

	TotalQuantity int `json:"total_quantity" gorm:"not null"`

	Status    string     `json:"status" gorm:"size:40;default:pending"`
	StartDate *time.Time `json:"start_date"`

	// Opaque reference returned by the file store; never interpreted here.
	FarmerListFile string `json:"farmer_list_file" gorm:"size:500"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

// 工单状态
const (
	StatusPending                 = "pending"
	StatusManufacturingInProgress = "manufacturing_in_progress"
	StatusJSRInProgress           = "jsr_in_progress"
	StatusWarehouseUnitsReceived  = "warehouse_units_received"
	StatusCPUnitsReceived         = "cp_units_received"
	StatusAssignedToCP            = "assigned_to_cp"
	StatusAssignedToFarmer        = "assigned_to_farmer"
	StatusInspected               = "inspected"
)

// StageEvent is a stage submission that may advance a work order.
type StageEvent string

const (
	EventManufactured      StageEvent = "manufactured"
	EventPDIVerified       StageEvent = "pdi_verified"
	EventWarehouseReceived StageEvent = "warehouse_received"
	EventCPReceived        StageEvent = "cp_received"
	EventAssignedToCP      StageEvent = "assigned_to_cp"
	EventAssignedToFarmer  StageEvent = "assigned_to_farmer"
	EventInspected         StageEvent = "inspected"
)

// ValidWorkOrderTransitions maps (current status, stage event) to the
// next status. A missing pair is an invalid transition. Re-submitting
// the stage that produced the current status is a permitted self-loop:
// stage records are idempotent upserts, so the resulting state is
// unchanged.
var ValidWorkOrderTransitions = map[string]map[StageEvent]string{
	StatusPending: {
		EventManufactured: StatusManufacturingInProgress,
	},
	StatusManufacturingInProgress: {
		EventManufactured: StatusManufacturingInProgress,
		EventPDIVerified:  StatusJSRInProgress,
	},
	StatusJSRInProgress: {
		EventPDIVerified:       StatusJSRInProgress,
		EventWarehouseReceived: StatusWarehouseUnitsReceived,
	},
	StatusWarehouseUnitsReceived: {
		EventWarehouseReceived: StatusWarehouseUnitsReceived,
		EventAssignedToCP:      StatusAssignedToCP,
		EventCPReceived:        StatusCPUnitsReceived,
	},
	StatusCPUnitsReceived: {
		EventCPReceived:       StatusCPUnitsReceived,
		EventAssignedToCP:     StatusAssignedToCP,
		EventAssignedToFarmer: StatusAssignedToFarmer,
	},
	StatusAssignedToCP: {
		EventAssignedToCP:     StatusAssignedToCP,
		EventCPReceived:       StatusCPUnitsReceived,
		EventAssignedToFarmer: StatusAssignedToFarmer,
	},
	StatusAssignedToFarmer: {
		EventAssignedToFarmer: StatusAssignedToFarmer,
		EventInspected:        StatusInspected,
	},
	StatusInspected: {
		EventInspected: StatusInspected,
	},
}

// NextStatus resolves the status a work order moves to when event
// fires in the current status. ok is false for invalid transitions.
func NextStatus(current string, event StageEvent) (next string, ok bool) {
	events, found := ValidWorkOrderTransitions[current]
	if !found {
		return "", false
	}
	next, ok = events[event]
	return next, ok
}

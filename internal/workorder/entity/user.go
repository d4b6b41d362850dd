package entity

import "time"

// User 平台用户. The auth boundary issues (id, role); this core reads
// users only for dispatch routing and dashboard joins.
type User struct {
	ID    string `json:"id" gorm:"primaryKey;size:32"`
	Name  string `json:"name" gorm:"size:100;not null"`
	Email string `json:"email" gorm:"size:200;uniqueIndex"`
	Phone string `json:"phone" gorm:"size:20"`

	Role string `json:"role" gorm:"size:30;not null;index"`

	// Field location, used to route factory output to the matching JSR.
	State    string `json:"state" gorm:"size:100"`
	District string `json:"district" gorm:"size:100"`
	Taluka   string `json:"taluka" gorm:"size:100"`
	Village  string `json:"village" gorm:"size:100"`

	Status    string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// 用户角色
const (
	RoleAdmin             = "admin"
	RoleFactory           = "factory"
	RolePDIOfficer        = "pdi_officer"
	RoleWarehouseManager  = "warehouse_manager"
	RoleJSR               = "JSR"
	RoleChannelPartner    = "channel_partner"
	RoleFarmer            = "farmer"
	RoleInspectionOfficer = "inspection_officer"
)

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const summaryCacheKey = "pumptrack:dashboard:summary"
const summaryCacheTTL = time.Minute

// DashboardService 角色看板服务. Read-only projections; a stakeholder
// with zero assigned orders gets a zeroed response, never an error.
type DashboardService struct {
	db    *gorm.DB
	repos *repository.Repositories
	rdb   *redis.Client
}

func NewDashboardService(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client) *DashboardService {
	return &DashboardService{db: db, repos: repos, rdb: rdb}
}

// AdminSummary 管理端汇总, cached in redis with a short TTL when a
// client is configured.
func (s *DashboardService) AdminSummary(ctx context.Context) (*SummaryResult, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, summaryCacheKey).Result(); err == nil {
			var result SummaryResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	counts, err := s.repos.WorkOrder.CountByStatus(ctx)
	if err != nil {
		return nil, wrap(err, "count work orders")
	}
	result := &SummaryResult{ByStatus: make(map[string]int64)}
	for _, c := range counts {
		result.ByStatus[c.Status] = c.Count
		result.TotalOrders += c.Count
	}
	orders, err := s.repos.WorkOrder.FindEvery(ctx)
	if err != nil {
		return nil, wrap(err, "load work orders")
	}
	for _, wo := range orders {
		result.TotalQuantity += wo.TotalQuantity
	}

	if s.rdb != nil {
		if data, err := json.Marshal(result); err == nil {
			s.rdb.Set(ctx, summaryCacheKey, data, summaryCacheTTL)
		}
	}
	return result, nil
}

// InvalidateSummary drops the cached summary after a stage write.
func (s *DashboardService) InvalidateSummary(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, summaryCacheKey)
	}
}

// FactoryOrderView 工厂看板单行
type FactoryOrderView struct {
	WorkOrder    entity.WorkOrder `json:"work_order"`
	Manufactured int              `json:"manufactured"`
	Remaining    int              `json:"remaining"`
}

// FactoryDashboard 工厂看板 — orders still in the manufacturing phase.
func (s *DashboardService) FactoryDashboard(ctx context.Context) ([]FactoryOrderView, error) {
	views := []FactoryOrderView{}
	for _, status := range []string{entity.StatusPending, entity.StatusManufacturingInProgress} {
		orders, _, err := s.repos.WorkOrder.FindAll(ctx, 1, 200, map[string]string{"status": status})
		if err != nil {
			return nil, wrap(err, "list work orders")
		}
		for _, wo := range orders {
			view := FactoryOrderView{WorkOrder: wo, Remaining: wo.TotalQuantity}
			rec, err := s.repos.Factory.FindManufactured(ctx, wo.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, wrap(err, "find manufactured units")
			}
			if rec != nil {
				view.Manufactured = rec.Total
				view.Remaining = wo.TotalQuantity - rec.Total
			}
			views = append(views, view)
		}
	}
	return views, nil
}

// ReceiptOrderView 收货看板单行
type ReceiptOrderView struct {
	WorkOrder entity.WorkOrder `json:"work_order"`
	Received  int              `json:"received"`
	Remaining int              `json:"remaining"`
}

// WarehouseDashboard 仓库看板 — received vs target per assigned order.
func (s *DashboardService) WarehouseDashboard(ctx context.Context, userID string) ([]ReceiptOrderView, error) {
	orders, err := s.assignedWorkOrders(ctx, "warehouse_manager", userID)
	if err != nil {
		return nil, err
	}
	views := []ReceiptOrderView{}
	for _, wo := range orders {
		view := ReceiptOrderView{WorkOrder: wo, Remaining: wo.TotalQuantity}
		rec, err := s.repos.Distribution.FindWarehouseUnits(ctx, wo.ID, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, wrap(err, "find warehouse units")
		}
		if rec != nil {
			view.Received = rec.Total
			view.Remaining = wo.TotalQuantity - rec.Total
		}
		views = append(views, view)
	}
	return views, nil
}

// CPDashboard 渠道商看板
func (s *DashboardService) CPDashboard(ctx context.Context, userID string) ([]ReceiptOrderView, error) {
	orders, err := s.assignedWorkOrders(ctx, "channel_partner", userID)
	if err != nil {
		return nil, err
	}
	views := []ReceiptOrderView{}
	for _, wo := range orders {
		view := ReceiptOrderView{WorkOrder: wo, Remaining: wo.TotalQuantity}
		rec, err := s.repos.Distribution.FindCPUnits(ctx, wo.ID, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, wrap(err, "find cp units")
		}
		if rec != nil {
			view.Received = rec.Total
			view.Remaining = wo.TotalQuantity - rec.Total
		}
		views = append(views, view)
	}
	return views, nil
}

// JSRDashboardResult JSR看板
type JSRDashboardResult struct {
	AssignedOrders int                      `json:"assigned_orders"`
	TotalAssigned  int                      `json:"total_assigned"`
	TotalVerified  int                      `json:"total_verified"`
	Remaining      int                      `json:"remaining"`
	Orders         []repository.JSRUnitSums `json:"orders"`
	Recent         []entity.JSRVerification `json:"recent"`
}

// JSRDashboard JSR看板 — per-order unit sums plus verified/remaining.
func (s *DashboardService) JSRDashboard(ctx context.Context, jsrID string) (*JSRDashboardResult, error) {
	sums, err := s.repos.JSR.SumVerificationsByJSR(ctx, jsrID)
	if err != nil {
		return nil, wrap(err, "sum JSR verifications")
	}
	verified, err := s.repos.JSR.SumVerifiedByJSR(ctx, jsrID)
	if err != nil {
		return nil, wrap(err, "sum verified units")
	}

	result := &JSRDashboardResult{
		AssignedOrders: len(sums),
		TotalVerified:  verified,
		Orders:         sums,
		Recent:         []entity.JSRVerification{},
	}
	for _, row := range sums {
		result.TotalAssigned += row.TotalUnits
	}
	result.Remaining = result.TotalAssigned - verified

	recent, err := s.repos.JSR.FindAllVerifications(ctx)
	if err != nil {
		return nil, wrap(err, "list verifications")
	}
	for _, r := range recent {
		if r.JSRID == jsrID {
			result.Recent = append(result.Recent, r)
			if len(result.Recent) == 10 {
				break
			}
		}
	}
	return result, nil
}

// InspectionDashboardResult 检验看板
type InspectionDashboardResult struct {
	AssignedOrders int                `json:"assigned_orders"`
	TotalInspected int                `json:"total_inspected"`
	Orders         []ReceiptOrderView `json:"orders"`
}

// InspectionDashboard 检验看板
func (s *DashboardService) InspectionDashboard(ctx context.Context, userID string) (*InspectionDashboardResult, error) {
	orders, err := s.assignedWorkOrders(ctx, "inspection_officer", userID)
	if err != nil {
		return nil, err
	}
	inspected, err := s.repos.Inspection.SumInspected(ctx, userID)
	if err != nil {
		return nil, wrap(err, "sum inspected units")
	}

	result := &InspectionDashboardResult{
		AssignedOrders: len(orders),
		TotalInspected: inspected,
		Orders:         []ReceiptOrderView{},
	}
	for _, wo := range orders {
		view := ReceiptOrderView{WorkOrder: wo, Remaining: wo.TotalQuantity}
		rec, err := s.repos.Inspection.FindUnits(ctx, wo.ID, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, wrap(err, "find inspection units")
		}
		if rec != nil {
			view.Received = rec.TotalInspected
			view.Remaining = wo.TotalQuantity - rec.TotalInspected
		}
		result.Orders = append(result.Orders, view)
	}
	return result, nil
}

// 角色 → 干系人列名
var stakeholderColumns = map[string]string{
	entity.RoleFactory:           "factory_contact",
	entity.RolePDIOfficer:        "pdi_officer",
	entity.RoleWarehouseManager:  "warehouse_manager",
	entity.RoleJSR:               "jsr_officer",
	entity.RoleChannelPartner:    "channel_partner",
	entity.RoleInspectionOfficer: "inspection_officer",
}

// AssignedOrders lists the work orders where the caller is the named
// stakeholder for their role (order dropdowns).
func (s *DashboardService) AssignedOrders(ctx context.Context, role, userID string) ([]entity.WorkOrder, error) {
	column, ok := stakeholderColumns[role]
	if !ok {
		return nil, validationErr("role %s has no stakeholder assignments", role)
	}
	return s.assignedWorkOrders(ctx, column, userID)
}

func (s *DashboardService) assignedWorkOrders(ctx context.Context, column, userID string) ([]entity.WorkOrder, error) {
	rows, err := s.repos.Stakeholder.FindByActor(ctx, column, userID)
	if err != nil {
		return nil, wrap(err, "find stakeholder assignments")
	}
	orders := []entity.WorkOrder{}
	for _, row := range rows {
		wo, err := s.repos.WorkOrder.FindByID(ctx, row.WorkOrderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, wrap(err, "find work order")
		}
		orders = append(orders, *wo)
	}
	return orders, nil
}

// ListUsersByRole 按角色列用户 (assignment dropdowns).
func (s *DashboardService) ListUsersByRole(ctx context.Context, role string) ([]entity.User, error) {
	users, err := s.repos.Routing.FindUsersByRole(ctx, role)
	if err != nil {
		return nil, wrap(err, "list users")
	}
	return users, nil
}

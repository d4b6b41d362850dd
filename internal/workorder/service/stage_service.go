package service

import (
	"context"
	"errors"
	"time"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"gorm.io/gorm"
)

// StageService 工厂/PDI/JSR阶段提交服务
type StageService struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func NewStageService(db *gorm.DB, repos *repository.Repositories) *StageService {
	return &StageService{db: db, repos: repos}
}

func (s *StageService) resolve(ctx context.Context, idOrNumber string) (*entity.WorkOrder, error) {
	wo, err := s.repos.WorkOrder.Resolve(ctx, idOrNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("work order %s not found", idOrNumber)
		}
		return nil, wrap(err, "find work order")
	}
	return wo, nil
}

// transition resolves the next status or rejects with Conflict before
// any write happens.
func transition(wo *entity.WorkOrder, event entity.StageEvent) (string, error) {
	next, ok := entity.NextStatus(wo.Status, event)
	if !ok {
		return "", conflictErr("event %s is not valid in status %s", event, wo.Status)
	}
	return next, nil
}

// StageSubmissionRequest 阶段数量提交请求
type StageSubmissionRequest struct {
	HP3     int    `json:"hp_3"`
	HP5     int    `json:"hp_5"`
	HP75    int    `json:"hp_7_5"`
	Total   int    `json:"total"`
	Remarks string `json:"remarks"`
}

func (r *StageSubmissionRequest) breakdown() Breakdown {
	return Breakdown{HP3: r.HP3, HP5: r.HP5, HP75: r.HP75}
}

// SubmitManufacturedUnits 提交工厂生产数量. Re-submission overwrites the
// single record and leaves the status unchanged.
func (s *StageService) SubmitManufacturedUnits(ctx context.Context, userID, idOrNumber string, req *StageSubmissionRequest) (*entity.WorkOrder, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	b := req.breakdown()
	if err := validateBreakdown(b, req.Total); err != nil {
		return nil, err
	}
	if err := checkTarget(b, wo); err != nil {
		return nil, err
	}
	next, err := transition(wo, entity.EventManufactured)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Factory.UpsertManufactured(ctx, &entity.ManufacturedUnits{
			WorkOrderID: wo.ID,
			HP3:         b.HP3,
			HP5:         b.HP5,
			HP75:        b.HP75,
			Total:       b.Total(),
			CreatedBy:   userID,
		}); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageFactory,
			Status:            entity.StageStatusInProgress,
			CompletedQuantity: b.Total(),
			Remarks:           req.Remarks,
			StartedAt:         &now,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "submit manufactured units")
	}
	wo.Status = next
	return wo, nil
}

// SubmitPDIVerification 提交PDI检验数量. Closes the Factory and PDI
// stages and opens the JSR stage atomically in one transaction.
func (s *StageService) SubmitPDIVerification(ctx context.Context, userID, idOrNumber string, req *StageSubmissionRequest) (*entity.WorkOrder, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	b := req.breakdown()
	if err := validateBreakdown(b, req.Total); err != nil {
		return nil, err
	}
	if err := checkTarget(b, wo); err != nil {
		return nil, err
	}
	next, err := transition(wo, entity.EventPDIVerified)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Factory.UpsertPDI(ctx, &entity.PDIVerification{
			WorkOrderID: wo.ID,
			HP3:         b.HP3,
			HP5:         b.HP5,
			HP75:        b.HP75,
			Total:       b.Total(),
			VerifiedBy:  userID,
		}); err != nil {
			return err
		}
		if err := repos.StageLog.MarkCompleted(ctx, wo.ID, entity.StageFactory, entity.StageStatusCompleted); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StagePDI,
			Status:            entity.StageStatusCompleted,
			CompletedQuantity: b.Total(),
			Remarks:           req.Remarks,
			StartedAt:         &now,
			CompletedAt:       &now,
		}); err != nil {
			return err
		}
		if err := repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID: wo.ID,
			Stage:       entity.StageJSR,
			Status:      entity.StageStatusInProgress,
			StartedAt:   &now,
		}); err != nil {
			return err
		}
		return repos.WorkOrder.UpdateStatus(ctx, wo.ID, next)
	})
	if err != nil {
		return nil, wrap(err, "submit pdi verification")
	}
	wo.Status = next
	return wo, nil
}

// FactoryStatusRequest 工厂阶段收尾请求 — carries the field location that
// routes the order to its JSR officer.
type FactoryStatusRequest struct {
	District string `json:"district" binding:"required"`
	Taluka   string `json:"taluka" binding:"required"`
	Village  string `json:"village" binding:"required"`
	Remarks  string `json:"remarks"`
}

// UpdateFactoryStatus routes the work order to the JSR officer covering
// the field location and records the first assignment. A second call is
// a no-op once any verification row exists.
func (s *StageService) UpdateFactoryStatus(ctx context.Context, idOrNumber string, req *FactoryStatusRequest) (*entity.JSRVerification, bool, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, false, err
	}
	if req.District == "" || req.Taluka == "" || req.Village == "" {
		return nil, false, validationErr("district, taluka and village are required")
	}

	officer, err := s.repos.Routing.FindFieldJSR(ctx, req.District, req.Taluka, req.Village)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, noActorErr("no JSR officer covers %s/%s/%s", req.District, req.Taluka, req.Village)
		}
		return nil, false, wrap(err, "resolve field JSR")
	}

	now := time.Now()
	rec := &entity.JSRVerification{
		WorkOrderID:   wo.ID,
		JSRID:         officer.ID,
		HP3:           wo.Quantity3HP,
		HP5:           wo.Quantity5HP,
		HP75:          wo.Quantity75HP,
		TotalQuantity: wo.TotalQuantity,
		Status:        entity.StageStatusAssigned,
		State:         officer.State,
		District:      req.District,
		Taluka:        req.Taluka,
		Village:       req.Village,
		AssignedAt:    &now,
	}

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		var err error
		created, err = repos.JSR.CreateVerificationIfAbsent(ctx, rec)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID: wo.ID,
			Stage:       entity.StageJSR,
			Status:      entity.StageStatusAssigned,
			Remarks:     req.Remarks,
			StartedAt:   &now,
		})
	})
	if err != nil {
		return nil, false, wrap(err, "assign JSR officer")
	}
	return rec, created, nil
}

// DispatchRequest 发往仓库请求
type DispatchRequest struct {
	WarehouseLocation string `json:"warehouse_location" binding:"required"`
	Units3HP          int    `json:"units_3hp"`
	Units5HP          int    `json:"units_5hp"`
	Units75HP         int    `json:"units_7_5hp"`
}

// DispatchToWarehouse records the dispatch and hands the verification
// work to the JSR officer mapped to the warehouse. The routing lookup
// runs before any write so a missing mapping leaves no partial rows.
func (s *StageService) DispatchToWarehouse(ctx context.Context, userID, idOrNumber string, req *DispatchRequest) (*entity.WarehouseDispatch, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if req.WarehouseLocation == "" {
		return nil, validationErr("warehouse_location is required")
	}
	b := Breakdown{HP3: req.Units3HP, HP5: req.Units5HP, HP75: req.Units75HP}
	if b.HP3 < 0 || b.HP5 < 0 || b.HP75 < 0 {
		return nil, validationErr("quantities must be non-negative")
	}
	if b.Total() == 0 {
		return nil, validationErr("at least one unit must be dispatched")
	}
	if err := checkTarget(b, wo); err != nil {
		return nil, err
	}
	if wo.Status != entity.StatusJSRInProgress && wo.Status != entity.StatusWarehouseUnitsReceived {
		return nil, conflictErr("cannot dispatch to warehouse in status %s", wo.Status)
	}

	mapping, err := s.repos.Routing.FindWarehouseJSR(ctx, req.WarehouseLocation)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noActorErr("no JSR officer mapped to warehouse %s", req.WarehouseLocation)
		}
		return nil, wrap(err, "resolve warehouse JSR")
	}

	dispatch := &entity.WarehouseDispatch{
		WorkOrderID:       wo.ID,
		WarehouseLocation: req.WarehouseLocation,
		Units3HP:          b.HP3,
		Units5HP:          b.HP5,
		Units75HP:         b.HP75,
		Dispatched:        true,
		DispatchedBy:      userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.JSR.UpsertDispatch(ctx, dispatch); err != nil {
			return err
		}
		now := time.Now()
		if err := repos.JSR.UpsertVerification(ctx, &entity.JSRVerification{
			WorkOrderID:   wo.ID,
			JSRID:         mapping.JSRID,
			HP3:           b.HP3,
			HP5:           b.HP5,
			HP75:          b.HP75,
			TotalQuantity: b.Total(),
			Status:        entity.StageStatusAssigned,
			AssignedAt:    &now,
		}); err != nil {
			return err
		}
		return repos.StageLog.Upsert(ctx, &entity.StageLog{
			WorkOrderID:       wo.ID,
			Stage:             entity.StageWarehouse,
			Status:            entity.StageStatusInProgress,
			CompletedQuantity: b.Total(),
			StartedAt:         &now,
		})
	})
	if err != nil {
		return nil, wrap(err, "dispatch to warehouse")
	}
	return dispatch, nil
}

// JSRUnitsRequest JSR核验数量请求
type JSRUnitsRequest struct {
	VerifiedQuantity int `json:"verified_quantity"`
}

// SaveJSRUnits records how many units an officer has verified so far.
func (s *StageService) SaveJSRUnits(ctx context.Context, jsrID, idOrNumber string, req *JSRUnitsRequest) (*entity.JSRVerification, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if req.VerifiedQuantity < 0 {
		return nil, validationErr("verified_quantity must be non-negative")
	}

	rec, err := s.repos.JSR.FindVerificationByJSR(ctx, wo.ID, jsrID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("no JSR assignment for work order %s", idOrNumber)
		}
		return nil, wrap(err, "find JSR verification")
	}
	if req.VerifiedQuantity > rec.TotalQuantity {
		return nil, quantityExceedsErr("verified %d exceeds assigned %d", req.VerifiedQuantity, rec.TotalQuantity)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"verified_quantity": req.VerifiedQuantity,
		"status":            entity.StageStatusInProgress,
		"updated_at":        now,
	}
	if req.VerifiedQuantity == rec.TotalQuantity {
		updates["status"] = entity.StageStatusVerified
		updates["verified_at"] = &now
	}
	if err := s.repos.JSR.UpdateVerificationByJSR(ctx, wo.ID, jsrID, updates); err != nil {
		return nil, wrap(err, "update JSR verification")
	}
	return s.repos.JSR.FindVerificationByJSR(ctx, wo.ID, jsrID)
}

// JSRStageRequest JSR安装阶段更新请求 — photo fields carry opaque
// file-store references the handler already saved.
type JSRStageRequest struct {
	LinemanName string `json:"lineman_name"`
	FarmerName  string `json:"farmer_name"`

	InstallationPhoto      string `json:"installation_photo"`
	SitePhoto              string `json:"site_photo"`
	InstallationSitePhoto  string `json:"installation_site_photo"`
	LinemanInstallationSet string `json:"lineman_installation_set"`
	SetupClosePhoto        string `json:"setup_close_photo"`

	Completed bool `json:"completed"`
}

// UpdateJSRStage records installation details for one officer's
// verification row and closes the Installation stage when completed.
func (s *StageService) UpdateJSRStage(ctx context.Context, jsrID, idOrNumber string, req *JSRStageRequest) (*entity.JSRVerification, error) {
	wo, err := s.resolve(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.JSR.FindVerificationByJSR(ctx, wo.ID, jsrID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundErr("no JSR assignment for work order %s", idOrNumber)
		}
		return nil, wrap(err, "find JSR verification")
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if req.LinemanName != "" {
		updates["lineman_name"] = req.LinemanName
	}
	if req.FarmerName != "" {
		updates["farmer_name"] = req.FarmerName
	}
	if req.InstallationPhoto != "" {
		updates["installation_photo"] = req.InstallationPhoto
	}
	if req.SitePhoto != "" {
		updates["site_photo"] = req.SitePhoto
	}
	if req.InstallationSitePhoto != "" {
		updates["installation_site_photo"] = req.InstallationSitePhoto
	}
	if req.LinemanInstallationSet != "" {
		updates["lineman_installation_set"] = req.LinemanInstallationSet
	}
	if req.SetupClosePhoto != "" {
		updates["setup_close_photo"] = req.SetupClosePhoto
	}
	if req.Completed {
		updates["status"] = entity.StageStatusVerified
		updates["verified_at"] = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.JSR.UpdateVerificationByJSR(ctx, wo.ID, jsrID, updates); err != nil {
			return err
		}
		status := entity.StageStatusInProgress
		log := &entity.StageLog{
			WorkOrderID: wo.ID,
			Stage:       entity.StageInstallation,
			Status:      status,
			StartedAt:   &now,
		}
		if req.Completed {
			log.Status = entity.StageStatusCompleted
			log.CompletedAt = &now
		}
		return repos.StageLog.Upsert(ctx, log)
	})
	if err != nil {
		return nil, wrap(err, "update JSR stage")
	}
	return s.repos.JSR.FindVerificationByJSR(ctx, wo.ID, jsrID)
}

package service

import (
	"context"
	"testing"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/agrisetu/pumptrack/internal/workorder/testutil"
	"gorm.io/gorm"
)

func setupStageTest(t *testing.T) (*gorm.DB, *StageService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewStageService(db, repos)
}

// TestSubmitManufacturedAdvancesStatus tests the first pipeline step.
func TestSubmitManufacturedAdvancesStatus(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-001", entity.StatusPending, 10, 5, 5)

	wo, err := svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-001", &StageSubmissionRequest{
		HP3: 10, HP5: 5, HP75: 5, Total: 20,
	})
	if err != nil {
		t.Fatalf("SubmitManufacturedUnits failed: %v", err)
	}
	if wo.Status != entity.StatusManufacturingInProgress {
		t.Fatalf("expected status %s, got %s", entity.StatusManufacturingInProgress, wo.Status)
	}

	var rec entity.ManufacturedUnits
	if err := db.Where("work_order_id = ?", "wo-001").First(&rec).Error; err != nil {
		t.Fatalf("expected manufactured units row: %v", err)
	}
	if rec.Total != 20 {
		t.Fatalf("expected total 20, got %d", rec.Total)
	}

	var log entity.StageLog
	if err := db.Where("work_order_id = ? AND stage = ?", "wo-001", entity.StageFactory).First(&log).Error; err != nil {
		t.Fatalf("expected factory stage log: %v", err)
	}
	if log.Status != entity.StageStatusInProgress {
		t.Fatalf("expected factory stage InProgress, got %s", log.Status)
	}
}

// TestSubmitManufacturedIdempotent tests that re-submission overwrites
// the single record instead of adding a second row.
func TestSubmitManufacturedIdempotent(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-002", entity.StatusPending, 10, 5, 5)

	if _, err := svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-002", &StageSubmissionRequest{
		HP3: 5, HP5: 3, HP75: 2, Total: 10,
	}); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if _, err := svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-002", &StageSubmissionRequest{
		HP3: 10, HP5: 5, HP75: 5, Total: 20,
	}); err != nil {
		t.Fatalf("second submission failed: %v", err)
	}

	var count int64
	db.Model(&entity.ManufacturedUnits{}).Where("work_order_id = ?", "wo-002").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 manufactured units row, got %d", count)
	}

	var rec entity.ManufacturedUnits
	db.Where("work_order_id = ?", "wo-002").First(&rec)
	if rec.Total != 20 {
		t.Fatalf("expected latest total 20, got %d", rec.Total)
	}
}

// TestSubmitManufacturedQuantityChecks tests the reconciliation rules.
func TestSubmitManufacturedQuantityChecks(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-003", entity.StatusPending, 10, 5, 5)

	// Claimed total disagrees with the bucket sum.
	_, err := svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-003", &StageSubmissionRequest{
		HP3: 10, HP5: 5, HP75: 5, Total: 19,
	})
	if KindOf(err) != KindQuantityMismatch {
		t.Fatalf("expected QuantityMismatch, got %v", err)
	}

	// Aggregate exceeds the work order target.
	_, err = svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-003", &StageSubmissionRequest{
		HP3: 20, HP5: 5, HP75: 5, Total: 30,
	})
	if KindOf(err) != KindQuantityExceedsTarget {
		t.Fatalf("expected QuantityExceedsTarget, got %v", err)
	}

	// Negative bucket.
	_, err = svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-003", &StageSubmissionRequest{
		HP3: -1, HP5: 5, HP75: 5, Total: 9,
	})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Nothing may have been written.
	var count int64
	db.Model(&entity.ManufacturedUnits{}).Where("work_order_id = ?", "wo-003").Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows after rejected submissions, got %d", count)
	}
}

// TestSubmitPDIClosesFactoryStage tests that PDI verification closes
// the factory stage and opens the JSR phase in one step.
func TestSubmitPDIClosesFactoryStage(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-004", entity.StatusPending, 10, 5, 5)

	if _, err := svc.SubmitManufacturedUnits(ctx, "factory-001", "wo-004", &StageSubmissionRequest{
		HP3: 10, HP5: 5, HP75: 5, Total: 20,
	}); err != nil {
		t.Fatalf("manufactured submission failed: %v", err)
	}

	wo, err := svc.SubmitPDIVerification(ctx, "pdi-001", "wo-004", &StageSubmissionRequest{
		HP3: 10, HP5: 5, HP75: 5, Total: 20,
	})
	if err != nil {
		t.Fatalf("SubmitPDIVerification failed: %v", err)
	}
	if wo.Status != entity.StatusJSRInProgress {
		t.Fatalf("expected status %s, got %s", entity.StatusJSRInProgress, wo.Status)
	}

	var factoryLog entity.StageLog
	db.Where("work_order_id = ? AND stage = ?", "wo-004", entity.StageFactory).First(&factoryLog)
	if factoryLog.Status != entity.StageStatusCompleted {
		t.Fatalf("expected factory stage Completed, got %s", factoryLog.Status)
	}
	if factoryLog.CompletedAt == nil {
		t.Fatal("expected factory completed_at to be set")
	}

	var pdiLog entity.StageLog
	db.Where("work_order_id = ? AND stage = ?", "wo-004", entity.StagePDI).First(&pdiLog)
	if pdiLog.Status != entity.StageStatusCompleted {
		t.Fatalf("expected PDI stage Completed, got %s", pdiLog.Status)
	}
	if pdiLog.CompletedAt == nil {
		t.Fatal("expected PDI completed_at to be set")
	}

	var jsrLog entity.StageLog
	if err := db.Where("work_order_id = ? AND stage = ?", "wo-004", entity.StageJSR).First(&jsrLog).Error; err != nil {
		t.Fatalf("expected JSR stage log: %v", err)
	}
	if jsrLog.Status != entity.StageStatusInProgress {
		t.Fatalf("expected JSR stage InProgress, got %s", jsrLog.Status)
	}
	if jsrLog.StartedAt == nil {
		t.Fatal("expected JSR started_at to be set")
	}

	var logCount int64
	db.Model(&entity.StageLog{}).Where("work_order_id = ?", "wo-004").Count(&logCount)
	if logCount != 3 {
		t.Fatalf("expected exactly 3 stage log rows, got %d", logCount)
	}
}

// TestSubmitPDIRequiresManufacturing tests that PDI cannot run before
// manufacturing started.
func TestSubmitPDIRequiresManufacturing(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-005", entity.StatusPending, 10, 5, 5)

	_, err := svc.SubmitPDIVerification(ctx, "pdi-001", "wo-005", &StageSubmissionRequest{
		HP3: 10, HP5: 5, HP75: 5, Total: 20,
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

// TestUpdateFactoryStatusRoutesToFieldJSR tests JSR routing by field
// location and the first-assignment-only semantics.
func TestUpdateFactoryStatusRoutesToFieldJSR(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-006", entity.StatusJSRInProgress, 10, 5, 5)

	req := &FactoryStatusRequest{District: "Nashik", Taluka: "Igatpuri", Village: "Ghoti"}

	// No officer covers the location yet.
	_, _, err := svc.UpdateFactoryStatus(ctx, "wo-006", req)
	if KindOf(err) != KindNoActorFound {
		t.Fatalf("expected NoActorFound, got %v", err)
	}

	officer := testutil.SeedTestUser(t, db, "jsr-001", "Field Officer", entity.RoleJSR)
	db.Model(officer).Updates(map[string]interface{}{
		"district": "Nashik", "taluka": "Igatpuri", "village": "Ghoti",
	})

	rec, created, err := svc.UpdateFactoryStatus(ctx, "wo-006", req)
	if err != nil {
		t.Fatalf("UpdateFactoryStatus failed: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the assignment")
	}
	if rec.JSRID != "jsr-001" {
		t.Fatalf("expected assignment to jsr-001, got %s", rec.JSRID)
	}
	if rec.TotalQuantity != 20 {
		t.Fatalf("expected assigned quantity 20, got %d", rec.TotalQuantity)
	}

	// Second call is a no-op.
	_, created, err = svc.UpdateFactoryStatus(ctx, "wo-006", req)
	if err != nil {
		t.Fatalf("second UpdateFactoryStatus failed: %v", err)
	}
	if created {
		t.Fatal("expected second call to be a no-op")
	}

	var count int64
	db.Model(&entity.JSRVerification{}).Where("work_order_id = ?", "wo-006").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 verification row, got %d", count)
	}
}

// TestDispatchMissingMappingLeavesNoRows tests that a missing warehouse
// mapping is rejected before anything is written.
func TestDispatchMissingMappingLeavesNoRows(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-007", entity.StatusJSRInProgress, 10, 5, 5)

	_, err := svc.DispatchToWarehouse(ctx, "jsr-001", "wo-007", &DispatchRequest{
		WarehouseLocation: "Pune Central",
		Units3HP:          10, Units5HP: 5, Units75HP: 5,
	})
	if KindOf(err) != KindNoActorFound {
		t.Fatalf("expected NoActorFound, got %v", err)
	}

	var dispatchCount, verificationCount int64
	db.Model(&entity.WarehouseDispatch{}).Where("work_order_id = ?", "wo-007").Count(&dispatchCount)
	db.Model(&entity.JSRVerification{}).Where("work_order_id = ?", "wo-007").Count(&verificationCount)
	if dispatchCount != 0 || verificationCount != 0 {
		t.Fatalf("expected no partial rows, got %d dispatches and %d verifications",
			dispatchCount, verificationCount)
	}
}

// TestDispatchAssignsMappedJSR tests the warehouse mapping path.
func TestDispatchAssignsMappedJSR(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-008", entity.StatusJSRInProgress, 10, 5, 5)
	testutil.SeedTestUser(t, db, "jsr-002", "Warehouse Officer", entity.RoleJSR)
	if err := db.Create(&entity.WarehouseJSRMapping{
		ID: "map-001", WarehouseLocation: "Pune Central", JSRID: "jsr-002",
	}).Error; err != nil {
		t.Fatalf("failed to seed mapping: %v", err)
	}

	dispatch, err := svc.DispatchToWarehouse(ctx, "jsr-001", "wo-008", &DispatchRequest{
		WarehouseLocation: "Pune Central",
		Units3HP:          10, Units5HP: 5, Units75HP: 5,
	})
	if err != nil {
		t.Fatalf("DispatchToWarehouse failed: %v", err)
	}
	if !dispatch.Dispatched {
		t.Fatal("expected dispatch to be marked dispatched")
	}

	var rec entity.JSRVerification
	if err := db.Where("work_order_id = ? AND jsr_id = ?", "wo-008", "jsr-002").First(&rec).Error; err != nil {
		t.Fatalf("expected verification row for mapped officer: %v", err)
	}
	if rec.TotalQuantity != 20 {
		t.Fatalf("expected assigned quantity 20, got %d", rec.TotalQuantity)
	}

	// Dispatch does not advance the work order status.
	var wo entity.WorkOrder
	db.Where("id = ?", "wo-008").First(&wo)
	if wo.Status != entity.StatusJSRInProgress {
		t.Fatalf("expected status unchanged, got %s", wo.Status)
	}
}

// TestDispatchTopUpPreservesBuckets tests that a follow-up dispatch
// carrying a different variant bucket does not wipe the earlier one.
func TestDispatchTopUpPreservesBuckets(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-011", entity.StatusJSRInProgress, 10, 5, 5)
	testutil.SeedTestUser(t, db, "jsr-004", "Warehouse Officer", entity.RoleJSR)
	if err := db.Create(&entity.WarehouseJSRMapping{
		ID: "map-002", WarehouseLocation: "Nagpur East", JSRID: "jsr-004",
	}).Error; err != nil {
		t.Fatalf("failed to seed mapping: %v", err)
	}

	if _, err := svc.DispatchToWarehouse(ctx, "jsr-001", "wo-011", &DispatchRequest{
		WarehouseLocation: "Nagpur East", Units3HP: 5,
	}); err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	if _, err := svc.DispatchToWarehouse(ctx, "jsr-001", "wo-011", &DispatchRequest{
		WarehouseLocation: "Nagpur East", Units5HP: 3,
	}); err != nil {
		t.Fatalf("second dispatch failed: %v", err)
	}

	var rec entity.JSRVerification
	if err := db.Where("work_order_id = ? AND jsr_id = ?", "wo-011", "jsr-004").First(&rec).Error; err != nil {
		t.Fatalf("expected verification row: %v", err)
	}
	if rec.HP3 != 5 || rec.HP5 != 3 {
		t.Fatalf("expected buckets 5/3 after top-up, got %d/%d", rec.HP3, rec.HP5)
	}
	if rec.TotalQuantity != 8 {
		t.Fatalf("expected total 8 after top-up, got %d", rec.TotalQuantity)
	}

	var count int64
	db.Model(&entity.JSRVerification{}).Where("work_order_id = ?", "wo-011").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 verification row, got %d", count)
	}
}

// TestDispatchRejectedOutsideJSRPhase tests the status guard.
func TestDispatchRejectedOutsideJSRPhase(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-009", entity.StatusPending, 10, 5, 5)

	_, err := svc.DispatchToWarehouse(ctx, "jsr-001", "wo-009", &DispatchRequest{
		WarehouseLocation: "Pune Central", Units3HP: 5,
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

// TestSaveJSRUnitsProgress tests the verified-quantity counter and its
// bound against the assigned quantity.
func TestSaveJSRUnitsProgress(t *testing.T) {
	db, svc := setupStageTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-010", entity.StatusJSRInProgress, 10, 5, 5)
	if err := db.Create(&entity.JSRVerification{
		ID: "jv-001", WorkOrderID: "wo-010", JSRID: "jsr-003",
		HP3: 10, HP5: 5, HP75: 5, TotalQuantity: 20,
		Status: entity.StageStatusAssigned,
	}).Error; err != nil {
		t.Fatalf("failed to seed verification: %v", err)
	}

	rec, err := svc.SaveJSRUnits(ctx, "jsr-003", "wo-010", &JSRUnitsRequest{VerifiedQuantity: 12})
	if err != nil {
		t.Fatalf("SaveJSRUnits failed: %v", err)
	}
	if rec.VerifiedQuantity != 12 {
		t.Fatalf("expected verified 12, got %d", rec.VerifiedQuantity)
	}
	if rec.Status != entity.StageStatusInProgress {
		t.Fatalf("expected status InProgress, got %s", rec.Status)
	}

	// Over the assigned quantity.
	_, err = svc.SaveJSRUnits(ctx, "jsr-003", "wo-010", &JSRUnitsRequest{VerifiedQuantity: 21})
	if KindOf(err) != KindQuantityExceedsTarget {
		t.Fatalf("expected QuantityExceedsTarget, got %v", err)
	}

	// Reaching the assigned quantity marks the row verified.
	rec, err = svc.SaveJSRUnits(ctx, "jsr-003", "wo-010", &JSRUnitsRequest{VerifiedQuantity: 20})
	if err != nil {
		t.Fatalf("final SaveJSRUnits failed: %v", err)
	}
	if rec.Status != entity.StageStatusVerified {
		t.Fatalf("expected status Verified, got %s", rec.Status)
	}
	if rec.VerifiedAt == nil {
		t.Fatal("expected verified_at to be set")
	}

	// Unknown officer has no assignment.
	_, err = svc.SaveJSRUnits(ctx, "jsr-unknown", "wo-010", &JSRUnitsRequest{VerifiedQuantity: 1})
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

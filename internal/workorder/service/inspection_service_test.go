package service

import (
	"context"
	"testing"

	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/agrisetu/pumptrack/internal/workorder/testutil"
	"gorm.io/gorm"
)

func setupInspectionTest(t *testing.T) (*gorm.DB, *InspectionService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return db, NewInspectionService(db, repos)
}

// TestSubmitInspectionUnits tests per-officer inspection records.
func TestSubmitInspectionUnits(t *testing.T) {
	db, svc := setupInspectionTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-300", entity.StatusAssignedToFarmer, 10, 5, 5)

	rec, err := svc.SubmitInspectionUnits(ctx, "insp-001", "wo-300", &StageSubmissionRequest{
		HP3: 5, HP5: 3, HP75: 2, Total: 10,
	})
	if err != nil {
		t.Fatalf("SubmitInspectionUnits failed: %v", err)
	}
	if rec.TotalInspected != 10 {
		t.Fatalf("expected 10 inspected, got %d", rec.TotalInspected)
	}

	// Re-submission from the same officer overwrites the row.
	if _, err := svc.SubmitInspectionUnits(ctx, "insp-001", "wo-300", &StageSubmissionRequest{
		HP3: 6, HP5: 3, HP75: 2, Total: 11,
	}); err != nil {
		t.Fatalf("re-submission failed: %v", err)
	}
	var count int64
	db.Model(&entity.InspectionUnits{}).Where("work_order_id = ?", "wo-300").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 inspection row, got %d", count)
	}

	// Inspection cannot start before units reach farmers.
	testutil.SeedWorkOrder(t, db, "wo-301", entity.StatusWarehouseUnitsReceived, 10, 5, 5)
	_, err = svc.SubmitInspectionUnits(ctx, "insp-001", "wo-301", &StageSubmissionRequest{
		HP3: 1, Total: 1,
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

// TestCompleteInspectionClosesPipeline tests the final transition.
func TestCompleteInspectionClosesPipeline(t *testing.T) {
	db, svc := setupInspectionTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-302", entity.StatusAssignedToFarmer, 10, 5, 5)
	db.Create(&entity.StageLog{
		ID: "sl-insp", WorkOrderID: "wo-302",
		Stage: entity.StageInspection, Status: entity.StageStatusInProgress,
		CompletedQuantity: 20,
	})

	wo, err := svc.CompleteInspection(ctx, "insp-001", "wo-302", &CompleteInspectionRequest{
		FarmerID: "farmer-001",
		Remarks:  "所有泵机现场验收通过",
	})
	if err != nil {
		t.Fatalf("CompleteInspection failed: %v", err)
	}
	if wo.Status != entity.StatusInspected {
		t.Fatalf("expected status %s, got %s", entity.StatusInspected, wo.Status)
	}

	var log entity.StageLog
	db.Where("work_order_id = ? AND stage = ?", "wo-302", entity.StageInspection).First(&log)
	if log.Status != entity.StageStatusCompleted {
		t.Fatalf("expected inspection stage Completed, got %s", log.Status)
	}

	progress, err := svc.GetPumpProgress(ctx, "farmer-001")
	if err != nil {
		t.Fatalf("GetPumpProgress failed: %v", err)
	}
	if len(progress) != 1 || progress[0].Stage != "Farm Inspection" {
		t.Fatalf("expected one Farm Inspection progress row, got %+v", progress)
	}

	// Completing before farmers have units conflicts.
	testutil.SeedWorkOrder(t, db, "wo-303", entity.StatusJSRInProgress, 5, 0, 0)
	_, err = svc.CompleteInspection(ctx, "insp-001", "wo-303", &CompleteInspectionRequest{})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

// TestCompleteInspectionWithoutUnitsLog tests that completion creates
// the Inspection stage log when no officer ever submitted units.
func TestCompleteInspectionWithoutUnitsLog(t *testing.T) {
	db, svc := setupInspectionTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-305", entity.StatusAssignedToFarmer, 5, 0, 0)

	wo, err := svc.CompleteInspection(ctx, "insp-001", "wo-305", &CompleteInspectionRequest{
		FarmerID: "farmer-002",
	})
	if err != nil {
		t.Fatalf("CompleteInspection failed: %v", err)
	}
	if wo.Status != entity.StatusInspected {
		t.Fatalf("expected status %s, got %s", entity.StatusInspected, wo.Status)
	}

	var log entity.StageLog
	if err := db.Where("work_order_id = ? AND stage = ?", "wo-305", entity.StageInspection).First(&log).Error; err != nil {
		t.Fatalf("expected inspection stage log: %v", err)
	}
	if log.Status != entity.StageStatusCompleted {
		t.Fatalf("expected inspection stage Completed, got %s", log.Status)
	}
	if log.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

// TestDefectReports tests farmer defect reporting.
func TestDefectReports(t *testing.T) {
	_, svc := setupInspectionTest(t)
	ctx := context.Background()

	_, err := svc.SubmitDefectReport(ctx, "farmer-001", &DefectReportRequest{Title: "电机异响"})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected ValidationError for missing description, got %v", err)
	}

	rec, err := svc.SubmitDefectReport(ctx, "farmer-001", &DefectReportRequest{
		Title:       "电机异响",
		Description: "运行半小时后电机发出金属摩擦声",
		Photo1:      "defects/2026-08-28/abc123.jpg",
	})
	if err != nil {
		t.Fatalf("SubmitDefectReport failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected defect id to be generated")
	}

	recs, err := svc.ListDefects(ctx, "farmer-001")
	if err != nil {
		t.Fatalf("ListDefects failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 defect, got %d", len(recs))
	}

	// Another farmer sees nothing.
	recs, err = svc.ListDefects(ctx, "farmer-002")
	if err != nil {
		t.Fatalf("ListDefects for other farmer failed: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no defects for other farmer, got %d", len(recs))
	}
}

// TestGetInspectionProgress tests the percentage projection.
func TestGetInspectionProgress(t *testing.T) {
	db, svc := setupInspectionTest(t)
	ctx := context.Background()

	testutil.SeedWorkOrder(t, db, "wo-304", entity.StatusAssignedToFarmer, 10, 5, 5)
	db.Create(&entity.StageLog{
		ID: "sl-prog", WorkOrderID: "wo-304",
		Stage: entity.StageInspection, Status: entity.StageStatusInProgress,
		CompletedQuantity: 10,
	})

	result, err := svc.GetInspectionProgress(ctx, "wo-304")
	if err != nil {
		t.Fatalf("GetInspectionProgress failed: %v", err)
	}
	if result.TotalInspected != 10 {
		t.Fatalf("expected 10 inspected, got %d", result.TotalInspected)
	}
	if result.PercentDone != 50 {
		t.Fatalf("expected 50 percent, got %d", result.PercentDone)
	}
}

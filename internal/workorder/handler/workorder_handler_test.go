package handler

import (
	"net/http"
	"testing"

	"github.com/agrisetu/pumptrack/internal/middleware"
	"github.com/agrisetu/pumptrack/internal/storage"
	"github.com/agrisetu/pumptrack/internal/workorder/entity"
	"github.com/agrisetu/pumptrack/internal/workorder/repository"
	"github.com/agrisetu/pumptrack/internal/workorder/service"
	"github.com/agrisetu/pumptrack/internal/workorder/testutil"
)

func setupWorkOrderAPI(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, nil)
	handlers := NewHandlers(services, storage.NoopStore{})

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	workorders := api.Group("/workorders")
	workorders.GET("", handlers.WorkOrder.List)
	workorders.GET("/summary", handlers.WorkOrder.Summary)
	workorders.POST("", middleware.RequireRole(entity.RoleAdmin), handlers.WorkOrder.Create)
	workorders.GET("/:id", handlers.WorkOrder.Get)
	workorders.PUT("/:id", middleware.RequireRole(entity.RoleAdmin), handlers.WorkOrder.Update)
	workorders.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), handlers.WorkOrder.Delete)
	workorders.GET("/:id/progress", handlers.WorkOrder.Progress)
	workorders.POST("/:id/manufactured", middleware.RequireRole(entity.RoleFactory), handlers.Stage.SubmitManufactured)
	workorders.POST("/:id/pdi", middleware.RequireRole(entity.RolePDIOfficer), handlers.Stage.SubmitPDI)
	workorders.POST("/:id/dispatch", middleware.RequireRole(entity.RoleJSR), handlers.Stage.Dispatch)
	workorders.POST("/:id/warehouse-units", middleware.RequireRole(entity.RoleWarehouseManager), handlers.Distribution.SubmitWarehouseUnits)
	workorders.POST("/:id/cp-units", middleware.RequireRole(entity.RoleChannelPartner), handlers.Distribution.SubmitCPUnits)
	workorders.POST("/:id/assign-cp", middleware.RequireRole(entity.RoleWarehouseManager), handlers.Distribution.AssignToCP)
	workorders.POST("/:id/assign-farmer", middleware.RequireRole(entity.RoleChannelPartner), handlers.Distribution.AssignToFarmer)
	workorders.POST("/:id/inspection-units", middleware.RequireRole(entity.RoleInspectionOfficer), handlers.Inspection.SubmitUnits)
	workorders.POST("/:id/inspection-complete", middleware.RequireRole(entity.RoleInspectionOfficer), handlers.Inspection.Complete)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestWorkOrderCRUD tests creation, detail, update and deletion over
// HTTP.
func TestWorkOrderCRUD(t *testing.T) {
	env := setupWorkOrderAPI(t)
	admin := testutil.AdminTestToken()

	body := map[string]interface{}{
		"title":          "Nashik批次一",
		"region":         "Nashik",
		"quantity_3hp":   10,
		"quantity_5hp":   5,
		"quantity_7_5hp": 5,
		"stakeholders": map[string]interface{}{
			"warehouse_manager": "wh-001",
		},
		"timelines": []map[string]interface{}{
			{"stage": entity.StageFactory, "duration_days": 14},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders", body, admin)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != entity.StatusPending {
		t.Fatalf("expected status pending, got %v", data["status"])
	}
	if data["total_quantity"].(float64) != 20 {
		t.Fatalf("expected total 20, got %v", data["total_quantity"])
	}
	id := data["id"].(string)
	orderNumber := data["order_number"].(string)

	// Detail lookup by order number works too.
	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/workorders/"+orderNumber, nil, admin)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}

	// Update quantities; total is recomputed.
	w3 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/workorders/"+id,
		map[string]interface{}{"quantity_3hp": 20}, admin)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	if resp3["data"].(map[string]interface{})["total_quantity"].(float64) != 30 {
		t.Fatalf("expected recomputed total 30, got %v", resp3["data"])
	}

	// Delete and verify it is gone.
	w4 := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/workorders/"+id, nil, admin)
	if w4.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w4.Code, w4.Body.String())
	}
	w5 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/workorders/"+id, nil, admin)
	if w5.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d: %s", w5.Code, w5.Body.String())
	}
}

// TestWorkOrderRoleGuards tests that stage routes reject the wrong
// role and that admin passes every guard.
func TestWorkOrderRoleGuards(t *testing.T) {
	env := setupWorkOrderAPI(t)
	factory := testutil.GenerateTestToken("factory-001", "Factory", entity.RoleFactory)

	// Factory role cannot create work orders.
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders",
		map[string]interface{}{"title": "t", "quantity_3hp": 1}, factory)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// No token at all.
	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/workorders", nil, "")
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestFullPipelineOverHTTP drives one work order from creation to
// inspected through every role's endpoint.
func TestFullPipelineOverHTTP(t *testing.T) {
	env := setupWorkOrderAPI(t)

	admin := testutil.AdminTestToken()
	factory := testutil.GenerateTestToken("factory-001", "Factory", entity.RoleFactory)
	pdi := testutil.GenerateTestToken("pdi-001", "PDI Officer", entity.RolePDIOfficer)
	jsr := testutil.GenerateTestToken("jsr-001", "JSR Officer", entity.RoleJSR)
	warehouse := testutil.GenerateTestToken("wh-001", "Warehouse", entity.RoleWarehouseManager)
	cp := testutil.GenerateTestToken("cp-001", "Channel Partner", entity.RoleChannelPartner)
	inspector := testutil.GenerateTestToken("insp-001", "Inspector", entity.RoleInspectionOfficer)

	testutil.SeedTestUser(t, env.DB, "jsr-002", "Warehouse JSR", entity.RoleJSR)
	if err := env.DB.Create(&entity.WarehouseJSRMapping{
		ID: "map-001", WarehouseLocation: "Pune Central", JSRID: "jsr-002",
	}).Error; err != nil {
		t.Fatalf("failed to seed mapping: %v", err)
	}

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders", map[string]interface{}{
		"title": "全流程工单", "quantity_3hp": 1, "quantity_5hp": 1,
	}, admin)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	units := map[string]interface{}{"hp_3": 1, "hp_5": 1, "total": 2}

	steps := []struct {
		path   string
		token  string
		body   map[string]interface{}
		status string
	}{
		{"/manufactured", factory, units, entity.StatusManufacturingInProgress},
		{"/pdi", pdi, units, entity.StatusJSRInProgress},
		{"/dispatch", jsr, map[string]interface{}{
			"warehouse_location": "Pune Central", "units_3hp": 1, "units_5hp": 1,
		}, ""},
		{"/warehouse-units", warehouse, units, entity.StatusWarehouseUnitsReceived},
		{"/assign-cp", warehouse, map[string]interface{}{
			"assignments": []map[string]interface{}{{"region": "Nashik", "quantity": 2}},
		}, entity.StatusAssignedToCP},
		{"/cp-units", cp, units, entity.StatusCPUnitsReceived},
		{"/assign-farmer", cp, map[string]interface{}{
			"farmer_name": "Ramesh Patil", "hp_unit": "3HP",
		}, entity.StatusAssignedToFarmer},
	}

	for _, step := range steps {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/"+id+step.path, step.body, step.token)
		if w.Code != http.StatusOK && w.Code != http.StatusCreated {
			t.Fatalf("%s: expected success, got %d: %s", step.path, w.Code, w.Body.String())
		}
		if step.status == "" {
			continue
		}
		var wo entity.WorkOrder
		env.DB.Where("id = ?", id).First(&wo)
		if wo.Status != step.status {
			t.Fatalf("%s: expected status %s, got %s", step.path, step.status, wo.Status)
		}
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/"+id+"/inspection-units", units, inspector)
	if w.Code != http.StatusOK {
		t.Fatalf("inspection-units: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/"+id+"/inspection-complete",
		map[string]interface{}{"farmer_id": "farmer-001"}, inspector)
	if w.Code != http.StatusOK {
		t.Fatalf("inspection-complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var wo entity.WorkOrder
	env.DB.Where("id = ?", id).First(&wo)
	if wo.Status != entity.StatusInspected {
		t.Fatalf("expected final status inspected, got %s", wo.Status)
	}

	// Every stage of the progress view is now past Pending.
	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/workorders/"+id+"/progress", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("progress: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// TestStageErrorCodes tests the error code mapping for quantity and
// ordering violations.
func TestStageErrorCodes(t *testing.T) {
	env := setupWorkOrderAPI(t)
	admin := testutil.AdminTestToken()
	factory := testutil.GenerateTestToken("factory-001", "Factory", entity.RoleFactory)
	pdi := testutil.GenerateTestToken("pdi-001", "PDI Officer", entity.RolePDIOfficer)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders", map[string]interface{}{
		"title": "错误码工单", "quantity_3hp": 10,
	}, admin)
	id := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// Claimed total disagrees with the sum.
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/"+id+"/manufactured",
		map[string]interface{}{"hp_3": 5, "total": 6}, factory)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w2.Code, w2.Body.String())
	}
	if testutil.ParseResponse(w2)["code"].(float64) != 40001 {
		t.Fatalf("expected code 40001, got %v", testutil.ParseResponse(w2)["code"])
	}

	// Over the target.
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/"+id+"/manufactured",
		map[string]interface{}{"hp_3": 11, "total": 11}, factory)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w3.Code, w3.Body.String())
	}
	if testutil.ParseResponse(w3)["code"].(float64) != 40002 {
		t.Fatalf("expected code 40002, got %v", testutil.ParseResponse(w3)["code"])
	}

	// PDI before manufacturing conflicts.
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/"+id+"/pdi",
		map[string]interface{}{"hp_3": 5, "total": 5}, pdi)
	if w4.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w4.Code, w4.Body.String())
	}

	// Unknown work order.
	w5 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/nope/manufactured",
		map[string]interface{}{"hp_3": 1, "total": 1}, factory)
	if w5.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w5.Code, w5.Body.String())
	}
}

// TestDispatchWithoutMappingReturns422 tests the NoActorFound mapping
// to HTTP 422.
func TestDispatchWithoutMappingReturns422(t *testing.T) {
	env := setupWorkOrderAPI(t)
	jsr := testutil.GenerateTestToken("jsr-001", "JSR Officer", entity.RoleJSR)

	testutil.SeedWorkOrder(t, env.DB, "wo-422", entity.StatusJSRInProgress, 5, 0, 0)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/workorders/wo-422/dispatch",
		map[string]interface{}{"warehouse_location": "Nowhere", "units_3hp": 5}, jsr)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if testutil.ParseResponse(w)["code"].(float64) != 42200 {
		t.Fatalf("expected code 42200, got %v", testutil.ParseResponse(w)["code"])
	}
}

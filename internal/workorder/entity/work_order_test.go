package entity

import "testing"

// TestNextStatusPipeline walks the full happy path through the
// transition table.
func TestNextStatusPipeline(t *testing.T) {
	steps := []struct {
		current string
		event   StageEvent
		want    string
	}{
		{StatusPending, EventManufactured, StatusManufacturingInProgress},
		{StatusManufacturingInProgress, EventPDIVerified, StatusJSRInProgress},
		{StatusJSRInProgress, EventWarehouseReceived, StatusWarehouseUnitsReceived},
		{StatusWarehouseUnitsReceived, EventAssignedToCP, StatusAssignedToCP},
		{StatusAssignedToCP, EventCPReceived, StatusCPUnitsReceived},
		{StatusCPUnitsReceived, EventAssignedToFarmer, StatusAssignedToFarmer},
		{StatusAssignedToFarmer, EventInspected, StatusInspected},
	}

	for _, step := range steps {
		next, ok := NextStatus(step.current, step.event)
		if !ok {
			t.Fatalf("expected %s to accept %s", step.current, step.event)
		}
		if next != step.want {
			t.Fatalf("%s + %s: expected %s, got %s", step.current, step.event, step.want, next)
		}
	}
}

// TestNextStatusSelfLoops verifies that re-submitting the stage that
// produced the current status keeps the status unchanged.
func TestNextStatusSelfLoops(t *testing.T) {
	loops := []struct {
		status string
		event  StageEvent
	}{
		{StatusManufacturingInProgress, EventManufactured},
		{StatusJSRInProgress, EventPDIVerified},
		{StatusWarehouseUnitsReceived, EventWarehouseReceived},
		{StatusCPUnitsReceived, EventCPReceived},
		{StatusAssignedToCP, EventAssignedToCP},
		{StatusAssignedToFarmer, EventAssignedToFarmer},
		{StatusInspected, EventInspected},
	}

	for _, loop := range loops {
		next, ok := NextStatus(loop.status, loop.event)
		if !ok {
			t.Fatalf("expected self-loop %s + %s to be valid", loop.status, loop.event)
		}
		if next != loop.status {
			t.Fatalf("self-loop %s + %s changed status to %s", loop.status, loop.event, next)
		}
	}
}

// TestNextStatusRejectsSkips verifies that stages cannot be skipped.
func TestNextStatusRejectsSkips(t *testing.T) {
	invalid := []struct {
		status string
		event  StageEvent
	}{
		{StatusPending, EventPDIVerified},
		{StatusPending, EventInspected},
		{StatusManufacturingInProgress, EventWarehouseReceived},
		{StatusJSRInProgress, EventAssignedToFarmer},
		{StatusWarehouseUnitsReceived, EventManufactured},
		{StatusInspected, EventManufactured},
		{StatusAssignedToFarmer, EventAssignedToCP},
	}

	for _, c := range invalid {
		if _, ok := NextStatus(c.status, c.event); ok {
			t.Fatalf("expected %s + %s to be invalid", c.status, c.event)
		}
	}

	if _, ok := NextStatus("bogus", EventManufactured); ok {
		t.Fatal("expected unknown status to reject every event")
	}
}

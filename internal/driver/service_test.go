package driver_test

import (
	"context"
	"testing"

	"swift-dispatch/internal/common"
	"swift-dispatch/internal/driver"
	domainerrors "swift-dispatch/internal/errors"
	"swift-dispatch/internal/store/memory"
)

// Tests run without a cache; location reads fall through to the store.
func newTestService() driver.Service {
	return driver.NewService(memory.NewDriverStore(), nil)
}

func TestService_Register(t *testing.T) {
	svc := newTestService()

	d, err := svc.Register(context.Background(), "Dana", driver.VehicleVan, common.NewLocation(40.71, -74.00))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != driver.StatusAvailable {
		t.Fatalf("expected available, got %s", d.Status)
	}
	if d.Rating != 5.0 {
		t.Fatalf("expected rating 5.0, got %f", d.Rating)
	}
}

func TestService_Register_UnknownVehicle(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), "Dana", "skateboard", common.NewLocation(40.71, -74.00))
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestService_Register_InvalidCoordinates(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), "Dana", driver.VehicleCar, common.NewLocation(-91, 0)); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_List_FilterByStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, _ := svc.Register(ctx, "a", driver.VehicleCar, common.NewLocation(40.71, -74.00))
	_, _ = svc.Register(ctx, "b", driver.VehicleCar, common.NewLocation(40.72, -74.00))

	if _, err := svc.SetStatus(ctx, a.ID, driver.StatusOffline); err != nil {
		t.Fatalf("set status: %v", err)
	}

	offline := driver.StatusOffline
	got, err := svc.List(ctx, &offline)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("expected only the offline driver, got %d", len(got))
	}

	available, err := svc.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available, got %d", len(available))
	}
}

func TestService_SetStatus_BusyRejected(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	d, _ := svc.Register(ctx, "Dana", driver.VehicleCar, common.NewLocation(40.71, -74.00))

	_, err := svc.SetStatus(ctx, d.ID, driver.StatusBusy)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestService_UpdateProfile_ClampsRating(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	d, _ := svc.Register(ctx, "Dana", driver.VehicleCar, common.NewLocation(40.71, -74.00))

	rating := 9.0
	got, err := svc.UpdateProfile(ctx, d.ID, driver.UpdateRequest{Rating: &rating})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Rating != 5.0 {
		t.Fatalf("expected clamp to 5.0, got %f", got.Rating)
	}
}

func TestService_Heartbeat(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	d, _ := svc.Register(ctx, "Dana", driver.VehicleCar, common.NewLocation(40.71, -74.00))

	got, err := svc.Heartbeat(ctx, d.ID, 40.75, -74.05)
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if got.Location.Lat != 40.75 || got.Location.Lng != -74.05 {
		t.Fatalf("location not updated: %+v", got.Location)
	}

	loc, err := svc.GetLocation(ctx, d.ID)
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if loc.Lat != 40.75 || loc.Lng != -74.05 {
		t.Fatalf("expected updated location, got %+v", loc)
	}
}

func TestService_Heartbeat_InvalidCoordinates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	d, _ := svc.Register(ctx, "Dana", driver.VehicleCar, common.NewLocation(40.71, -74.00))

	if _, err := svc.Heartbeat(ctx, d.ID, 140.75, -74.05); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_Remove_WithActiveDeliveries_Fails(t *testing.T) {
	store := memory.NewDriverStore()
	svc := driver.NewService(store, nil)
	ctx := context.Background()

	d, _ := svc.Register(ctx, "Dana", driver.VehicleCar, common.NewLocation(40.71, -74.00))

	stored, _ := store.GetByID(ctx, d.ID)
	_ = stored.StartDelivery("del-1")
	if err := store.Update(ctx, stored); err != nil {
		t.Fatalf("update: %v", err)
	}

	err := svc.Remove(ctx, d.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestService_Remove(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	d, _ := svc.Register(ctx, "Dana", driver.VehicleCar, common.NewLocation(40.71, -74.00))

	if err := svc.Remove(ctx, d.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.GetByID(ctx, d.ID); err == nil {
		t.Fatal("expected not found after remove")
	}
}

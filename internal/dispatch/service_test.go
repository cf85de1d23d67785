package dispatch_test

import (
	"context"
	"testing"

	"swift-dispatch/internal/delivery"
	"swift-dispatch/internal/dispatch"
	"swift-dispatch/internal/driver"
	domainerrors "swift-dispatch/internal/errors"
	"swift-dispatch/internal/store/memory"
)

type fixture struct {
	deliveries *memory.DeliveryStore
	drivers    *memory.DriverStore
	svc        dispatch.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	deliveries := memory.NewDeliveryStore()
	drivers := memory.NewDriverStore()
	return &fixture{
		deliveries: deliveries,
		drivers:    drivers,
		svc:        dispatch.NewService(deliveries, drivers),
	}
}

func (f *fixture) addDelivery(t *testing.T, d *delivery.Delivery) *delivery.Delivery {
	t.Helper()
	if err := f.deliveries.Create(context.Background(), d); err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return d
}

func (f *fixture) addDriver(t *testing.T, d *driver.Driver) *driver.Driver {
	t.Helper()
	if err := f.drivers.Create(context.Background(), d); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	return d
}

// --- Assign ---

func TestService_Assign_BindsBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	drv := f.addDriver(t, newDriverAt("a", 40.71, -74.00))

	got, err := f.svc.Assign(ctx, d.ID, drv.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != delivery.StatusAssigned {
		t.Fatalf("expected assigned, got %s", got.Status)
	}
	if got.DriverID == nil || *got.DriverID != drv.ID {
		t.Fatal("driver not bound on delivery")
	}

	stored, err := f.drivers.GetByID(ctx, drv.ID)
	if err != nil {
		t.Fatalf("get driver: %v", err)
	}
	if stored.Status != driver.StatusBusy {
		t.Fatalf("expected busy driver, got %s", stored.Status)
	}
	if len(stored.ActiveDeliveries) != 1 || stored.ActiveDeliveries[0] != d.ID {
		t.Fatalf("driver active list mismatch: %v", stored.ActiveDeliveries)
	}
}

func TestService_Assign_AlreadyAssigned_Fails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	a := f.addDriver(t, newDriverAt("a", 40.71, -74.00))
	b := f.addDriver(t, newDriverAt("b", 40.72, -74.00))

	if _, err := f.svc.Assign(ctx, d.ID, a.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := f.svc.Assign(ctx, d.ID, b.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Code != domainerrors.ErrConflict {
		t.Fatalf("expected CONFLICT, got %s", de.Code)
	}

	// The second driver must come through untouched.
	stored, _ := f.drivers.GetByID(ctx, b.ID)
	if stored.Status != driver.StatusAvailable || len(stored.ActiveDeliveries) != 0 {
		t.Fatal("losing driver must stay untouched")
	}
}

func TestService_Assign_BusyDriver_Fails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d1 := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	d2 := f.addDelivery(t, newDeliveryAt(40.72, -74.00))
	drv := f.addDriver(t, newDriverAt("a", 40.71, -74.00))

	if _, err := f.svc.Assign(ctx, d1.ID, drv.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := f.svc.Assign(ctx, d2.ID, drv.ID)
	if err == nil {
		t.Fatal("expected error for busy driver")
	}

	// The second delivery must remain pending and unbound.
	stored, _ := f.deliveries.GetByID(ctx, d2.ID)
	if stored.Status != delivery.StatusPending || stored.DriverID != nil {
		t.Fatal("failed assignment must not touch the delivery")
	}
}

func TestService_Assign_UnknownDelivery(t *testing.T) {
	f := newFixture(t)
	drv := f.addDriver(t, newDriverAt("a", 40.71, -74.00))

	_, err := f.svc.Assign(context.Background(), "missing", drv.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

// --- AssignNearest ---

func TestService_AssignNearest_PicksClosest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	far := f.addDriver(t, newDriverAt("far", 40.81, -74.10))
	near := f.addDriver(t, newDriverAt("near", 40.712, -74.002))

	got, err := f.svc.AssignNearest(ctx, d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got.DriverID != near.ID {
		t.Fatalf("expected nearest driver, got %s", *got.DriverID)
	}

	stored, _ := f.drivers.GetByID(ctx, far.ID)
	if stored.Status != driver.StatusAvailable {
		t.Fatal("far driver must stay available")
	}
}

func TestService_AssignNearest_NoCandidates(t *testing.T) {
	f := newFixture(t)
	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))

	_, err := f.svc.AssignNearest(context.Background(), d.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrNoCandidate {
		t.Fatalf("expected NO_CANDIDATE, got %v", err)
	}
}

// --- RankCandidates ---

func TestService_RankCandidates(t *testing.T) {
	f := newFixture(t)
	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	f.addDriver(t, newDriverAt("a", 40.71, -74.00))
	f.addDriver(t, newDriverAt("b", 40.75, -74.05))

	ranked, err := f.svc.RankCandidates(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ranked))
	}
	if ranked[0].Driver.Name != "a" {
		t.Fatalf("expected nearest first, got %s", ranked[0].Driver.Name)
	}
}

// --- AssignAll ---

func TestService_AssignAll_MorePendingThanDrivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	}
	for _, name := range []string{"a", "b", "c"} {
		f.addDriver(t, newDriverAt(name, 40.71, -74.00))
	}

	result, err := f.svc.AssignAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 3 {
		t.Fatalf("expected 3 assigned, got %d", result.AssignedCount)
	}
	if result.Remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", result.Remaining)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("expected no failures, got %v", result.Failures)
	}

	// Every driver got exactly one delivery.
	drivers, _ := f.drivers.GetAll(ctx)
	for _, drv := range drivers {
		if drv.Status != driver.StatusBusy {
			t.Fatalf("driver %s expected busy, got %s", drv.Name, drv.Status)
		}
		if len(drv.ActiveDeliveries) != 1 {
			t.Fatalf("driver %s expected 1 active, got %d", drv.Name, len(drv.ActiveDeliveries))
		}
	}

	pending, _ := f.deliveries.GetByStatus(ctx, delivery.StatusPending)
	if len(pending) != 2 {
		t.Fatalf("expected 2 still pending, got %d", len(pending))
	}
}

func TestService_AssignAll_MoreDriversThanPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	f.addDelivery(t, newDeliveryAt(40.72, -74.00))
	for _, name := range []string{"a", "b", "c", "d"} {
		f.addDriver(t, newDriverAt(name, 40.71, -74.00))
	}

	result, err := f.svc.AssignAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 2 || result.Remaining != 0 {
		t.Fatalf("expected 2/0, got %d/%d", result.AssignedCount, result.Remaining)
	}

	available, _ := f.drivers.GetAvailable(ctx)
	if len(available) != 2 {
		t.Fatalf("expected 2 drivers still available, got %d", len(available))
	}
}

func TestService_AssignAll_NoPending(t *testing.T) {
	f := newFixture(t)
	f.addDriver(t, newDriverAt("a", 40.71, -74.00))

	result, err := f.svc.AssignAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 0 || result.Remaining != 0 {
		t.Fatalf("expected 0/0, got %d/%d", result.AssignedCount, result.Remaining)
	}
	if result.NoAvailableDrivers {
		t.Fatal("empty queue must not report driver unavailability")
	}
}

func TestService_AssignAll_NoDrivers(t *testing.T) {
	f := newFixture(t)
	f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	f.addDelivery(t, newDeliveryAt(40.72, -74.00))

	result, err := f.svc.AssignAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 0 {
		t.Fatalf("expected 0 assigned, got %d", result.AssignedCount)
	}
	if result.Remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", result.Remaining)
	}
	if !result.NoAvailableDrivers {
		t.Fatal("expected explicit driver unavailability")
	}
	if len(result.Failures) != 0 {
		t.Fatalf("no pairs attempted, expected no failures, got %v", result.Failures)
	}
}

func TestService_AssignAll_SkipsFailedPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The queue is newest first and the pool oldest first, so the pass
	// pairs fresh->a and stale->b. Driver b carries stale bookkeeping (the
	// delivery already in its active list) which makes its binding fail
	// mid-pass without aborting the rest.
	stale := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	fresh := f.addDelivery(t, newDeliveryAt(40.72, -74.00))
	f.addDriver(t, newDriverAt("a", 40.71, -74.00))
	b := newDriverAt("b", 40.72, -74.00)
	b.ActiveDeliveries = []string{stale.ID}
	f.addDriver(t, b)

	result, err := f.svc.AssignAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 1 {
		t.Fatalf("expected 1 assigned, got %d", result.AssignedCount)
	}
	if result.Remaining != 1 {
		t.Fatalf("expected 1 remaining, got %d", result.Remaining)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}

	// The fresh delivery (newest first in the queue) got driver a.
	got, _ := f.deliveries.GetByID(ctx, fresh.ID)
	if got.Status != delivery.StatusAssigned {
		t.Fatalf("expected fresh delivery assigned, got %s", got.Status)
	}
	gotStale, _ := f.deliveries.GetByID(ctx, stale.ID)
	if gotStale.Status != delivery.StatusPending {
		t.Fatalf("expected stale delivery still pending, got %s", gotStale.Status)
	}
}

// --- AdvanceStatus ---

func TestService_AdvanceStatus_DeliveredCreditsDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	drv := f.addDriver(t, newDriverAt("a", 40.71, -74.00))

	if _, err := f.svc.Assign(ctx, d.ID, drv.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// assigned -> pickup -> in_transit -> delivered
	for i := 0; i < 2; i++ {
		if _, err := f.svc.AdvanceStatus(ctx, d.ID, nil); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	got, err := f.svc.AdvanceStatus(ctx, d.ID, &delivery.Proof{Signature: "J. Doe"})
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if got.Status != delivery.StatusDelivered {
		t.Fatalf("expected delivered, got %s", got.Status)
	}
	if got.Signature != "J. Doe" {
		t.Fatal("proof not persisted")
	}

	stored, _ := f.drivers.GetByID(ctx, drv.ID)
	if stored.TotalDeliveries != 1 {
		t.Fatalf("expected 1 completed delivery, got %d", stored.TotalDeliveries)
	}
	if stored.Status != driver.StatusAvailable {
		t.Fatalf("expected driver freed, got %s", stored.Status)
	}
	if len(stored.ActiveDeliveries) != 0 {
		t.Fatalf("expected empty active list, got %v", stored.ActiveDeliveries)
	}
}

func TestService_AdvanceStatus_PendingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))

	_, err := f.svc.AdvanceStatus(ctx, d.ID, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}

	// An unassigned delivery must never reach assigned without a driver.
	stored, _ := f.deliveries.GetByID(ctx, d.ID)
	if stored.Status != delivery.StatusPending {
		t.Fatalf("expected still pending, got %s", stored.Status)
	}
	if stored.DriverID != nil {
		t.Fatal("pending delivery must not carry a driver")
	}
}

func TestService_AdvanceStatus_TerminalFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	if _, err := f.svc.Cancel(ctx, d.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := f.svc.AdvanceStatus(ctx, d.ID, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

// --- Cancel ---

func TestService_Cancel_MidFlightReleasesDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	drv := f.addDriver(t, newDriverAt("a", 40.71, -74.00))

	if _, err := f.svc.Assign(ctx, d.ID, drv.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AdvanceStatus(ctx, d.ID, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}

	got, err := f.svc.Cancel(ctx, d.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != delivery.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.DriverID != nil {
		t.Fatal("expected driver unbound")
	}

	stored, _ := f.drivers.GetByID(ctx, drv.ID)
	if stored.Status != driver.StatusAvailable {
		t.Fatalf("expected driver freed, got %s", stored.Status)
	}
	if stored.TotalDeliveries != 0 {
		t.Fatalf("cancellation must not credit, got %d", stored.TotalDeliveries)
	}
}

// --- ForceStatus ---

func TestService_ForceStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))

	got, err := f.svc.ForceStatus(ctx, d.ID, delivery.StatusInTransit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != delivery.StatusInTransit {
		t.Fatalf("expected in_transit, got %s", got.Status)
	}
}

func TestService_ForceStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))

	_, err := f.svc.ForceStatus(context.Background(), d.ID, "teleported")
	if err == nil {
		t.Fatal("expected error")
	}
	de, ok := err.(*domainerrors.DomainError)
	if !ok || de.Code != domainerrors.ErrValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestService_ForceStatus_NoDriverBookkeeping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.addDelivery(t, newDeliveryAt(40.71, -74.00))
	drv := f.addDriver(t, newDriverAt("a", 40.71, -74.00))
	if _, err := f.svc.Assign(ctx, d.ID, drv.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := f.svc.ForceStatus(ctx, d.ID, delivery.StatusDelivered); err != nil {
		t.Fatalf("force: %v", err)
	}

	stored, _ := f.drivers.GetByID(ctx, drv.ID)
	if stored.TotalDeliveries != 0 {
		t.Fatalf("override must not credit the driver, got %d", stored.TotalDeliveries)
	}
	if stored.Status != driver.StatusBusy {
		t.Fatalf("override must not free the driver, got %s", stored.Status)
	}
}

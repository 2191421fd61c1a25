package order

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/appetiteclub/roms/internal/apperr"
	"github.com/appetiteclub/roms/internal/menu"
	"github.com/google/uuid"
)

func price(v float64) *float64 { return &v }

func newTestService(repo *MockOrderRepo, policy Policy, catalog MenuCatalog) (*Service, *MockNotifier) {
	notifier := &MockNotifier{}
	svc := NewService(ServiceDeps{
		Repo:     repo,
		Catalog:  catalog,
		Rates:    fixedRate(0.05),
		Notifier: notifier,
		Policy:   policy,
	}, nil)
	return svc, notifier
}

func TestServicePlaceScenario(t *testing.T) {
	ctx := context.Background()
	repo := NewMockOrderRepo()
	svc, notifier := newTestService(repo, Strict, nil)

	first, created, err := svc.Place(ctx, PlaceOrderRequest{
		TableNumber: 3,
		Items:       []PlaceItemRequest{{Name: "Pizza", Price: price(12.99), Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if !created {
		t.Error("first placement should create an order")
	}
	if math.Abs(first.Total-25.98) > 1e-9 {
		t.Errorf("Total = %v, want 25.98", first.Total)
	}
	if first.Status != "pending" {
		t.Errorf("Status = %q, want pending", first.Status)
	}
	if first.CustomerName != "Guest" {
		t.Errorf("CustomerName = %q, want Guest", first.CustomerName)
	}

	done, err := svc.UpdateItemStatus(ctx, first.ID, 0, ItemStatusUpdateRequest{Status: "completed"})
	if err != nil {
		t.Fatalf("UpdateItemStatus() error = %v", err)
	}
	if done.Status != "completed" {
		t.Errorf("Status = %q, want completed", done.Status)
	}
	if done.TaxRateAtCompletion == nil || *done.TaxRateAtCompletion != 0.05 {
		t.Errorf("TaxRateAtCompletion = %v, want 0.05", done.TaxRateAtCompletion)
	}

	second, created, err := svc.Place(ctx, PlaceOrderRequest{
		TableNumber: 3,
		Items:       []PlaceItemRequest{{Name: "Coffee", Price: price(4.49), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if !created || second.ID == first.ID {
		t.Error("placement after completion should start a new order")
	}
	if repo.count() != 2 {
		t.Errorf("repo holds %d orders, want 2", repo.count())
	}

	want := []string{"orders:updated", "orders:updated", "order:itemUpdated", "orders:updated"}
	got := notifier.names()
	if len(got) != len(want) {
		t.Fatalf("signals = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("signal[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestServicePlaceMergesIntoOpenOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMockOrderRepo()
	svc, _ := newTestService(repo, Strict, nil)

	first, _, err := svc.Place(ctx, PlaceOrderRequest{
		TableNumber:  5,
		CustomerName: "Ana",
		Items:        []PlaceItemRequest{{Name: "Salad", Price: price(8.99), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	for _, status := range []string{"confirmed", "preparing", "ready"} {
		if _, err := svc.UpdateStatus(ctx, first.ID, status); err != nil {
			t.Fatalf("UpdateStatus(%s) error = %v", status, err)
		}
	}

	merged, created, err := svc.Place(ctx, PlaceOrderRequest{
		TableNumber:  5,
		CustomerName: "Someone Else",
		Items:        []PlaceItemRequest{{Name: "Tiramisu", Price: price(6.99), Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if created {
		t.Error("second batch should append to the open order")
	}
	if merged.ID != first.ID {
		t.Errorf("merged into %s, want %s", merged.ID, first.ID)
	}
	if len(merged.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(merged.Items))
	}
	if merged.Status != "preparing" {
		t.Errorf("Status = %q, want preparing", merged.Status)
	}
	if merged.CustomerName != "Ana" {
		t.Errorf("CustomerName = %q, want Ana", merged.CustomerName)
	}
	if math.Abs(merged.Total-(8.99+13.98)) > 1e-9 {
		t.Errorf("Total = %v", merged.Total)
	}
	if repo.count() != 1 {
		t.Errorf("repo holds %d orders, want 1", repo.count())
	}
}

func TestServicePlaceValidation(t *testing.T) {
	tests := []struct {
		name string
		req  PlaceOrderRequest
	}{
		{name: "zeroTable", req: PlaceOrderRequest{TableNumber: 0, Items: []PlaceItemRequest{{Name: "A", Price: price(1), Quantity: 1}}}},
		{name: "noItems", req: PlaceOrderRequest{TableNumber: 1}},
		{name: "zeroQuantity", req: PlaceOrderRequest{TableNumber: 1, Items: []PlaceItemRequest{{Name: "A", Price: price(1), Quantity: 0}}}},
		{name: "negativePrice", req: PlaceOrderRequest{TableNumber: 1, Items: []PlaceItemRequest{{Name: "A", Price: price(-1), Quantity: 1}}}},
		{name: "missingPrice", req: PlaceOrderRequest{TableNumber: 1, Items: []PlaceItemRequest{{Name: "A", Quantity: 1}}}},
		{name: "missingName", req: PlaceOrderRequest{TableNumber: 1, Items: []PlaceItemRequest{{Price: price(1), Quantity: 1}}}},
		{name: "unknownMenuItem", req: PlaceOrderRequest{TableNumber: 1, Items: []PlaceItemRequest{{MenuItemID: ptrUUID(uuid.New()), Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockOrderRepo()
			svc, notifier := newTestService(repo, Strict, NewMockCatalog())

			_, _, err := svc.Place(context.Background(), tt.req)
			if !apperr.IsValidation(err) {
				t.Fatalf("Place() error = %v, want validation error", err)
			}
			if repo.count() != 0 {
				t.Error("rejected placement should not persist")
			}
			if len(notifier.names()) != 0 {
				t.Error("rejected placement should not notify")
			}
		})
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

func TestServicePlaceResolvesMenuItems(t *testing.T) {
	pizza := menu.NewMenuItem()
	pizza.Name = "Margherita Pizza"
	pizza.Price = 12.99

	soldOut := menu.NewMenuItem()
	soldOut.Name = "Iced Coffee"
	soldOut.Price = 4.49
	soldOut.Available = false

	repo := NewMockOrderRepo()
	svc, _ := newTestService(repo, Strict, NewMockCatalog(pizza, soldOut))

	o, _, err := svc.Place(context.Background(), PlaceOrderRequest{
		TableNumber: 2,
		Items:       []PlaceItemRequest{{MenuItemID: ptrUUID(pizza.ID), Name: "ignored", Price: price(1), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if o.Items[0].Name != "Margherita Pizza" || o.Items[0].Price != 12.99 {
		t.Errorf("item snapshot = %+v", o.Items[0])
	}

	pizza.Price = 20
	stored, _ := svc.Get(context.Background(), o.ID)
	if stored.Items[0].Price != 12.99 {
		t.Errorf("catalog price change leaked into order: %v", stored.Items[0].Price)
	}

	_, _, err = svc.Place(context.Background(), PlaceOrderRequest{
		TableNumber: 2,
		Items:       []PlaceItemRequest{{MenuItemID: ptrUUID(soldOut.ID), Quantity: 1}},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("unavailable item error = %v, want validation error", err)
	}
}

func TestServiceUpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		target     string
		wantStatus string
		wantKind   apperr.Kind
		wantErr    bool
	}{
		{name: "strictSuccessor", policy: Strict, target: "confirmed", wantStatus: "confirmed"},
		{name: "strictSkip", policy: Strict, target: "ready", wantErr: true, wantKind: apperr.KindValidation},
		{name: "lenientSkip", policy: Lenient, target: "ready", wantStatus: "ready"},
		{name: "invalidValue", policy: Lenient, target: "served", wantErr: true, wantKind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockOrderRepo()
			svc, _ := newTestService(repo, tt.policy, nil)
			o, _, err := svc.Place(context.Background(), PlaceOrderRequest{
				TableNumber: 1,
				Items:       []PlaceItemRequest{{Name: "Soup", Price: price(4), Quantity: 1}},
			})
			if err != nil {
				t.Fatalf("Place() error = %v", err)
			}

			updated, err := svc.UpdateStatus(context.Background(), o.ID, tt.target)
			if tt.wantErr {
				if err == nil || apperr.KindOf(err) != tt.wantKind {
					t.Fatalf("UpdateStatus() error = %v, want kind %v", err, tt.wantKind)
				}
				stored, _ := svc.Get(context.Background(), o.ID)
				if stored.Status != "pending" {
					t.Errorf("rejected transition changed status to %q", stored.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() error = %v", err)
			}
			if updated.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", updated.Status, tt.wantStatus)
			}
		})
	}
}

func TestServiceUpdateStatusNotFound(t *testing.T) {
	svc, _ := newTestService(NewMockOrderRepo(), Strict, nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "confirmed")
	if !apperr.IsNotFound(err) {
		t.Errorf("UpdateStatus() error = %v, want not found", err)
	}

	_, err = svc.UpdateItemStatus(context.Background(), uuid.New(), 0, ItemStatusUpdateRequest{Status: "prepared"})
	if !apperr.IsNotFound(err) {
		t.Errorf("UpdateItemStatus() error = %v, want not found", err)
	}
}

func TestServiceUpdateItemStatusOutOfRangeLeavesOrder(t *testing.T) {
	repo := NewMockOrderRepo()
	svc, notifier := newTestService(repo, Strict, nil)
	o, _, _ := svc.Place(context.Background(), PlaceOrderRequest{
		TableNumber: 4,
		Items:       []PlaceItemRequest{{Name: "Soup", Price: price(4), Quantity: 1}},
	})
	signalsBefore := len(notifier.names())

	_, err := svc.UpdateItemStatus(context.Background(), o.ID, 5, ItemStatusUpdateRequest{Status: "completed"})
	if !apperr.IsValidation(err) {
		t.Fatalf("UpdateItemStatus() error = %v, want validation error", err)
	}

	stored, _ := svc.Get(context.Background(), o.ID)
	if stored.Version != o.Version || stored.Items[0].Status != "pending" {
		t.Error("rejected item update modified the order")
	}
	if len(notifier.names()) != signalsBefore {
		t.Error("rejected item update should not notify")
	}
}

func TestServiceSaveConflict(t *testing.T) {
	repo := NewMockOrderRepo()
	svc, _ := newTestService(repo, Strict, nil)
	o, _, _ := svc.Place(context.Background(), PlaceOrderRequest{
		TableNumber: 4,
		Items:       []PlaceItemRequest{{Name: "Soup", Price: price(4), Quantity: 1}},
	})

	repo.SaveFunc = func(ctx context.Context, order *Order) error {
		return ErrConcurrentUpdate
	}

	_, err := svc.UpdateStatus(context.Background(), o.ID, "confirmed")
	if !apperr.IsConflict(err) {
		t.Errorf("UpdateStatus() error = %v, want conflict", err)
	}
}

func TestServiceRepoFailure(t *testing.T) {
	repo := NewMockOrderRepo()
	repo.FindOpenByTableFunc = func(ctx context.Context, tableNumber int) (*Order, error) {
		return nil, errors.New("connection refused")
	}
	svc, _ := newTestService(repo, Strict, nil)

	_, _, err := svc.Place(context.Background(), PlaceOrderRequest{
		TableNumber: 1,
		Items:       []PlaceItemRequest{{Name: "Soup", Price: price(4), Quantity: 1}},
	})
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("Place() error = %v, want internal", err)
	}
}

func TestServiceConcurrentPlacementsShareOneOrder(t *testing.T) {
	repo := NewMockOrderRepo()
	svc, _ := newTestService(repo, Strict, nil)

	// Widen the find-then-create window so unserialized callers would race.
	repo.FindOpenByTableFunc = func(ctx context.Context, tableNumber int) (*Order, error) {
		repo.FindOpenByTableFunc = nil
		time.Sleep(10 * time.Millisecond)
		return repo.FindOpenByTable(ctx, tableNumber)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Place(context.Background(), PlaceOrderRequest{
				TableNumber: 9,
				Items:       []PlaceItemRequest{{Name: "Fries", Price: price(3), Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Place() error = %v", err)
		}
	}

	orders, _ := repo.List(context.Background(), ListFilter{TableNumber: 9})
	if len(orders) != 1 {
		t.Fatalf("table 9 has %d orders, want 1", len(orders))
	}
	if len(orders[0].Items) != workers {
		t.Errorf("len(Items) = %d, want %d", len(orders[0].Items), workers)
	}
	if math.Abs(orders[0].Total-3*workers) > 1e-9 {
		t.Errorf("Total = %v, want %v", orders[0].Total, 3*workers)
	}
}

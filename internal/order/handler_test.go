package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func newTestHandler(repo *MockOrderRepo) *Handler {
	svc, _ := newTestService(repo, Strict, nil)
	return NewHandler(svc, aqm.NewConfig(), nil)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(nil, aqm.NewConfig(), nil)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
	if h.logger == nil {
		t.Error("NewHandler() should set noop logger when nil")
	}
}

func TestHandlerPlaceOrder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "validOrder",
			body:       `{"table_number":3,"items":[{"name":"Pizza","price":12.99,"quantity":2}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missingTable",
			body:       `{"items":[{"name":"Pizza","price":12.99,"quantity":2}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "emptyItems",
			body:       `{"table_number":3,"items":[]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalidJSON",
			body:       `{"table_number":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(NewMockOrderRepo())

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.PlaceOrder(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			data := decodeData(t, w)
			if data["total"].(float64) != 25.98 {
				t.Errorf("total = %v, want 25.98", data["total"])
			}
			if data["status"] != "pending" {
				t.Errorf("status = %v, want pending", data["status"])
			}
		})
	}
}

func TestHandlerPlaceOrderAppendReturnsOK(t *testing.T) {
	h := newTestHandler(NewMockOrderRepo())
	body := `{"table_number":3,"items":[{"name":"Pizza","price":12.99,"quantity":1}]}`

	w := httptest.NewRecorder()
	h.PlaceOrder(w, httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("first status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.PlaceOrder(w, httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("second status = %d, want 200", w.Code)
	}
	data := decodeData(t, w)
	if items := data["items"].([]interface{}); len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestHandlerGetOrder(t *testing.T) {
	repo := NewMockOrderRepo()
	h := newTestHandler(repo)
	existing := NewOrder(2)
	existing.Items = []Item{{Name: "Soup", Price: 4, Quantity: 1, Status: "pending"}}
	existing.BeforeCreate()
	_ = repo.Create(context.Background(), existing)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "found", id: existing.ID.String(), wantStatus: http.StatusOK},
		{name: "notFound", id: uuid.New().String(), wantStatus: http.StatusNotFound},
		{name: "invalidID", id: "not-a-uuid", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParams(httptest.NewRequest(http.MethodGet, "/orders/"+tt.id, nil), map[string]string{"id": tt.id})
			w := httptest.NewRecorder()

			h.GetOrder(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerUpdateOrderStatus(t *testing.T) {
	repo := NewMockOrderRepo()
	h := newTestHandler(repo)
	existing := NewOrder(2)
	existing.Items = []Item{{Name: "Soup", Price: 4, Quantity: 1, Status: "pending"}}
	existing.BeforeCreate()
	_ = repo.Create(context.Background(), existing)

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{name: "illegalSkip", id: existing.ID.String(), body: `{"status":"completed"}`, wantStatus: http.StatusBadRequest},
		{name: "unknownStatus", id: existing.ID.String(), body: `{"status":"eaten"}`, wantStatus: http.StatusBadRequest},
		{name: "successor", id: existing.ID.String(), body: `{"status":"confirmed"}`, wantStatus: http.StatusOK},
		{name: "missingOrder", id: uuid.New().String(), body: `{"status":"confirmed"}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/orders/"+tt.id+"/status", bytes.NewBufferString(tt.body))
			req = withURLParams(req, map[string]string{"id": tt.id})
			w := httptest.NewRecorder()

			h.UpdateOrderStatus(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandlerUpdateItemStatus(t *testing.T) {
	repo := NewMockOrderRepo()
	h := newTestHandler(repo)
	existing := NewOrder(2)
	existing.Items = []Item{{Name: "Soup", Price: 4, Quantity: 1, Status: "pending"}}
	existing.Total = 4
	existing.BeforeCreate()
	_ = repo.Create(context.Background(), existing)

	tests := []struct {
		name        string
		index       string
		body        string
		wantStatus  int
		orderStatus string
	}{
		{name: "nonIntegerIndex", index: "first", body: `{"status":"completed"}`, wantStatus: http.StatusBadRequest},
		{name: "outOfRange", index: "3", body: `{"status":"completed"}`, wantStatus: http.StatusBadRequest},
		{name: "completesOrder", index: "0", body: `{"status":"completed"}`, wantStatus: http.StatusOK, orderStatus: "completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := existing.ID.String()
			req := httptest.NewRequest(http.MethodPatch, "/orders/"+id+"/items/"+tt.index+"/status", bytes.NewBufferString(tt.body))
			req = withURLParams(req, map[string]string{"id": id, "index": tt.index})
			w := httptest.NewRecorder()

			h.UpdateItemStatus(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.orderStatus != "" {
				data := decodeData(t, w)
				if data["status"] != tt.orderStatus {
					t.Errorf("order status = %v, want %s", data["status"], tt.orderStatus)
				}
			}
		})
	}
}

func TestHandlerListOrdersInvalidFilters(t *testing.T) {
	h := newTestHandler(NewMockOrderRepo())

	tests := []struct {
		name  string
		query string
	}{
		{name: "badTableNumber", query: "?table_number=x"},
		{name: "badFrom", query: "?from=yesterday"},
		{name: "badTo", query: "?to=2024-13-45"},
		{name: "badStatus", query: "?status=eaten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ListOrders(w, httptest.NewRequest(http.MethodGet, "/orders"+tt.query, nil))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

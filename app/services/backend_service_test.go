package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetPendingPrintOrdersRequestShape(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getPendingPrintOrders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		w.Write([]byte(`{"pedidos": []}`))
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL+"/", "carrinho-abc")
	if _, err := backend.GetPendingPrintOrders(); err != nil {
		t.Fatalf("GetPendingPrintOrders: %v", err)
	}

	if got["printed"] != float64(0) || got["ordem"] != float64(0) {
		t.Errorf("printed/ordem = %v/%v, want 0/0", got["printed"], got["ordem"])
	}
	if got["carrinho"] != "carrinho-abc" {
		t.Errorf("carrinho = %v", got["carrinho"])
	}
	if got["categoria"] != float64(3) {
		t.Errorf("categoria = %v, want 3", got["categoria"])
	}
}

func TestGetPendingPrintOrdersParsesOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos": [
			{"id": 1, "pedido": [{"pedido": "Chopp", "quantidade": "2"}], "mesa": 7},
			{"id": "2", "pedido": "texto livre do pedido"}
		]}`))
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL, "c")
	orders, err := backend.GetPendingPrintOrders()
	if err != nil {
		t.Fatalf("GetPendingPrintOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].Table() != "7" {
		t.Errorf("Table = %q, want 7", orders[0].Table())
	}
	lines := orders[0].NormalizeLines()
	if len(lines) != 1 || lines[0].Name != "Chopp" || lines[0].Quantity != 2 {
		t.Errorf("lines = %+v", lines)
	}
	if got := orders[1].LegacyText(); got != "texto livre do pedido" {
		t.Errorf("LegacyText = %q", got)
	}
}

func TestGetPendingPrintOrdersSkipsMalformedElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pedidos": [
			{"id": {"bogus": true}, "pedido": "quebrado"},
			{"id": 2, "pedido": [{"pedido": "Batata", "quantidade": 1}]}
		]}`))
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL, "c")
	orders, err := backend.GetPendingPrintOrders()
	if err != nil {
		t.Fatalf("GetPendingPrintOrders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want the valid one only", len(orders))
	}
	if ids := orders[0].CollectIDs(); len(ids) != 1 || ids[0] != "2" {
		t.Errorf("ids = %v", ids)
	}
}

func TestGetPendingPrintOrdersErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusInternalServerError, "boom", "HTTP 500"},
		{"html body", http.StatusOK, "<html>login</html>", "non-JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			backend := NewBackendService(srv.URL, "c")
			_, err := backend.GetPendingPrintOrders()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestUpdatePrintedBodyShapes(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/updatePrinted" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		got = nil
		json.Unmarshal(body, &got)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL, "c")

	if err := backend.UpdatePrinted([]string{"10"}); err != nil {
		t.Fatalf("single id: %v", err)
	}
	if got["pedidoId"] != "10" {
		t.Errorf("pedidoId = %v", got["pedidoId"])
	}
	if _, ok := got["pedidoIds"]; ok {
		t.Error("pedidoIds present on single-id call")
	}

	if err := backend.UpdatePrinted([]string{"10", "11"}); err != nil {
		t.Fatalf("multi id: %v", err)
	}
	ids, ok := got["pedidoIds"].([]interface{})
	if !ok || len(ids) != 2 {
		t.Errorf("pedidoIds = %v", got["pedidoIds"])
	}
	if _, ok := got["pedidoId"]; ok {
		t.Error("pedidoId present on multi-id call")
	}
	if got["carrinho"] != "c" {
		t.Errorf("carrinho = %v", got["carrinho"])
	}
}

func TestUpdatePrintedRejectsEmptyIDs(t *testing.T) {
	backend := NewBackendService("http://unused", "c")
	if err := backend.UpdatePrinted(nil); err == nil {
		t.Error("expected error for empty id list")
	}
}

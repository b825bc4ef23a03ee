package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PrintStation/app/models"
)

// kitchenCategory is the backend category of orders this station prints.
const kitchenCategory = 3

// BackendService consumes the ordering backend's REST contract: the
// pending-print-orders fetch and the mark-printed call.
type BackendService struct {
	baseURL  string
	cartCode string
	client   *http.Client
}

// NewBackendService creates a client for the given backend.
func NewBackendService(baseURL, cartCode string) *BackendService {
	return &BackendService{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cartCode: cartCode,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type pendingOrdersRequest struct {
	Printed   int    `json:"printed"`
	Ordem     int    `json:"ordem"`
	Carrinho  string `json:"carrinho"`
	Categoria int    `json:"categoria"`
}

type pendingOrdersResponse struct {
	Pedidos []json.RawMessage `json:"pedidos"`
}

// GetPendingPrintOrders fetches unprinted orders. Non-2xx responses and
// non-JSON bodies are returned as errors; the caller logs and treats them
// as "nothing to do".
func (s *BackendService) GetPendingPrintOrders() ([]models.Order, error) {
	body, err := json.Marshal(pendingOrdersRequest{
		Printed:   0,
		Ordem:     0,
		Carrinho:  s.cartCode,
		Categoria: kitchenCategory,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	data, err := s.post("/getPendingPrintOrders", body)
	if err != nil {
		return nil, err
	}

	var parsed pendingOrdersResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("non-JSON response: %s", truncateForLog(data))
	}

	// decode element by element: one malformed order must not starve
	// the rest of the backlog on every cycle
	orders := make([]models.Order, 0, len(parsed.Pedidos))
	for _, raw := range parsed.Pedidos {
		var order models.Order
		if err := json.Unmarshal(raw, &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdatePrinted marks the given order ids as printed, batched as one call
// per job. The backend expects pedidoId for a single order and pedidoIds
// for a batch.
func (s *BackendService) UpdatePrinted(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("no order ids to mark as printed")
	}

	payload := map[string]interface{}{"carrinho": s.cartCode}
	if len(ids) == 1 {
		payload["pedidoId"] = ids[0]
	} else {
		payload["pedidoIds"] = ids
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding request: %w", err)
	}

	_, err = s.post("/updatePrinted", body)
	return err
}

func (s *BackendService) post(path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", s.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned HTTP %d: %s", path, resp.StatusCode, truncateForLog(data))
	}
	return data, nil
}

func truncateForLog(data []byte) string {
	const max = 300
	s := string(data)
	if len(s) > max {
		return s[:max]
	}
	return s
}

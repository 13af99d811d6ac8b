package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// OrderService covers the /orders endpoints
type OrderService struct {
	c *Client
}

// Orders returns the order service
func (c *Client) Orders() *OrderService { return &OrderService{c: c} }

// OrderQuery narrows the order list on the server. Zero values are omitted.
type OrderQuery struct {
	Page      int
	Limit     int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	return v
}

// List returns a page of orders
func (s *OrderService) List(ctx context.Context, q OrderQuery) (*OrderList, error) {
	out, err := getJSON[OrderList](ctx, s.c, "/orders/all", q.values())
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id string) (*Order, error) {
	o, err := getJSON[Order](ctx, s.c, pathf("/orders/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves an order to a new status
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	o, err := sendJSON[Order](ctx, s.c, http.MethodPut, pathf("/orders/%s", id), map[string]string{"status": status})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Delete removes an order
func (s *OrderService) Delete(ctx context.Context, id string) error {
	return deleteJSON(ctx, s.c, pathf("/orders/%s", id))
}

// ByUser returns the orders of one customer
func (s *OrderService) ByUser(ctx context.Context, userID string) ([]Order, error) {
	return getJSON[[]Order](ctx, s.c, pathf("/orders/user/%s", userID), nil)
}

// Statistics returns order counts by status
func (s *OrderService) Statistics(ctx context.Context) (*OrderStatistics, error) {
	out, err := getJSON[OrderStatistics](ctx, s.c, "/orders/statistics", nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CompletedStatistics returns revenue over completed orders
func (s *OrderService) CompletedStatistics(ctx context.Context) (*CompletedStatistics, error) {
	out, err := getJSON[struct {
		Success bool                `json:"success"`
		Data    CompletedStatistics `json:"data"`
	}](ctx, s.c, "/orders/statistics/completed", nil)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Recent returns the latest orders
func (s *OrderService) Recent(ctx context.Context) ([]Order, error) {
	return getJSON[[]Order](ctx, s.c, "/order/recent", nil)
}

// Export downloads the orders spreadsheet
func (s *OrderService) Export(ctx context.Context) ([]byte, error) {
	return getBytes(ctx, s.c, "/orders/export", nil)
}

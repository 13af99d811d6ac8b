package client

import (
	"context"
	"net/url"
)

// DashboardService covers the /dashboard statistics endpoints
type DashboardService struct {
	c *Client
}

// Dashboard returns the dashboard service
func (c *Client) Dashboard() *DashboardService { return &DashboardService{c: c} }

// RangeQuery is a date range, both ends inclusive, formatted YYYY-MM-DD
type RangeQuery struct {
	StartDate string
	EndDate   string
	GroupBy   string // day, week or month
}

func (q RangeQuery) values() url.Values {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if q.GroupBy != "" {
		v.Set("groupBy", q.GroupBy)
	}
	return v
}

// Overview returns the headline numbers
func (s *DashboardService) Overview(ctx context.Context) (*OverviewStats, error) {
	out, err := getJSON[OverviewStats](ctx, s.c, "/dashboard/stats", nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Revenue returns revenue over a date range
func (s *DashboardService) Revenue(ctx context.Context, q RangeQuery) (*RevenueStats, error) {
	out, err := getJSON[RevenueStats](ctx, s.c, "/dashboard/revenue", q.values())
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders returns order counts over a date range
func (s *DashboardService) Orders(ctx context.Context, q RangeQuery) (*OrderStatistics, error) {
	out, err := getJSON[OrderStatistics](ctx, s.c, "/dashboard/orders", q.values())
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Products returns catalog statistics
func (s *DashboardService) Products(ctx context.Context) (map[string]any, error) {
	return getJSON[map[string]any](ctx, s.c, "/dashboard/products", nil)
}

// Users returns customer statistics
func (s *DashboardService) Users(ctx context.Context) (map[string]any, error) {
	return getJSON[map[string]any](ctx, s.c, "/dashboard/users", nil)
}

// Export downloads a report (e.g. "revenue", "orders") as raw bytes
func (s *DashboardService) Export(ctx context.Context, kind string, q RangeQuery) ([]byte, error) {
	return getBytes(ctx, s.c, pathf("/dashboard/export/%s", kind), q.values())
}

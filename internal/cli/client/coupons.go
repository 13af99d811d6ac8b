package client

import (
	"context"
	"net/http"
)

// CouponService covers the /coupons endpoints
type CouponService struct {
	c *Client
}

// Coupons returns the coupon service
func (c *Client) Coupons() *CouponService { return &CouponService{c: c} }

// List returns every coupon
func (s *CouponService) List(ctx context.Context) ([]Coupon, error) {
	return getJSON[[]Coupon](ctx, s.c, "/coupons", nil)
}

// Get returns one coupon
func (s *CouponService) Get(ctx context.Context, id string) (*Coupon, error) {
	cp, err := getJSON[Coupon](ctx, s.c, pathf("/coupons/%s", id), nil)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Create adds a coupon
func (s *CouponService) Create(ctx context.Context, in CouponInput) (*Coupon, error) {
	cp, err := sendJSON[Coupon](ctx, s.c, http.MethodPost, "/coupons", in)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Update replaces a coupon
func (s *CouponService) Update(ctx context.Context, id string, in CouponInput) (*Coupon, error) {
	cp, err := sendJSON[Coupon](ctx, s.c, http.MethodPut, pathf("/coupons/%s", id), in)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Delete removes a coupon
func (s *CouponService) Delete(ctx context.Context, id string) error {
	return deleteJSON(ctx, s.c, pathf("/coupons/%s", id))
}

// Validate checks whether a code can be used right now
func (s *CouponService) Validate(ctx context.Context, code string) (*CouponValidation, error) {
	out, err := sendJSON[CouponValidation](ctx, s.c, http.MethodPost, "/coupons/validate", map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

const (
	searchLimit     = 10
	suggestionLimit = 8
)

var searchKinds = []string{"products", "orders", "users", "coupons", "categories"}

// SearchResult groups matches across resources. Kinds that were not searched are empty.
type SearchResult struct {
	Products   []models.Snack    `json:"products"`
	Orders     []models.Order    `json:"orders"`
	Users      []models.User     `json:"users"`
	Coupons    []models.Coupon   `json:"coupons"`
	Categories []models.Category `json:"categories"`
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		fail(c, http.StatusBadRequest, "query is required")
		return
	}
	kind := c.Query("type")
	if kind != "" && !slices.Contains(searchKinds, kind) {
		fail(c, http.StatusBadRequest, "type must be one of: "+strings.Join(searchKinds, ", "))
		return
	}
	want := func(k string) bool { return kind == "" || kind == k }

	q := likePattern(query)
	res := SearchResult{
		Products:   []models.Snack{},
		Orders:     []models.Order{},
		Users:      []models.User{},
		Coupons:    []models.Coupon{},
		Categories: []models.Category{},
	}

	lookups := []struct {
		kind string
		run  func() error
	}{
		{"products", func() error {
			return s.db.Where(`LOWER(snack_name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, q, q).
				Limit(searchLimit).Find(&res.Products).Error
		}},
		{"orders", func() error {
			return s.db.Preload("User").
				Where(`LOWER(id) LIKE ? ESCAPE '\' OR LOWER(shipping_address) LIKE ? ESCAPE '\' OR status = ?`, q, q, strings.ToLower(query)).
				Order("created_at DESC").Limit(searchLimit).Find(&res.Orders).Error
		}},
		{"users", func() error {
			return s.db.Where(`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, q, q, q).
				Limit(searchLimit).Find(&res.Users).Error
		}},
		{"coupons", func() error {
			return s.db.Where(`LOWER(code) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, q, q).
				Limit(searchLimit).Find(&res.Coupons).Error
		}},
		{"categories", func() error {
			return s.db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, q).Limit(searchLimit).Find(&res.Categories).Error
		}},
	}

	for _, l := range lookups {
		if !want(l.kind) {
			continue
		}
		if err := l.run(); err != nil {
			s.internalError(c, err, "Failed to search "+l.kind)
			return
		}
	}

	c.JSON(http.StatusOK, res)
}

// searchSuggestions completes a partial query from snack names, category names and coupon codes
func (s *Server) searchSuggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusOK, []string{})
		return
	}
	q := likePattern(query)

	var names []string
	sources := []struct {
		model  any
		column string
	}{
		{&models.Snack{}, "snack_name"},
		{&models.Category{}, "name"},
		{&models.Coupon{}, "code"},
	}
	for _, src := range sources {
		var found []string
		if err := s.db.Model(src.model).Where("LOWER("+src.column+`) LIKE ? ESCAPE '\'`, q).
			Order(src.column).Limit(suggestionLimit).Pluck(src.column, &found).Error; err != nil {
			s.internalError(c, err, "Failed to load suggestions")
			return
		}
		names = append(names, found...)
	}

	suggestions := make([]string, 0, suggestionLimit)
	for _, name := range names {
		if len(suggestions) == suggestionLimit {
			break
		}
		if !slices.Contains(suggestions, name) {
			suggestions = append(suggestions, name)
		}
	}

	c.JSON(http.StatusOK, suggestions)
}

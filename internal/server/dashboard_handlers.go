package server

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

const defaultRevenueDays = 30

// OverviewStats is the dashboard headline numbers
type OverviewStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int64   `json:"totalOrders"`
	TotalProducts  int64   `json:"totalProducts"`
	TotalCustomers int64   `json:"totalCustomers"`
}

// RevenuePoint is revenue for one bucket of a period
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// RevenueStats is completed revenue over a date range
type RevenueStats struct {
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Total     float64        `json:"total"`
	Points    []RevenuePoint `json:"points"`
}

func (s *Server) dashboardStats(c *gin.Context) {
	var stats OverviewStats
	if err := s.db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		s.internalError(c, err, "Failed to count orders")
		return
	}
	if err := s.db.Model(&models.Snack{}).Count(&stats.TotalProducts).Error; err != nil {
		s.internalError(c, err, "Failed to count snacks")
		return
	}
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&stats.TotalCustomers).Error; err != nil {
		s.internalError(c, err, "Failed to count customers")
		return
	}
	if err := s.db.Model(&models.Order{}).Where("status = ?", models.OrderCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		s.internalError(c, err, "Failed to sum revenue")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// revenueWindow resolves the requested range, defaulting to the last 30 days. to is exclusive.
func (s *Server) revenueWindow(c *gin.Context) (from, to time.Time, ok bool) {
	from, to, ok = s.dayRange(c)
	if !ok {
		return from, to, false
	}
	if to.IsZero() {
		now := s.now()
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultRevenueDays)
	}
	return from, to, true
}

func (s *Server) dashboardRevenue(c *gin.Context) {
	from, to, ok := s.revenueWindow(c)
	if !ok {
		return
	}
	groupBy := c.DefaultQuery("groupBy", "day")
	if !slices.Contains([]string{"day", "week", "month"}, groupBy) {
		fail(c, http.StatusBadRequest, "groupBy must be one of: day, week, month")
		return
	}

	stats, err := s.revenue(from, to, groupBy)
	if err != nil {
		s.internalError(c, err, "Failed to compute revenue")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// revenue buckets completed orders created in [from, to)
func (s *Server) revenue(from, to time.Time, groupBy string) (RevenueStats, error) {
	var orders []models.Order
	if err := s.db.Select("id", "total_amount", "created_at").
		Where("status = ?", models.OrderCompleted).
		Scopes(scopeCreated(from, to)).
		Find(&orders).Error; err != nil {
		return RevenueStats{}, err
	}

	stats := RevenueStats{
		StartDate: from.Format(dayLayout),
		EndDate:   to.AddDate(0, 0, -1).Format(dayLayout),
		Points:    []RevenuePoint{},
	}

	index := make(map[string]int)
	for day := bucketStart(from, groupBy); day.Before(to); day = nextBucket(day, groupBy) {
		key := bucketKey(day, groupBy)
		index[key] = len(stats.Points)
		stats.Points = append(stats.Points, RevenuePoint{Date: key})
	}

	for _, o := range orders {
		i, ok := index[bucketKey(bucketStart(o.CreatedAt.In(from.Location()), groupBy), groupBy)]
		if !ok {
			continue
		}
		stats.Points[i].Revenue += o.TotalAmount
		stats.Points[i].Orders++
		stats.Total += o.TotalAmount
	}

	return stats, nil
}

func bucketStart(t time.Time, groupBy string) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch groupBy {
	case "week":
		// Weeks start on Monday
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func nextBucket(t time.Time, groupBy string) time.Time {
	switch groupBy {
	case "week":
		return t.AddDate(0, 0, 7)
	case "month":
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketKey(t time.Time, groupBy string) string {
	if groupBy == "month" {
		return t.Format("2006-01")
	}
	return t.Format(dayLayout)
}

func (s *Server) dashboardOrders(c *gin.Context) {
	from, to, ok := s.dayRange(c)
	if !ok {
		return
	}

	var orders []models.Order
	if err := s.db.Select("id", "status", "total_amount").Scopes(scopeCreated(from, to)).Find(&orders).Error; err != nil {
		s.internalError(c, err, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, orderStats(orders))
}

func (s *Server) dashboardProducts(c *gin.Context) {
	var snacks []models.Snack
	if err := s.db.Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to load snacks")
		return
	}
	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		s.internalError(c, err, "Failed to load categories")
		return
	}

	names := make(map[string]string, len(categories))
	byCategory := make(map[string]int, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
		byCategory[cat.Name] = 0
	}

	lowStock, outOfStock := 0, 0
	inventoryValue := 0.0
	for _, snack := range snacks {
		name, ok := names[snack.CategoryID]
		if !ok {
			name = "Uncategorized"
		}
		byCategory[name]++
		switch {
		case snack.Stock == 0:
			outOfStock++
		case snack.Stock < lowStockThreshold:
			lowStock++
		}
		inventoryValue += float64(snack.Stock) * snack.Price
	}

	c.JSON(http.StatusOK, gin.H{
		"total":          len(snacks),
		"lowStock":       lowStock,
		"outOfStock":     outOfStock,
		"inventoryValue": inventoryValue,
		"byCategory":     byCategory,
	})
}

func (s *Server) dashboardUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Select("id", "role", "status", "created_at").Find(&users).Error; err != nil {
		s.internalError(c, err, "Failed to load users")
		return
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	admins, customers, blocked, newThisMonth := 0, 0, 0, 0
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins++
		} else {
			customers++
		}
		if u.Status == models.UserStatusBlocked {
			blocked++
		}
		if !u.CreatedAt.Before(monthStart) {
			newThisMonth++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":        len(users),
		"admins":       admins,
		"customers":    customers,
		"blocked":      blocked,
		"newThisMonth": newThisMonth,
	})
}

// dashboardExport writes one report as CSV
func (s *Server) dashboardExport(c *gin.Context) {
	kind := c.Param("kind")
	switch kind {
	case "orders":
		s.exportOrders(c)
	case "revenue":
		from, to, ok := s.revenueWindow(c)
		if !ok {
			return
		}
		stats, err := s.revenue(from, to, c.DefaultQuery("groupBy", "day"))
		if err != nil {
			s.internalError(c, err, "Failed to compute revenue")
			return
		}
		rows := [][]string{{"date", "orders", "revenue"}}
		for _, p := range stats.Points {
			rows = append(rows, []string{p.Date, strconv.Itoa(p.Orders), formatAmount(p.Revenue)})
		}
		s.writeCSV(c, "revenue.csv", rows)
	case "products":
		var snacks []models.Snack
		if err := s.db.Order("snack_name").Find(&snacks).Error; err != nil {
			s.internalError(c, err, "Failed to load snacks")
			return
		}
		rows := [][]string{{"id", "name", "category_id", "price", "discount", "stock", "sold"}}
		for _, p := range snacks {
			rows = append(rows, []string{p.ID, p.SnackName, p.CategoryID, formatAmount(p.Price), formatAmount(p.Discount), strconv.Itoa(p.Stock), strconv.Itoa(p.SoldCount)})
		}
		s.writeCSV(c, "products.csv", rows)
	case "users":
		var users []models.User
		if err := s.db.Order("created_at").Find(&users).Error; err != nil {
			s.internalError(c, err, "Failed to load users")
			return
		}
		rows := [][]string{{"id", "name", "email", "phone", "role", "status", "created_at"}}
		for _, u := range users {
			rows = append(rows, []string{u.ID, u.Name, u.Email, u.Phone, u.Role, u.Status, u.CreatedAt.Format(dayLayout)})
		}
		s.writeCSV(c, "users.csv", rows)
	default:
		fail(c, http.StatusBadRequest, fmt.Sprintf("Unknown report %q, must be one of: revenue, orders, products, users", kind))
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

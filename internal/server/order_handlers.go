package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

const recentOrdersLimit = 5

// OrderStatusRequest moves an order to a new status
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderStatistics summarizes orders by status
type OrderStatistics struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"byStatus"`
	TotalRevenue float64        `json:"totalRevenue"`
}

// TopProduct is a best seller row of the completed statistics
type TopProduct struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Image        []string `json:"image"`
	TotalSold    int      `json:"totalSold"`
	TotalRevenue float64  `json:"totalRevenue"`
}

// CompletedStatistics is the revenue summary over completed orders
type CompletedStatistics struct {
	TotalRevenue         float64      `json:"totalRevenue"`
	TotalCompletedOrders int          `json:"totalCompletedOrders"`
	TopProducts          []TopProduct `json:"topProducts"`
}

// listOrders pages orders newest first. Without a limit every order in range is returned.
func (s *Server) listOrders(c *gin.Context) {
	from, to, ok := s.dayRange(c)
	if !ok {
		return
	}

	query := s.db.Model(&models.Order{}).Scopes(scopeCreated(from, to))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.internalError(c, err, "Failed to count orders")
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 0)
	query = query.Preload("User").Order("created_at DESC")
	if limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		s.internalError(c, err, "Failed to list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func (s *Server) getOrder(c *gin.Context) {
	var order models.Order
	if err := s.db.Preload("User").Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		s.lookupError(c, err, "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) listOrdersByUser(c *gin.Context) {
	var orders []models.Order
	if err := s.db.Preload("User").Where("user_id = ?", c.Param("id")).Order("created_at DESC").Find(&orders).Error; err != nil {
		s.internalError(c, err, "Failed to list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) recentOrders(c *gin.Context) {
	var orders []models.Order
	if err := s.db.Preload("User").Order("created_at DESC").Limit(queryInt(c, "limit", recentOrdersLimit)).Find(&orders).Error; err != nil {
		s.internalError(c, err, "Failed to list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

var errSameStatus = errors.New("order already has this status")

// updateOrderStatus applies a status transition. Completing an order marks it paid and counts
// the units as sold; cancelling returns the units to stock.
func (s *Server) updateOrderStatus(c *gin.Context) {
	var req OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !slices.Contains(models.OrderStatuses(), req.Status) {
		fail(c, http.StatusBadRequest, "status must be one of: "+strings.Join(models.OrderStatuses(), ", "))
		return
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
			return err
		}
		if order.Status == req.Status {
			return errSameStatus
		}
		if err := models.CheckTransition(order.Status, req.Status); err != nil {
			return err
		}

		updates := map[string]any{"status": req.Status}
		switch req.Status {
		case models.OrderCompleted:
			updates["payment_status"] = models.PaymentPaid
			for _, item := range order.Items {
				if err := tx.Model(&models.Snack{}).Where("id = ?", item.SnackID).
					Update("sold_count", gorm.Expr("sold_count + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		case models.OrderCancelled:
			for _, item := range order.Items {
				if err := tx.Model(&models.Snack{}).Where("id = ?", item.SnackID).
					Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&order).Updates(updates).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, errSameStatus):
		fail(c, http.StatusBadRequest, "Order is already "+req.Status)
		return
	case errors.Is(err, models.ErrInvalidTransition):
		fail(c, http.StatusBadRequest, fmt.Sprintf("Cannot move order from %s to %s", order.Status, req.Status))
		return
	default:
		s.internalError(c, err, "Failed to update order")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("order_id", order.ID).
		Str("status", req.Status).
		Str("changed_by", sessionData.UserID).
		Msg("Order status changed")

	if err := s.db.Preload("User").Where("id = ?", order.ID).First(&order).Error; err != nil {
		s.lookupError(c, err, "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) deleteOrder(c *gin.Context) {
	result := s.db.Where("id = ?", c.Param("id")).Delete(&models.Order{})
	if result.Error != nil {
		s.internalError(c, result.Error, "Failed to delete order")
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// orderStats counts orders by status and sums completed revenue
func orderStats(orders []models.Order) OrderStatistics {
	stats := OrderStatistics{Total: len(orders), ByStatus: make(map[string]int)}
	for _, status := range models.OrderStatuses() {
		stats.ByStatus[status] = 0
	}
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.Status == models.OrderCompleted {
			stats.TotalRevenue += o.TotalAmount
		}
	}
	return stats
}

func (s *Server) orderStatistics(c *gin.Context) {
	var orders []models.Order
	if err := s.db.Select("id", "status", "total_amount").Find(&orders).Error; err != nil {
		s.internalError(c, err, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, orderStats(orders))
}

func (s *Server) completedStatistics(c *gin.Context) {
	var completed []models.Order
	if err := s.db.Where("status = ?", models.OrderCompleted).Find(&completed).Error; err != nil {
		s.internalError(c, err, "Failed to load orders")
		return
	}

	stats := CompletedStatistics{TotalCompletedOrders: len(completed), TopProducts: []TopProduct{}}
	byID := make(map[string]*TopProduct)
	for _, o := range completed {
		stats.TotalRevenue += o.TotalAmount
		for _, item := range o.Items {
			top, ok := byID[item.SnackID]
			if !ok {
				top = &TopProduct{ID: item.SnackID, Name: item.Name, Image: []string{}}
				byID[item.SnackID] = top
			}
			top.TotalSold += item.Quantity
			top.TotalRevenue += float64(item.Quantity) * item.Price
		}
	}

	ids := make([]string, 0, len(byID))
	for id, top := range byID {
		ids = append(ids, id)
		stats.TopProducts = append(stats.TopProducts, *top)
	}

	// Current names and images win over what was stored with the order
	var snacks []models.Snack
	if err := s.db.Where("id IN ?", ids).Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to load snacks")
		return
	}
	for i := range stats.TopProducts {
		for _, snack := range snacks {
			if snack.ID == stats.TopProducts[i].ID {
				stats.TopProducts[i].Name = snack.SnackName
				stats.TopProducts[i].Image = snack.Images
			}
		}
	}

	slices.SortStableFunc(stats.TopProducts, func(a, b TopProduct) int { return b.TotalSold - a.TotalSold })
	if len(stats.TopProducts) > topSellingLimit {
		stats.TopProducts = stats.TopProducts[:topSellingLimit]
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (s *Server) exportOrders(c *gin.Context) {
	from, to, ok := s.dayRange(c)
	if !ok {
		return
	}

	var orders []models.Order
	if err := s.db.Preload("User").Scopes(scopeCreated(from, to)).Order("created_at DESC").Find(&orders).Error; err != nil {
		s.internalError(c, err, "Failed to load orders")
		return
	}

	rows := [][]string{{"id", "created_at", "customer", "email", "items", "total_amount", "shipping_fee", "payment_method", "payment_status", "status"}}
	for _, o := range orders {
		customer, email := "Guest", ""
		if o.User != nil {
			customer, email = o.User.Name, o.User.Email
		}
		items := make([]string, len(o.Items))
		for i, item := range o.Items {
			items[i] = fmt.Sprintf("%s x%d", item.Name, item.Quantity)
		}
		rows = append(rows, []string{
			o.ID,
			o.CreatedAt.Format("2006-01-02 15:04"),
			customer,
			email,
			strings.Join(items, "; "),
			formatAmount(o.TotalAmount),
			formatAmount(o.ShippingFee),
			o.PaymentMethod,
			o.PaymentStatus,
			o.Status,
		})
	}

	s.writeCSV(c, "orders.csv", rows)
}

package server

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

const (
	lowStockThreshold = 10
	topSellingLimit   = 10
)

// SnackRequest is the body for creating or updating a snack
type SnackRequest struct {
	SnackName   string   `json:"snackName" binding:"required,max=200"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	CategoryID  string   `json:"categoryId" binding:"required"`
	Discount    float64  `json:"discount" binding:"gte=0,lte=100"`
	Images      []string `json:"images"`
}

func (r SnackRequest) apply(snack *models.Snack) {
	snack.SnackName = r.SnackName
	snack.Description = r.Description
	snack.Price = r.Price
	snack.Stock = r.Stock
	snack.CategoryID = r.CategoryID
	snack.Discount = r.Discount
	snack.Images = r.Images
	if snack.Images == nil {
		snack.Images = []string{}
	}
}

func (s *Server) listSnacks(c *gin.Context) {
	var snacks []models.Snack
	if err := s.db.Order("created_at DESC").Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to list snacks")
		return
	}
	c.JSON(http.StatusOK, snacks)
}

func (s *Server) listSnacksByCategory(c *gin.Context) {
	var snacks []models.Snack
	if err := s.db.Where("category_id = ?", c.Param("id")).Order("created_at DESC").Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to list snacks")
		return
	}
	c.JSON(http.StatusOK, snacks)
}

func (s *Server) getSnack(c *gin.Context) {
	var snack models.Snack
	if err := models.FindByID(s.db, c.Param("id"), &snack); err != nil {
		s.lookupError(c, err, "Snack")
		return
	}
	c.JSON(http.StatusOK, snack)
}

// categoryExists answers 400 when the category is unknown
func (s *Server) categoryExists(c *gin.Context, id string) bool {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to check category")
		return false
	}
	if count == 0 {
		fail(c, http.StatusBadRequest, "Category does not exist")
		return false
	}
	return true
}

func (s *Server) createSnack(c *gin.Context) {
	var req SnackRequest
	if !bindJSON(c, &req) || !s.categoryExists(c, req.CategoryID) {
		return
	}

	var snack models.Snack
	req.apply(&snack)
	if err := s.db.Create(&snack).Error; err != nil {
		s.internalError(c, err, "Failed to create snack")
		return
	}

	s.logger.Info().Str("snack_id", snack.ID).Str("name", snack.SnackName).Msg("Snack created")
	c.JSON(http.StatusCreated, snack)
}

func (s *Server) updateSnack(c *gin.Context) {
	var req SnackRequest
	if !bindJSON(c, &req) {
		return
	}

	var snack models.Snack
	if err := models.FindByID(s.db, c.Param("id"), &snack); err != nil {
		s.lookupError(c, err, "Snack")
		return
	}
	if req.CategoryID != snack.CategoryID && !s.categoryExists(c, req.CategoryID) {
		return
	}

	req.apply(&snack)
	if err := s.db.Save(&snack).Error; err != nil {
		s.internalError(c, err, "Failed to update snack")
		return
	}

	c.JSON(http.StatusOK, snack)
}

func (s *Server) deleteSnack(c *gin.Context) {
	result := s.db.Where("id = ?", c.Param("id")).Delete(&models.Snack{})
	if result.Error != nil {
		s.internalError(c, result.Error, "Failed to delete snack")
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Snack not found")
		return
	}

	s.logger.Info().Str("snack_id", c.Param("id")).Msg("Snack deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Snack deleted"})
}

func (s *Server) searchSnacks(c *gin.Context) {
	var snacks []models.Snack
	q := likePattern(c.Query("query"))
	if err := s.db.Where(`LOWER(snack_name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, q, q).
		Order("snack_name").Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to search snacks")
		return
	}
	c.JSON(http.StatusOK, snacks)
}

// topSellingSnacks ranks snacks by units sold in completed orders
func (s *Server) topSellingSnacks(c *gin.Context) {
	sales, err := s.completedSales()
	if err != nil {
		s.internalError(c, err, "Failed to compute sales")
		return
	}

	var snacks []models.Snack
	if err := s.db.Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to list snacks")
		return
	}

	ranked := snacks[:0]
	for _, snack := range snacks {
		if sale, ok := sales[snack.ID]; ok {
			snack.SoldCount = sale.quantity
			snack.Revenue = sale.revenue
			ranked = append(ranked, snack)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].SoldCount > ranked[j].SoldCount })
	if len(ranked) > topSellingLimit {
		ranked = ranked[:topSellingLimit]
	}

	c.JSON(http.StatusOK, ranked)
}

func (s *Server) lowStockSnacks(c *gin.Context) {
	threshold := queryInt(c, "threshold", lowStockThreshold)

	var snacks []models.Snack
	if err := s.db.Where("stock < ?", threshold).Order("stock ASC").Find(&snacks).Error; err != nil {
		s.internalError(c, err, "Failed to list low stock snacks")
		return
	}
	c.JSON(http.StatusOK, snacks)
}

type sale struct {
	quantity int
	revenue  float64
}

// completedSales totals quantity and revenue per snack over completed orders
func (s *Server) completedSales() (map[string]sale, error) {
	var orders []models.Order
	if err := s.db.Where("status = ?", models.OrderCompleted).Find(&orders).Error; err != nil {
		return nil, err
	}

	sales := make(map[string]sale)
	for _, o := range orders {
		for _, item := range o.Items {
			entry := sales[item.SnackID]
			entry.quantity += item.Quantity
			entry.revenue += float64(item.Quantity) * item.Price
			sales[item.SnackID] = entry
		}
	}
	return sales, nil
}

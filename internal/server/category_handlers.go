package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// CategoryForm is the multipart form for creating or updating a category
type CategoryForm struct {
	Name        string `form:"name" binding:"required,max=100"`
	Description string `form:"description"`
}

func (s *Server) listCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		s.internalError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) getCategory(c *gin.Context) {
	var category models.Category
	if err := models.FindByID(s.db, c.Param("id"), &category); err != nil {
		s.lookupError(c, err, "Category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) createCategory(c *gin.Context) {
	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	if !s.categoryNameFree(c, form.Name, "") {
		return
	}

	category := models.Category{Name: strings.TrimSpace(form.Name), Description: form.Description}
	image, ok := s.saveUpload(c)
	if !ok {
		return
	}
	category.Image = image

	if err := s.db.Create(&category).Error; err != nil {
		s.internalError(c, err, "Failed to create category")
		return
	}

	s.logger.Info().Str("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	c.JSON(http.StatusCreated, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	var category models.Category
	if err := models.FindByID(s.db, c.Param("id"), &category); err != nil {
		s.lookupError(c, err, "Category")
		return
	}
	if !s.categoryNameFree(c, form.Name, category.ID) {
		return
	}

	image, ok := s.saveUpload(c)
	if !ok {
		return
	}
	category.Name = strings.TrimSpace(form.Name)
	category.Description = form.Description
	if image != "" {
		category.Image = image
	}

	if err := s.db.Save(&category).Error; err != nil {
		s.internalError(c, err, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id := c.Param("id")

	var inUse int64
	if err := s.db.Model(&models.Snack{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		s.internalError(c, err, "Failed to check category")
		return
	}
	if inUse > 0 {
		fail(c, http.StatusConflict, fmt.Sprintf("Category still has %d snacks", inUse))
		return
	}

	result := s.db.Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		s.internalError(c, result.Error, "Failed to delete category")
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// categoryNameFree answers 409 when another category already uses name
func (s *Server) categoryNameFree(c *gin.Context, name, exceptID string) bool {
	var existing models.Category
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return true
	case err != nil:
		s.internalError(c, err, "Failed to check category name")
		return false
	case existing.ID == exceptID:
		return true
	default:
		fail(c, http.StatusConflict, "A category with this name already exists")
		return false
	}
}

// saveUpload stores the optional "image" file and returns its public path, or "" when none was sent
func (s *Server) saveUpload(c *gin.Context) (string, bool) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid image upload")
		return "", false
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		fail(c, http.StatusBadRequest, "Image must be a png, jpg, gif or webp file")
		return "", false
	}

	if err := os.MkdirAll(s.config.HTTP.UploadDir, 0o755); err != nil {
		s.internalError(c, err, "Failed to create upload directory")
		return "", false
	}

	name := ulid.Make().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(s.config.HTTP.UploadDir, name)); err != nil {
		s.internalError(c, err, "Failed to save image")
		return "", false
	}

	return path.Join("/uploads", name), true
}

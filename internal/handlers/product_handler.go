package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/db"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/utils"
)

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       uint            `json:"stock"`
	CategoryID  uint            `json:"category_id" binding:"required"`
	ImageKey    string          `json:"image_key"`
	Status      models.ProductStatus `json:"status"`
}

// CreateProduct adds a product to the calling vendor's catalog. New products
// default to draft until the vendor activates them.
func CreateProduct(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	var req CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Price.LessThan(decimal.NewFromFloat(0.01)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be at least 0.01"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.ProductDraft
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product status"})
		return
	}

	var category models.Category
	if err := db.DB.First(&category, req.CategoryID).Error; err != nil {

		errorMessage := fmt.Sprintf("Category not found with ID: %d", req.CategoryID)

		c.JSON(http.StatusNotFound, gin.H{"error": errorMessage})
		return
	}

	product := models.Product{
		VendorID:    vendor.ID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageKey:    req.ImageKey,
		Status:      status,
	}

	if err := db.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := db.DB.Preload("Category").First(&product, product.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve Product with Category details"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

type UpdateProductRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Price       *decimal.Decimal      `json:"price"`
	Stock       *uint                 `json:"stock"`
	CategoryID  *uint                 `json:"category_id"`
	ImageKey    *string               `json:"image_key"`
	Status      *models.ProductStatus `json:"status"`
}

// UpdateProduct edits one of the calling vendor's own products.
func UpdateProduct(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var product models.Product
	if err := db.DB.Where("id = ? AND vendor_id = ?", productID, vendor.ID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.LessThan(decimal.NewFromFloat(0.01)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be at least 0.01"})
			return
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.ImageKey != nil {
		product.ImageKey = *req.ImageKey
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product status"})
			return
		}
		product.Status = *req.Status
	}

	if err := db.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes one of the vendor's products. A product referenced
// by historical order items must survive for pricing/audit integrity; those
// are deactivated instead.
func DeleteProduct(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var product models.Product
	if err := db.DB.Where("id = ? AND vendor_id = ?", productID, vendor.ID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	var refs int64
	if err := db.DB.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&refs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if refs > 0 {
		if err := db.DB.Model(&product).Update("status", models.ProductInactive).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product is referenced by orders and was deactivated instead"})
		return
	}

	if err := db.DB.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// ListVendorProducts lists the calling vendor's own catalog, any status.
func ListVendorProducts(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	q := db.DB.Where("vendor_id = ?", vendor.ID)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var products []models.Product
	if err := q.Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ListProducts is the public storefront: active products only.
func ListProducts(c *gin.Context) {
	q := db.DB.Where("status = ?", models.ProductActive)

	if categoryID := c.Query("category_id"); categoryID != "" {
		var id uint
		if _, err := fmt.Sscan(categoryID, &id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		categoryIDs, err := utils.GetAllCategoryIDs(db.DB, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		q = q.Where("category_id IN ?", categoryIDs)
	}

	var products []models.Product
	if err := q.Preload("Category").Preload("Vendor").Order("created_at DESC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the public product detail.
func GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var product models.Product
	err = db.DB.Preload("Category").Preload("Vendor").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product, "available": product.Available()})
}

func GetAveragePrice(c *gin.Context) {
	categoryIDParam := c.Query("category_id")
	if categoryIDParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id is required"})
		return
	}

	var categoryID uint
	if _, err := fmt.Sscan(categoryIDParam, &categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
		return
	}

	// Fetch all category IDs (recursive)
	categoryIDs, err := utils.GetAllCategoryIDs(db.DB, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Calculate average
	var raw string
	err = db.DB.
		Model(&models.Product{}).
		Where("category_id IN ?", categoryIDs).
		Select("COALESCE(AVG(price), 0)").
		Scan(&raw).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	avg, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse average price"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category_id": categoryID, "average_price": avg})
}

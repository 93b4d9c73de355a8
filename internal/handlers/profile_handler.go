package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/db"
)

// GetProfile returns the logged-in user's account details.
func GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": auth.CurrentUser(c)})
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
}

// UpdateProfile edits the logged-in user's own details. Email and role are
// not editable here.
func UpdateProfile(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := db.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}

// GetVendorProfile returns the calling vendor's shop details.
func GetVendorProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vendor": auth.CurrentVendor(c)})
}

type UpdateVendorProfileRequest struct {
	ShopName   *string `json:"shop_name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

// UpdateVendorProfile edits the calling vendor's shop details. The approval
// flag is staff-only and never touched here.
func UpdateVendorProfile(c *gin.Context) {
	vendor := auth.CurrentVendor(c)

	var req UpdateVendorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ShopName != nil {
		if *req.ShopName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shop_name cannot be empty"})
			return
		}
		vendor.ShopName = *req.ShopName
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Address != nil {
		vendor.Address = *req.Address
	}
	if req.City != nil {
		vendor.City = *req.City
	}
	if req.PostalCode != nil {
		vendor.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		vendor.Country = *req.Country
	}

	if err := db.DB.Save(vendor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "shop profile updated", "vendor": vendor})
}

package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/db"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/notifier"
)

const sessionName = "sokosess"

const draftTTL = 30 * time.Minute
const resetTTL = time.Hour

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role" binding:"required"`
	Phone    string      `json:"phone"`
}

// Register is step one of signup. It never touches the session: the draft is
// keyed by a token the client carries to the completion step.
func Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be customer or vendor"})
		return
	}

	var existing models.User
	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	draft := models.RegistrationDraft{
		Token:        uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        req.Phone,
		ExpiresAt:    time.Now().Add(draftTTL),
	}

	if err := db.DB.Create(&draft).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"signup_token": draft.Token, "role": draft.Role})
}

type CompleteRegistrationRequest struct {
	SignupToken string `json:"signup_token" binding:"required"`

	// Vendor details, required when the draft's role is vendor.
	ShopName   string `json:"shop_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CompleteRegistration exchanges a signup token for a real account. Vendor
// drafts additionally need shop details and start out unapproved.
func CompleteRegistration(c *gin.Context) {
	var req CompleteRegistrationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var draft models.RegistrationDraft
	err := db.DB.Where("token = ?", req.SignupToken).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown signup token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if time.Now().After(draft.ExpiresAt) {
		db.DB.Delete(&draft)
		c.JSON(http.StatusGone, gin.H{"error": "signup token expired, please register again"})
		return
	}

	if draft.Role == models.RoleVendor && req.ShopName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_name is required for vendor accounts"})
		return
	}

	var user models.User

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Name:         draft.Name,
			Email:        draft.Email,
			PasswordHash: draft.PasswordHash,
			Role:         draft.Role,
			Phone:        draft.Phone,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if draft.Role == models.RoleVendor {
			vendor := models.Vendor{
				UserID:     user.ID,
				ShopName:   req.ShopName,
				Phone:      draft.Phone,
				Address:    req.Address,
				City:       req.City,
				PostalCode: req.PostalCode,
				Country:    req.Country,
				Approved:   false, // new vendors wait for staff approval
			}
			if err := tx.Create(&vendor).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&draft).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registration complete, please log in", "user_id": user.ID})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates and tells the client where to land. Unapproved vendors
// are logged in but pointed at the waiting-approval page.
func Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	redirect := "/"
	if user.Role == models.RoleVendor {
		var vendor models.Vendor
		if err := db.DB.Where("user_id = ?", user.ID).First(&vendor).Error; err == nil && vendor.Approved {
			redirect = "/vendor/dashboard"
		} else {
			redirect = "/vendor/waiting-approval"
		}
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "redirect": redirect, "role": user.Role})
}

func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset issues a single-use token and mails it. The response
// is the same whether or not the email exists.
func RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		reset := models.PasswordReset{
			Token:     uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(resetTTL),
		}
		if err := db.DB.Create(&reset).Error; err == nil {
			go func(email, name, token string) {
				// best effort, the token can be re-requested
				_ = notifier.SendPasswordResetEmail(email, name, token)
			}(user.Email, user.Name, reset.Token)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "if that email is registered, a reset link has been sent"})
}

type PasswordResetConfirm struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirm

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reset models.PasswordReset
	err := db.DB.Where("token = ?", req.Token).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown reset token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "reset token expired"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	now := time.Now()
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used_at", &now).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated, please log in"})
}

package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/Jonas-spec/soko/internal/db"
	"github.com/Jonas-spec/soko/internal/models"
)

// Decision is the result of an authorization check. Guards branch on the
// decision, never on attribute presence.
type Decision struct {
	Allow  bool
	Status int
	Reason string
}

func allow() Decision {
	return Decision{Allow: true}
}

func deny(status int, reason string) Decision {
	return Decision{Allow: false, Status: status, Reason: reason}
}

// Middleware: ensures user is logged in and injects *models.User into context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		userID, ok := sess.Get("user_id").(uint)
		if !ok || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var user models.User
		if err := db.DB.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		// put on context for handlers
		c.Set("user", &user)
		c.Next()
	}
}

// RequireRole composes after RequireAuth and admits only the given role.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := authorizeRole(CurrentUser(c), role)
		if !d.Allow {
			c.AbortWithStatusJSON(d.Status, gin.H{"error": d.Reason})
			return
		}
		c.Next()
	}
}

// RequireVendor composes after RequireAuth: loads the vendor profile, denies
// unapproved vendors, and injects *models.Vendor into context.
func RequireVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)

		if d := authorizeRole(user, models.RoleVendor); !d.Allow {
			c.AbortWithStatusJSON(d.Status, gin.H{"error": d.Reason})
			return
		}

		var vendor models.Vendor
		if err := db.DB.Where("user_id = ?", user.ID).First(&vendor).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no vendor profile"})
			return
		}
		if !vendor.Approved {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "vendor account pending approval"})
			return
		}

		c.Set("vendor", &vendor)
		c.Next()
	}
}

// RequireStaff composes after RequireAuth and admits staff accounts only.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.Staff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}

func authorizeRole(user *models.User, role models.Role) Decision {
	if user == nil {
		return deny(http.StatusUnauthorized, "unauthorized")
	}
	if user.Staff {
		return allow()
	}
	if user.Role != role {
		return deny(http.StatusForbidden, "forbidden for role "+string(user.Role))
	}
	return allow()
}

// CurrentUser returns the user set by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentVendor returns the vendor set by RequireVendor, or nil.
func CurrentVendor(c *gin.Context) *models.Vendor {
	if v, ok := c.Get("vendor"); ok {
		if vendor, ok := v.(*models.Vendor); ok {
			return vendor
		}
	}
	return nil
}

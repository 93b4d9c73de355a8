package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	config "github.com/Jonas-spec/soko/configs"
	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/db"
	"github.com/Jonas-spec/soko/internal/handlers"
	"github.com/Jonas-spec/soko/internal/metrics"
	"github.com/Jonas-spec/soko/internal/middleware"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/orders"
	"github.com/Jonas-spec/soko/internal/payment"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.LoadAppConfig()

	db.Init()
	metrics.Register()

	charger := payment.NewStripeCharger(config.LoadStripeConfig())
	svc := orders.NewService(db.DB, charger, logger)

	cartHandler := handlers.NewCartHandler(svc)
	orderHandler := handlers.NewOrderHandler(svc)
	vendorHandler := handlers.NewVendorHandler(svc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	// ── session store ──
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("sokosess", store))

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/auth/register", auth.Register)
	r.POST("/auth/register/complete", auth.CompleteRegistration)
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/logout", auth.Logout)
	r.POST("/auth/password-reset", auth.RequestPasswordReset)
	r.POST("/auth/password-reset/confirm", auth.ConfirmPasswordReset)

	if auth.InitOIDC(config.LoadOIDCConfig()) {
		r.GET("/auth/oidc/login", auth.OIDCLogin)
		r.GET("/auth/oidc/callback", auth.OIDCCallback)
	}

	r.GET("/categories", handlers.ListCategories)
	r.GET("/products", handlers.ListProducts)
	r.GET("/products/average", handlers.GetAveragePrice)
	r.GET("/products/:id", handlers.GetProduct)

	// ── account profile, any authenticated role ──
	r.GET("/api/profile", auth.RequireAuth(), handlers.GetProfile)
	r.PUT("/api/profile", auth.RequireAuth(), handlers.UpdateProfile)

	// ── customer API ──
	api := r.Group("/api")
	api.Use(auth.RequireAuth(), auth.RequireRole(models.RoleCustomer))
	{
		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart/items", cartHandler.AddToCart)
		api.PATCH("/cart/items/:id", cartHandler.UpdateCartItem)
		api.DELETE("/cart/items/:id", cartHandler.RemoveFromCart)
		api.POST("/checkout", cartHandler.Checkout)

		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.POST("/orders/:id/cancel", orderHandler.CancelOrder)
	}

	// ── vendor API ──
	vendor := r.Group("/vendor")
	vendor.Use(auth.RequireAuth(), auth.RequireVendor())
	{
		vendor.GET("/dashboard", vendorHandler.Dashboard)
		vendor.GET("/profile", handlers.GetVendorProfile)
		vendor.PUT("/profile", handlers.UpdateVendorProfile)
		vendor.GET("/orders", vendorHandler.ListOrders)
		vendor.GET("/orders/:id", vendorHandler.GetOrder)
		vendor.POST("/orders/:id/status", vendorHandler.UpdateOrderStatus)

		vendor.GET("/products", handlers.ListVendorProducts)
		vendor.POST("/products", handlers.CreateProduct)
		vendor.PUT("/products/:id", handlers.UpdateProduct)
		vendor.DELETE("/products/:id", handlers.DeleteProduct)
	}

	// ── staff API ──
	staff := r.Group("/staff")
	staff.Use(auth.RequireAuth(), auth.RequireStaff())
	{
		staff.POST("/categories", handlers.CreateCategory)
		staff.POST("/vendors/:id/approve", handlers.ApproveVendor)
	}

	r.Run(":" + cfg.Port)
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/auth"
	"github.com/Jonas-spec/soko/internal/db"
	"github.com/Jonas-spec/soko/internal/handlers"
	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/orders"
	"github.com/Jonas-spec/soko/internal/payment"
)

// fakeCharger stands in for the payment gateway in handler tests.
type fakeCharger struct {
	declineWith string
	calls       int
}

func (f *fakeCharger) Charge(_ context.Context, _ decimal.Decimal, _, _, _ string) (string, error) {
	f.calls++
	if f.declineWith != "" {
		return "", &payment.DeclineError{Message: f.declineWith}
	}
	return fmt.Sprintf("ch_test_%d", f.calls), nil
}

func seedUser(t *testing.T, testDB *gorm.DB, email, password string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: "Seeded", Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, testDB.Create(&user).Error)
	return user
}

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	charger *fakeCharger
	svc     *orders.Service
}

func setupCartTestRouter(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to connect test database")
	require.NoError(t, db.Migrate(testDB), "failed to auto-migrate models")

	originalDB := db.DB
	db.SetTestDB(testDB)
	t.Cleanup(func() { db.SetTestDB(originalDB) })

	charger := &fakeCharger{}
	svc := orders.NewService(testDB, charger, nil)
	cartHandler := handlers.NewCartHandler(svc)
	orderHandler := handlers.NewOrderHandler(svc)

	r := gin.New()
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte("test-secret-key"))
	r.Use(sessions.Sessions("sokosess", store))

	r.POST("/auth/login", auth.Login)

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

	return &testEnv{router: r, db: testDB, charger: charger, svc: svc}
}

func (e *testEnv) seedCustomer(t *testing.T, email string) (models.User, string) {
	t.Helper()

	user := seedUser(t, e.db, email, "pw-customer", models.RoleCustomer)

	body, _ := json.Marshal(auth.LoginRequest{Email: email, Password: "pw-customer"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code, "login failed for seeded customer")

	return user, recorder.Header().Get("Set-Cookie")
}

func (e *testEnv) seedProduct(t *testing.T, name, price string, stock uint) models.Product {
	t.Helper()

	vendorUser := seedUser(t, e.db, name+"-vendor@example.com", "pw-vendor", models.RoleVendor)
	vendor := models.Vendor{UserID: vendorUser.ID, ShopName: name + " Shop", Approved: true}
	require.NoError(t, e.db.Create(&vendor).Error)

	category := models.Category{Name: name + " Category", Slug: name + "-category", Active: true}
	require.NoError(t, e.db.Create(&category).Error)

	product := models.Product{
		VendorID:   vendor.ID,
		CategoryID: category.ID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Status:     models.ProductActive,
	}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}

func (e *testEnv) do(method, path, session string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewBuffer(b)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("Cookie", session)
	}
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func TestCartEndpoints(t *testing.T) {
	env := setupCartTestRouter(t)

	_, session := env.seedCustomer(t, "shopper@example.com")
	product := env.seedProduct(t, "Clay Pot", "15.50", 10)

	t.Run("cart requires a session", func(t *testing.T) {
		recorder := env.do(http.MethodGet, "/api/cart", "", nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("empty cart has no items", func(t *testing.T) {
		recorder := env.do(http.MethodGet, "/api/cart", session, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			CartCount int `json:"cart_count"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.CartCount)
	})

	t.Run("add to cart returns the updated order", func(t *testing.T) {
		recorder := env.do(http.MethodPost, "/api/cart/items", session,
			handlers.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			CartCount int `json:"cart_count"`
			Order     struct {
				Total decimal.Decimal `json:"total"`
			} `json:"order"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.CartCount)
		assert.True(t, resp.Order.Total.Equal(decimal.RequireFromString("31.00")),
			"expected total 31.00, got %s", resp.Order.Total)
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		recorder := env.do(http.MethodPost, "/api/cart/items", session,
			handlers.AddToCartRequest{ProductID: 9999, Quantity: 1})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("updating past stock is a conflict", func(t *testing.T) {
		var item models.OrderItem
		require.NoError(t, env.db.Where("product_id = ?", product.ID).First(&item).Error)

		recorder := env.do(http.MethodPatch, fmt.Sprintf("/api/cart/items/%d", item.ID), session,
			handlers.UpdateCartItemRequest{Quantity: 50})
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("removing an item empties the cart", func(t *testing.T) {
		var item models.OrderItem
		require.NoError(t, env.db.Where("product_id = ?", product.ID).First(&item).Error)

		recorder := env.do(http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", item.ID), session, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = env.do(http.MethodGet, "/api/cart", session, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			CartCount int `json:"cart_count"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.CartCount)
	})
}

func TestCheckoutEndpoint(t *testing.T) {
	checkoutBody := handlers.CheckoutRequest{
		DeliveryAddress: "12 Riverside Drive",
		Phone:           "+254700000001",
		PaymentToken:    "tok_visa",
	}

	t.Run("empty cart cannot check out", func(t *testing.T) {
		env := setupCartTestRouter(t)
		_, session := env.seedCustomer(t, "empty@example.com")

		recorder := env.do(http.MethodPost, "/api/checkout", session, checkoutBody)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, 0, env.charger.calls)
	})

	t.Run("missing payment token is a 400", func(t *testing.T) {
		env := setupCartTestRouter(t)
		_, session := env.seedCustomer(t, "noform@example.com")

		recorder := env.do(http.MethodPost, "/api/checkout", session,
			map[string]string{"delivery_address": "somewhere"})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("successful checkout decrements stock and records the order", func(t *testing.T) {
		env := setupCartTestRouter(t)
		_, session := env.seedCustomer(t, "buyer@example.com")
		product := env.seedProduct(t, "Sisal Basket", "20.00", 5)

		recorder := env.do(http.MethodPost, "/api/cart/items", session,
			handlers.AddToCartRequest{ProductID: product.ID, Quantity: 3})
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = env.do(http.MethodPost, "/api/checkout", session, checkoutBody)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		var resp struct {
			Order struct {
				ID     uint               `json:"id"`
				Status models.OrderStatus `json:"status"`
			} `json:"order"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, models.OrderProcessing, resp.Order.Status)
		assert.Equal(t, 1, env.charger.calls)

		var fresh models.Product
		require.NoError(t, env.db.First(&fresh, product.ID).Error)
		assert.Equal(t, uint(2), fresh.Stock)

		// the cart is gone, a new GET starts an empty one
		listRec := env.do(http.MethodGet, "/api/orders", session, nil)
		require.Equal(t, http.StatusOK, listRec.Code)

		var listResp struct {
			Orders []models.Order `json:"orders"`
		}
		require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listResp))
		require.Len(t, listResp.Orders, 1)
		assert.Equal(t, resp.Order.ID, listResp.Orders[0].ID)
	})

	t.Run("declined card surfaces the gateway message as 402", func(t *testing.T) {
		env := setupCartTestRouter(t)
		_, session := env.seedCustomer(t, "declined@example.com")
		product := env.seedProduct(t, "Beaded Necklace", "45.00", 5)

		recorder := env.do(http.MethodPost, "/api/cart/items", session,
			handlers.AddToCartRequest{ProductID: product.ID, Quantity: 1})
		require.Equal(t, http.StatusOK, recorder.Code)

		env.charger.declineWith = "Your card was declined."
		recorder = env.do(http.MethodPost, "/api/checkout", session, checkoutBody)
		assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Your card was declined.")

		var fresh models.Product
		require.NoError(t, env.db.First(&fresh, product.ID).Error)
		assert.Equal(t, uint(5), fresh.Stock, "decline must not consume stock")
	})

	t.Run("customer can cancel a processing order", func(t *testing.T) {
		env := setupCartTestRouter(t)
		_, session := env.seedCustomer(t, "canceller@example.com")
		product := env.seedProduct(t, "Wooden Bowl", "10.00", 4)

		recorder := env.do(http.MethodPost, "/api/cart/items", session,
			handlers.AddToCartRequest{ProductID: product.ID, Quantity: 2})
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = env.do(http.MethodPost, "/api/checkout", session, checkoutBody)
		require.Equal(t, http.StatusCreated, recorder.Code)

		var resp struct {
			Order struct {
				ID uint `json:"id"`
			} `json:"order"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

		recorder = env.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", resp.Order.ID), session, nil)
		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

		var fresh models.Product
		require.NoError(t, env.db.First(&fresh, product.ID).Error)
		assert.Equal(t, uint(4), fresh.Stock, "cancellation restocks")
	})
}

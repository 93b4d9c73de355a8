package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Jonas-spec/soko/internal/models"
	"github.com/Jonas-spec/soko/internal/orders"
)

func productStock(t *testing.T, gdb *gorm.DB, productID uint) uint {
	t.Helper()
	var product models.Product
	require.NoError(t, gdb.First(&product, productID).Error)
	return product.Stock
}

func TestCheckout(t *testing.T) {
	svc, gdb, charger := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, gdb, "checkout@example.com")
	vendor := seedVendor(t, gdb, "vendor-checkout@example.com", "Checkout Shop")
	product := seedProduct(t, gdb, vendor.ID, "Camera", "10.00", 5)

	t.Run("fails with empty cart and mutates nothing", func(t *testing.T) {
		_, err := svc.Checkout(ctx, customer.ID, "1 Main St", "0700000000", "tok_visa")
		assert.ErrorIs(t, err, orders.ErrEmptyCart)
		assert.Equal(t, 0, charger.calls, "gateway must not be called for an empty cart")
		assert.Equal(t, uint(5), productStock(t, gdb, product.ID))
	})

	t.Run("captures payment, decrements stock and commits the order", func(t *testing.T) {
		_, err := svc.AddItem(ctx, customer.ID, product.ID, 3)
		require.NoError(t, err)
		cart, err := svc.AddItem(ctx, customer.ID, product.ID, 4)
		require.NoError(t, err)
		require.Equal(t, uint(5), cart.Items[0].Quantity, "clamped to stock")
		require.True(t, cart.Total.Equal(decimal.RequireFromString("50.00")))

		order, err := svc.Checkout(ctx, customer.ID, "1 Main St", "0700000000", "tok_visa")
		assert.NoError(t, err)
		assert.Equal(t, models.OrderProcessing, order.Status)
		assert.Equal(t, "1 Main St", order.DeliveryAddress)
		assert.Equal(t, "0700000000", order.Phone)
		assert.NotEmpty(t, order.PaymentRef)
		assert.Equal(t, uint(0), productStock(t, gdb, product.ID))

		var activities []models.OrderActivity
		require.NoError(t, gdb.Where("order_id = ?", order.ID).Find(&activities).Error)
		assert.Len(t, activities, 1)
		assert.Equal(t, models.OrderProcessing, activities[0].Status)
	})

	t.Run("fails when stock shrank after add-time, nothing half-applied", func(t *testing.T) {
		other := seedCustomer(t, gdb, "checkout2@example.com")
		scarce := seedProduct(t, gdb, vendor.ID, "Scarce", "7.00", 3)

		_, err := svc.AddItem(ctx, other.ID, scarce.ID, 3)
		require.NoError(t, err)

		// stock drops between add and checkout
		require.NoError(t, gdb.Model(&models.Product{}).Where("id = ?", scarce.ID).
			Update("stock", 2).Error)

		before := charger.calls
		_, err = svc.Checkout(ctx, other.ID, "2 Side St", "0711111111", "tok_visa")
		assert.ErrorIs(t, err, orders.ErrInsufficientStock)
		assert.Equal(t, before, charger.calls, "decrement failure must short-circuit the charge")
		assert.Equal(t, uint(2), productStock(t, gdb, scarce.ID), "no partial decrement")

		var order models.Order
		require.NoError(t, gdb.Where("customer_id = ?", other.ID).First(&order).Error)
		assert.Equal(t, models.OrderPending, order.Status)
	})

	t.Run("rolls everything back on a card decline", func(t *testing.T) {
		declined := seedCustomer(t, gdb, "checkout3@example.com")
		stocked := seedProduct(t, gdb, vendor.ID, "Stocked", "12.00", 4)

		_, err := svc.AddItem(ctx, declined.ID, stocked.ID, 2)
		require.NoError(t, err)

		charger.declineWith = "Your card was declined."
		defer func() { charger.declineWith = "" }()

		_, err = svc.Checkout(ctx, declined.ID, "3 Back St", "0722222222", "tok_declined")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Your card was declined.")

		assert.Equal(t, uint(4), productStock(t, gdb, stocked.ID), "decline must undo the decrement")

		var order models.Order
		require.NoError(t, gdb.Where("customer_id = ?", declined.ID).First(&order).Error)
		assert.Equal(t, models.OrderPending, order.Status, "order must not be half-transitioned")
		assert.Empty(t, order.PaymentRef)
	})
}

func TestCheckoutLastUnitRace(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()

	vendor := seedVendor(t, gdb, "vendor-race@example.com", "Race Shop")
	product := seedProduct(t, gdb, vendor.ID, "Last Unit", "10.00", 1)

	first := seedCustomer(t, gdb, "race1@example.com")
	second := seedCustomer(t, gdb, "race2@example.com")

	_, err := svc.AddItem(ctx, first.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, second.ID, product.ID, 1)
	require.NoError(t, err)

	// Both carts hold the last unit. The guarded decrement admits exactly one.
	order, err := svc.Checkout(ctx, first.ID, "1 Fast Ln", "0700000001", "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, uint(0), productStock(t, gdb, product.ID))

	_, err = svc.Checkout(ctx, second.ID, "2 Slow Rd", "0700000002", "tok_visa")
	assert.ErrorIs(t, err, orders.ErrInsufficientStock)
	assert.Equal(t, uint(0), productStock(t, gdb, product.ID), "stock never goes negative")
}

func TestTransition(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, gdb, "transition@example.com")
	vendor := seedVendor(t, gdb, "vendor-transition@example.com", "Transition Shop")
	product := seedProduct(t, gdb, vendor.ID, "Monitor", "30.00", 10)

	vendorActor := orders.Actor{UserID: vendor.UserID, VendorID: vendor.ID}

	placeOrder := func(t *testing.T, email string, qty uint) *models.Order {
		t.Helper()
		buyer := seedCustomer(t, gdb, email)
		_, err := svc.AddItem(ctx, buyer.ID, product.ID, qty)
		require.NoError(t, err)
		order, err := svc.Checkout(ctx, buyer.ID, "1 Ship St", "0733333333", "tok_visa")
		require.NoError(t, err)
		return order
	}

	t.Run("vendor walks processing through shipped to delivered", func(t *testing.T) {
		order := placeOrder(t, "walk@example.com", 1)

		activity, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderShipped, "On its way")
		assert.NoError(t, err)
		assert.Equal(t, models.OrderShipped, activity.Status)
		assert.Equal(t, "On its way", activity.Note)

		_, err = svc.Transition(ctx, vendorActor, order.ID, models.OrderDelivered, "")
		assert.NoError(t, err)

		var stored models.Order
		require.NoError(t, gdb.First(&stored, order.ID).Error)
		assert.Equal(t, models.OrderDelivered, stored.Status)

		var activities []models.OrderActivity
		require.NoError(t, gdb.Where("order_id = ?", order.ID).Order("id").Find(&activities).Error)
		assert.Len(t, activities, 3) // checkout + shipped + delivered
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		order := placeOrder(t, "unknown@example.com", 1)
		_, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderStatus("mislaid"), "")
		assert.ErrorIs(t, err, orders.ErrInvalidTransition)
	})

	t.Run("rejects an illegal edge", func(t *testing.T) {
		order := placeOrder(t, "edge@example.com", 1)
		_, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderDelivered, "")
		assert.ErrorIs(t, err, orders.ErrInvalidTransition, "processing cannot jump to delivered")
	})

	t.Run("cancelling a paid order restores stock", func(t *testing.T) {
		stockBefore := productStock(t, gdb, product.ID)
		order := placeOrder(t, "cancel@example.com", 2)
		require.Equal(t, stockBefore-2, productStock(t, gdb, product.ID))

		_, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderCancelled, "Customer request")
		assert.NoError(t, err)
		assert.Equal(t, stockBefore, productStock(t, gdb, product.ID), "cancellation re-increments stock")
	})

	t.Run("refund after delivery is allowed", func(t *testing.T) {
		order := placeOrder(t, "refund@example.com", 1)
		_, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderShipped, "")
		require.NoError(t, err)
		_, err = svc.Transition(ctx, vendorActor, order.ID, models.OrderDelivered, "")
		require.NoError(t, err)

		_, err = svc.Transition(ctx, vendorActor, order.ID, models.OrderRefunded, "Damaged on arrival")
		assert.NoError(t, err)
	})

	t.Run("a cancelled order can still be refunded, without double restock", func(t *testing.T) {
		order := placeOrder(t, "cancelrefund@example.com", 2)

		_, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderCancelled, "Customer request")
		require.NoError(t, err)
		stockAfterCancel := productStock(t, gdb, product.ID)

		activity, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderRefunded, "Payment returned")
		assert.NoError(t, err)
		assert.Equal(t, models.OrderRefunded, activity.Status)
		assert.Equal(t, stockAfterCancel, productStock(t, gdb, product.ID),
			"cancellation already restocked, the refund must not")
	})

	t.Run("refunded is terminal", func(t *testing.T) {
		order := placeOrder(t, "terminal@example.com", 1)
		_, err := svc.Transition(ctx, vendorActor, order.ID, models.OrderRefunded, "")
		require.NoError(t, err)

		_, err = svc.Transition(ctx, vendorActor, order.ID, models.OrderProcessing, "")
		assert.ErrorIs(t, err, orders.ErrInvalidTransition)
	})

	t.Run("a vendor with no items in the order is denied", func(t *testing.T) {
		order := placeOrder(t, "stranger@example.com", 1)
		stranger := seedVendor(t, gdb, "vendor-stranger@example.com", "Stranger Shop")

		_, err := svc.Transition(ctx, orders.Actor{UserID: stranger.UserID, VendorID: stranger.ID},
			order.ID, models.OrderShipped, "")
		assert.ErrorIs(t, err, orders.ErrAccessDenied)

		var stored models.Order
		require.NoError(t, gdb.First(&stored, order.ID).Error)
		assert.Equal(t, models.OrderProcessing, stored.Status, "denied transition must not mutate")
	})

	t.Run("a customer may cancel only their own order", func(t *testing.T) {
		order := placeOrder(t, "owncancel@example.com", 1)

		_, err := svc.Transition(ctx, orders.Actor{UserID: customer.ID}, order.ID, models.OrderCancelled, "")
		assert.ErrorIs(t, err, orders.ErrAccessDenied)

		var owner models.User
		require.NoError(t, gdb.Where("email = ?", "owncancel@example.com").First(&owner).Error)
		_, err = svc.Transition(ctx, orders.Actor{UserID: owner.ID}, order.ID, models.OrderCancelled, "Changed my mind")
		assert.NoError(t, err)
	})

	t.Run("a customer cannot mark their order shipped", func(t *testing.T) {
		order := placeOrder(t, "noship@example.com", 1)

		var owner models.User
		require.NoError(t, gdb.Where("email = ?", "noship@example.com").First(&owner).Error)
		_, err := svc.Transition(ctx, orders.Actor{UserID: owner.ID}, order.ID, models.OrderShipped, "")
		assert.ErrorIs(t, err, orders.ErrAccessDenied)
	})
}

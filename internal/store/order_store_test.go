package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasar/internal/apperrors"
	"pasar/internal/models"
	"pasar/internal/store"
)

func TestCreateOrder(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	laptop := createTestProduct(t, m, "Laptop", 999.99, 10)
	mouse := createTestProduct(t, m, "Mouse", 29.99, 50)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{
		{ProductID: laptop.ID, Quantity: 1},
		{ProductID: mouse.ID, Quantity: 2},
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, user.ID, order.UserID)

	// Stock decremented for every line.
	got, err := m.GetProduct(laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
	got, err = m.GetProduct(mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 48, got.Stock)
}

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	laptop := createTestProduct(t, m, "Laptop", 999.99, 10)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: laptop.ID, Quantity: 1}}, "admin")
	require.NoError(t, err)

	// A later price change must not affect the recorded item price.
	newPrice := 1299.99
	_, err = m.UpdateProduct(laptop.ID, store.ProductUpdate{Price: &newPrice}, "admin")
	require.NoError(t, err)

	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, 999.99, detail.Items[0].Price)
	assert.Equal(t, "Laptop", detail.Items[0].ProductName)
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	cable := createTestProduct(t, m, "Cable", 9.99, 100)
	laptop := createTestProduct(t, m, "Laptop", 999.99, 1)

	_, err := m.CreateOrder(user.ID, []store.OrderItemInput{
		{ProductID: cable.ID, Quantity: 10},
		{ProductID: laptop.ID, Quantity: 5},
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Laptop", "the failing product must be named")

	// The earlier decrement of the first product must be rolled back too.
	got, err := m.GetProduct(cable.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Stock)

	orders, err := m.GetUserOrders(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), orders.Total, "no order row may survive the rollback")
}

func TestCreateOrderMissingUser(t *testing.T) {
	m := newTestManager(t)
	product := createTestProduct(t, m, "Laptop", 999.99, 10)

	_, err := m.CreateOrder(9999, []store.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "user with ID 9999 not found")
}

func TestCreateOrderMissingProduct(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")

	_, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: 9999, Quantity: 1}}, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "product with ID 9999 not found")
}

func TestGetOrderWithItemsMissingReturnsNil(t *testing.T) {
	m := newTestManager(t)

	detail, err := m.GetOrderWithItems(9999)
	assert.NoError(t, err)
	assert.Nil(t, detail)
}

func TestGetUserOrders(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	laptop := createTestProduct(t, m, "Laptop", 1000.0, 10)
	mouse := createTestProduct(t, m, "Mouse", 25.0, 50)

	_, err := m.CreateOrder(user.ID, []store.OrderItemInput{
		{ProductID: laptop.ID, Quantity: 1},
		{ProductID: mouse.ID, Quantity: 2},
	}, "admin")
	require.NoError(t, err)

	page, err := m.GetUserOrders(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Items[0].ItemsCount)
	assert.Equal(t, 1050.0, page.Items[0].TotalAmount)
}

func TestGetUserOrdersMissingUser(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetUserOrders(9999, 1, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetTotalQuantitySold(t *testing.T) {
	m := newTestManager(t)
	alice := createTestUser(t, m, "alice", "alice@example.com")
	bob := createTestUser(t, m, "bob", "bob@example.com")
	laptop := createTestProduct(t, m, "Laptop", 1000.0, 10)
	mouse := createTestProduct(t, m, "Mouse", 25.0, 50)

	_, err := m.CreateOrder(alice.ID, []store.OrderItemInput{
		{ProductID: laptop.ID, Quantity: 1},
		{ProductID: mouse.ID, Quantity: 3},
	}, "admin")
	require.NoError(t, err)
	_, err = m.CreateOrder(bob.ID, []store.OrderItemInput{
		{ProductID: mouse.ID, Quantity: 2},
	}, "admin")
	require.NoError(t, err)

	sales, err := m.GetTotalQuantitySold()
	require.NoError(t, err)

	totals := make(map[string]int64, len(sales))
	for _, s := range sales {
		totals[s.ProductName] = s.TotalSold
	}
	assert.Equal(t, int64(1), totals["Laptop"])
	assert.Equal(t, int64(5), totals["Mouse"])
}

func TestUpdateOrderStatus(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	product := createTestProduct(t, m, "Laptop", 999.99, 10)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, "admin")
	require.NoError(t, err)

	updated, err := m.UpdateOrderStatus(order.ID, models.StatusCompleted, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	product := createTestProduct(t, m, "Laptop", 999.99, 10)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, "admin")
	require.NoError(t, err)

	_, err = m.UpdateOrderStatus(order.ID, "shipped", "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, detail.Status)
}

func TestUpdateOrderItemAdjustsStockByDelta(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	product := createTestProduct(t, m, "Laptop", 999.99, 10)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 2}}, "admin")
	require.NoError(t, err)
	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	itemID := detail.Items[0].ID

	// 2 -> 5 consumes three more units.
	item, err := m.UpdateOrderItem(itemID, 5, "admin")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	got, err := m.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	// 5 -> 1 returns four units.
	item, err = m.UpdateOrderItem(itemID, 1, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	got, err = m.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
}

func TestUpdateOrderItemRejectsIncreaseBeyondStock(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	product := createTestProduct(t, m, "Laptop", 999.99, 3)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 2}}, "admin")
	require.NoError(t, err)
	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	itemID := detail.Items[0].ID

	_, err = m.UpdateOrderItem(itemID, 5, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "insufficient stock")

	got, err := m.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock, "rejected increase must leave stock untouched")
}

func TestCompetingOrderItemIncreases(t *testing.T) {
	m := newTestManager(t)
	alice := createTestUser(t, m, "alice", "alice@example.com")
	bob := createTestUser(t, m, "bob", "bob@example.com")
	product := createTestProduct(t, m, "Laptop", 999.99, 5)

	orderA, err := m.CreateOrder(alice.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, "admin")
	require.NoError(t, err)
	orderB, err := m.CreateOrder(bob.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, "admin")
	require.NoError(t, err)

	detailA, err := m.GetOrderWithItems(orderA.ID)
	require.NoError(t, err)
	detailB, err := m.GetOrderWithItems(orderB.ID)
	require.NoError(t, err)

	// Three units remain. Two competing increases of 1 -> 4 each need three
	// more units; the row lock serializes them, so only the first succeeds.
	_, err = m.UpdateOrderItem(detailA.Items[0].ID, 4, "admin")
	require.NoError(t, err)
	_, err = m.UpdateOrderItem(detailB.Items[0].ID, 4, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	got, err := m.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestDeleteOrderReturnsStock(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	laptop := createTestProduct(t, m, "Laptop", 999.99, 10)
	mouse := createTestProduct(t, m, "Mouse", 29.99, 50)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{
		{ProductID: laptop.ID, Quantity: 3},
		{ProductID: mouse.ID, Quantity: 5},
	}, "admin")
	require.NoError(t, err)

	require.NoError(t, m.DeleteOrder(order.ID, "admin"))

	got, err := m.GetProduct(laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
	got, err = m.GetProduct(mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Stock)

	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestDeleteOrderItemReturnsStock(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	laptop := createTestProduct(t, m, "Laptop", 999.99, 10)
	mouse := createTestProduct(t, m, "Mouse", 29.99, 50)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{
		{ProductID: laptop.ID, Quantity: 3},
		{ProductID: mouse.ID, Quantity: 5},
	}, "admin")
	require.NoError(t, err)
	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)

	var laptopItemID uint
	for _, item := range detail.Items {
		if item.ProductID == laptop.ID {
			laptopItemID = item.ID
		}
	}
	require.NotZero(t, laptopItemID)

	require.NoError(t, m.DeleteOrderItem(laptopItemID, "admin"))

	got, err := m.GetProduct(laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	// The order survives with its remaining item.
	detail, err = m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Len(t, detail.Items, 1)
}

func TestDeleteOrderItemKeepsEmptyOrder(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m, "johndoe", "john@example.com")
	product := createTestProduct(t, m, "Laptop", 999.99, 10)

	order, err := m.CreateOrder(user.ID, []store.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, "admin")
	require.NoError(t, err)
	detail, err := m.GetOrderWithItems(order.ID)
	require.NoError(t, err)

	require.NoError(t, m.DeleteOrderItem(detail.Items[0].ID, "admin"))

	// The now-empty order is kept, not auto-deleted.
	detail, err = m.GetOrderWithItems(order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Empty(t, detail.Items)
}

func TestDeleteOrderMissing(t *testing.T) {
	m := newTestManager(t)

	err := m.DeleteOrder(9999, "admin")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

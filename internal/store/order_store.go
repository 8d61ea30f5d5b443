package store

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pasar/internal/apperrors"
	"pasar/internal/models"
)

func orderSnapshot(o *models.Order) *OrderSnapshot {
	return &OrderSnapshot{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		OrderDate: o.OrderDate,
		CreatedAt: o.CreatedAt,
		CreatedBy: o.CreatedBy,
		UpdatedAt: o.UpdatedAt,
	}
}

// CreateOrder creates an order with all of its items in one atomic
// transaction. Each product row is locked before the stock check so
// concurrent orders cannot oversell; any failing item rolls back the whole
// order, including stock already decremented for earlier items.
func (m *Manager) CreateOrder(userID uint, items []OrderItemInput, actor string) (*OrderSnapshot, error) {
	var snap *OrderSnapshot
	var total float64

	err := m.run("create_order", func(tx *gorm.DB) error {
		total = 0

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return wrapNotFound(err, "user with ID %d not found", userID)
		}

		if len(items) == 0 {
			return apperrors.NewValidation("order must contain at least one item")
		}

		order := models.Order{UserID: userID, Status: models.StatusPending}
		order.Stamp(actor)
		if err := order.Validate(); err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, in := range items {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, in.ProductID).Error; err != nil {
				return wrapNotFound(err, "product with ID %d not found", in.ProductID)
			}

			if product.Stock < in.Quantity {
				return apperrors.NewValidation("insufficient stock for product %s", product.Name)
			}

			product.Stock -= in.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return fmt.Errorf("failed to update stock for product %d: %w", in.ProductID, err)
			}

			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Price:     product.Price, // capture price at time of purchase
			}
			item.Stamp(actor)
			if err := item.Validate(); err != nil {
				return err
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			total += item.Price * float64(item.Quantity)
		}

		snap = orderSnapshot(&order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("order_id", snap.ID).Uint("user_id", userID).Str("actor", actor).Msg("order created")
	m.publish("order.created", map[string]interface{}{
		"order_id": snap.ID,
		"user_id":  snap.UserID,
		"status":   snap.Status,
		"total":    total,
	})
	return snap, nil
}

// GetOrderWithItems eagerly loads an order, its items and their products and
// returns a nested snapshot, or nil without error when the order is absent.
func (m *Manager) GetOrderWithItems(orderID uint) (*OrderDetail, error) {
	var detail *OrderDetail
	err := m.run("get_order_with_items", func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items.Product").First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				m.log.Debug().Uint("order_id", orderID).Msg("order not found")
				return nil
			}
			return fmt.Errorf("failed to get order %d: %w", orderID, err)
		}

		d := &OrderDetail{
			OrderSnapshot: *orderSnapshot(&order),
			Items:         make([]OrderItemSnapshot, 0, len(order.Items)),
		}
		for i := range order.Items {
			item := &order.Items[i]
			d.Items = append(d.Items, OrderItemSnapshot{
				ID:          item.ID,
				OrderID:     item.OrderID,
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Quantity:    item.Quantity,
				Price:       item.Price,
				UpdatedAt:   item.UpdatedAt,
			})
		}
		detail = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// GetUserOrders returns a page of a user's orders, newest first, each
// annotated with its item count and total amount. The user must exist.
func (m *Manager) GetUserOrders(userID uint, page, pageSize int) (*Page[OrderSummary], error) {
	page, pageSize = normalizePage(page, pageSize)

	var result *Page[OrderSummary]
	err := m.run("get_user_orders", func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return wrapNotFound(err, "user with ID %d not found", userID)
		}

		var total int64
		if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count orders for user %d: %w", userID, err)
		}

		var orders []models.Order
		if err := tx.Preload("Items").
			Where("user_id = ?", userID).
			Order("order_date DESC").
			Limit(pageSize).
			Offset((page - 1) * pageSize).
			Find(&orders).Error; err != nil {
			return fmt.Errorf("failed to list orders for user %d: %w", userID, err)
		}

		items := make([]OrderSummary, 0, len(orders))
		for i := range orders {
			order := &orders[i]
			var amount float64
			for _, item := range order.Items {
				amount += item.Price * float64(item.Quantity)
			}
			items = append(items, OrderSummary{
				ID:          order.ID,
				OrderDate:   order.OrderDate,
				Status:      order.Status,
				ItemsCount:  len(order.Items),
				TotalAmount: amount,
			})
		}
		result = &Page[OrderSummary]{Total: total, Page: page, PageSize: pageSize, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTotalQuantitySold aggregates the quantity sold per product across all
// order items.
func (m *Manager) GetTotalQuantitySold() ([]ProductSales, error) {
	var sales []ProductSales
	err := m.run("get_total_quantity_sold", func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).
			Select("products.name AS product_name, SUM(order_items.quantity) AS total_sold").
			Joins("JOIN products ON products.id = order_items.product_id").
			Group("products.id").
			Scan(&sales).Error; err != nil {
			return fmt.Errorf("failed to aggregate quantity sold: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// UpdateOrderStatus reassigns an order's status, re-validated against the
// enumeration.
func (m *Manager) UpdateOrderStatus(orderID uint, status, actor string) (*OrderSnapshot, error) {
	var snap *OrderSnapshot
	err := m.run("update_order_status", func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return wrapNotFound(err, "order with ID %d not found", orderID)
		}

		order.Status = status
		order.Touch(actor)
		if err := order.Validate(); err != nil {
			return err
		}
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order %d: %w", orderID, err)
		}
		snap = orderSnapshot(&order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("order_id", orderID).Str("status", status).Str("actor", actor).Msg("order status updated")
	return snap, nil
}

// UpdateOrderItem changes an item's quantity, adjusting the product's stock
// by the delta under a row lock. Increases beyond available stock are
// rejected.
func (m *Manager) UpdateOrderItem(itemID uint, quantity int, actor string) (*OrderItemSnapshot, error) {
	var snap *OrderItemSnapshot
	err := m.run("update_order_item", func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return wrapNotFound(err, "order item with ID %d not found", itemID)
		}

		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, item.ProductID).Error; err != nil {
			return wrapNotFound(err, "product with ID %d not found", item.ProductID)
		}

		diff := quantity - item.Quantity
		if diff > 0 && product.Stock < diff {
			return apperrors.NewValidation("insufficient stock for product %s", product.Name)
		}

		item.Quantity = quantity
		item.Touch(actor)
		if err := item.Validate(); err != nil {
			return err
		}

		product.Stock -= diff
		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update stock for product %d: %w", product.ID, err)
		}
		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("failed to update order item %d: %w", itemID, err)
		}

		snap = &OrderItemSnapshot{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			UpdatedAt:   item.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("item_id", itemID).Int("quantity", quantity).Str("actor", actor).Msg("order item updated")
	return snap, nil
}

// DeleteOrder removes an order and its items, returning each item's quantity
// to the corresponding product's stock first.
func (m *Manager) DeleteOrder(orderID uint, actor string) error {
	err := m.run("delete_order", func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			return wrapNotFound(err, "order with ID %d not found", orderID)
		}

		for _, item := range order.Items {
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, item.ProductID).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
			}
			product.Stock += item.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return fmt.Errorf("failed to return stock for product %d: %w", product.ID, err)
			}
			m.log.Info().Uint("product_id", product.ID).Int("quantity", item.Quantity).Msg("stock returned")
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %d: %w", orderID, err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("failed to delete order %d: %w", orderID, err)
		}

		m.log.Info().Uint("order_id", orderID).Str("actor", actor).Msg("order deleted")
		return nil
	})
	return err
}

// DeleteOrderItem removes a single item and returns its quantity to stock.
// The parent order is kept even when its last item is removed; that case is
// logged as a warning.
func (m *Manager) DeleteOrderItem(itemID uint, actor string) error {
	err := m.run("delete_order_item", func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return wrapNotFound(err, "order item with ID %d not found", itemID)
		}

		var product models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, item.ProductID).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			// Product already gone; nothing to return stock to.
		case err != nil:
			return fmt.Errorf("failed to get product %d: %w", item.ProductID, err)
		default:
			product.Stock += item.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return fmt.Errorf("failed to return stock for product %d: %w", product.ID, err)
			}
			m.log.Info().Uint("product_id", product.ID).Int("quantity", item.Quantity).Msg("stock returned")
		}

		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete order item %d: %w", itemID, err)
		}

		var remaining int64
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", item.OrderID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count remaining items for order %d: %w", item.OrderID, err)
		}
		if remaining == 0 {
			m.log.Warn().Uint("order_id", item.OrderID).Msg("order now has no items")
		}

		m.log.Info().Uint("item_id", itemID).Str("actor", actor).Msg("order item deleted")
		return nil
	})
	return err
}

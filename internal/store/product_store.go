package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pasar/internal/apperrors"
	"pasar/internal/models"
)

func productSnapshot(p *models.Product) *ProductSnapshot {
	return &ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		CreatedBy:   p.CreatedBy,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreateProduct creates a new product after field validation.
func (m *Manager) CreateProduct(name, description string, price float64, stock int, actor string) (*ProductSnapshot, error) {
	var snap *ProductSnapshot
	err := m.run("create_product", func(tx *gorm.DB) error {
		product := models.Product{
			Name:        name,
			Description: description,
			Price:       price,
			Stock:       stock,
		}
		product.Stamp(actor)
		if err := product.Validate(); err != nil {
			return err
		}

		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		snap = productSnapshot(&product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("product_id", snap.ID).Str("name", name).Msg("product created")
	return snap, nil
}

// GetProduct returns a product snapshot, or nil without error when absent.
func (m *Manager) GetProduct(id uint) (*ProductSnapshot, error) {
	var snap *ProductSnapshot
	err := m.run("get_product", func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				m.log.Debug().Uint("product_id", id).Msg("product not found")
				return nil
			}
			return fmt.Errorf("failed to get product %d: %w", id, err)
		}
		snap = productSnapshot(&product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListProducts returns a page of products with optional inclusive price
// bounds and a case-insensitive substring search over name and description.
func (m *Manager) ListProducts(params ListProductsParams) (*Page[ProductSnapshot], error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)

	var result *Page[ProductSnapshot]
	err := m.run("list_products", func(tx *gorm.DB) error {
		query := tx.Model(&models.Product{})
		if params.MinPrice != nil {
			query = query.Where("price >= ?", *params.MinPrice)
		}
		if params.MaxPrice != nil {
			query = query.Where("price <= ?", *params.MaxPrice)
		}
		if params.Search != "" {
			pattern := "%" + strings.ToLower(params.Search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}

		var products []models.Product
		if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Find(&products).Error; err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}

		items := make([]ProductSnapshot, 0, len(products))
		for i := range products {
			items = append(items, *productSnapshot(&products[i]))
		}
		result = &Page[ProductSnapshot]{Total: total, Page: page, PageSize: pageSize, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateProduct applies a partial update under a row lock so concurrent
// stock and price edits are serialized.
func (m *Manager) UpdateProduct(id uint, upd ProductUpdate, actor string) (*ProductSnapshot, error) {
	var snap *ProductSnapshot
	err := m.run("update_product", func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			return wrapNotFound(err, "product with ID %d not found", id)
		}

		if upd.Name != nil {
			product.Name = *upd.Name
		}
		if upd.Description != nil {
			product.Description = *upd.Description
		}
		if upd.Price != nil {
			product.Price = *upd.Price
		}
		if upd.Stock != nil {
			product.Stock = *upd.Stock
		}
		product.Touch(actor)

		if err := product.Validate(); err != nil {
			return err
		}
		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update product %d: %w", id, err)
		}
		snap = productSnapshot(&product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Uint("product_id", id).Str("actor", actor).Msg("product updated")
	return snap, nil
}

// UpdateProductStock applies a signed stock change with a reason recorded in
// the audit log. Changes that would drive stock negative are rejected.
func (m *Manager) UpdateProductStock(id uint, change int, reason, actor string) (*ProductSnapshot, error) {
	var snap *ProductSnapshot
	err := m.run("update_product_stock", func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			return wrapNotFound(err, "product with ID %d not found", id)
		}

		newStock := product.Stock + change
		if newStock < 0 {
			return apperrors.NewValidation("stock cannot be negative")
		}

		product.Stock = newStock
		product.Touch(actor)
		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update stock for product %d: %w", id, err)
		}
		snap = productSnapshot(&product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().
		Uint("product_id", id).
		Int("change", change).
		Int("stock", snap.Stock).
		Str("reason", reason).
		Str("actor", actor).
		Msg("stock updated")
	m.publish("stock.adjusted", map[string]interface{}{
		"product_id": snap.ID,
		"change":     change,
		"stock":      snap.Stock,
		"reason":     reason,
	})
	return snap, nil
}

// DeleteProduct removes a product. Products referenced by order items are
// protected unless force is set.
func (m *Manager) DeleteProduct(id uint, force bool, actor string) error {
	err := m.run("delete_product", func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
			return wrapNotFound(err, "product with ID %d not found", id)
		}

		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count order items for product %d: %w", id, err)
		}
		if refs > 0 && !force {
			return apperrors.NewValidation("cannot delete product that is used in orders; enable force to override")
		}

		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product %d: %w", id, err)
		}

		m.log.Info().Uint("product_id", id).Str("name", product.Name).Str("actor", actor).Msg("product deleted")
		return nil
	})
	return err
}

// BulkDeleteProducts deletes several products in one transaction. The whole
// batch is rejected when any requested product is referenced by an order
// item; ids that simply do not exist are reported without failing the batch.
func (m *Manager) BulkDeleteProducts(ids []uint, actor string) (*BulkDeleteResult, error) {
	var result *BulkDeleteResult
	err := m.run("bulk_delete_products", func(tx *gorm.DB) error {
		var usedIDs []uint
		if err := tx.Model(&models.OrderItem{}).
			Distinct("product_id").
			Where("product_id IN ?", ids).
			Pluck("product_id", &usedIDs).Error; err != nil {
			return fmt.Errorf("failed to check product references: %w", err)
		}
		if len(usedIDs) > 0 {
			return apperrors.NewValidation("products with IDs %v are used in orders and cannot be deleted", usedIDs)
		}

		res := &BulkDeleteResult{Errors: []string{}}
		for _, id := range ids {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					res.Errors = append(res.Errors, fmt.Sprintf("product with ID %d not found", id))
					continue
				}
				return fmt.Errorf("failed to get product %d: %w", id, err)
			}
			if err := tx.Delete(&product).Error; err != nil {
				return fmt.Errorf("failed to delete product %d: %w", id, err)
			}
			m.log.Info().Uint("product_id", id).Str("name", product.Name).Str("actor", actor).Msg("product deleted")
			res.DeletedCount++
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

package models

import "time"

// Order statuses accepted by the status enumeration.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order represents a customer order. Its items are persisted rows, each
// snapshotting the product price at purchase time.
type Order struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	UserID    uint        `json:"user_id" gorm:"index;not null" validate:"required"`
	OrderDate time.Time   `json:"order_date" gorm:"autoCreateTime"`
	Status    string      `json:"status" gorm:"index;type:varchar(50);default:pending" validate:"required,oneof=pending completed cancelled"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID" validate:"-"`
	Audit
}

// Validate checks the field-level rules before the order is persisted.
func (o *Order) Validate() error {
	return checkStruct("order", o)
}

// OrderItem represents a single line item within an order.
type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   uint    `json:"order_id" gorm:"index;not null" validate:"required"`
	ProductID uint    `json:"product_id" gorm:"index;not null" validate:"required"`
	Quantity  int     `json:"quantity" gorm:"not null" validate:"required,gt=0"`
	Price     float64 `json:"price" gorm:"not null" validate:"required,gt=0"` // Price at the time of order
	Product   Product `json:"-" validate:"-"`
	Audit
}

// Validate checks the field-level rules before the order item is persisted.
func (i *OrderItem) Validate() error {
	return checkStruct("order item", i)
}

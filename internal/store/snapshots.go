package store

import "time"

// Snapshot types are plain value copies captured before the transaction ends.
// They stay valid after the session closes; live entities never leave the
// manager.

// UserSnapshot is the caller-facing view of a user.
type UserSnapshot struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductSnapshot is the caller-facing view of a product.
type ProductSnapshot struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderSnapshot is the caller-facing view of an order without its items.
type OrderSnapshot struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Status    string    `json:"status"`
	OrderDate time.Time `json:"order_date"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItemSnapshot is the caller-facing view of a single order line.
type OrderItemSnapshot struct {
	ID          uint      `json:"id"`
	OrderID     uint      `json:"order_id"`
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderDetail is an order snapshot together with its eagerly loaded items.
type OrderDetail struct {
	OrderSnapshot
	Items []OrderItemSnapshot `json:"items"`
}

// OrderSummary annotates an order with its item count and total amount.
type OrderSummary struct {
	ID          uint      `json:"id"`
	OrderDate   time.Time `json:"order_date"`
	Status      string    `json:"status"`
	ItemsCount  int       `json:"items_count"`
	TotalAmount float64   `json:"total_amount"`
}

// ProductSales reports the total quantity sold for one product.
type ProductSales struct {
	ProductName string `json:"product_name"`
	TotalSold   int64  `json:"total_quantity_sold" gorm:"column:total_sold"`
}

// Page is an offset/limit pagination result.
type Page[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    []T   `json:"items"`
}

// BulkDeleteResult reports the outcome of a bulk product deletion.
type BulkDeleteResult struct {
	DeletedCount int      `json:"deleted_count"`
	Errors       []string `json:"errors"`
}

// Credentials carries the fields the auth service needs to verify a login.
type Credentials struct {
	ID           uint
	Username     string
	PasswordHash string
	IsActive     bool
}

// OrderItemInput describes one requested order line.
type OrderItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// UserUpdate is a partial user update; nil fields are left untouched.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ProductUpdate is a partial product update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

// ListProductsParams filters and paginates the product listing.
type ListProductsParams struct {
	Page     int
	PageSize int
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

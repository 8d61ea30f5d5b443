package models

// Product represents a product in the store's catalog.
type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"index;type:varchar(100);not null" validate:"required,max=100"`
	Description string  `json:"description" gorm:"type:text" validate:"omitempty,max=500"`
	Price       float64 `json:"price" gorm:"index;not null" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Audit
}

// Validate checks the field-level rules before the product is persisted.
func (p *Product) Validate() error {
	return checkStruct("product", p)
}

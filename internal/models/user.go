package models

// User represents a registered customer of the store.
type User struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Username     string  `json:"username" gorm:"uniqueIndex;type:varchar(50);not null" validate:"required,min=3,max=50"`
	Email        string  `json:"email" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,email"`
	PasswordHash string  `json:"-" gorm:"type:varchar(128);not null"`
	IsActive     bool    `json:"is_active" gorm:"default:true"`
	Orders       []Order `json:"-" gorm:"foreignKey:UserID" validate:"-"`
	Audit
}

// Validate checks the field-level rules before the user is persisted.
func (u *User) Validate() error {
	return checkStruct("user", u)
}

package models

import "time"

// Audit carries the audit columns shared by every persisted entity. The
// timestamps are maintained by GORM; the actor columns are stamped explicitly
// by the data manager inside each transaction.
type Audit struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	CreatedBy string    `json:"created_by" gorm:"type:varchar(50)"`
	UpdatedBy string    `json:"updated_by" gorm:"type:varchar(50)"`
}

// Stamp records the creating actor on a fresh entity.
func (a *Audit) Stamp(actor string) {
	a.CreatedBy = actor
	a.UpdatedBy = actor
}

// Touch records the updating actor on an existing entity.
func (a *Audit) Touch(actor string) {
	a.UpdatedBy = actor
}

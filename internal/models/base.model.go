package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the audit and soft-delete columns every persisted
// row in the back office is required to have. CreatedBy/UpdatedBy hold
// the opaque caller identity passed through from the auth layer.
type BaseModel struct {
	ID        int            `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"                    json:"updatedAt"`
	DeletedAt gorm.DeletedAt `                                         json:"deletedAt"`
	CreatedBy string         `gorm:"size:128"                          json:"createdBy"`
	UpdatedBy string         `gorm:"size:128"                          json:"updatedBy"`
}

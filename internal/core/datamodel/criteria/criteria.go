package criteria

import "time"

type Criteria struct {
	ID              int64     `gorm:"primaryKey"`
	CategoryID      int64     `gorm:"column:category_id;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	BaseDescription string    `gorm:"column:base_description"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Criteria) TableName() string {
	return "criteria"
}

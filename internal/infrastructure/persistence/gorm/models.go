// Package gorm provides GORM model definitions and repositories for the
// relational pantry and recipe log
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PantryItemModel represents the GORM model for pantry items
type PantryItemModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_pantry_name_lower,expression:LOWER(name)"`
	Quantity  float64   `gorm:"not null;default:1"`
	Unit      string    `gorm:"type:varchar(50);not null;default:'units'"`
	Category  string    `gorm:"type:varchar(100)"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeLogModel represents one generated result in the recipes table
type RecipeLogModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Mode      string    `gorm:"type:varchar(20);not null;index"`
	Source    string    `gorm:"type:varchar(20);not null"`
	Title     string    `gorm:"type:varchar(500)"`
	Body      string    `gorm:"type:text"`
	Payload   JSONField `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

// JSONField stores an arbitrary JSON document in a text column
type JSONField json.RawMessage

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	case string:
		*j = JSONField(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

// TableName methods for custom table names
func (PantryItemModel) TableName() string {
	return "pantry"
}

func (RecipeLogModel) TableName() string {
	return "recipes"
}

// Models lists every table for AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&PantryItemModel{},
		&RecipeLogModel{},
	}
}

package domain

import "time"

// AdditionalInfo is a versioned key/value side-table for free-text fields
// attached to an entity. Settlement instructions live here under field name
// SETTLEMENT_INSTRUCTIONS: saving a new value deactivates the current row
// and inserts version+1, same scheme as trade versioning.
type AdditionalInfo struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	EntityType string `gorm:"column:entity_type;index:idx_info_entity" json:"entity_type"`
	EntityID   int64  `gorm:"column:entity_id;index:idx_info_entity" json:"entity_id"`
	FieldName  string `gorm:"column:field_name;index:idx_info_entity" json:"field_name"`
	FieldValue string `gorm:"column:field_value" json:"field_value"`
	Version    int    `gorm:"column:version" json:"version"`
	Active     bool   `gorm:"column:active" json:"active"`

	CreatedDate     time.Time  `gorm:"column:created_date" json:"created_date"`
	DeactivatedDate *time.Time `gorm:"column:deactivated_date" json:"deactivated_date,omitempty"`
}

func (AdditionalInfo) TableName() string { return "additional_info" }

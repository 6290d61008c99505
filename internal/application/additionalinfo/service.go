// Package additionalinfo stores versioned free-text fields attached to an
// entity. Settlement instructions are the only field the desk uses today.
// Saving deactivates the current row and inserts version+1, mirroring how
// trade versions are kept.
package additionalinfo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"swapdesk-backend/internal/domain"
)

const (
	EntityTrade               = "TRADE"
	SettlementInstructionsKey = "SETTLEMENT_INSTRUCTIONS"
)

type Service struct {
	DB *gorm.DB
}

// SaveField writes a new active version of the field on the given db handle,
// deactivating any currently active row. Exposed at package level so the
// trade lifecycle engine can call it inside its own transaction.
func SaveField(db *gorm.DB, entityType string, entityID int64, fieldName, value string) (*domain.AdditionalInfo, error) {
	now := time.Now()
	version := 1

	var existing domain.AdditionalInfo
	err := db.Where("entity_type = ? AND entity_id = ? AND field_name = ? AND active = ?",
		entityType, entityID, fieldName, true).First(&existing).Error
	switch {
	case err == nil:
		existing.Active = false
		existing.DeactivatedDate = &now
		if err := db.Save(&existing).Error; err != nil {
			return nil, err
		}
		version = existing.Version + 1
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	info := domain.AdditionalInfo{
		EntityType:  entityType,
		EntityID:    entityID,
		FieldName:   fieldName,
		FieldValue:  value,
		Version:     version,
		Active:      true,
		CreatedDate: now,
	}
	if err := db.Create(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveSettlementInstructions versions the settlement instructions for a trade.
func (s *Service) SaveSettlementInstructions(ctx context.Context, tradeID int64, instructions string) (*domain.AdditionalInfo, error) {
	var saved *domain.AdditionalInfo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var errSave error
		saved, errSave = SaveField(tx, EntityTrade, tradeID, SettlementInstructionsKey, instructions)
		return errSave
	})
	return saved, err
}

// SettlementInstructions returns the active instructions for a trade, or ""
// when none are stored.
func (s *Service) SettlementInstructions(ctx context.Context, tradeID int64) (string, error) {
	var info domain.AdditionalInfo
	err := s.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND field_name = ? AND active = ?",
			EntityTrade, tradeID, SettlementInstructionsKey, true).
		First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return info.FieldValue, nil
}

// FindTradeIDsByInstructions returns trade ids whose active settlement
// instructions contain the given text (case-sensitive partial match).
func (s *Service) FindTradeIDsByInstructions(ctx context.Context, fragment string) ([]int64, error) {
	var ids []int64
	err := s.DB.WithContext(ctx).
		Model(&domain.AdditionalInfo{}).
		Where("entity_type = ? AND field_name = ? AND active = ? AND field_value LIKE ?",
			EntityTrade, SettlementInstructionsKey, true, "%"+fragment+"%").
		Pluck("entity_id", &ids).Error
	return ids, err
}

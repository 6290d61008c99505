package additionalinfo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"swapdesk-backend/internal/domain"
)

func setupInfoTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AdditionalInfo{}))
	return &Service{DB: db}, db
}

func TestSaveSettlementInstructions_VersionsOnRewrite(t *testing.T) {
	svc, db := setupInfoTest(t)
	ctx := context.Background()

	first, err := svc.SaveSettlementInstructions(ctx, 10000, "Pay via CHAPS, ref 10000")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.True(t, first.Active)

	second, err := svc.SaveSettlementInstructions(ctx, 10000, "Pay via SEPA, ref 10000")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	var rows []domain.AdditionalInfo
	require.NoError(t, db.Where("entity_id = ?", 10000).Order("version").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Active)
	assert.NotNil(t, rows[0].DeactivatedDate)
	assert.True(t, rows[1].Active)

	current, err := svc.SettlementInstructions(ctx, 10000)
	require.NoError(t, err)
	assert.Equal(t, "Pay via SEPA, ref 10000", current)
}

func TestSettlementInstructions_EmptyWhenAbsent(t *testing.T) {
	svc, _ := setupInfoTest(t)
	current, err := svc.SettlementInstructions(context.Background(), 99999)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestFindTradeIDsByInstructions(t *testing.T) {
	svc, _ := setupInfoTest(t)
	ctx := context.Background()

	_, err := svc.SaveSettlementInstructions(ctx, 10000, "Settle via CHAPS same day")
	require.NoError(t, err)
	_, err = svc.SaveSettlementInstructions(ctx, 10001, "Settle via SEPA next day")
	require.NoError(t, err)

	ids, err := svc.FindTradeIDsByInstructions(ctx, "CHAPS")
	require.NoError(t, err)
	assert.Equal(t, []int64{10000}, ids)

	ids, err = svc.FindTradeIDsByInstructions(ctx, "Settle via")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10000, 10001}, ids)
}

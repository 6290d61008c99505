package trades

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"swapdesk-backend/internal/application/additionalinfo"
	"swapdesk-backend/internal/application/privileges"
	"swapdesk-backend/internal/domain"
	"swapdesk-backend/internal/pkg/apperrors"
)

func setupTradeTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Trade{}, &domain.TradeLeg{}, &domain.Cashflow{},
		&domain.TradeSequence{}, &domain.TradeEvent{}, &domain.AdditionalInfo{},
		&domain.Book{}, &domain.Counterparty{}, &domain.TradeStatus{},
		&domain.TradeType{}, &domain.TradeSubType{}, &domain.Currency{},
		&domain.LegType{}, &domain.RateIndex{}, &domain.HolidayCalendar{},
		&domain.Schedule{}, &domain.BusinessDayConvention{}, &domain.PayRec{},
		&domain.ApplicationUser{}, &domain.UserProfile{},
		&domain.Privilege{}, &domain.UserPrivilege{},
	))
	seedReferenceData(t, db)
	return &Service{DB: db, Privileges: &privileges.Service{DB: db}}, db
}

func seedReferenceData(t *testing.T, db *gorm.DB) {
	for _, s := range []string{"NEW", "AMENDED", "TERMINATED", "CANCELLED", "LIVE"} {
		require.NoError(t, db.Create(&domain.TradeStatus{TradeStatus: s}).Error)
	}
	for _, b := range []string{"RATES-LDN", "RATES-NY"} {
		require.NoError(t, db.Create(&domain.Book{BookName: b, Active: true}).Error)
	}
	for _, c := range []string{"ACME Capital", "Borealis Bank"} {
		require.NoError(t, db.Create(&domain.Counterparty{Name: c, Active: true}).Error)
	}
	for _, c := range []string{"USD", "EUR", "GBP"} {
		require.NoError(t, db.Create(&domain.Currency{Currency: c}).Error)
	}
	for _, lt := range []string{"Fixed", "Floating"} {
		require.NoError(t, db.Create(&domain.LegType{Type: lt}).Error)
	}
	for _, pr := range []string{"PAY", "RECEIVE"} {
		require.NoError(t, db.Create(&domain.PayRec{PayRec: pr}).Error)
	}
	for _, sch := range []string{"3M", "Quarterly", "Monthly"} {
		require.NoError(t, db.Create(&domain.Schedule{Schedule: sch}).Error)
	}
	for _, idx := range []string{"SOFR", "EURIBOR"} {
		require.NoError(t, db.Create(&domain.RateIndex{Index: idx}).Error)
	}
	require.NoError(t, db.Create(&domain.BusinessDayConvention{BDC: "MODIFIED_FOLLOWING"}).Error)
	require.NoError(t, db.Create(&domain.TradeType{TradeType: "IRS"}).Error)
	require.NoError(t, db.Create(&domain.TradeSequence{Name: "trade_id", NextValue: 10000}).Error)

	seedTrader(t, db, "tjones", "TRADER", "BOOK_TRADE", "AMEND_TRADE", "VIEW_TRADE")
	seedTrader(t, db, "viewer", "SUPPORT", "VIEW_TRADE")
}

func seedTrader(t *testing.T, db *gorm.DB, login, role string, privs ...string) {
	profile := domain.UserProfile{UserType: role}
	require.NoError(t, db.Where(domain.UserProfile{UserType: role}).FirstOrCreate(&profile).Error)
	user := domain.ApplicationUser{LoginID: login, FirstName: login, Active: true, ProfileID: &profile.ID}
	require.NoError(t, db.Create(&user).Error)
	for _, p := range privs {
		priv := domain.Privilege{Name: p}
		require.NoError(t, db.Where(domain.Privilege{Name: p}).FirstOrCreate(&priv).Error)
		require.NoError(t, db.Create(&domain.UserPrivilege{UserID: user.ID, PrivilegeID: priv.ID}).Error)
	}
}

func newDate(t time.Time) *Date {
	return &Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// validRequest is a one-year payer swap: pay fixed 3.5% quarterly, receive
// SOFR quarterly, both legs 10M USD.
func validRequest() *TradeRequest {
	today := time.Now()
	return &TradeRequest{
		TradeDate:        newDate(today),
		StartDate:        newDate(today),
		MaturityDate:     newDate(today.AddDate(1, 0, 0)),
		BookName:         "RATES-LDN",
		CounterpartyName: "ACME Capital",
		TraderUserName:   "tjones",
		TradeType:        "IRS",
		Legs: []LegRequest{
			{
				Notional: decimal.NewFromInt(10_000_000), Rate: 3.5,
				Currency: "USD", LegType: "Fixed", Schedule: "3M", PayReceive: "PAY",
			},
			{
				Notional: decimal.NewFromInt(10_000_000),
				Currency: "USD", LegType: "Floating", IndexName: "SOFR",
				Schedule: "3M", PayReceive: "RECEIVE",
			},
		},
	}
}

func TestBook_CreatesVersionOneWithLegsAndCashflows(t *testing.T) {
	svc, _ := setupTradeTest(t)
	ctx := context.Background()

	trade, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(10000), trade.TradeID)
	assert.Equal(t, 1, trade.Version)
	assert.True(t, trade.Active)
	assert.Equal(t, "NEW", trade.TradeStatus.TradeStatus)
	assert.Equal(t, "RATES-LDN", trade.Book.BookName)
	assert.Equal(t, "ACME Capital", trade.Counterparty.Name)
	require.Len(t, trade.Legs, 2)

	// Quarterly over one year gives four payments per leg.
	for _, leg := range trade.Legs {
		assert.Len(t, leg.Cashflows, 4)
	}
}

func TestBook_SequentialIDs(t *testing.T) {
	svc, _ := setupTradeTest(t)
	ctx := context.Background()

	first, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)
	second, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(10000), first.TradeID)
	assert.Equal(t, int64(10001), second.TradeID)
}

func TestBook_FixedLegCashflowValues(t *testing.T) {
	svc, _ := setupTradeTest(t)

	trade, err := svc.Book(context.Background(), "tjones", validRequest())
	require.NoError(t, err)

	var fixed, floating *domain.TradeLeg
	for i := range trade.Legs {
		if trade.Legs[i].Rate != 0 {
			fixed = &trade.Legs[i]
		} else {
			floating = &trade.Legs[i]
		}
	}
	require.NotNil(t, fixed)
	require.NotNil(t, floating)

	// 10,000,000 * 3.5% * 3/12 = 87,500.00 per quarter.
	for _, cf := range fixed.Cashflows {
		assert.True(t, cf.PaymentValue.Equal(decimal.NewFromInt(87500)),
			"expected 87500, got %s", cf.PaymentValue)
	}
	for _, cf := range floating.Cashflows {
		assert.True(t, cf.PaymentValue.IsZero())
	}
}

func TestBook_RequiresPrivilege(t *testing.T) {
	svc, db := setupTradeTest(t)

	_, err := svc.Book(context.Background(), "viewer", validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)

	var count int64
	require.NoError(t, db.Model(&domain.Trade{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBook_DuplicateCallerSuppliedTradeID(t *testing.T) {
	svc, db := setupTradeTest(t)
	ctx := context.Background()

	id := int64(20000)
	req := validRequest()
	req.TradeID = &id
	first, err := svc.Book(ctx, "tjones", req)
	require.NoError(t, err)
	assert.Equal(t, id, first.TradeID)

	again := validRequest()
	again.TradeID = &id
	_, err = svc.Book(ctx, "tjones", again)
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, "Trade id 20000 is already in use")

	var rows int64
	require.NoError(t, db.Model(&domain.Trade{}).Where("trade_id = ?", id).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestBook_AggregatesValidationErrors(t *testing.T) {
	svc, _ := setupTradeTest(t)

	req := &TradeRequest{
		Legs: []LegRequest{{Notional: decimal.NewFromInt(1)}},
	}
	_, err := svc.Book(context.Background(), "tjones", req)
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, "Trade date is required")
	assert.Contains(t, verr.Violations, "Trade must have exactly 2 legs")
	assert.Contains(t, verr.Violations, "Book is required")
	assert.Contains(t, verr.Violations, "Counterparty is required")
}

func TestBook_RejectsSameDirectionLegs(t *testing.T) {
	svc, _ := setupTradeTest(t)

	req := validRequest()
	req.Legs[1].PayReceive = "pay"
	_, err := svc.Book(context.Background(), "tjones", req)
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, "Legs must have opposite pay/receive flags")
}

func TestBook_UnknownBookLeavesNothingBehind(t *testing.T) {
	svc, db := setupTradeTest(t)

	req := validRequest()
	req.BookName = "NO-SUCH-BOOK"
	_, err := svc.Book(context.Background(), "tjones", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrReferenceDataMissing)

	var trades, legs int64
	require.NoError(t, db.Model(&domain.Trade{}).Count(&trades).Error)
	require.NoError(t, db.Model(&domain.TradeLeg{}).Count(&legs).Error)
	assert.Zero(t, trades)
	assert.Zero(t, legs)
}

func TestBook_PersistsSettlementInstructions(t *testing.T) {
	svc, db := setupTradeTest(t)

	req := validRequest()
	req.SettlementInstructions = "Settle via CHAPS, value date convention modified following"
	trade, err := svc.Book(context.Background(), "tjones", req)
	require.NoError(t, err)

	info := &additionalinfo.Service{DB: db}
	stored, err := info.SettlementInstructions(context.Background(), trade.TradeID)
	require.NoError(t, err)
	assert.Equal(t, req.SettlementInstructions, stored)
}

func TestBook_RejectsBadSettlementInstructions(t *testing.T) {
	svc, _ := setupTradeTest(t)

	req := validRequest()
	req.SettlementInstructions = "too short"
	_, err := svc.Book(context.Background(), "tjones", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	req = validRequest()
	req.SettlementInstructions = "Contains forbidden characters like @ and #!"
	_, err = svc.Book(context.Background(), "tjones", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	// 9 characters spanning 14 bytes; the length rule counts characters
	req = validRequest()
	req.SettlementInstructions = "ééééé1234"
	_, err = svc.Book(context.Background(), "tjones", req)
	require.Error(t, err)
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, "Settlement instructions must be between 10 and 500 characters")
}

func TestAmend_SupersedesActiveVersion(t *testing.T) {
	svc, db := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Legs[0].Rate = 3.75
	amended, err := svc.Amend(ctx, "tjones", booked.TradeID, req)
	require.NoError(t, err)

	assert.Equal(t, 2, amended.Version)
	assert.True(t, amended.Active)
	assert.Equal(t, "AMENDED", amended.TradeStatus.TradeStatus)

	var versions []domain.Trade
	require.NoError(t, db.Where("trade_id = ?", booked.TradeID).Order("version").Find(&versions).Error)
	require.Len(t, versions, 2)
	assert.False(t, versions[0].Active)
	assert.NotNil(t, versions[0].DeactivatedDate)
	assert.True(t, versions[1].Active)
}

func TestAmend_UnknownTradeNotFound(t *testing.T) {
	svc, _ := setupTradeTest(t)

	_, err := svc.Amend(context.Background(), "tjones", 99999, validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestTerminate_StatusOnlyTransition(t *testing.T) {
	svc, db := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)

	terminated, err := svc.Terminate(ctx, "tjones", booked.TradeID)
	require.NoError(t, err)
	assert.Equal(t, "TERMINATED", terminated.TradeStatus.TradeStatus)
	assert.Equal(t, 1, terminated.Version)

	var count int64
	require.NoError(t, db.Model(&domain.Trade{}).Where("trade_id = ?", booked.TradeID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCancelAndDelete(t *testing.T) {
	svc, _ := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)
	cancelled, err := svc.Cancel(ctx, "tjones", booked.TradeID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.TradeStatus.TradeStatus)

	second, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "tjones", second.TradeID))

	got, err := svc.Get(ctx, second.TradeID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.TradeStatus.TradeStatus)
}

func TestLifecycle_RequiresAmendPrivilege(t *testing.T) {
	svc, _ := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)

	_, err = svc.Terminate(ctx, "viewer", booked.TradeID)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	_, err = svc.Amend(ctx, "viewer", booked.TradeID, validRequest())
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}

func TestGet_UnknownTrade(t *testing.T) {
	svc, _ := setupTradeTest(t)
	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestHistory_ReturnsAllVersions(t *testing.T) {
	svc, _ := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)
	_, err = svc.Amend(ctx, "tjones", booked.TradeID, validRequest())
	require.NoError(t, err)

	versions, err := svc.History(ctx, booked.TradeID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
}

func TestUpdateSettlementInstructions(t *testing.T) {
	svc, db := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateSettlementInstructions(ctx, "tjones", booked.TradeID,
		"Pay to account 12345678, sort code 10-20-30"))

	info := &additionalinfo.Service{DB: db}
	stored, err := info.SettlementInstructions(ctx, booked.TradeID)
	require.NoError(t, err)
	assert.Equal(t, "Pay to account 12345678, sort code 10-20-30", stored)

	err = svc.UpdateSettlementInstructions(ctx, "tjones", booked.TradeID, "short")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = svc.UpdateSettlementInstructions(ctx, "tjones", 99999,
		"Pay to account 12345678, sort code 10-20-30")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestEvents_WrittenPerTransition(t *testing.T) {
	svc, db := setupTradeTest(t)
	ctx := context.Background()

	booked, err := svc.Book(ctx, "tjones", validRequest())
	require.NoError(t, err)
	_, err = svc.Amend(ctx, "tjones", booked.TradeID, validRequest())
	require.NoError(t, err)
	_, err = svc.Terminate(ctx, "tjones", booked.TradeID)
	require.NoError(t, err)

	var events []domain.TradeEvent
	require.NoError(t, db.Where("trade_id = ?", booked.TradeID).Order("id").Find(&events).Error)
	require.Len(t, events, 3)
	assert.Equal(t, "BOOKED", events[0].EventType)
	assert.Equal(t, "AMENDED", events[1].EventType)
	assert.Equal(t, "TERMINATED", events[2].EventType)
	assert.Equal(t, "tjones", events[0].ActorLogin)
}

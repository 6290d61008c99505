package database

import (
	"swapdesk-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when running behind a connection
// pooler (PgBouncer and friends).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Trade{}, &domain.TradeLeg{}, &domain.Cashflow{},
		&domain.TradeSequence{}, &domain.TradeEvent{}, &domain.AdditionalInfo{},
		&domain.Book{}, &domain.Counterparty{}, &domain.TradeStatus{},
		&domain.TradeType{}, &domain.TradeSubType{}, &domain.Currency{},
		&domain.LegType{}, &domain.RateIndex{}, &domain.HolidayCalendar{},
		&domain.Schedule{}, &domain.BusinessDayConvention{}, &domain.PayRec{},
		&domain.ApplicationUser{}, &domain.UserProfile{},
		&domain.Privilege{}, &domain.UserPrivilege{},
	)
}

// Seed inserts the static reference data the lifecycle engine depends on.
// Idempotent; safe to run on every boot.
func Seed(db *gorm.DB) error {
	for _, s := range []string{"NEW", "AMENDED", "TERMINATED", "CANCELLED", "LIVE", "MATURED"} {
		if err := db.Where(domain.TradeStatus{TradeStatus: s}).
			FirstOrCreate(&domain.TradeStatus{TradeStatus: s}).Error; err != nil {
			return err
		}
	}
	for _, pr := range []string{"PAY", "RECEIVE"} {
		if err := db.Where(domain.PayRec{PayRec: pr}).
			FirstOrCreate(&domain.PayRec{PayRec: pr}).Error; err != nil {
			return err
		}
	}
	for _, lt := range []string{"Fixed", "Floating"} {
		if err := db.Where(domain.LegType{Type: lt}).
			FirstOrCreate(&domain.LegType{Type: lt}).Error; err != nil {
			return err
		}
	}
	for _, c := range []string{"USD", "EUR", "GBP", "JPY", "CHF"} {
		if err := db.Where(domain.Currency{Currency: c}).
			FirstOrCreate(&domain.Currency{Currency: c}).Error; err != nil {
			return err
		}
	}
	for _, s := range []string{"Monthly", "Quarterly", "Semi-annually", "Annually", "1M", "3M", "6M", "12M"} {
		if err := db.Where(domain.Schedule{Schedule: s}).
			FirstOrCreate(&domain.Schedule{Schedule: s}).Error; err != nil {
			return err
		}
	}
	for _, b := range []string{"FOLLOWING", "MODIFIED_FOLLOWING", "PRECEDING", "NONE"} {
		if err := db.Where(domain.BusinessDayConvention{BDC: b}).
			FirstOrCreate(&domain.BusinessDayConvention{BDC: b}).Error; err != nil {
			return err
		}
	}
	for _, idx := range []string{"SOFR", "EURIBOR", "SONIA", "TONAR", "SARON"} {
		if err := db.Where(domain.RateIndex{Index: idx}).
			FirstOrCreate(&domain.RateIndex{Index: idx}).Error; err != nil {
			return err
		}
	}
	for _, tt := range []string{"IRS", "OIS", "BASIS"} {
		if err := db.Where(domain.TradeType{TradeType: tt}).
			FirstOrCreate(&domain.TradeType{TradeType: tt}).Error; err != nil {
			return err
		}
	}

	// Sequence row for trade-id allocation; first booked trade gets 10000.
	seq := domain.TradeSequence{Name: "trade_id", NextValue: 10000}
	return db.Where(domain.TradeSequence{Name: "trade_id"}).FirstOrCreate(&seq).Error
}

package domain

// Reference data. Read-mostly lookup tables resolved by name first, id second
// when booking or amending.

type Book struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	BookName string `gorm:"column:book_name;uniqueIndex" json:"book_name"`
	Active   bool   `gorm:"column:active" json:"active"`
}

func (Book) TableName() string { return "books" }

type Counterparty struct {
	ID     uint   `gorm:"column:id;primaryKey" json:"id"`
	Name   string `gorm:"column:name;uniqueIndex" json:"name"`
	Active bool   `gorm:"column:active" json:"active"`
}

func (Counterparty) TableName() string { return "counterparties" }

type TradeStatus struct {
	ID          uint   `gorm:"column:id;primaryKey" json:"id"`
	TradeStatus string `gorm:"column:trade_status;uniqueIndex" json:"trade_status"`
}

func (TradeStatus) TableName() string { return "trade_statuses" }

type TradeType struct {
	ID        uint   `gorm:"column:id;primaryKey" json:"id"`
	TradeType string `gorm:"column:trade_type;uniqueIndex" json:"trade_type"`
}

func (TradeType) TableName() string { return "trade_types" }

type TradeSubType struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	TradeSubType string `gorm:"column:trade_sub_type;uniqueIndex" json:"trade_sub_type"`
}

func (TradeSubType) TableName() string { return "trade_sub_types" }

type Currency struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	Currency string `gorm:"column:currency;uniqueIndex" json:"currency"` // ISO code, e.g. USD
}

func (Currency) TableName() string { return "currencies" }

type LegType struct {
	ID   uint   `gorm:"column:id;primaryKey" json:"id"`
	Type string `gorm:"column:type;uniqueIndex" json:"type"` // Fixed | Floating
}

func (LegType) TableName() string { return "leg_types" }

// RateIndex is a floating-rate index (e.g. SOFR, EURIBOR). Required on
// floating legs; fixing logic itself is out of scope.
type RateIndex struct {
	ID    uint   `gorm:"column:id;primaryKey" json:"id"`
	Index string `gorm:"column:index_name;uniqueIndex" json:"index"`
}

func (RateIndex) TableName() string { return "rate_indices" }

type HolidayCalendar struct {
	ID              uint   `gorm:"column:id;primaryKey" json:"id"`
	HolidayCalendar string `gorm:"column:holiday_calendar;uniqueIndex" json:"holiday_calendar"`
}

func (HolidayCalendar) TableName() string { return "holiday_calendars" }

// Schedule is a named calculation period (e.g. "Monthly", "3M").
type Schedule struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	Schedule string `gorm:"column:schedule;uniqueIndex" json:"schedule"`
}

func (Schedule) TableName() string { return "schedules" }

type BusinessDayConvention struct {
	ID  uint   `gorm:"column:id;primaryKey" json:"id"`
	BDC string `gorm:"column:bdc;uniqueIndex" json:"bdc"` // e.g. MODIFIED_FOLLOWING
}

func (BusinessDayConvention) TableName() string { return "business_day_conventions" }

type PayRec struct {
	ID     uint   `gorm:"column:id;primaryKey" json:"id"`
	PayRec string `gorm:"column:pay_rec;uniqueIndex" json:"pay_rec"` // PAY | RECEIVE
}

func (PayRec) TableName() string { return "pay_recs" }

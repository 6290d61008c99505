package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Trade is one version of a booked trade. Versions of the same trade share
// TradeID; exactly one row per TradeID has Active = true at any time.
// Amendments deactivate the current row and insert version+1; terminate and
// cancel are status-only transitions on the active row.
type Trade struct {
	ID      uint  `gorm:"column:id;primaryKey" json:"id"`
	TradeID int64 `gorm:"column:trade_id;uniqueIndex:idx_trade_version" json:"trade_id"`
	Version int   `gorm:"column:version;uniqueIndex:idx_trade_version" json:"version"`
	Active  bool  `gorm:"column:active;index" json:"active"`

	TradeDate         *time.Time `gorm:"column:trade_date;type:date" json:"trade_date"`
	StartDate         *time.Time `gorm:"column:start_date;type:date" json:"start_date"`
	MaturityDate      *time.Time `gorm:"column:maturity_date;type:date" json:"maturity_date"`
	ExecutionDate     *time.Time `gorm:"column:execution_date;type:date" json:"execution_date"`
	UTICode           string     `gorm:"column:uti_code" json:"uti_code"`

	BookID         *uint `gorm:"column:book_id" json:"book_id"`
	CounterpartyID *uint `gorm:"column:counterparty_id" json:"counterparty_id"`
	TradeStatusID  *uint `gorm:"column:trade_status_id" json:"trade_status_id"`
	TraderUserID   *uint `gorm:"column:trader_user_id" json:"trader_user_id"`
	InputterUserID *uint `gorm:"column:inputter_user_id" json:"inputter_user_id"`
	TradeTypeID    *uint `gorm:"column:trade_type_id" json:"trade_type_id"`
	TradeSubTypeID *uint `gorm:"column:trade_sub_type_id" json:"trade_sub_type_id"`

	Book         *Book            `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Counterparty *Counterparty    `gorm:"foreignKey:CounterpartyID" json:"counterparty,omitempty"`
	TradeStatus  *TradeStatus     `gorm:"foreignKey:TradeStatusID" json:"trade_status,omitempty"`
	TraderUser   *ApplicationUser `gorm:"foreignKey:TraderUserID" json:"trader_user,omitempty"`
	InputterUser *ApplicationUser `gorm:"foreignKey:InputterUserID" json:"inputter_user,omitempty"`
	TradeType    *TradeType       `gorm:"foreignKey:TradeTypeID" json:"trade_type,omitempty"`
	TradeSubType *TradeSubType    `gorm:"foreignKey:TradeSubTypeID" json:"trade_sub_type,omitempty"`

	Legs []TradeLeg `gorm:"foreignKey:TradeRecordID" json:"legs,omitempty"`

	CreatedDate        time.Time  `gorm:"column:created_date" json:"created_date"`
	LastTouchTimestamp time.Time  `gorm:"column:last_touch_timestamp" json:"last_touch_timestamp"`
	DeactivatedDate    *time.Time `gorm:"column:deactivated_date" json:"deactivated_date,omitempty"`
}

func (Trade) TableName() string { return "trades" }

// TradeLeg is one side of a swap, owned by exactly one trade version.
// Legs are immutable once created; an amendment writes new leg rows.
type TradeLeg struct {
	ID            uint `gorm:"column:id;primaryKey" json:"id"`
	TradeRecordID uint `gorm:"column:trade_record_id;index" json:"trade_record_id"`

	Notional decimal.Decimal `gorm:"column:notional;type:decimal(25,2)" json:"notional"`
	Rate     float64         `gorm:"column:rate" json:"rate"` // percent, e.g. 3.5 means 3.5%

	CurrencyID      *uint `gorm:"column:currency_id" json:"currency_id"`
	LegTypeID       *uint `gorm:"column:leg_type_id" json:"leg_type_id"`
	IndexID         *uint `gorm:"column:index_id" json:"index_id"`
	HolidayCalID    *uint `gorm:"column:holiday_calendar_id" json:"holiday_calendar_id"`
	ScheduleID      *uint `gorm:"column:schedule_id" json:"schedule_id"`
	PaymentBDCID    *uint `gorm:"column:payment_bdc_id" json:"payment_bdc_id"`
	FixingBDCID     *uint `gorm:"column:fixing_bdc_id" json:"fixing_bdc_id"`
	PayReceiveID    *uint `gorm:"column:pay_receive_id" json:"pay_receive_id"`

	Currency        *Currency              `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	LegRateType     *LegType               `gorm:"foreignKey:LegTypeID" json:"leg_rate_type,omitempty"`
	Index           *RateIndex             `gorm:"foreignKey:IndexID" json:"index,omitempty"`
	HolidayCalendar *HolidayCalendar       `gorm:"foreignKey:HolidayCalID" json:"holiday_calendar,omitempty"`
	Schedule        *Schedule              `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	PaymentBDC      *BusinessDayConvention `gorm:"foreignKey:PaymentBDCID" json:"payment_bdc,omitempty"`
	FixingBDC       *BusinessDayConvention `gorm:"foreignKey:FixingBDCID" json:"fixing_bdc,omitempty"`
	PayReceive      *PayRec                `gorm:"foreignKey:PayReceiveID" json:"pay_receive,omitempty"`

	Cashflows []Cashflow `gorm:"foreignKey:LegID" json:"cashflows,omitempty"`

	Active      bool      `gorm:"column:active" json:"active"`
	CreatedDate time.Time `gorm:"column:created_date" json:"created_date"`
}

func (TradeLeg) TableName() string { return "trade_legs" }

// Cashflow is one periodic payment obligation, generated deterministically
// from the leg's schedule at leg-creation time and never mutated afterward.
type Cashflow struct {
	ID    uint `gorm:"column:id;primaryKey" json:"id"`
	LegID uint `gorm:"column:leg_id;index" json:"leg_id"`

	ValueDate    time.Time       `gorm:"column:value_date;type:date" json:"value_date"`
	Rate         float64         `gorm:"column:rate" json:"rate"`
	PaymentValue decimal.Decimal `gorm:"column:payment_value;type:decimal(25,2)" json:"payment_value"`

	PayReceiveID *uint `gorm:"column:pay_receive_id" json:"pay_receive_id"`
	PaymentBDCID *uint `gorm:"column:payment_bdc_id" json:"payment_bdc_id"`

	PayReceive *PayRec                `gorm:"foreignKey:PayReceiveID" json:"pay_receive,omitempty"`
	PaymentBDC *BusinessDayConvention `gorm:"foreignKey:PaymentBDCID" json:"payment_bdc,omitempty"`

	Active      bool      `gorm:"column:active" json:"active"`
	CreatedDate time.Time `gorm:"column:created_date" json:"created_date"`
}

func (Cashflow) TableName() string { return "cashflows" }

// TradeSequence backs trade-id allocation. A single row is incremented with
// one UPDATE inside the booking transaction, so concurrent bookings cannot
// allocate the same id.
type TradeSequence struct {
	Name      string `gorm:"column:name;primaryKey" json:"name"`
	NextValue int64  `gorm:"column:next_value" json:"next_value"`
}

func (TradeSequence) TableName() string { return "trade_sequences" }

// TradeEvent is an append-only audit row written for every lifecycle
// transition.
type TradeEvent struct {
	ID          uint           `gorm:"column:id;primaryKey" json:"id"`
	TradeID     int64          `gorm:"column:trade_id;index" json:"trade_id"`
	EventType   string         `gorm:"column:event_type" json:"event_type"` // BOOKED, AMENDED, TERMINATED, CANCELLED
	ActorLogin  string         `gorm:"column:actor_login" json:"actor_login"`
	EventData   datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedDate time.Time      `gorm:"column:created_date" json:"created_date"`
}

func (TradeEvent) TableName() string { return "trade_events" }

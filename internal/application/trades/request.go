package trades

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a civil date (no time component) marshalled as "2006-01-02".
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// TradeRequest carries a booking or amendment. Reference data may be given
// by name or by id; names win when both are present.
type TradeRequest struct {
	TradeID       *int64 `json:"tradeId"`
	TradeDate     *Date  `json:"tradeDate"`
	StartDate     *Date  `json:"startDate"`
	MaturityDate  *Date  `json:"maturityDate"`
	ExecutionDate *Date  `json:"executionDate"`
	UTICode       string `json:"utiCode"`

	BookName         string `json:"bookName"`
	BookID           *uint  `json:"bookId"`
	CounterpartyName string `json:"counterpartyName"`
	CounterpartyID   *uint  `json:"counterpartyId"`
	TradeStatus      string `json:"tradeStatus"`
	TradeStatusID    *uint  `json:"tradeStatusId"`
	TraderUserName   string `json:"traderUserName"`
	TraderUserID     *uint  `json:"traderUserId"`
	InputterUserName string `json:"inputterUserName"`
	InputterUserID   *uint  `json:"inputterUserId"`
	TradeType        string `json:"tradeType"`
	TradeTypeID      *uint  `json:"tradeTypeId"`
	TradeSubType     string `json:"tradeSubType"`
	TradeSubTypeID   *uint  `json:"tradeSubTypeId"`

	SettlementInstructions string `json:"settlementInstructions"`

	Legs []LegRequest `json:"legs"`
}

// LegRequest carries one leg of a booking or amendment.
type LegRequest struct {
	Notional decimal.Decimal `json:"notional"`
	Rate     float64         `json:"rate"` // percent

	Currency          string `json:"currency"`
	CurrencyID        *uint  `json:"currencyId"`
	LegType           string `json:"legType"`
	LegTypeID         *uint  `json:"legTypeId"`
	IndexName         string `json:"indexName"`
	IndexID           *uint  `json:"indexId"`
	HolidayCalendar   string `json:"holidayCalendar"`
	HolidayCalendarID *uint  `json:"holidayCalendarId"`
	Schedule          string `json:"calculationPeriodSchedule"`
	ScheduleID        *uint  `json:"scheduleId"`
	PaymentBDC        string `json:"paymentBusinessDayConvention"`
	PaymentBDCID      *uint  `json:"paymentBdcId"`
	FixingBDC         string `json:"fixingBusinessDayConvention"`
	FixingBDCID       *uint  `json:"fixingBdcId"`
	PayReceive        string `json:"payReceiveFlag"`
	PayReceiveID      *uint  `json:"payRecId"`
}

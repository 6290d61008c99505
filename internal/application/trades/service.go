// Package trades is the trade lifecycle engine: booking, amendment,
// termination and cancellation of versioned swap trades, plus blotter
// search. Every lifecycle operation runs inside one database transaction;
// no partial trade is ever persisted.
package trades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"swapdesk-backend/internal/application/additionalinfo"
	"swapdesk-backend/internal/application/privileges"
	"swapdesk-backend/internal/constants"
	"swapdesk-backend/internal/domain"
	"swapdesk-backend/internal/pkg/apperrors"
	"swapdesk-backend/internal/schedule"
)

// tradeIDSeq is the sequence row backing trade-id allocation.
const tradeIDSeq = "trade_id"

// firstTradeID is the id handed to the first booking on an empty system.
const firstTradeID = 10000

type Service struct {
	DB         *gorm.DB
	Privileges *privileges.Service
}

// Book validates and persists a new trade as version 1. The acting user
// needs BOOK_TRADE. All business-rule violations are collected and returned
// together; reference-data misses abort with no partial writes.
func (s *Service) Book(ctx context.Context, actor string, req *TradeRequest) (*domain.Trade, error) {
	if !s.Privileges.Authorize(ctx, actor, constants.BookTrade) {
		return nil, fmt.Errorf("%w: %s requires %s", apperrors.ErrNotAuthorized, actor, constants.BookTrade)
	}

	if req.TradeStatus == "" && req.TradeStatusID == nil {
		req.TradeStatus = constants.StatusNew
	}

	if result := ValidateBusinessRules(req, time.Now()); !result.Valid() {
		return nil, result.Err()
	}
	if err := ValidateSettlementInstructions(req.SettlementInstructions); err != nil {
		return nil, err
	}

	var tradeID int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.TradeID != nil {
			tradeID = *req.TradeID
			var taken int64
			if err := tx.Model(&domain.Trade{}).Where("trade_id = ?", tradeID).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return apperrors.Validation([]string{fmt.Sprintf("Trade id %d is already in use", tradeID)})
			}
		} else {
			var err error
			if tradeID, err = nextTradeID(tx); err != nil {
				return err
			}
			log.Info().Int64("trade_id", tradeID).Msg("Generated trade id")
		}

		now := time.Now()
		trade := s.newTradeEntity(req, tradeID)
		trade.Version = 1
		trade.Active = true
		trade.CreatedDate = now
		trade.LastTouchTimestamp = now

		if err := s.resolveTradeReferences(tx, trade, req); err != nil {
			return err
		}
		if err := validateReferenceData(trade); err != nil {
			return err
		}
		if err := tx.Create(trade).Error; err != nil {
			return err
		}
		if err := s.createLegsWithCashflows(tx, trade, req); err != nil {
			return err
		}
		if strings.TrimSpace(req.SettlementInstructions) != "" {
			if _, err := additionalinfo.SaveField(tx, additionalinfo.EntityTrade, tradeID,
				additionalinfo.SettlementInstructionsKey, strings.TrimSpace(req.SettlementInstructions)); err != nil {
				return err
			}
		}
		return appendEvent(tx, tradeID, "BOOKED", actor, map[string]interface{}{
			"version": 1,
			"status":  req.TradeStatus,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("trade_id", tradeID).Str("actor", actor).Msg("Booked trade")
	return s.Get(ctx, tradeID)
}

// Amend supersedes the active version of a trade: the current row is
// deactivated and a new row with version+1, status AMENDED and freshly
// generated legs and cashflows is written, all in one transaction. The
// deactivation is a conditional update on active = true, so a concurrent
// amendment that lost the race aborts instead of silently overwriting.
func (s *Service) Amend(ctx context.Context, actor string, tradeID int64, req *TradeRequest) (*domain.Trade, error) {
	if !s.Privileges.Authorize(ctx, actor, constants.AmendTrade) {
		return nil, fmt.Errorf("%w: %s requires %s", apperrors.ErrNotAuthorized, actor, constants.AmendTrade)
	}

	existing, err := s.Get(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if err := ValidateSettlementInstructions(req.SettlementInstructions); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&domain.Trade{}).
			Where("trade_id = ? AND active = ?", tradeID, true).
			Updates(map[string]interface{}{"active": false, "deactivated_date": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("trade %d has no active version", tradeID)
		}

		amended := s.newTradeEntity(req, tradeID)
		amended.Version = existing.Version + 1
		amended.Active = true
		amended.CreatedDate = now
		amended.LastTouchTimestamp = now

		if err := s.resolveTradeReferences(tx, amended, req); err != nil {
			return err
		}
		status, err := statusByName(tx, constants.StatusAmended)
		if err != nil {
			return err
		}
		amended.TradeStatusID = &status.ID
		amended.TradeStatus = status

		if err := validateReferenceData(amended); err != nil {
			return err
		}
		if err := tx.Create(amended).Error; err != nil {
			return err
		}
		if err := s.createLegsWithCashflows(tx, amended, req); err != nil {
			return err
		}
		if strings.TrimSpace(req.SettlementInstructions) != "" {
			if _, err := additionalinfo.SaveField(tx, additionalinfo.EntityTrade, tradeID,
				additionalinfo.SettlementInstructionsKey, strings.TrimSpace(req.SettlementInstructions)); err != nil {
				return err
			}
		}
		return appendEvent(tx, tradeID, "AMENDED", actor, map[string]interface{}{
			"version":          amended.Version,
			"previous_version": existing.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("trade_id", tradeID).Str("actor", actor).Msg("Amended trade")
	return s.Get(ctx, tradeID)
}

// Terminate sets the active version's status to TERMINATED. Status-only:
// no new version is created.
func (s *Service) Terminate(ctx context.Context, actor string, tradeID int64) (*domain.Trade, error) {
	return s.transition(ctx, actor, tradeID, constants.StatusTerminated, "TERMINATED")
}

// Cancel sets the active version's status to CANCELLED. Status-only:
// no new version is created.
func (s *Service) Cancel(ctx context.Context, actor string, tradeID int64) (*domain.Trade, error) {
	return s.transition(ctx, actor, tradeID, constants.StatusCancelled, "CANCELLED")
}

// Delete is an alias for Cancel; nothing is ever physically removed.
func (s *Service) Delete(ctx context.Context, actor string, tradeID int64) error {
	_, err := s.Cancel(ctx, actor, tradeID)
	return err
}

func (s *Service) transition(ctx context.Context, actor string, tradeID int64, statusName, eventType string) (*domain.Trade, error) {
	if !s.Privileges.Authorize(ctx, actor, constants.AmendTrade) {
		return nil, fmt.Errorf("%w: %s requires %s", apperrors.ErrNotAuthorized, actor, constants.AmendTrade)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trade domain.Trade
		err := tx.Where("trade_id = ? AND active = ?", tradeID, true).First(&trade).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("trade %d", tradeID)
		}
		if err != nil {
			return err
		}
		status, err := statusByName(tx, statusName)
		if err != nil {
			return err
		}
		trade.TradeStatusID = &status.ID
		trade.LastTouchTimestamp = time.Now()
		if err := tx.Save(&trade).Error; err != nil {
			return err
		}
		return appendEvent(tx, tradeID, eventType, actor, map[string]interface{}{
			"version": trade.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("trade_id", tradeID).Str("actor", actor).Str("status", statusName).Msg("Updated trade status")
	return s.Get(ctx, tradeID)
}

// Get returns the current active version of a trade with its legs and
// cashflows loaded.
func (s *Service) Get(ctx context.Context, tradeID int64) (*domain.Trade, error) {
	var trade domain.Trade
	err := s.DB.WithContext(ctx).
		Preload("Book").Preload("Counterparty").Preload("TradeStatus").
		Preload("TradeType").Preload("TradeSubType").
		Preload("TraderUser").Preload("InputterUser").
		Preload("Legs").Preload("Legs.Currency").Preload("Legs.LegRateType").
		Preload("Legs.PayReceive").Preload("Legs.Schedule").
		Preload("Legs.Cashflows").
		Where("trade_id = ? AND active = ?", tradeID, true).
		First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("trade %d", tradeID)
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// History returns every version of a trade, oldest first.
func (s *Service) History(ctx context.Context, tradeID int64) ([]domain.Trade, error) {
	var versions []domain.Trade
	err := s.DB.WithContext(ctx).
		Preload("TradeStatus").
		Where("trade_id = ?", tradeID).
		Order("version").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, apperrors.NotFoundf("trade %d", tradeID)
	}
	return versions, nil
}

// UpdateSettlementInstructions validates and versions new settlement text
// on an existing trade.
func (s *Service) UpdateSettlementInstructions(ctx context.Context, actor string, tradeID int64, instructions string) error {
	if !s.Privileges.Authorize(ctx, actor, constants.AmendTrade) {
		return fmt.Errorf("%w: %s requires %s", apperrors.ErrNotAuthorized, actor, constants.AmendTrade)
	}
	if err := ValidateSettlementInstructions(instructions); err != nil {
		return err
	}
	if strings.TrimSpace(instructions) == "" {
		return apperrors.Validation([]string{"Settlement instructions must not be empty"})
	}
	if _, err := s.Get(ctx, tradeID); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := additionalinfo.SaveField(tx, additionalinfo.EntityTrade, tradeID,
			additionalinfo.SettlementInstructionsKey, strings.TrimSpace(instructions))
		return err
	})
	if err != nil {
		return err
	}
	log.Info().Int64("trade_id", tradeID).Str("actor", actor).Msg("Updated settlement instructions")
	return nil
}

// nextTradeID atomically advances the sequence row and returns the id it
// covered. The single UPDATE makes concurrent bookings serialize on the
// row instead of reading a shared count.
func nextTradeID(tx *gorm.DB) (int64, error) {
	res := tx.Model(&domain.TradeSequence{}).
		Where("name = ?", tradeIDSeq).
		UpdateColumn("next_value", gorm.Expr("next_value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		seq := domain.TradeSequence{Name: tradeIDSeq, NextValue: firstTradeID + 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return firstTradeID, nil
	}
	var seq domain.TradeSequence
	if err := tx.Where("name = ?", tradeIDSeq).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.NextValue - 1, nil
}

func (s *Service) newTradeEntity(req *TradeRequest, tradeID int64) *domain.Trade {
	trade := &domain.Trade{
		TradeID: tradeID,
		UTICode: req.UTICode,
	}
	if req.TradeDate != nil {
		trade.TradeDate = &req.TradeDate.Time
	}
	if req.StartDate != nil {
		trade.StartDate = &req.StartDate.Time
	}
	if req.MaturityDate != nil {
		trade.MaturityDate = &req.MaturityDate.Time
	}
	if req.ExecutionDate != nil {
		trade.ExecutionDate = &req.ExecutionDate.Time
	}
	return trade
}

// resolveTradeReferences binds book, counterparty, status, users and trade
// type onto the entity, trying names first and ids second. Misses leave
// the field nil; validateReferenceData decides which ones are fatal.
func (s *Service) resolveTradeReferences(tx *gorm.DB, trade *domain.Trade, req *TradeRequest) error {
	if req.BookName != "" {
		var book domain.Book
		if err := tx.Where("book_name = ?", req.BookName).First(&book).Error; err == nil {
			trade.BookID = &book.ID
			trade.Book = &book
		}
	} else if req.BookID != nil {
		var book domain.Book
		if err := tx.First(&book, *req.BookID).Error; err == nil {
			trade.BookID = &book.ID
			trade.Book = &book
		}
	}

	if req.CounterpartyName != "" {
		var cpty domain.Counterparty
		if err := tx.Where("name = ?", req.CounterpartyName).First(&cpty).Error; err == nil {
			trade.CounterpartyID = &cpty.ID
			trade.Counterparty = &cpty
		}
	} else if req.CounterpartyID != nil {
		var cpty domain.Counterparty
		if err := tx.First(&cpty, *req.CounterpartyID).Error; err == nil {
			trade.CounterpartyID = &cpty.ID
			trade.Counterparty = &cpty
		}
	}

	if req.TradeStatus != "" {
		if status, err := statusByName(tx, req.TradeStatus); err == nil {
			trade.TradeStatusID = &status.ID
			trade.TradeStatus = status
		}
	} else if req.TradeStatusID != nil {
		var status domain.TradeStatus
		if err := tx.First(&status, *req.TradeStatusID).Error; err == nil {
			trade.TradeStatusID = &status.ID
			trade.TradeStatus = &status
		}
	}

	if user := resolveUser(tx, req.TraderUserName, req.TraderUserID); user != nil {
		trade.TraderUserID = &user.ID
		trade.TraderUser = user
	}
	if user := resolveUser(tx, req.InputterUserName, req.InputterUserID); user != nil {
		trade.InputterUserID = &user.ID
		trade.InputterUser = user
	}

	if req.TradeType != "" {
		var tt domain.TradeType
		if err := tx.Where("trade_type = ?", req.TradeType).First(&tt).Error; err == nil {
			trade.TradeTypeID = &tt.ID
		}
	} else if req.TradeTypeID != nil {
		var tt domain.TradeType
		if err := tx.First(&tt, *req.TradeTypeID).Error; err == nil {
			trade.TradeTypeID = &tt.ID
		}
	}

	if req.TradeSubType != "" {
		var st domain.TradeSubType
		if err := tx.Where("LOWER(trade_sub_type) = LOWER(?)", req.TradeSubType).First(&st).Error; err == nil {
			trade.TradeSubTypeID = &st.ID
		}
	} else if req.TradeSubTypeID != nil {
		var st domain.TradeSubType
		if err := tx.First(&st, *req.TradeSubTypeID).Error; err == nil {
			trade.TradeSubTypeID = &st.ID
		}
	}

	return nil
}

// resolveUser looks a user up by display name (case-insensitive first name,
// then login id) or falls back to the numeric id.
func resolveUser(tx *gorm.DB, name string, id *uint) *domain.ApplicationUser {
	if name != "" {
		parts := strings.Fields(strings.TrimSpace(name))
		if len(parts) > 0 {
			var user domain.ApplicationUser
			if err := tx.Where("LOWER(first_name) = LOWER(?)", parts[0]).First(&user).Error; err == nil {
				return &user
			}
			if err := tx.Where("login_id = ?", strings.ToLower(name)).First(&user).Error; err == nil {
				return &user
			}
			log.Warn().Str("user", name).Msg("User not found by first name or login id")
		}
		return nil
	}
	if id != nil {
		var user domain.ApplicationUser
		if err := tx.First(&user, *id).Error; err == nil {
			return &user
		}
	}
	return nil
}

// validateReferenceData enforces the mandatory reference data: booking
// without a resolvable book, counterparty or status never persists.
func validateReferenceData(trade *domain.Trade) error {
	if trade.BookID == nil {
		return fmt.Errorf("%w: book not found or not set", apperrors.ErrReferenceDataMissing)
	}
	if trade.CounterpartyID == nil {
		return fmt.Errorf("%w: counterparty not found or not set", apperrors.ErrReferenceDataMissing)
	}
	if trade.TradeStatusID == nil {
		return fmt.Errorf("%w: trade status not found or not set", apperrors.ErrReferenceDataMissing)
	}
	return nil
}

func statusByName(tx *gorm.DB, name string) (*domain.TradeStatus, error) {
	var status domain.TradeStatus
	err := tx.Where("trade_status = ?", name).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s status not found", apperrors.ErrReferenceDataMissing, name)
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// createLegsWithCashflows persists both legs and generates each leg's
// cashflow rows from its calculation schedule. Cashflows carry the leg's
// rate, direction and payment convention at generation time and are never
// re-evaluated.
func (s *Service) createLegsWithCashflows(tx *gorm.DB, trade *domain.Trade, req *TradeRequest) error {
	for i := range req.Legs {
		legReq := req.Legs[i]
		leg := &domain.TradeLeg{
			TradeRecordID: trade.ID,
			Notional:      legReq.Notional,
			Rate:          legReq.Rate,
			Active:        true,
			CreatedDate:   time.Now(),
		}
		legTypeName, scheduleName := resolveLegReferences(tx, leg, legReq)
		if err := tx.Create(leg).Error; err != nil {
			return err
		}

		if trade.StartDate == nil || trade.MaturityDate == nil {
			continue
		}
		months, err := schedule.Parse(scheduleName)
		if err != nil {
			return err
		}
		value := schedule.CashflowValue(legTypeName, leg.Notional, leg.Rate, months)
		dates := schedule.PaymentDates(*trade.StartDate, *trade.MaturityDate, months)
		for _, valueDate := range dates {
			cashflow := domain.Cashflow{
				LegID:        leg.ID,
				ValueDate:    valueDate,
				Rate:         leg.Rate,
				PaymentValue: value,
				PayReceiveID: leg.PayReceiveID,
				PaymentBDCID: leg.PaymentBDCID,
				Active:       true,
				CreatedDate:  time.Now(),
			}
			if err := tx.Create(&cashflow).Error; err != nil {
				return err
			}
		}
		log.Info().Int64("trade_id", trade.TradeID).Uint("leg_id", leg.ID).Int("cashflows", len(dates)).Msg("Generated cashflows")
	}
	return nil
}

// resolveLegReferences binds the leg's reference data and returns the leg
// type and schedule names the cashflow generator needs.
func resolveLegReferences(tx *gorm.DB, leg *domain.TradeLeg, req LegRequest) (legTypeName, scheduleName string) {
	if req.Currency != "" {
		var c domain.Currency
		if err := tx.Where("currency = ?", req.Currency).First(&c).Error; err == nil {
			leg.CurrencyID = &c.ID
		}
	} else if req.CurrencyID != nil {
		var c domain.Currency
		if err := tx.First(&c, *req.CurrencyID).Error; err == nil {
			leg.CurrencyID = &c.ID
		}
	}

	if req.LegType != "" {
		var lt domain.LegType
		if err := tx.Where("type = ?", req.LegType).First(&lt).Error; err == nil {
			leg.LegTypeID = &lt.ID
			legTypeName = lt.Type
		}
	} else if req.LegTypeID != nil {
		var lt domain.LegType
		if err := tx.First(&lt, *req.LegTypeID).Error; err == nil {
			leg.LegTypeID = &lt.ID
			legTypeName = lt.Type
		}
	}

	if req.IndexName != "" {
		var idx domain.RateIndex
		if err := tx.Where("index_name = ?", req.IndexName).First(&idx).Error; err == nil {
			leg.IndexID = &idx.ID
		}
	} else if req.IndexID != nil {
		var idx domain.RateIndex
		if err := tx.First(&idx, *req.IndexID).Error; err == nil {
			leg.IndexID = &idx.ID
		}
	}

	if req.HolidayCalendar != "" {
		var hc domain.HolidayCalendar
		if err := tx.Where("holiday_calendar = ?", req.HolidayCalendar).First(&hc).Error; err == nil {
			leg.HolidayCalID = &hc.ID
		}
	} else if req.HolidayCalendarID != nil {
		var hc domain.HolidayCalendar
		if err := tx.First(&hc, *req.HolidayCalendarID).Error; err == nil {
			leg.HolidayCalID = &hc.ID
		}
	}

	if req.Schedule != "" {
		scheduleName = req.Schedule
		var sched domain.Schedule
		if err := tx.Where("schedule = ?", req.Schedule).First(&sched).Error; err == nil {
			leg.ScheduleID = &sched.ID
		}
	} else if req.ScheduleID != nil {
		var sched domain.Schedule
		if err := tx.First(&sched, *req.ScheduleID).Error; err == nil {
			leg.ScheduleID = &sched.ID
			scheduleName = sched.Schedule
		}
	}

	if req.PaymentBDC != "" {
		var bdc domain.BusinessDayConvention
		if err := tx.Where("bdc = ?", req.PaymentBDC).First(&bdc).Error; err == nil {
			leg.PaymentBDCID = &bdc.ID
		}
	} else if req.PaymentBDCID != nil {
		var bdc domain.BusinessDayConvention
		if err := tx.First(&bdc, *req.PaymentBDCID).Error; err == nil {
			leg.PaymentBDCID = &bdc.ID
		}
	}

	if req.FixingBDC != "" {
		var bdc domain.BusinessDayConvention
		if err := tx.Where("bdc = ?", req.FixingBDC).First(&bdc).Error; err == nil {
			leg.FixingBDCID = &bdc.ID
		}
	} else if req.FixingBDCID != nil {
		var bdc domain.BusinessDayConvention
		if err := tx.First(&bdc, *req.FixingBDCID).Error; err == nil {
			leg.FixingBDCID = &bdc.ID
		}
	}

	if req.PayReceive != "" {
		var pr domain.PayRec
		if err := tx.Where("pay_rec = ?", strings.ToUpper(req.PayReceive)).First(&pr).Error; err == nil {
			leg.PayReceiveID = &pr.ID
		}
	} else if req.PayReceiveID != nil {
		var pr domain.PayRec
		if err := tx.First(&pr, *req.PayReceiveID).Error; err == nil {
			leg.PayReceiveID = &pr.ID
		}
	}

	return legTypeName, scheduleName
}

func appendEvent(tx *gorm.DB, tradeID int64, eventType, actor string, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&domain.TradeEvent{
		TradeID:     tradeID,
		EventType:   eventType,
		ActorLogin:  actor,
		EventData:   datatypes.JSON(data),
		CreatedDate: time.Now(),
	}).Error
}

// Package store wraps the gorm-backed persistence: the trade-record feed
// the analytics engine reads, and the conversation/message history.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"portfolio-assistant-go/internal/models"
)

// TradeFilter scopes a trade query. Zero-valued fields are not applied.
type TradeFilter struct {
	AccountID string
	// Symbol matches either the trade symbol or, for options, the
	// underlying ticker.
	Symbol    string
	Class     models.SecurityClass
	Direction models.Direction
	DateFrom  *time.Time
	DateTo    *time.Time
	// Ascending selects the sort order. The FIFO matcher needs ascending
	// by (date, external id); the aggregate calculator is handed
	// descending order so its extremum tie-break surfaces the most recent
	// occurrence.
	Ascending bool
}

// TradeQuerier is the store interface the orchestrator depends on; tests
// substitute an in-memory fake.
type TradeQuerier interface {
	QueryTrades(ctx context.Context, f TradeFilter) ([]models.TradeRecord, error)
}

// TradeStore is the gorm implementation of TradeQuerier.
type TradeStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ TradeQuerier = (*TradeStore)(nil)

// NewTradeStore creates a new TradeStore.
func NewTradeStore(db *gorm.DB, logger *zap.Logger) *TradeStore {
	return &TradeStore{db: db, logger: logger}
}

// QueryTrades fetches trade records matching the filter in the requested
// order.
func (s *TradeStore) QueryTrades(ctx context.Context, f TradeFilter) ([]models.TradeRecord, error) {
	q := s.db.WithContext(ctx).Where("account_id = ?", f.AccountID)

	if f.Symbol != "" {
		q = q.Where("symbol = ? OR underlying = ?", f.Symbol, f.Symbol)
	}
	if f.Class != "" {
		q = q.Where("class = ?", f.Class)
	}
	if f.Direction != models.DirectionEither {
		q = q.Where("direction = ?", f.Direction)
	}
	if f.DateFrom != nil {
		q = q.Where("trade_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("trade_date <= ?", *f.DateTo)
	}

	order := "trade_date DESC, external_id DESC"
	if f.Ascending {
		order = "trade_date ASC, external_id ASC"
	}

	var trades []models.TradeRecord
	if err := q.Order(order).Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	s.logger.Debug("trade query",
		zap.String("account", f.AccountID),
		zap.String("symbol", f.Symbol),
		zap.Int("rows", len(trades)))
	return trades, nil
}

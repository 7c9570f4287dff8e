package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stocks-trader/models"
	"stocks-trader/quotes"
)

// PricesRepository stores every freshly fetched quote.
type PricesRepository struct {
	db *gorm.DB
}

var _ quotes.PriceRecorder = (*PricesRepository)(nil)

func NewPricesRepository(db *gorm.DB) *PricesRepository {
	return &PricesRepository{db: db}
}

func (r *PricesRepository) RecordPrice(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) error {
	entry := models.StockPrice{
		Symbol:    symbol,
		Price:     price,
		Timestamp: at,
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("repository.RecordPrice: %w", err)
	}

	return nil
}

func (r *PricesRepository) PriceHistory(ctx context.Context, symbol string, limit int) ([]quotes.PricePoint, error) {
	var rows []models.StockPrice
	if err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repository.PriceHistory: %w", err)
	}

	points := make([]quotes.PricePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, quotes.PricePoint{
			Symbol:    row.Symbol,
			Price:     row.Price,
			Timestamp: row.Timestamp,
		})
	}

	return points, nil
}

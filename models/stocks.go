package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockPrice struct {
	ID        uint            `gorm:"primaryKey"`
	Symbol    string          `gorm:"size:16;index:idx_price_symbol_time;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Timestamp time.Time       `gorm:"index:idx_price_symbol_time;not null"`
}

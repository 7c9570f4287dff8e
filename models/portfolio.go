package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding rows are hard-deleted when quantity reaches zero, so no gorm.Model soft delete here.
type Holding struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex:idx_holding_user_symbol;not null"`
	Symbol    string          `gorm:"size:16;uniqueIndex:idx_holding_user_symbol;not null"`
	Quantity  int64           `gorm:"not null"`
	AvgPrice  decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Transaction struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index;not null"`
	Type      string          `gorm:"size:8;not null"` // buy/sell/delete
	Symbol    string          `gorm:"size:16;not null"`
	Quantity  int64           `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Timestamp time.Time       `gorm:"index;not null"`
}

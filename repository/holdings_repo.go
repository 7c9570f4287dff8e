package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"stocks-trader/errs"
	"stocks-trader/models"
	"stocks-trader/portfolio"
)

// HoldingsRepository is the database-backed portfolio store. Every mutation
// and its journal entry are written in one transaction.
type HoldingsRepository struct {
	db *gorm.DB
}

var _ portfolio.Store = (*HoldingsRepository)(nil)

func NewHoldingsRepository(db *gorm.DB) *HoldingsRepository {
	return &HoldingsRepository{db: db}
}

func (r *HoldingsRepository) Apply(ctx context.Context, userID uint, symbol string, m portfolio.Mutation) (portfolio.Holding, error) {
	var result portfolio.Holding

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Holding
		found := true
		if err := tx.Where("user_id = ? AND symbol = ?", userID, symbol).First(&row).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}

		next, entry, err := m(toHolding(row), found)
		if err != nil {
			return err
		}

		switch {
		case next.Quantity == 0 && found:
			if err := tx.Delete(&row).Error; err != nil {
				return err
			}
		case next.Quantity == 0:
		case found:
			row.Quantity = next.Quantity
			row.AvgPrice = next.AvgPrice
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		default:
			row = models.Holding{
				UserID:   userID,
				Symbol:   symbol,
				Quantity: next.Quantity,
				AvgPrice: next.AvgPrice,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		if entry != nil {
			record := models.Transaction{
				UserID:    userID,
				Type:      entry.Type,
				Symbol:    entry.Symbol,
				Quantity:  entry.Quantity,
				Price:     entry.Price,
				Timestamp: entry.Timestamp,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		result = next
		return nil
	})
	if err != nil {
		return portfolio.Holding{}, fmt.Errorf("repository.Apply: %w", err)
	}

	return result, nil
}

func (r *HoldingsRepository) Get(ctx context.Context, userID uint, symbol string) (portfolio.Holding, error) {
	var row models.Holding
	if err := r.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return portfolio.Holding{}, errs.ErrNotFound
		}

		return portfolio.Holding{}, fmt.Errorf("repository.Get: %w", err)
	}

	return toHolding(row), nil
}

func (r *HoldingsRepository) List(ctx context.Context, userID uint) (map[string]portfolio.Holding, error) {
	var rows []models.Holding
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}

	out := make(map[string]portfolio.Holding, len(rows))
	for _, row := range rows {
		out[row.Symbol] = toHolding(row)
	}

	return out, nil
}

func (r *HoldingsRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Holding{}).Error; err != nil {
		return fmt.Errorf("repository.Clear: %w", err)
	}

	return nil
}

func (r *HoldingsRepository) Entries(ctx context.Context, userID uint) ([]portfolio.Entry, error) {
	var rows []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repository.Entries: %w", err)
	}

	out := make([]portfolio.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, portfolio.Entry{
			Type:      row.Type,
			Symbol:    row.Symbol,
			Quantity:  row.Quantity,
			Price:     row.Price,
			Timestamp: row.Timestamp,
		})
	}

	return out, nil
}

func toHolding(row models.Holding) portfolio.Holding {
	return portfolio.Holding{
		Symbol:   row.Symbol,
		Quantity: row.Quantity,
		AvgPrice: row.AvgPrice,
	}
}

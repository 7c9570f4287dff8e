package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;uniqueIndex;not null"`
	Salt         string `gorm:"size:32;not null"`
	PasswordHash string `gorm:"size:64;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

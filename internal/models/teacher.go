package models

import "time"

// Teacher 巡迴輔導教師帳號。
type Teacher struct {
	ID           uint      `gorm:"primaryKey"`
	FullName     string    `gorm:"size:80;uniqueIndex;not null"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time

	LastLoginAt *time.Time `gorm:"index"` // 最近登入時間，清理任務判斷閒置用
	IsActive    bool       `gorm:"not null;default:true"`

	Cases []Case `gorm:"constraint:OnDelete:CASCADE"`
}

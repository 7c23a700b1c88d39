package models

import "time"

// Session 一次上課紀錄，同一次可同時有定向與生活時數。
// 寫入後不可修改、不可單筆刪除，只會隨整案刪除。
type Session struct {
	ID     uint `gorm:"primaryKey"`
	CaseID uint `gorm:"index;not null"`

	SessionDate time.Time `gorm:"not null"`

	HoursOrientation float64 `gorm:"not null;default:0"`
	HoursLife        float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
}

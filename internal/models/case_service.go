package models

import "time"

// 服務項目，固定兩種
const (
	ServiceOrientation = "orientation" // 定向
	ServiceLife        = "life"        // 生活
)

// ValidServiceType 檢查是否為合法服務項目。
func ValidServiceType(s string) bool {
	return s == ServiceOrientation || s == ServiceLife
}

// ServiceLabel 服務項目的中文名稱，匯出與訊息顯示用。
func ServiceLabel(s string) string {
	switch s {
	case ServiceOrientation:
		return "定向"
	case ServiceLife:
		return "生活"
	}
	return s
}

// CaseService 案件的核給時數：每案每項目至多一筆。
// 唯一性由 ledger 在交易內檢查，資料庫層不設唯一索引（沿用既有資料的作法）。
type CaseService struct {
	ID     uint `gorm:"primaryKey"`
	CaseID uint `gorm:"index;not null"`

	ServiceType string `gorm:"size:20;not null"` // orientation / life

	StartDate    time.Time `gorm:"not null"`
	GrantedHours float64   `gorm:"not null;default:0"`
}

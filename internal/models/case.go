package models

import "time"

// 案件狀態
const (
	CaseActive = "active"
	CaseClosed = "closed"
)

// Case 一位服務對象由一個派案單位轉介、屬於一位教師的案件。
// 一案一碼：查詢碼只存 hash 與密文，不存明碼。
type Case struct {
	ID        uint `gorm:"primaryKey"`
	TeacherID uint `gorm:"index:idx_cases_teacher_year;not null"`

	StudentName string `gorm:"size:80;index;not null"`
	AgencyName  string `gorm:"size:120;index;not null"`

	QueryCodeHash string `gorm:"size:255;not null"`
	QueryCodeEnc  string `gorm:"size:500"` // 加密後的查詢碼（可解密再顯示），舊資料可能為空
	QueryCodeHint string `gorm:"size:10"`  // 例如 **AB（尾 2 碼）

	Status string `gorm:"size:20;not null;default:active"` // active / closed

	FiscalYear int `gorm:"index:idx_cases_teacher_year;index;not null"`

	CreatedAt time.Time
	ClosedAt  *time.Time

	Services []CaseService `gorm:"constraint:OnDelete:CASCADE"`
	Sessions []Session     `gorm:"constraint:OnDelete:CASCADE"`
}

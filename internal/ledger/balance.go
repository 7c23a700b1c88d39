package ledger

import (
	"time"

	"github.com/hunzan/working-hours-e/internal/models"
)

// ServiceBalance 某個服務項目的對帳結果。
// 已用與剩餘永遠現算，不落地快取，加一筆上課或調核給就會變。
type ServiceBalance struct {
	ServiceType    string    `json:"service_type"`
	Label          string    `json:"label"`
	StartDate      time.Time `json:"start_date"`
	GrantedHours   float64   `json:"granted_hours"`
	UsedHours      float64   `json:"used_hours"`
	RemainingHours float64   `json:"remaining_hours"`
}

// ComputeBalance 對已載入的案件現算各項目餘額。純函式，不動資料庫。
func ComputeBalance(c *models.Case) []ServiceBalance {
	balances := make([]ServiceBalance, 0, len(c.Services))
	for _, svc := range c.Services {
		used := UsedHours(c.Sessions, svc.ServiceType)
		balances = append(balances, ServiceBalance{
			ServiceType:    svc.ServiceType,
			Label:          models.ServiceLabel(svc.ServiceType),
			StartDate:      svc.StartDate,
			GrantedHours:   svc.GrantedHours,
			UsedHours:      used,
			RemainingHours: svc.GrantedHours - used,
		})
	}
	return balances
}

// UsedHours 加總上課紀錄中某項目的時數。
func UsedHours(sessions []models.Session, serviceType string) float64 {
	var used float64
	for _, s := range sessions {
		if serviceType == models.ServiceLife {
			used += s.HoursLife
		} else {
			used += s.HoursOrientation
		}
	}
	return used
}

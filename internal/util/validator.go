package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate 驗證並解析 YYYY-MM-DD 日期；空字串回傳今天（零點）。
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}

// ParseHoursLoose 寬鬆解析時數字串：空值或格式錯誤一律當 0，不報錯。
// 建案時核給時數用這個，避免一個欄位打錯整案建不起來。
func ParseHoursLoose(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseHoursStrict 嚴格解析時數字串，格式錯誤回傳錯誤。
// 修改核給時數時用這個，打錯要讓使用者知道。
func ParseHoursStrict(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("hours is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours: %w", err)
	}
	return f, nil
}

// CleanName 清掉全形空白與前後空白，查詢比對前先做。
func CleanName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "　", ""))
}

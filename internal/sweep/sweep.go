// Package sweep 是排程清理：刪掉結案太久的案件、停用太久沒登入的教師帳號、
// 清掉前一年度的舊案。它站在 ledger 外面，跟線上異動之間沒有鎖，
// 部署上要避免跟尖峰時段的編輯同時跑。
package sweep

import (
	"time"

	"github.com/hunzan/working-hours-e/internal/config"
	"github.com/hunzan/working-hours-e/internal/ledger"
	"github.com/hunzan/working-hours-e/internal/models"

	"gorm.io/gorm"
)

// Result 一次清理的統計，log 用。
type Result struct {
	DeletedCases     int
	DisabledTeachers int
}

// Run 跑一輪清理：
//  1. 刪除結案超過 DaysClosedDelete 天的案件（整案連項目、上課紀錄一起刪）
//  2. 停用超過 DaysInactiveDisable 天沒登入的教師（還有進行中案件的不停，
//     避免教到一半帳號被停）
func Run(db *gorm.DB, cfg config.SweepConfig, now time.Time) (Result, error) {
	var res Result

	cutoffClosed := now.AddDate(0, 0, -cfg.DaysClosedDelete)
	var oldClosed []models.Case
	err := db.Where("status = ? AND closed_at IS NOT NULL AND closed_at <= ?",
		models.CaseClosed, cutoffClosed).
		Find(&oldClosed).Error
	if err != nil {
		return res, err
	}

	for _, c := range oldClosed {
		caseID := c.ID
		err := db.Transaction(func(tx *gorm.DB) error {
			return ledger.PurgeCaseRows(tx, caseID)
		})
		if err != nil {
			return res, err
		}
		res.DeletedCases++
	}

	cutoffLogin := now.AddDate(0, 0, -cfg.DaysInactiveDisable)
	var staleTeachers []models.Teacher
	err = db.Where("is_active = ? AND last_login_at IS NOT NULL AND last_login_at <= ?",
		true, cutoffLogin).
		Find(&staleTeachers).Error
	if err != nil {
		return res, err
	}

	led := ledger.New(db, "") // 只用到 TeacherHasActiveCase，不碰查詢碼
	for _, t := range staleTeachers {
		hasActive, err := led.TeacherHasActiveCase(t.ID)
		if err != nil {
			return res, err
		}
		if hasActive {
			continue
		}
		if err := db.Model(&models.Teacher{}).Where("id = ?", t.ID).
			Update("is_active", false).Error; err != nil {
			return res, err
		}
		res.DisabledTeachers++
	}

	return res, nil
}

// AfterJan10 是否已過當年 1/10（1/11 起為 true）。
// 年度切換後留 10 天緩衝讓老師匯出去年資料。
func AfterJan10(d time.Time) bool {
	jan10 := time.Date(d.Year(), time.January, 10, 0, 0, 0, 0, d.Location())
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return day.After(jan10)
}

// PurgeFiscalYear 刪掉某個年度的全部案件，回傳刪了幾案。
func PurgeFiscalYear(db *gorm.DB, year int) (int, error) {
	var cases []models.Case
	if err := db.Where("fiscal_year = ?", year).Find(&cases).Error; err != nil {
		return 0, err
	}
	if len(cases) == 0 {
		return 0, nil
	}

	deleted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, c := range cases {
			if err := ledger.PurgeCaseRows(tx, c.ID); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

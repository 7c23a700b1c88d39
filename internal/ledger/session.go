package ledger

import (
	"time"

	"github.com/hunzan/working-hours-e/internal/models"

	"gorm.io/gorm"
)

// LogSession 記一筆上課。案件沒有的項目，時數直接歸零不報錯
// （沒核給的時數寧可丟掉也不擋老師記錄），歸零後兩項都是 0 才算無效輸入。
// 寫入後這筆紀錄不可修改也不可單筆刪除。
func (l *Ledger) LogSession(teacherID, caseID uint, sessionDate time.Time, hoursOrientation, hoursLife float64) (*models.Session, error) {
	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return nil, err
	}

	var s *models.Session
	err = l.db.Transaction(func(tx *gorm.DB) error {
		var services []models.CaseService
		if err := tx.Where("case_id = ?", c.ID).Find(&services).Error; err != nil {
			return err
		}
		granted := map[string]bool{}
		for _, svc := range services {
			granted[svc.ServiceType] = true
		}

		ho, hl := hoursOrientation, hoursLife
		if !granted[models.ServiceOrientation] {
			ho = 0
		}
		if !granted[models.ServiceLife] {
			hl = 0
		}

		if ho < 0 || hl < 0 || (ho == 0 && hl == 0) {
			return validationf("請輸入有效時數（至少一項 > 0）")
		}

		s = &models.Session{
			CaseID:           c.ID,
			SessionDate:      sessionDate,
			HoursOrientation: ho,
			HoursLife:        hl,
		}
		return tx.Create(s).Error
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

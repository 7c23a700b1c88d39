package ledger

import (
	"errors"
	"time"

	"github.com/hunzan/working-hours-e/internal/models"

	"gorm.io/gorm"
)

// AddGrant 幫案件加一個服務項目。每案每項目至多一筆，
// 事後補加的項目核給時數必須大於 0（建案時才允許先填 0）。
func (l *Ledger) AddGrant(teacherID, caseID uint, serviceType string, startDate time.Time, grantedHours float64) (*models.CaseService, error) {
	if !models.ValidServiceType(serviceType) {
		return nil, validationf("項目不正確")
	}
	if grantedHours <= 0 {
		return nil, validationf("核給時數需大於 0")
	}

	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return nil, err
	}

	svc := &models.CaseService{
		CaseID:       c.ID,
		ServiceType:  serviceType,
		StartDate:    startDate,
		GrantedHours: grantedHours,
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CaseService
		err := tx.Where("case_id = ? AND service_type = ?", c.ID, serviceType).
			First(&existing).Error
		if err == nil {
			return conflictf("此項目已存在，無需新增")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(svc).Error
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// RemoveGrant 刪除服務項目。只要該項目已有上課時數就拒絕，
// 不允許刪項目留下一堆對不上帳的上課紀錄。
func (l *Ledger) RemoveGrant(teacherID, caseID uint, serviceType string) error {
	if !models.ValidServiceType(serviceType) {
		return validationf("項目不正確")
	}

	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return err
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var svc models.CaseService
		err := tx.Where("case_id = ? AND service_type = ?", c.ID, serviceType).
			First(&svc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflictf("此項目不存在")
			}
			return err
		}

		used, err := usedHoursTx(tx, c.ID, serviceType)
		if err != nil {
			return err
		}
		if used > 0 {
			return conflictf("此項目已有上課時數紀錄（已用 %g 小時），不能刪除", used)
		}

		return tx.Delete(&svc).Error
	})
}

// ResizeGrant 調整核給時數。不可為負，也不可小於該項目的已用時數。
func (l *Ledger) ResizeGrant(teacherID, caseID uint, serviceType string, newGrantedHours float64) (*models.CaseService, error) {
	if !models.ValidServiceType(serviceType) {
		return nil, validationf("項目不正確")
	}
	if newGrantedHours < 0 {
		return nil, validationf("核給時數不可為負數")
	}

	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return nil, err
	}

	var svc models.CaseService
	err = l.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("case_id = ? AND service_type = ?", c.ID, serviceType).
			First(&svc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return conflictf("找不到該工作項目，無法修改")
			}
			return err
		}

		used, err := usedHoursTx(tx, c.ID, serviceType)
		if err != nil {
			return err
		}
		if newGrantedHours < used {
			return conflictf("核給時數不可小於已用時數（已用 %g）", used)
		}

		svc.GrantedHours = newGrantedHours
		return tx.Model(&models.CaseService{}).Where("id = ?", svc.ID).
			Update("granted_hours", newGrantedHours).Error
	})
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// usedHoursTx 在交易內加總某項目的已用時數。
func usedHoursTx(tx *gorm.DB, caseID uint, serviceType string) (float64, error) {
	col := "hours_orientation"
	if serviceType == models.ServiceLife {
		col = "hours_life"
	}

	var used float64
	err := tx.Model(&models.Session{}).
		Where("case_id = ?", caseID).
		Select("COALESCE(SUM(" + col + "), 0)").
		Scan(&used).Error
	return used, err
}

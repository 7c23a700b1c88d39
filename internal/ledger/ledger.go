// Package ledger 是案件時數的核心：案件、核給時數、上課紀錄三種資料的
// 全部異動都走這裡，每個異動包在一個交易裡，維持「已用 ≤ 核給」與
// 「查詢碼不存明碼」兩條不變量。HTTP 層只負責把參數接進來、把錯誤翻成訊息。
package ledger

import (
	"errors"
	"time"

	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const queryCodeLength = 8

// Ledger 案件帳本。codeKey 是查詢碼加密金鑰，程式啟動時就驗證過存在。
type Ledger struct {
	db      *gorm.DB
	codeKey string

	// 密碼驗證器，顯示查詢碼前重新確認教師密碼用。測試可以換掉。
	verify func(storedHash, plain string) bool
}

// New 建立 Ledger。
func New(db *gorm.DB, codeKey string) *Ledger {
	return &Ledger{
		db:      db,
		codeKey: codeKey,
		verify: func(storedHash, plain string) bool {
			return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
		},
	}
}

// ServiceSelection 建案時勾選的服務項目。
type ServiceSelection struct {
	ServiceType  string
	StartDate    time.Time
	GrantedHours float64 // 已經寬鬆解析過，格式錯誤在上層被當 0
}

// CreateCase 建立案件並產生查詢碼。明碼只在回傳值出現這一次，
// 呼叫端要當場交給使用者，之後只能透過 RevealCode 重新驗證密碼取回。
func (l *Ledger) CreateCase(teacherID uint, studentName, agencyName string, fiscalYear int, selections []ServiceSelection) (*models.Case, string, error) {
	studentName = util.CleanName(studentName)
	agencyName = util.CleanName(agencyName)

	if studentName == "" || agencyName == "" {
		return nil, "", validationf("請輸入服務對象姓名與派案單位")
	}
	if len(selections) == 0 {
		return nil, "", validationf("請至少勾選一個工作項目（定向或生活）")
	}

	seen := map[string]bool{}
	for _, sel := range selections {
		if !models.ValidServiceType(sel.ServiceType) {
			return nil, "", validationf("項目不正確")
		}
		if seen[sel.ServiceType] {
			return nil, "", validationf("工作項目重複勾選")
		}
		seen[sel.ServiceType] = true
	}

	codePlain, err := util.GenerateQueryCode(queryCodeLength)
	if err != nil {
		return nil, "", err
	}
	codeHash, err := util.HashCode(codePlain)
	if err != nil {
		return nil, "", err
	}
	codeEnc, err := util.EncryptCode(l.codeKey, codePlain)
	if err != nil {
		return nil, "", err
	}

	c := &models.Case{
		TeacherID:     teacherID,
		StudentName:   studentName,
		AgencyName:    agencyName,
		QueryCodeHash: codeHash,
		QueryCodeEnc:  codeEnc,
		QueryCodeHint: codeHint(codePlain),
		Status:        models.CaseActive,
		FiscalYear:    fiscalYear,
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for _, sel := range selections {
			granted := sel.GrantedHours
			if granted < 0 {
				granted = 0 // 建案不因時數欄位失敗，負數一律當 0
			}
			svc := models.CaseService{
				CaseID:       c.ID,
				ServiceType:  sel.ServiceType,
				StartDate:    sel.StartDate,
				GrantedHours: granted,
			}
			if err := tx.Create(&svc).Error; err != nil {
				return err
			}
			c.Services = append(c.Services, svc)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return c, codePlain, nil
}

// GetCase 取出屬於這位教師的案件，連同項目與上課紀錄。
func (l *Ledger) GetCase(teacherID, caseID uint) (*models.Case, error) {
	var c models.Case
	err := l.db.Preload("Services").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_date DESC, id DESC")
		}).
		Where("id = ? AND teacher_id = ?", caseID, teacherID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCases 教師儀表板用：該教師全部案件，新的在前。
func (l *Ledger) ListCases(teacherID uint) ([]models.Case, error) {
	var cases []models.Case
	err := l.db.Preload("Services").Preload("Sessions").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&cases).Error
	return cases, err
}

// ToggleClose 進行中/已結案互切，結案蓋上時間戳，恢復則清掉。
// 沒有剩餘時數歸零之類的前置條件，有剩時數也能結案。
func (l *Ledger) ToggleClose(teacherID, caseID uint) (*models.Case, error) {
	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return nil, err
	}

	if c.Status == models.CaseActive {
		now := time.Now().UTC()
		c.Status = models.CaseClosed
		c.ClosedAt = &now
	} else {
		c.Status = models.CaseActive
		c.ClosedAt = nil
	}

	if err := l.db.Model(&models.Case{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{"status": c.Status, "closed_at": c.ClosedAt}).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCase 整案硬刪除：項目、上課紀錄、案件本體在同一個交易內刪光，
// 不留 tombstone。顯式刪子表，不依賴資料庫 cascade 設定。
func (l *Ledger) DeleteCase(teacherID, caseID uint) error {
	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return err
	}
	return l.db.Transaction(func(tx *gorm.DB) error {
		return PurgeCaseRows(tx, c.ID)
	})
}

// PurgeCaseRows 刪掉一個案件的全部資料列。清理任務（sweep）也共用這段，
// 呼叫端自己負責包交易。
func PurgeCaseRows(tx *gorm.DB, caseID uint) error {
	if err := tx.Where("case_id = ?", caseID).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	if err := tx.Where("case_id = ?", caseID).Delete(&models.CaseService{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Case{}, caseID).Error
}

// TeacherHasActiveCase 這位教師是否還有進行中案件。
// 清理任務停用帳號前要先問，避免教到一半帳號被停。
func (l *Ledger) TeacherHasActiveCase(teacherID uint) (bool, error) {
	var count int64
	err := l.db.Model(&models.Case{}).
		Where("teacher_id = ? AND status = ?", teacherID, models.CaseActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// codeHint 查詢碼提示：只留尾 2 碼，例如 **AB。
func codeHint(code string) string {
	if len(code) < 2 {
		return ""
	}
	return "**" + code[len(code)-2:]
}

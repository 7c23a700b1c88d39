package ledger

import (
	"strings"

	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"gorm.io/gorm"
)

// LookupResult 單位查詢的結果：案件基本資料加現算餘額與上課明細。
// 不含查詢碼的任何形式。
type LookupResult struct {
	StudentName string           `json:"student_name"`
	AgencyName  string           `json:"agency_name"`
	FiscalYear  int              `json:"fiscal_year"`
	Status      string           `json:"status"`
	Balances    []ServiceBalance `json:"balances"`
	Sessions    []models.Session `json:"sessions"`
}

// Lookup 單位端免登入查詢。服務對象姓名要完全相同，單位名稱只要包含
// 關鍵字（不分大小寫），容忍單位全名寫法不一；候選案件逐一驗查詢碼，
// 碼對了才回資料。查無案件與查詢碼錯誤對外是同一種結果，
// ok=false，沒有可供列舉帳號的訊息差異。
func (l *Ledger) Lookup(agencyName, studentName, code string) (*LookupResult, bool, error) {
	agencyName = util.CleanName(agencyName)
	studentName = util.CleanName(studentName)
	code = strings.ToUpper(strings.TrimSpace(code))

	if agencyName == "" || studentName == "" || code == "" {
		return nil, false, validationf("請輸入單位名稱、服務對象姓名與查詢碼")
	}

	var candidates []models.Case
	err := l.db.Preload("Services").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_date ASC, id ASC")
		}).
		Where("student_name = ? AND LOWER(agency_name) LIKE LOWER(?)",
			studentName, "%"+agencyName+"%").
		Find(&candidates).Error
	if err != nil {
		return nil, false, err
	}

	// 查詢碼唯一性是機率保證不是資料庫約束，老實線性掃過候選案件
	var matched *models.Case
	for i := range candidates {
		if util.CheckCode(code, candidates[i].QueryCodeHash) {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		return nil, false, nil
	}

	return &LookupResult{
		StudentName: matched.StudentName,
		AgencyName:  matched.AgencyName,
		FiscalYear:  matched.FiscalYear,
		Status:      matched.Status,
		Balances:    ComputeBalance(matched),
		Sessions:    matched.Sessions,
	}, true, nil
}

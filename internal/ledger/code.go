package ledger

import (
	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"gorm.io/gorm"
)

// ResetCode 重置查詢碼：hash、密文、提示三個欄位在同一個交易內一起換掉，
// 舊碼立刻永久失效。新碼明碼只在回傳值出現一次。
func (l *Ledger) ResetCode(teacherID, caseID uint) (string, error) {
	c, err := l.GetCase(teacherID, caseID)
	if err != nil {
		return "", err
	}

	codePlain, err := util.GenerateQueryCode(queryCodeLength)
	if err != nil {
		return "", err
	}
	codeHash, err := util.HashCode(codePlain)
	if err != nil {
		return "", err
	}
	codeEnc, err := util.EncryptCode(l.codeKey, codePlain)
	if err != nil {
		return "", err
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Case{}).Where("id = ?", c.ID).
			Updates(map[string]interface{}{
				"query_code_hash": codeHash,
				"query_code_enc":  codeEnc,
				"query_code_hint": codeHint(codePlain),
			}).Error
	})
	if err != nil {
		return "", err
	}
	return codePlain, nil
}

// RevealCode 重新驗證教師密碼後解回查詢碼明碼。
// 回傳 ok=false 表示這個案件沒有可顯示的查詢碼（只有 hash 的舊資料），
// 這不是錯誤，呼叫端應建議使用者重置查詢碼。
func (l *Ledger) RevealCode(teacher *models.Teacher, caseID uint, passwordConfirm string) (code string, ok bool, err error) {
	if !l.verify(teacher.PasswordHash, passwordConfirm) {
		return "", false, &AuthError{Msg: "密碼錯誤，無法顯示查詢碼"}
	}

	c, err := l.GetCase(teacher.ID, caseID)
	if err != nil {
		return "", false, err
	}

	if c.QueryCodeEnc == "" {
		return "", false, nil
	}

	code, err = util.DecryptCode(l.codeKey, c.QueryCodeEnc)
	if err != nil {
		// 金鑰不對或資料毀損，這是系統問題不是使用者問題
		return "", false, err
	}
	return code, true, nil
}

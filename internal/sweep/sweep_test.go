package sweep

import (
	"testing"
	"time"

	"github.com/hunzan/working-hours-e/internal/config"
	"github.com/hunzan/working-hours-e/internal/ledger"
	"github.com/hunzan/working-hours-e/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("開啟測試資料庫失敗: %v", err)
	}
	// :memory: 每條連線是獨立資料庫，連線池限制 1 條才不會表不見
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("取得 sql db 失敗: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Teacher{}, &models.Case{}, &models.CaseService{}, &models.Session{}); err != nil {
		t.Fatalf("migrate 失敗: %v", err)
	}
	return db
}

func newTeacher(t *testing.T, db *gorm.DB, name string, lastLogin *time.Time) *models.Teacher {
	t.Helper()
	teacher := &models.Teacher{
		FullName:     name,
		Email:        name + "@example.com",
		PasswordHash: "not-used-here",
		IsActive:     true,
		LastLoginAt:  lastLogin,
	}
	if err := db.Create(teacher).Error; err != nil {
		t.Fatalf("建立教師失敗: %v", err)
	}
	return teacher
}

// newCase 建一個帶項目和上課紀錄的案，回傳案件。
func newCase(t *testing.T, db *gorm.DB, teacherID uint, student string, year int) *models.Case {
	t.Helper()
	led := ledger.New(db, "sweep-test-key")
	c, _, err := led.CreateCase(teacherID, student, "某單位", year, []ledger.ServiceSelection{
		{ServiceType: models.ServiceOrientation, StartDate: time.Now(), GrantedHours: 10},
	})
	if err != nil {
		t.Fatalf("建案失敗: %v", err)
	}
	if _, err := led.LogSession(teacherID, c.ID, time.Now(), 2, 0); err != nil {
		t.Fatalf("登記時數失敗: %v", err)
	}
	return c
}

func closeCaseAt(t *testing.T, db *gorm.DB, caseID uint, at time.Time) {
	t.Helper()
	err := db.Model(&models.Case{}).Where("id = ?", caseID).
		Updates(map[string]interface{}{"status": models.CaseClosed, "closed_at": at}).Error
	if err != nil {
		t.Fatalf("結案失敗: %v", err)
	}
}

func TestRun_DeletesOldClosedCases(t *testing.T) {
	db := newTestDB(t)
	teacher := newTeacher(t, db, "林小華", nil)
	now := time.Now()

	oldCase := newCase(t, db, teacher.ID, "王小明", 2025)
	closeCaseAt(t, db, oldCase.ID, now.AddDate(0, 0, -61)) // 結案 61 天，超過門檻

	freshClosed := newCase(t, db, teacher.ID, "陳小美", 2025)
	closeCaseAt(t, db, freshClosed.ID, now.AddDate(0, 0, -10)) // 剛結案，要留著

	activeCase := newCase(t, db, teacher.ID, "李大同", 2025)

	cfg := config.SweepConfig{DaysClosedDelete: 60, DaysInactiveDisable: 90}
	res, err := Run(db, cfg, now)
	if err != nil {
		t.Fatalf("清理失敗: %v", err)
	}
	if res.DeletedCases != 1 {
		t.Errorf("應刪 1 案，實際 %d", res.DeletedCases)
	}

	var count int64
	db.Model(&models.Case{}).Where("id = ?", oldCase.ID).Count(&count)
	if count != 0 {
		t.Error("超過門檻的結案案件應被刪除")
	}

	// 連子資料一起刪乾淨
	db.Model(&models.CaseService{}).Where("case_id = ?", oldCase.ID).Count(&count)
	if count != 0 {
		t.Error("刪案後不應殘留工作項目")
	}
	db.Model(&models.Session{}).Where("case_id = ?", oldCase.ID).Count(&count)
	if count != 0 {
		t.Error("刪案後不應殘留上課紀錄")
	}

	// 其他案不受影響
	for _, id := range []uint{freshClosed.ID, activeCase.ID} {
		db.Model(&models.Case{}).Where("id = ?", id).Count(&count)
		if count != 1 {
			t.Errorf("案件 %d 不應被刪除", id)
		}
	}
}

func TestRun_DisablesStaleTeachers(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	longAgo := now.AddDate(0, 0, -120)
	recent := now.AddDate(0, 0, -5)

	stale := newTeacher(t, db, "閒置教師", &longAgo)
	active := newTeacher(t, db, "活躍教師", &recent)
	never := newTeacher(t, db, "從未登入", nil) // 沒有登入紀錄的不動

	// 久未登入但還有進行中的案件，不能停用
	busy := newTeacher(t, db, "忙碌教師", &longAgo)
	newCase(t, db, busy.ID, "王小明", 2025)

	cfg := config.SweepConfig{DaysClosedDelete: 60, DaysInactiveDisable: 90}
	res, err := Run(db, cfg, now)
	if err != nil {
		t.Fatalf("清理失敗: %v", err)
	}
	if res.DisabledTeachers != 1 {
		t.Errorf("應停用 1 位教師，實際 %d", res.DisabledTeachers)
	}

	check := func(id uint, wantActive bool, label string) {
		var tc models.Teacher
		if err := db.First(&tc, id).Error; err != nil {
			t.Fatalf("讀取教師失敗: %v", err)
		}
		if tc.IsActive != wantActive {
			t.Errorf("%s: is_active 期望 %v，實際 %v", label, wantActive, tc.IsActive)
		}
	}
	check(stale.ID, false, "閒置教師")
	check(active.ID, true, "活躍教師")
	check(never.ID, true, "從未登入")
	check(busy.ID, true, "忙碌教師（有進行中案件）")
}

func TestAfterJan10(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		date string
		want bool
	}{
		{"2026-01-01", false},
		{"2026-01-10", false}, // 當天還在緩衝期內
		{"2026-01-11", true},
		{"2026-06-15", true},
		{"2026-12-31", true},
	}
	for _, tc := range cases {
		d, err := time.ParseInLocation("2006-01-02", tc.date, loc)
		if err != nil {
			t.Fatalf("測試日期格式錯誤: %v", err)
		}
		if got := AfterJan10(d); got != tc.want {
			t.Errorf("AfterJan10(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestPurgeFiscalYear(t *testing.T) {
	db := newTestDB(t)
	teacher := newTeacher(t, db, "林小華", nil)

	oldA := newCase(t, db, teacher.ID, "王小明", 2024)
	oldB := newCase(t, db, teacher.ID, "陳小美", 2024)
	current := newCase(t, db, teacher.ID, "李大同", 2025)

	deleted, err := PurgeFiscalYear(db, 2024)
	if err != nil {
		t.Fatalf("年度清理失敗: %v", err)
	}
	if deleted != 2 {
		t.Errorf("應刪 2 案，實際 %d", deleted)
	}

	var count int64
	db.Model(&models.Case{}).Where("fiscal_year = ?", 2024).Count(&count)
	if count != 0 {
		t.Error("2024 年度案件應全數刪除")
	}
	for _, id := range []uint{oldA.ID, oldB.ID} {
		db.Model(&models.Session{}).Where("case_id = ?", id).Count(&count)
		if count != 0 {
			t.Errorf("案件 %d 的上課紀錄應一併刪除", id)
		}
	}

	db.Model(&models.Case{}).Where("id = ?", current.ID).Count(&count)
	if count != 1 {
		t.Error("當年度案件不應被刪除")
	}

	// 沒有該年度案件時不報錯
	deleted, err = PurgeFiscalYear(db, 2019)
	if err != nil || deleted != 0 {
		t.Errorf("空年度應回 (0, nil)，實際 (%d, %v)", deleted, err)
	}
}

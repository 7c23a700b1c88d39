package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hunzan/working-hours-e/internal/ledger"
	"github.com/hunzan/working-hours-e/internal/middleware"
	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CaseHandler 案件相關接口，異動全部委給 ledger。
type CaseHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Ledger
}

func NewCaseHandler(db *gorm.DB, led *ledger.Ledger) *CaseHandler {
	return &CaseHandler{DB: db, Ledger: led}
}

// ---------- 請求/回應結構 ----------

type serviceSelectionReq struct {
	ServiceType  string `json:"service_type" binding:"required"`
	StartDate    string `json:"start_date"`
	GrantedHours string `json:"granted_hours"` // 寬鬆解析，打錯當 0，建案不失敗
}

type createCaseReq struct {
	StudentName string                `json:"student_name" binding:"required"`
	AgencyName  string                `json:"agency_name" binding:"required"`
	FiscalYear  int                   `json:"fiscal_year"`
	Services    []serviceSelectionReq `json:"services" binding:"required"`
}

type sessionResp struct {
	ID               uint      `json:"id"`
	SessionDate      time.Time `json:"session_date"`
	HoursOrientation float64   `json:"hours_orientation"`
	HoursLife        float64   `json:"hours_life"`
}

type caseResp struct {
	ID            uint                    `json:"id"`
	StudentName   string                  `json:"student_name"`
	AgencyName    string                  `json:"agency_name"`
	FiscalYear    int                     `json:"fiscal_year"`
	Status        string                  `json:"status"`
	QueryCodeHint string                  `json:"query_code_hint"`
	CreatedAt     time.Time               `json:"created_at"`
	ClosedAt      *time.Time              `json:"closed_at,omitempty"`
	Balances      []ledger.ServiceBalance `json:"balances"`
	Sessions      []sessionResp           `json:"sessions"`
}

func toCaseResp(c *models.Case) caseResp {
	sessions := make([]sessionResp, 0, len(c.Sessions))
	for _, s := range c.Sessions {
		sessions = append(sessions, sessionResp{
			ID:               s.ID,
			SessionDate:      s.SessionDate,
			HoursOrientation: s.HoursOrientation,
			HoursLife:        s.HoursLife,
		})
	}
	return caseResp{
		ID:            c.ID,
		StudentName:   c.StudentName,
		AgencyName:    c.AgencyName,
		FiscalYear:    c.FiscalYear,
		Status:        c.Status,
		QueryCodeHint: c.QueryCodeHint,
		CreatedAt:     c.CreatedAt,
		ClosedAt:      c.ClosedAt,
		Balances:      ledger.ComputeBalance(c),
		Sessions:      sessions,
	}
}

// respondLedgerError 把 ledger 的錯誤分類翻成 HTTP 回應。
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, ledger.ErrConflict):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, ledger.ErrAuth):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, err.Error())
	case errors.Is(err, ledger.ErrCaseNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "案件不存在")
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "操作失敗，請重試")
	}
}

func caseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return 0, false
	}
	return uint(id), true
}

// ---------- 儀表板 ----------

// ListCases 目前教師的案件，分進行中/已結束兩組。
func (h *CaseHandler) ListCases(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}

	cases, err := h.Ledger.ListCases(teacher.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢失敗")
		return
	}

	active := make([]caseResp, 0)
	closed := make([]caseResp, 0)
	for i := range cases {
		r := toCaseResp(&cases[i])
		if cases[i].Status == models.CaseActive {
			active = append(active, r)
		} else {
			closed = append(closed, r)
		}
	}

	util.Success(c, util.Response{
		"active_cases": active,
		"closed_cases": closed,
	})
}

// ---------- 建案 ----------

// CreateCase 新增案件。查詢碼明碼只在這個回應出現一次。
func (h *CaseHandler) CreateCase(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}

	var req createCaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	fiscalYear := req.FiscalYear
	if fiscalYear == 0 {
		fiscalYear = time.Now().Year()
	}

	selections := make([]ledger.ServiceSelection, 0, len(req.Services))
	for _, s := range req.Services {
		startDate, err := util.ParseDate(s.StartDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "開始日格式錯誤，應為 YYYY-MM-DD")
			return
		}
		selections = append(selections, ledger.ServiceSelection{
			ServiceType:  s.ServiceType,
			StartDate:    startDate,
			GrantedHours: util.ParseHoursLoose(s.GrantedHours),
		})
	}

	newCase, codePlain, err := h.Ledger.CreateCase(teacher.ID, req.StudentName, req.AgencyName, fiscalYear, selections)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"case": toCaseResp(newCase),
		// 一次性顯示：之後只能走 reveal-code 重新驗密碼取回
		"one_time_code": codePlain,
	})
}

// GetCase 案件詳情（含現算餘額）。
func (h *CaseHandler) GetCase(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	cs, err := h.Ledger.GetCase(teacher.ID, caseID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"case": toCaseResp(cs),
	})
}

// ---------- 項目（核給時數） ----------

type addGrantReq struct {
	ServiceType  string `json:"service_type" binding:"required"`
	StartDate    string `json:"start_date"`
	GrantedHours string `json:"granted_hours"`
}

func (h *CaseHandler) AddGrant(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req addGrantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "開始日格式錯誤，應為 YYYY-MM-DD")
		return
	}

	svc, err := h.Ledger.AddGrant(teacher.ID, caseID, req.ServiceType, startDate, util.ParseHoursLoose(req.GrantedHours))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "已新增項目：" + models.ServiceLabel(svc.ServiceType),
		"service": gin.H{
			"service_type":  svc.ServiceType,
			"start_date":    svc.StartDate,
			"granted_hours": svc.GrantedHours,
		},
	})
}

func (h *CaseHandler) RemoveGrant(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	serviceType := c.Param("type")
	if err := h.Ledger.RemoveGrant(teacher.ID, caseID, serviceType); err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "已刪除項目：" + models.ServiceLabel(serviceType),
	})
}

type resizeGrantReq struct {
	NewGrantedHours string `json:"new_granted_hours" binding:"required"`
}

func (h *CaseHandler) ResizeGrant(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req resizeGrantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	// 修改核給時數要嚴格解析，打錯要讓使用者看到
	newGranted, err := util.ParseHoursStrict(req.NewGrantedHours)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "核給時數格式錯誤")
		return
	}

	serviceType := c.Param("type")
	svc, err := h.Ledger.ResizeGrant(teacher.ID, caseID, serviceType, newGranted)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "已更新核給時數",
		"service": gin.H{
			"service_type":  svc.ServiceType,
			"granted_hours": svc.GrantedHours,
		},
	})
}

// ---------- 上課紀錄 ----------

type logSessionReq struct {
	SessionDate      string `json:"session_date"`
	HoursOrientation string `json:"hours_orientation"`
	HoursLife        string `json:"hours_life"`
}

func (h *CaseHandler) LogSession(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req logSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	sessionDate, err := util.ParseDate(req.SessionDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "上課日期格式錯誤，應為 YYYY-MM-DD")
		return
	}

	s, err := h.Ledger.LogSession(teacher.ID, caseID, sessionDate,
		util.ParseHoursLoose(req.HoursOrientation), util.ParseHoursLoose(req.HoursLife))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "已新增上課紀錄",
		"session": sessionResp{
			ID:               s.ID,
			SessionDate:      s.SessionDate,
			HoursOrientation: s.HoursOrientation,
			HoursLife:        s.HoursLife,
		},
	})
}

// ---------- 結案 / 查詢碼 / 刪除 ----------

func (h *CaseHandler) ToggleClose(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	cs, err := h.Ledger.ToggleClose(teacher.ID, caseID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	msg := "已恢復為進行中"
	if cs.Status == models.CaseClosed {
		msg = "已手動結案（移至已結束）"
	}
	util.Success(c, util.Response{
		"message":   msg,
		"status":    cs.Status,
		"closed_at": cs.ClosedAt,
	})
}

func (h *CaseHandler) ResetCode(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	codePlain, err := h.Ledger.ResetCode(teacher.ID, caseID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message":       "查詢碼已重置，舊碼立即失效",
		"one_time_code": codePlain,
	})
}

type revealCodeReq struct {
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

func (h *CaseHandler) RevealCode(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req revealCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "參數錯誤")
		return
	}

	code, hasCode, err := h.Ledger.RevealCode(teacher, caseID, req.PasswordConfirm)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	if !hasCode {
		// 舊資料只有 hash 沒有密文，不是錯誤，建議重置
		util.Success(c, util.Response{
			"has_code": false,
			"message":  "此案件沒有可顯示的查詢碼（可能是舊資料），建議重置查詢碼",
		})
		return
	}

	util.Success(c, util.Response{
		"has_code":      true,
		"message":       "已驗證密碼，查詢碼僅顯示一次",
		"one_time_code": code,
	})
}

func (h *CaseHandler) DeleteCase(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	if err := h.Ledger.DeleteCase(teacher.ID, caseID); err != nil {
		respondLedgerError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "案件已刪除",
	})
}

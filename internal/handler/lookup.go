package handler

import (
	"errors"
	"net/http"

	"github.com/hunzan/working-hours-e/internal/ledger"
	"github.com/hunzan/working-hours-e/internal/util"

	"github.com/gin-gonic/gin"
)

// LookupHandler 單位端免登入查詢。
type LookupHandler struct {
	Ledger *ledger.Ledger
}

func NewLookupHandler(led *ledger.Ledger) *LookupHandler {
	return &LookupHandler{Ledger: led}
}

type lookupReq struct {
	AgencyName  string `json:"agency_name" binding:"required"`
	StudentName string `json:"student_name" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// Lookup 單位名稱＋服務對象姓名＋查詢碼 → 餘額。
// 查無案件與查詢碼錯誤回同一種訊息，不給列舉帳號的線索。
func (h *LookupHandler) Lookup(c *gin.Context) {
	var req lookupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "請輸入單位名稱、服務對象姓名與查詢碼")
		return
	}

	result, found, err := h.Ledger.Lookup(req.AgencyName, req.StudentName, req.Code)
	if err != nil {
		if errors.Is(err, ledger.ErrValidation) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢失敗，請重試")
		return
	}
	if !found {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "查詢失敗：資料不存在或查詢碼錯誤")
		return
	}

	util.Success(c, util.Response{
		"result": result,
	})
}

package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hunzan/working-hours-e/internal/middleware"
	"github.com/hunzan/working-hours-e/internal/models"
	"github.com/hunzan/working-hours-e/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 年度匯出：跨年度前老師自己下載保存。
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{
	"年度", "用戶", "服務對象", "單位", "狀態",
	"項目", "開始日", "核給時數",
	"上課日期", "定向時數", "生活時數",
}

func formatHours(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// exportRows 把案件展開成報表列：每筆上課 × 每個項目一列，
// 沒有上課紀錄的案件也要每個項目輸出一列，行政對帳才不會漏案。
func exportRows(teacherName string, cases []models.Case) [][]string {
	var rows [][]string
	for i := range cases {
		c := &cases[i]
		if len(c.Sessions) > 0 {
			for _, sess := range c.Sessions {
				for _, svc := range c.Services {
					rows = append(rows, []string{
						strconv.Itoa(c.FiscalYear),
						teacherName,
						c.StudentName,
						c.AgencyName,
						c.Status,
						models.ServiceLabel(svc.ServiceType),
						svc.StartDate.Format("2006-01-02"),
						formatHours(svc.GrantedHours),
						sess.SessionDate.Format("2006-01-02"),
						formatHours(sess.HoursOrientation),
						formatHours(sess.HoursLife),
					})
				}
			}
		} else {
			for _, svc := range c.Services {
				rows = append(rows, []string{
					strconv.Itoa(c.FiscalYear),
					teacherName,
					c.StudentName,
					c.AgencyName,
					c.Status,
					models.ServiceLabel(svc.ServiceType),
					svc.StartDate.Format("2006-01-02"),
					formatHours(svc.GrantedHours),
					"", "", "",
				})
			}
		}
	}
	return rows
}

func (h *ExportHandler) loadCases(teacherID uint, year int) ([]models.Case, error) {
	var cases []models.Case
	err := h.DB.Preload("Services").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_date ASC, id ASC")
		}).
		Where("teacher_id = ? AND fiscal_year = ?", teacherID, year).
		Order("student_name ASC").
		Find(&cases).Error
	return cases, err
}

func exportYear(c *gin.Context) int {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year <= 0 {
		return time.Now().Year()
	}
	return year
}

// ExportCSV 匯出年度報表 CSV。
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}

	year := exportYear(c)
	cases, err := h.loadCases(teacher.ID, year)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢失敗")
		return
	}

	filename := fmt.Sprintf("工作時數E指通_%s_%d.csv", teacher.FullName, year)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	// UTF-8 BOM（讓 Excel 正確識別中文）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeader)
	for _, row := range exportRows(teacher.FullName, cases) {
		writer.Write(row)
	}
}

// ExportXLSX 匯出年度報表 XLSX。
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	teacher, ok := middleware.CurrentTeacher(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "請先登入用戶帳號")
		return
	}

	year := exportYear(c)
	cases, err := h.loadCases(teacher.ID, year)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查詢失敗")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	headerRow := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		headerRow[i] = h
	}
	_ = f.SetSheetRow(sheet, "A1", &headerRow)

	for i, row := range exportRows(teacher.FullName, cases) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheet, cell, &cells)
	}

	filename := fmt.Sprintf("工作時數E指通_%s_%d.xlsx", teacher.FullName, year)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "匯出失敗")
		return
	}
}

package ledger

import (
	"errors"
	"fmt"
)

// 錯誤分四類：
//   - ValidationError：輸入本身不合法（空白、負數、格式錯），改輸入就能重試
//   - ConflictError：輸入合法但違反目前狀態的不變量（核給改到比已用少、刪有紀錄的項目、重複項目）
//   - AuthError：特權讀取（顯示查詢碼）的密碼驗證失敗
//   - ErrCaseNotFound：案件不存在或不屬於這位教師
// Lookup 的「查無資料」不是錯誤，用回傳值表達，查碼錯與查無案件對外不可區分。

var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict with current state")
	ErrAuth         = errors.New("authentication failed")
	ErrCaseNotFound = errors.New("case not found")
)

// ValidationError 帶使用者可讀訊息的輸入錯誤。
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError 狀態衝突：輸入沒錯，但現在不能這樣做。
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }
func (e *ConflictError) Unwrap() error { return ErrConflict }

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError 密碼驗證失敗。
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }
func (e *AuthError) Unwrap() error { return ErrAuth }

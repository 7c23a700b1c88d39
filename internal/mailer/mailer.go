package mailer

import "log"

// Service 寄信服務。目前只有重設密碼一種信。
type Service interface {
	SendPasswordReset(toEmail, resetURL string) error
}

// ConsoleService 開發用：把信印到 console，不真的寄出。
type ConsoleService struct{}

func NewConsoleService() *ConsoleService {
	return &ConsoleService{}
}

func (s *ConsoleService) SendPasswordReset(toEmail, resetURL string) error {
	log.Printf("[mail] to=%s 重設密碼連結（30 分鐘有效）: %s", toEmail, resetURL)
	return nil
}

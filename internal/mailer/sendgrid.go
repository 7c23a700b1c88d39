package mailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridService 正式環境寄信。
type SendGridService struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridService(apiKey, from string) *SendGridService {
	return &SendGridService{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (s *SendGridService) SendPasswordReset(toEmail, resetURL string) error {
	from := mail.NewEmail("工作時數E指通", s.from)
	to := mail.NewEmail("", toEmail)
	subject := "工作時數E指通：重設密碼連結（30 分鐘有效）"
	body := fmt.Sprintf("請點擊以下連結重設密碼（30 分鐘內有效）：\n%s\n\n若你未申請重設，請忽略此信。", resetURL)

	msg := mail.NewSingleEmail(from, subject, to, body, "")
	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// FromConfig 有 API key 就走 SendGrid，沒有就印到 console（開發環境）。
func FromConfig(apiKey, from string) Service {
	if apiKey == "" {
		return NewConsoleService()
	}
	return NewSendGridService(apiKey, from)
}

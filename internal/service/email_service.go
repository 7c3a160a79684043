package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error
}

// NoopEmailService is used when email dispatch is disabled (local dev).
type NoopEmailService struct{}

func (s *NoopEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	log.Printf("[EmailService] noop send verification code to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	if toEmail == "" || code == "" {
		return fmt.Errorf("toEmail and code are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Verify Your School Email - Case Competition",
		Text:    fmt.Sprintf("Your verification code is %s. It expires in 15 minutes. If you didn't request this verification, please ignore this email.", code),
		Html: fmt.Sprintf(
			`<p>Please use the verification code below to confirm your school email address:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:5px;">%s</p>
<p>This code will expire in 15 minutes. If you didn't request this verification, please ignore this email.</p>`,
			code),
	}

	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	// Письмо отправляется ровно один раз: при сбое пользователь видит
	// "try again later" и запрашивает код повторно сам. Ключ идемпотентности
	// защищает от дублей при повторной доставке одного и того же запроса.
	if _, err := s.client.Emails.SendWithOptions(ctx, params, options); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"pira-rental-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewEmailService(apiKey, from, fromName string) EmailService {
	return &emailService{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *emailService) SendOrderUpdate(ctx context.Context, email, name, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(name, email)

	text := fmt.Sprintf("Hello %s,\n\n%s\n\nBest regards,\nThe Rental Team", name, body)
	message := mail.NewSingleEmail(from, subject, to, text, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", email, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "Send", nil, "status", response.StatusCode)
	return nil
}

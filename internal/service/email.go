package service

import (
	"context"
	"fmt"
	"time"

	"gomate-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil)
	return nil
}

func (s *emailService) SendJoinRequestNotification(ctx context.Context, leaderEmail, leaderName, applicantName, teamTitle string) error {
	subject := fmt.Sprintf("New join request for %s", teamTitle)
	plainText := fmt.Sprintf("Hello %s,\n\n%s wants to join your hike \"%s\". Review the request in GoMate.\n\nHappy trails,\nThe GoMate Team", leaderName, applicantName, teamTitle)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p><strong>%s</strong> wants to join your hike <strong>%s</strong>.</p><p>Review the request in GoMate.</p>`, leaderName, applicantName, teamTitle)
	return s.send(leaderEmail, leaderName, subject, plainText, htmlContent)
}

func (s *emailService) SendMembershipApprovedNotification(ctx context.Context, memberEmail, memberName, teamTitle string, startTime time.Time) error {
	subject := fmt.Sprintf("You're in: %s", teamTitle)
	when := startTime.Format("Mon, 2 Jan 2006 15:04")
	plainText := fmt.Sprintf("Hello %s,\n\nYour request to join \"%s\" has been approved. The hike starts %s.\n\nHappy trails,\nThe GoMate Team", memberName, teamTitle, when)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>Your request to join <strong>%s</strong> has been approved.</p><p>The hike starts %s.</p>`, memberName, teamTitle, when)
	return s.send(memberEmail, memberName, subject, plainText, htmlContent)
}

func (s *emailService) SendMembershipRejectedNotification(ctx context.Context, memberEmail, memberName, teamTitle string) error {
	subject := fmt.Sprintf("Update on your request for %s", teamTitle)
	plainText := fmt.Sprintf("Hello %s,\n\nYour request to join \"%s\" was not accepted this time. You can apply to other hikes in GoMate.\n\nHappy trails,\nThe GoMate Team", memberName, teamTitle)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>Your request to join <strong>%s</strong> was not accepted this time.</p>`, memberName, teamTitle)
	return s.send(memberEmail, memberName, subject, plainText, htmlContent)
}

func (s *emailService) SendTeamCancelledNotification(ctx context.Context, memberEmail, memberName, teamTitle string) error {
	subject := fmt.Sprintf("Hike cancelled: %s", teamTitle)
	plainText := fmt.Sprintf("Hello %s,\n\nThe hike \"%s\" has been cancelled by its leader.\n\nHappy trails,\nThe GoMate Team", memberName, teamTitle)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>The hike <strong>%s</strong> has been cancelled by its leader.</p>`, memberName, teamTitle)
	return s.send(memberEmail, memberName, subject, plainText, htmlContent)
}

func (s *emailService) SendHikeReminder(ctx context.Context, memberEmail, memberName, teamTitle string, startTime time.Time) error {
	subject := fmt.Sprintf("Reminder: %s starts soon", teamTitle)
	when := startTime.Format("Mon, 2 Jan 2006 15:04")
	plainText := fmt.Sprintf("Hello %s,\n\nYour hike \"%s\" starts %s. Check the weather and pack accordingly.\n\nHappy trails,\nThe GoMate Team", memberName, teamTitle, when)
	htmlContent := fmt.Sprintf(`<p>Hello %s,</p><p>Your hike <strong>%s</strong> starts %s.</p><p>Check the weather and pack accordingly.</p>`, memberName, teamTitle, when)
	return s.send(memberEmail, memberName, subject, plainText, htmlContent)
}

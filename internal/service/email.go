package service

import (
	"context"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey   string
	from     string
	fromName string
}

func NewEmailService(apiKey, from, fromName string) EmailService {
	return &emailService{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	if s.apiKey == "" {
		// No key configured (local development): log instead of sending.
		logger.Info("email suppressed, no api key", "to", to, "subject", subject)
		return nil
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		subject,
		mail.NewEmail(toName, to),
		plainText,
		"",
	)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendOTP(ctx context.Context, email, name, code string, purpose domain.OTPPurpose) error {
	subject := "Your EquipRent verification code"
	intro := "Use this code to verify your email address"
	if purpose == domain.OTPPurposePasswordReset {
		subject = "Your EquipRent password reset code"
		intro = "Use this code to reset your password"
	}
	body := fmt.Sprintf("Hello %s,\n\n%s:\n\n%s\n\nThe code expires in 10 minutes. If you did not request it, ignore this email.\n\nThe EquipRent Team", name, intro, code)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendRegistrationDecision(ctx context.Context, email, name string, approved bool, reason string) error {
	if approved {
		body := fmt.Sprintf("Hello %s,\n\nYour EquipRent account has been approved. You can now log in and start using the platform.\n\nThe EquipRent Team", name)
		return s.send(email, name, "Your EquipRent account is approved", body)
	}
	body := fmt.Sprintf("Hello %s,\n\nUnfortunately your EquipRent registration was not approved.", name)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nYou can contact support if you believe this is a mistake.\n\nThe EquipRent Team"
	return s.send(email, name, "Your EquipRent registration", body)
}

func (s *emailService) SendBookingRequest(ctx context.Context, ownerEmail, ownerName, renterName, equipmentTitle, startDate, endDate string) error {
	body := fmt.Sprintf("Hello %s,\n\n%s has requested to rent your equipment \"%s\" from %s to %s.\n\nLog in to review and respond to the request.\n\nThe EquipRent Team",
		ownerName, renterName, equipmentTitle, startDate, endDate)
	return s.send(ownerEmail, ownerName, "New booking request", body)
}

func (s *emailService) SendBookingDecision(ctx context.Context, renterEmail, renterName, equipmentTitle string, approved bool, reason string) error {
	if approved {
		body := fmt.Sprintf("Hello %s,\n\nYour booking for \"%s\" has been approved by the owner.\n\nThe EquipRent Team", renterName, equipmentTitle)
		return s.send(renterEmail, renterName, "Booking approved", body)
	}
	body := fmt.Sprintf("Hello %s,\n\nYour booking for \"%s\" was declined by the owner.", renterName, equipmentTitle)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nThe EquipRent Team"
	return s.send(renterEmail, renterName, "Booking declined", body)
}

func (s *emailService) SendBookingReminder(ctx context.Context, renterEmail, renterName, equipmentTitle, startDate string) error {
	body := fmt.Sprintf("Hello %s,\n\nA reminder that your rental of \"%s\" starts on %s.\n\nThe EquipRent Team",
		renterName, equipmentTitle, startDate)
	return s.send(renterEmail, renterName, "Your rental starts soon", body)
}

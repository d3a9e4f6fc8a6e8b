package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/TeamLinkup/matchmaking-system/config"
	"github.com/TeamLinkup/matchmaking-system/models"
)

// EmailService отправляет письма через SMTP и реализует Notifier.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение (обычно порт 465)
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}

	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}

	return nil
}

func (s *EmailService) GenerateEmailBody(templatePath string, data interface{}) (string, error) {
	t, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("ошибка парсинга шаблона %s: %w", templatePath, err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", templatePath, err)
	}

	return body.String(), nil
}

type matchEmailData struct {
	Sport            models.Sport
	SkillLevel       models.SkillLevel
	MatchDateTime    string
	VenueName        string
	VenueAddress     string
	OpponentTeamName string
	OpponentEmail    string
}

func newMatchEmailData(recipient string, match *models.ConfirmedMatch) matchEmailData {
	opponentEmail := match.ProposingInscriberEmail
	if opponentEmail == recipient {
		opponentEmail = match.AcceptingInscriberEmail
	}
	return matchEmailData{
		Sport:            match.Sport,
		SkillLevel:       match.SkillLevel,
		MatchDateTime:    match.MatchDateTime.Format("Mon, 02 Jan 2006 15:04"),
		VenueName:        match.VenueName,
		VenueAddress:     match.VenueAddress,
		OpponentTeamName: match.OpponentTeamName(recipient),
		OpponentEmail:    opponentEmail,
	}
}

func (s *EmailService) SendMatchConfirmationEmail(_ context.Context, recipient string, match *models.ConfirmedMatch, _ bool) error {
	subject := "Match Confirmed!"
	htmlBody, err := s.GenerateEmailBody("templates/emails/match_confirmation_email.html", newMatchEmailData(recipient, match))
	if err != nil {
		return fmt.Errorf("ошибка генерации письма о подтверждении матча: %w", err)
	}
	return s.SendEmail([]string{recipient}, subject, htmlBody)
}

func (s *EmailService) SendMatchReminderEmail(_ context.Context, recipient string, match *models.ConfirmedMatch) error {
	subject := "Match Reminder!"
	htmlBody, err := s.GenerateEmailBody("templates/emails/match_reminder_email.html", newMatchEmailData(recipient, match))
	if err != nil {
		return fmt.Errorf("ошибка генерации письма-напоминания: %w", err)
	}
	return s.SendEmail([]string{recipient}, subject, htmlBody)
}

func (s *EmailService) SendMatchCancellationEmail(_ context.Context, recipient string, match *models.ConfirmedMatch) error {
	subject := "Match Cancelled"
	htmlBody, err := s.GenerateEmailBody("templates/emails/match_cancellation_email.html", newMatchEmailData(recipient, match))
	if err != nil {
		return fmt.Errorf("ошибка генерации письма об отмене матча: %w", err)
	}
	return s.SendEmail([]string{recipient}, subject, htmlBody)
}

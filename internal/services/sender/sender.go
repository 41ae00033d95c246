// Package services превращает события о решениях по платежным заявкам
// в письма пользователям. Сервис работает потребителем очереди
// уведомлений в отдельном процессе-отправителе.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ouedraogodev/pronos226/internal/lib/sl"
	smtplib "github.com/ouedraogodev/pronos226/internal/lib/smtp"
	"github.com/ouedraogodev/pronos226/internal/models"
)

// SenderService отправляет письма о решениях по заявкам.
type SenderService struct {
	transport smtplib.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtplib.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendClaimDecision разбирает событие решения и отправляет пользователю
// письмо об одобрении или отклонении его платежа.
func (s *SenderService) SendClaimDecision(body []byte) error {
	var event models.ClaimDecisionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal claim decision event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{event.Email}
	var subject, bodyText string
	if event.Status == string(models.ClaimApproved) {
		subject = "Votre abonnement Pronos226 est actif"
		bodyText = fmt.Sprintf(
			"Bonjour %s,\n\nVotre paiement a été confirmé. Votre abonnement %s (%s) est maintenant actif.\n\nMerci de votre confiance,\nL'équipe Pronos226",
			event.FullName, event.TargetTier, event.Period)
	} else {
		reason := ""
		if event.Note != nil && *event.Note != "" {
			reason = "\n\nMotif : " + *event.Note
		}
		subject = "Votre paiement Pronos226 n'a pas pu être validé"
		bodyText = fmt.Sprintf(
			"Bonjour %s,\n\nNous n'avons pas pu valider votre paiement pour l'abonnement %s (%s).%s\n\nVous pouvez soumettre une nouvelle preuve de paiement depuis votre compte.\n\nL'équipe Pronos226",
			event.FullName, event.TargetTier, event.Period, reason)
	}

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}

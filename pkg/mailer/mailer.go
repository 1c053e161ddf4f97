// Package mailer sends the outbound email of the system: the confirmation a
// complainant receives once the wizard commits, with the category's admins in
// copy. Email is best-effort; a failed send never rolls back a complaint.
package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/empresasintegra/leykarin/pkg/config"
	"github.com/empresasintegra/leykarin/pkg/metrics"
	"github.com/empresasintegra/leykarin/pkg/model"
)

var spanishMonths = [...]string{
	"", "enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Sender abstracts the SMTP dialer so tests can capture messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifications records the audit row of each send attempt.
type Notifications interface {
	Record(ctx context.Context, notification *model.Notification) error
}

type Mailer struct {
	sender        Sender
	from          string
	notifications Notifications
	logger        *zap.Logger
}

func New(cfg *config.SMTPConfig, notifications Notifications, logger *zap.Logger) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{sender: dialer, from: cfg.From, notifications: notifications, logger: logger}
}

// NewWithSender is used by tests and alternative transports.
func NewWithSender(sender Sender, from string, notifications Notifications, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, notifications: notifications, logger: logger}
}

const confirmationSubject = "Denuncia Registrada - Empresas Integra"

func confirmationBody(code string, now time.Time) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #28a745; text-align: center;">Denuncia Registrada Exitosamente</h1>
  <p>Su denuncia ha sido ingresada correctamente en nuestro sistema.</p>
  <ul>
    <li><strong>Código de Denuncia:</strong> %s</li>
    <li><strong>Fecha de Registro:</strong> %d de %s de %d</li>
    <li><strong>Hora:</strong> %s</li>
    <li><strong>Estado:</strong> En Proceso de Revisión</li>
  </ul>
  <p><strong>Importante:</strong> Guarde este código para futuras consultas sobre el estado de su denuncia.</p>
  <p style="font-size: 14px; color: #666; text-align: center;">
    Empresas Integra - Sistema de Denuncias<br>
    Este es un mensaje automático, no responda a este correo.
  </p>
</div>`,
		code, now.Day(), spanishMonths[now.Month()], now.Year(), now.Format("15:04"))
}

// ComplaintRegistered emails the confirmation to the complainant with the
// category's admins in copy, then records the notification audit row.
func (m *Mailer) ComplaintRegistered(ctx context.Context, to, code string, cc []string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	if len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}
	msg.SetHeader("Subject", confirmationSubject)
	msg.SetBody("text/html", confirmationBody(code, time.Now()))

	sendErr := m.sender.DialAndSend(msg)

	notification := &model.Notification{
		ComplaintCode: code,
		Recipients:    []string{to},
		CC:            cc,
		Subject:       confirmationSubject,
		Delivered:     sendErr == nil,
	}
	if sendErr != nil {
		notification.Error = sendErr.Error()
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		m.logger.Error("failed to send confirmation email",
			zap.String("code", code), zap.Error(sendErr))
	} else {
		metrics.NotificationsTotal.WithLabelValues("ok").Inc()
	}

	if err := m.notifications.Record(ctx, notification); err != nil {
		m.logger.Warn("failed to record notification", zap.String("code", code), zap.Error(err))
	}

	return sendErr
}

// Package mail delivers alert and digest messages.
package mail

import (
	"context"
	"gopkg.in/gomail.v2"
	"io"
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/structures"
)

type MailerInterface interface {
	Send(ctx context.Context, msg *models.Message) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	from   string
	dialer sender
	logger providers.Logger
}

// NewMailer returns an SMTP mailer, or a log-only mailer when mail is disabled.
func NewMailer(conf *structures.Config, logger providers.Logger) MailerInterface {
	if !conf.Mail.Enabled {
		logger.Infof(providers.TypeMail, "Mail disabled, messages are logged only")
		return &LogMailer{logger: logger}
	}
	logger.Infof(providers.TypeMail, "SMTP mailer via %s:%d", conf.Mail.Host, conf.Mail.Port)
	return &SMTPMailer{
		from:   conf.Mail.From,
		dialer: gomail.NewDialer(conf.Mail.Host, conf.Mail.Port, conf.Mail.Username, conf.Mail.Password),
		logger: logger,
	}
}

// BuildMessage converts a message into a MIME message. Each inline image is embedded
// under its content id so the HTML body can reference it as cid:{id}.
func BuildMessage(from string, msg *models.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	for _, img := range msg.InlineImages {
		data := img.Data
		m.Embed(img.ContentID,
			gomail.SetHeader(map[string][]string{"Content-Type": {img.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m
}

func (s *SMTPMailer) Send(ctx context.Context, msg *models.Message) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewDispatchError("send to "+msg.To, err)
	}
	if err := s.dialer.DialAndSend(BuildMessage(s.from, msg)); err != nil {
		return apperrors.NewDispatchError("send to "+msg.To, err)
	}
	s.logger.Debugf(providers.TypeMail, "Sent %q to %s", msg.Subject, msg.To)
	return nil
}

// LogMailer writes messages to the mail log instead of delivering them.
type LogMailer struct {
	logger providers.Logger
}

func (l *LogMailer) Send(ctx context.Context, msg *models.Message) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewDispatchError("send to "+msg.To, err)
	}
	l.logger.Infof(providers.TypeMail, "Mail to %s: %q (%d bytes, %d images)", msg.To, msg.Subject, len(msg.HTMLBody), len(msg.InlineImages))
	return nil
}

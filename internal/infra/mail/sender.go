package mail

import (
	"context"
	"fmt"

	"tendorai/internal/domain"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers digest emails over an authenticated SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPSender(host string, port int, username, password, from string, logger *zap.Logger) (*SMTPSender, error) {
	if host == "" || from == "" {
		return nil, fmt.Errorf("%w: SMTP host and from address are required", domain.ErrConfig)
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: smtp send to %s: %v", domain.ErrUpstreamTemporary, to, err)
	}
	s.logger.Debug("digest email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

package observer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const notificationSubject = "Number Plate Detection Result"

// MailSender delivers a plain text message
type MailSender interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPConfig holds the settings for SMTPSender
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTPSender sends mail through an SMTP relay, upgrading the connection with
// STARTTLS whenever the server offers it. Every network step is bounded by
// the context passed to Send.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *net.Dialer
}

// NewSMTPSender creates a sender for the given relay
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, dialer: &net.Dialer{}}
}

// Send delivers the message to every configured recipient
func (s *SMTPSender) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return smtpError(ctx, "dial "+addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return smtpError(ctx, "set deadline", err)
		}
	}
	// Unblocks a read stuck on a silent relay when ctx has no deadline
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return smtpError(ctx, "greeting", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return smtpError(ctx, "starttls", err)
		}
	}
	if s.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return fmt.Errorf("smtp auth: server %s does not support AUTH", addr)
		}
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return smtpError(ctx, "auth", err)
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return smtpError(ctx, "mail from", err)
	}
	for _, to := range s.cfg.To {
		if err := c.Rcpt(to); err != nil {
			return smtpError(ctx, "rcpt "+to, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return smtpError(ctx, "data", err)
	}
	if _, err := w.Write(s.buildMessage(subject, body)); err != nil {
		return smtpError(ctx, "data", err)
	}
	if err := w.Close(); err != nil {
		return smtpError(ctx, "data", err)
	}
	if err := c.Quit(); err != nil {
		return smtpError(ctx, "quit", err)
	}
	return nil
}

// smtpError reports the context error instead of the I/O error it caused
func smtpError(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("smtp %s: %w", step, ctxErr)
	}
	return fmt.Errorf("smtp %s: %w", step, err)
}

func (s *SMTPSender) buildMessage(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// EmailObserver mails the outcome of every completed recognition.
// Delivery failures are logged and never reach the pipeline.
type EmailObserver struct {
	sender  MailSender
	logger  *logrus.Logger
	timeout time.Duration
}

// NewEmailObserver creates a new email observer
func NewEmailObserver(sender MailSender, logger *logrus.Logger) *EmailObserver {
	return &EmailObserver{
		sender:  sender,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// OnEvent sends a notification for PlateEvaluated and PlateNotFound events
func (o *EmailObserver) OnEvent(ctx context.Context, event PlateEvent) {
	if !event.Completed() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	body := fmt.Sprintf("The detected text is: %s\n\nStatus: %s", event.Text, event.Status.Label())
	if err := o.sender.Send(ctx, notificationSubject, body); err != nil {
		o.logger.WithError(err).WithField("text", event.Text).Error("Failed to send email notification")
		return
	}
	o.logger.WithField("text", event.Text).Debug("Email notification sent")
}

// GetObserverName returns the observer name
func (o *EmailObserver) GetObserverName() string {
	return "email_observer"
}

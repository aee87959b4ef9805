package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	maxAttempts  = 3
	replySubject = "SecurePass AI: reply to your message"
)

// EmailService delivers transactional mail to door users.
type EmailService interface {
	SendMessageReply(ctx context.Context, to, userName, originalMessage, reply string) error
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

// NewEmailService parses the embedded templates. With an empty SMTP host
// every send is logged and skipped.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail)
}

func newEmailService(cfg config.SMTPConfig, send sendFunc) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &emailServiceImpl{cfg: cfg, templates: tmpl, send: send, backoff: time.Second}, nil
}

type replyEmailData struct {
	UserName        string
	OriginalMessage string
	Reply           string
}

// SendMessageReply tells a user that an admin answered their contact message.
func (s *emailServiceImpl) SendMessageReply(ctx context.Context, to, userName, originalMessage, reply string) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "message_reply.html", replyEmailData{
		UserName:        userName,
		OriginalMessage: originalMessage,
		Reply:           reply,
	}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(ctx, to, replySubject, body.String())
}

// buildMessage renders the RFC 5322 message. Header values are stripped of
// line breaks and non-ASCII text is Q-encoded.
func (s *emailServiceImpl) buildMessage(to, subject, htmlBody string) ([]byte, error) {
	rcpt, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	from := mail.Address{Name: s.cfg.FromName, Address: s.cfg.From}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", rcpt.String())
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", stripCRLF(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String()), nil
}

func (s *emailServiceImpl) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	msg, err := s.buildMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = s.send(addr, auth, s.cfg.From, []string{to}, msg)
		if lastErr == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}
		slog.Error("Failed to send email", "to", to, "attempt", attempt, "max_attempts", maxAttempts, "error", lastErr)

		if attempt == maxAttempts {
			break
		}
		// 1x, 2x, 4x backoff
		select {
		case <-ctx.Done():
			return fmt.Errorf("email to %s abandoned: %w", to, ctx.Err())
		case <-time.After(s.backoff << (attempt - 1)):
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxAttempts, lastErr)
}

func stripCRLF(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

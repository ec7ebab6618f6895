package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/apperr"
	"storefront-service/internal/config"
	"storefront-service/internal/models"
)

// EmailAttachment is an optional file attached to a message.
type EmailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// EmailMessage is a provider-independent outbound email.
type EmailMessage struct {
	To         string
	Subject    string
	Body       string
	BodyHTML   string
	Attachment *EmailAttachment
}

// EmailProvider sends a single email.
type EmailProvider interface {
	Send(ctx context.Context, message *EmailMessage) error
	Name() string
}

// NewEmailProvider picks a provider from configuration: SendGrid when an
// API key is set, SMTP when host credentials are set, nil otherwise.
func NewEmailProvider(cfg config.EmailConfig) EmailProvider {
	if cfg.SendGridAPIKey != "" {
		return &SendGridProvider{
			apiKey:   cfg.SendGridAPIKey,
			from:     cfg.FromAddress,
			fromName: cfg.FromName,
		}
	}
	if cfg.SMTPHost != "" {
		return &SMTPProvider{
			host:     cfg.SMTPHost,
			port:     fmt.Sprintf("%d", cfg.SMTPPort),
			username: cfg.SMTPUsername,
			password: cfg.SMTPPassword,
			from:     cfg.FromAddress,
			fromName: cfg.FromName,
		}
	}
	return nil
}

// SendGridProvider implements email sending via SendGrid
type SendGridProvider struct {
	apiKey   string
	from     string
	fromName string
}

func (p *SendGridProvider) Name() string { return "sendgrid" }

// Send sends an email via the SendGrid API
func (p *SendGridProvider) Send(ctx context.Context, message *EmailMessage) error {
	from := mail.NewEmail(p.fromName, p.from)
	to := mail.NewEmail("", message.To)

	body := message.Body
	if body == "" {
		body = " "
	}
	html := message.BodyHTML
	if html == "" {
		html = "<p>" + body + "</p>"
	}

	m := mail.NewSingleEmail(from, message.Subject, to, body, html)
	if message.Attachment != nil {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(message.Attachment.Content))
		att.SetType(message.Attachment.ContentType)
		att.SetFilename(message.Attachment.Filename)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}

	client := sendgrid.NewSendClient(p.apiKey)
	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SMTPProvider implements email sending via SMTP
type SMTPProvider struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

func (p *SMTPProvider) Name() string { return "smtp" }

// Send sends an email via SMTP. Messages with an attachment go out as
// multipart/mixed with the attachment base64-encoded.
func (p *SMTPProvider) Send(ctx context.Context, message *EmailMessage) error {
	raw, err := p.buildMessage(message)
	if err != nil {
		return fmt.Errorf("smtp message assembly failed: %w", err)
	}

	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	addr := net.JoinHostPort(p.host, p.port)
	if err := smtp.SendMail(addr, auth, p.from, []string{message.To}, raw); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (p *SMTPProvider) buildMessage(message *EmailMessage) ([]byte, error) {
	from := p.from
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.from)
	}

	bodyType := "text/plain; charset=utf-8"
	body := message.Body
	if message.BodyHTML != "" {
		bodyType = "text/html; charset=utf-8"
		body = message.BodyHTML
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", message.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", message.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if message.Attachment == nil {
		fmt.Fprintf(&b, "Content-Type: %s\r\n\r\n", bodyType)
		b.WriteString(body)
		return b.Bytes(), nil
	}

	writer := multipart.NewWriter(&b)
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {bodyType},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	attPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {message.Attachment.ContentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", message.Attachment.Filename)},
	})
	if err != nil {
		return nil, err
	}
	if _, err := attPart.Write([]byte(base64.StdEncoding.EncodeToString(message.Attachment.Content))); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// EmailService renders and sends the storefront's transactional emails.
type EmailService struct {
	provider     EmailProvider
	storeName    string
	adminAddress string
	logger       *logrus.Entry
}

// NewEmailService creates a new email service. Provider may be nil when no
// email credentials are configured; sends then fail with a
// ConfigurationError that callers treat as a degraded side effect.
func NewEmailService(provider EmailProvider, storeName, adminAddress string, logger *logrus.Logger) *EmailService {
	return &EmailService{
		provider:     provider,
		storeName:    storeName,
		adminAddress: adminAddress,
		logger:       logger.WithField("component", "email"),
	}
}

// SendOrderConfirmation emails the customer their order summary, with the
// invoice attached when one is available.
func (s *EmailService) SendOrderConfirmation(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	if s.provider == nil {
		return apperr.Configuration("no email provider configured")
	}

	message := &EmailMessage{
		To:       snapshot.CustomerEmail,
		Subject:  fmt.Sprintf("Order Confirmed - #%s", shortOrderRef(snapshot)),
		Body:     renderOrderText(s.storeName, snapshot),
		BodyHTML: renderOrderHTML(s.storeName, snapshot),
	}
	if invoicePDF != nil {
		message.Attachment = &EmailAttachment{
			Filename:    fmt.Sprintf("invoice-%s.pdf", shortOrderRef(snapshot)),
			ContentType: "application/pdf",
			Content:     invoicePDF,
		}
	}
	return s.provider.Send(ctx, message)
}

// SendAdminOrderNotice emails the internal shop address about a paid
// order, with the invoice attached when one is available.
func (s *EmailService) SendAdminOrderNotice(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	if s.provider == nil {
		return apperr.Configuration("no email provider configured")
	}

	message := &EmailMessage{
		To:      s.adminAddress,
		Subject: fmt.Sprintf("New paid order #%s (EUR %s)", shortOrderRef(snapshot), snapshot.Total.StringFixed(2)),
		Body: fmt.Sprintf("Order %s from %s is paid and ready for fulfillment.\nTotal: EUR %s",
			snapshot.OrderID, snapshot.CustomerEmail, snapshot.Total.StringFixed(2)),
	}
	if invoicePDF != nil {
		message.Attachment = &EmailAttachment{
			Filename:    fmt.Sprintf("invoice-%s.pdf", shortOrderRef(snapshot)),
			ContentType: "application/pdf",
			Content:     invoicePDF,
		}
	}
	return s.provider.Send(ctx, message)
}

func shortOrderRef(snapshot models.OrderSnapshot) string {
	id := snapshot.OrderID.String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderOrderText(storeName string, snapshot models.OrderSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order at %s!\n\n", storeName)
	fmt.Fprintf(&b, "Order %s\n\n", snapshot.OrderID)
	for _, line := range snapshot.Lines {
		fmt.Fprintf(&b, "  %d x %s @ EUR %s = EUR %s\n",
			line.Quantity, line.ProductName, line.UnitPrice.StringFixed(2), line.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: EUR %s\n", snapshot.Total.StringFixed(2))
	return b.String()
}

func renderOrderHTML(storeName string, snapshot models.OrderSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your order at %s!</h2>", storeName)
	fmt.Fprintf(&b, "<p>Order <strong>%s</strong></p><table>", snapshot.OrderID)
	for _, line := range snapshot.Lines {
		fmt.Fprintf(&b, "<tr><td>%d x %s</td><td>EUR %s</td></tr>",
			line.Quantity, line.ProductName, line.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "</table><p><strong>Total: EUR %s</strong></p>", snapshot.Total.StringFixed(2))
	return b.String()
}

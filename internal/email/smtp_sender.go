package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SMTPSender envía correos vía SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
	markdown goldmark.Markdown
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

func (s *SMTPSender) SendReportLink(ctx context.Context, toEmail, name, link, summaryMarkdown string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := reportText(name, link, summaryMarkdown)
	html, err := s.renderHTML(text)
	if err != nil {
		return fmt.Errorf("render email html: %w", err)
	}
	msg := buildMessage(s.from, s.fromName, toEmail, "Your Fame Report is ready", text, html, uuid.NewString())
	return s.send(toEmail, msg)
}

func reportText(name, link, summaryMarkdown string) string {
	greeting := "Hi"
	if strings.TrimSpace(name) != "" {
		greeting = "Hi " + strings.TrimSpace(name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\nYour personalised Fame Report is ready.\n\n", greeting)
	if strings.TrimSpace(summaryMarkdown) != "" {
		b.WriteString(strings.TrimSpace(summaryMarkdown))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[Download your report](%s)\n\nThe link expires, so save the PDF somewhere safe.\n", link)
	return b.String()
}

func (s *SMTPSender) renderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *SMTPSender) send(toEmail, msg string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if !s.useTLS {
		return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// buildMessage arma un multipart/alternative con texto plano y HTML.
func buildMessage(from, fromName, to, subject, text, html, boundary string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n"))
	b.WriteString("\r\n\r\n")
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, html)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}

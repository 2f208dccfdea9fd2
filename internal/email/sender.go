package email

import (
	"context"
	"errors"
)

// Sender envía el link de descarga del reporte al creador.
type Sender interface {
	SendReportLink(ctx context.Context, toEmail, name, link, summaryMarkdown string) error
}

// ErrSenderDisabled se devuelve cuando SMTP no está configurado.
var ErrSenderDisabled = errors.New("email sender disabled")

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendReportLink(_ context.Context, _, _, _, _ string) error {
	if s.reason == "" {
		return ErrSenderDisabled
	}
	return errors.Join(ErrSenderDisabled, errors.New(s.reason))
}

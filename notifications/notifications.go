// Package notifications sends operational notifications to humans
package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"
)

// Mailer sends an email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewSMTPMailer returns a mailer speaking plain SMTP, e.g. to a local
// relay. No auth: credentials belong on the relay.
func NewSMTPMailer(host, port, from string) *SMTPMailer {
	return &SMTPMailer{addr: fmt.Sprintf("%s:%s", host, port), from: from}
}

type SMTPMailer struct {
	addr string
	from string
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
}

// Mail is one recorded message
type Mail struct {
	To      string
	Subject string
	Body    string
}

// RecordingMailer captures sent mail for assertions in tests
type RecordingMailer struct {
	mx   sync.Mutex
	sent []Mail
}

func (m *RecordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *RecordingMailer) Sent() []Mail {
	m.mx.Lock()
	defer m.mx.Unlock()
	out := make([]Mail, len(m.sent))
	copy(out, m.sent)
	return out
}

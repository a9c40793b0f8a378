package notification

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPNotifier delivers messages through a plain SMTP relay.
type SMTPNotifier struct {
	addr string
	from string
}

// NewSMTPNotifier constructs an SMTP notifier targeting addr (host:port).
func NewSMTPNotifier(addr, from string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from}
}

// Send submits the message to the relay.
func (n *SMTPNotifier) Send(_ context.Context, message Message) error {
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, message.Recipient, message.Subject, message.Body)
	if err := smtp.SendMail(n.addr, nil, n.from, []string{message.Recipient}, []byte(payload)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

package notification

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// KindSetupInvite indicates an account-setup link delivery.
	KindSetupInvite = "setup_invite"
)

// Message describes a notification payload.
type Message struct {
	Kind      string
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers notifications to downstream systems. Delivery is
// fire-and-forget; callers must not depend on a delivery confirmation.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// SetupInvite builds the message carrying a setup link to an approved applicant.
func SetupInvite(recipient, fullName, link string) Message {
	return Message{
		Kind:      KindSetupInvite,
		Recipient: recipient,
		Subject:   "Finish setting up your SkillBridge account",
		Body: fmt.Sprintf("Hello %s,\r\n\r\nYour application has been approved. "+
			"Follow the link below to choose a password and activate your account. "+
			"The link can be used once and expires soon.\r\n\r\n%s\r\n", fullName, link),
	}
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger. The body is omitted so
// setup links never land in log storage.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "recipient", message.Recipient, "subject", message.Subject)
	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	Password     string `json:"password"`
	EmailAddress string `json:"email_address"`
	// run summaries go here
	Recipient string `json:"recipient"`
}

// Notifier sends run summaries over smtp. The zero value is disabled,
// Send becomes a no-op, so an unconfigured notifier never blocks a
// batch.
type Notifier struct {
	config SmtpConfig
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{config: config}
}

func (n Notifier) Enabled() bool {
	return n.config.Server != "" && n.config.Recipient != ""
}

func (n Notifier) Send(ctx context.Context, subject, body string) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	if !n.Enabled() {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("pmqwatch <%s>", n.config.EmailAddress)
	mail.To = []string{n.config.Recipient}
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}

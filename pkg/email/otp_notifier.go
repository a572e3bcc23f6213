package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/shoplane/authcore/pkg/mailotp"
)

// otpTemplate is intentionally plain: inline styles only, no external
// assets, so it renders the same in every mail client.
var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 0; padding: 24px;">
  <p>Hi{{if .Name}} {{.Name}}{{end}},</p>
  <p>{{.Intro}}</p>
  <p style="font-size: 32px; font-weight: 700; letter-spacing: 6px; margin: 24px 0;">{{.Code}}</p>
  <p>This code expires in 10 minutes. If you didn't request it, you can safely ignore this email.</p>
</body>
</html>`))

// OTPNotifier renders and dispatches verification-code emails. It implements
// mailotp.NotificationSender.
type OTPNotifier struct {
	sender EmailSender
}

// NewOTPNotifier wraps an EmailSender for verification-code delivery.
func NewOTPNotifier(sender EmailSender) *OTPNotifier {
	return &OTPNotifier{sender: sender}
}

// Send renders the code email for the given purpose and dispatches it.
func (n *OTPNotifier) Send(ctx context.Context, emailAddr, name, code string, purpose mailotp.Purpose) error {
	subject, intro, tag := otpCopy(purpose)

	var body strings.Builder
	err := otpTemplate.Execute(&body, struct {
		Name  string
		Intro string
		Code  string
	}{Name: name, Intro: intro, Code: code})
	if err != nil {
		return fmt.Errorf("%w: failed to render otp email: %w", ErrFailedToSendEmail, err)
	}

	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   emailAddr,
		Subject:  subject,
		BodyHTML: body.String(),
		Tag:      tag,
	})
}

func otpCopy(purpose mailotp.Purpose) (subject, intro, tag string) {
	switch purpose {
	case mailotp.PurposeEmailChange:
		return "Confirm your new email address",
			"Use this code to confirm your new email address:",
			"email-change-otp"
	default:
		return "Your verification code",
			"Use this code to finish setting up your account:",
			"registration-otp"
	}
}

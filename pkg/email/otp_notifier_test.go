package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplane/authcore/pkg/email"
	"github.com/shoplane/authcore/pkg/mailotp"
)

type recordingSender struct {
	params []email.SendEmailParams
}

func (r *recordingSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	r.params = append(r.params, params)
	return nil
}

func TestOTPNotifier_Send(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	notifier := email.NewOTPNotifier(sender)

	err := notifier.Send(context.Background(), "user@example.com", "Jamie", "482913", mailotp.PurposeRegistration)
	require.NoError(t, err)
	require.Len(t, sender.params, 1)

	sent := sender.params[0]
	assert.Equal(t, "user@example.com", sent.SendTo)
	assert.Equal(t, "Your verification code", sent.Subject)
	assert.Equal(t, "registration-otp", sent.Tag)
	assert.Contains(t, sent.BodyHTML, "482913")
	assert.Contains(t, sent.BodyHTML, "Jamie")
	assert.Contains(t, sent.BodyHTML, "10 minutes")
}

func TestOTPNotifier_EmailChangeCopy(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	notifier := email.NewOTPNotifier(sender)

	err := notifier.Send(context.Background(), "user@example.com", "", "003917", mailotp.PurposeEmailChange)
	require.NoError(t, err)
	require.Len(t, sender.params, 1)

	sent := sender.params[0]
	assert.Equal(t, "Confirm your new email address", sent.Subject)
	assert.Equal(t, "email-change-otp", sent.Tag)
	assert.Contains(t, sent.BodyHTML, "003917")
	assert.Contains(t, sent.BodyHTML, "Hi,")
}

func TestDevSender_WritesFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Your verification code",
		BodyHTML: "<p>482913</p>",
		Tag:      "registration-otp",
	})
	require.NoError(t, err)
}

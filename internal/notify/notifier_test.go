package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
)

type fakeSender struct {
	sent        []*mail.Msg
	err         error
	hadDeadline bool
}

func (f *fakeSender) Send(ctx context.Context, msg *mail.Msg) error {
	_, f.hadDeadline = ctx.Deadline()
	f.sent = append(f.sent, msg)
	return f.err
}

var testCreds = Credentials{
	Sender:   "reports@example.com",
	Receiver: "boss@example.com",
	Password: "secret",
}

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "master_report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("workbook"), 0644))
	return path
}

func TestNotifySendsReport(t *testing.T) {
	sender := &fakeSender{}
	n, err := NewSMTPNotifier(config.Default().Notify, testCreds, WithSender(sender))
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), writeReport(t)))
	require.Len(t, sender.sent, 1)
	assert.True(t, sender.hadDeadline)

	var buf bytes.Buffer
	_, err = sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "reports@example.com")
	assert.Contains(t, raw, "boss@example.com")
	assert.Contains(t, raw, "Consolidated report")
	assert.Contains(t, raw, `filename="master_report.xlsx"`)
}

func TestNotifyMissingReport(t *testing.T) {
	sender := &fakeSender{}
	n, err := NewSMTPNotifier(config.Default().Notify, testCreds, WithSender(sender))
	require.NoError(t, err)

	err = n.Notify(context.Background(), filepath.Join(t.TempDir(), "gone.xlsx"))
	assert.ErrorIs(t, err, ErrMissingReport)
	assert.Empty(t, sender.sent)
}

func TestNotifySendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	n, err := NewSMTPNotifier(config.Default().Notify, testCreds, WithSender(sender))
	require.NoError(t, err)

	err = n.Notify(context.Background(), writeReport(t))
	assert.ErrorContains(t, err, "connection refused")
	assert.ErrorContains(t, err, "boss@example.com")
}

func TestNewSMTPNotifierBuildsClient(t *testing.T) {
	settings := config.Default().Notify
	settings.SMTPPort = 587

	n, err := NewSMTPNotifier(settings, testCreds)
	require.NoError(t, err)
	assert.IsType(t, clientSender{}, n.sender)
}

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, testCreds.Validate())

	bad := testCreds
	bad.Receiver = "not-an-address"
	assert.Error(t, bad.Validate())

	bad = testCreds
	bad.Password = ""
	_, err := NewSMTPNotifier(config.Default().Notify, bad)
	assert.ErrorContains(t, err, "invalid mail credentials")
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("EMAIL_SENDER", "reports@example.com")
	t.Setenv("EMAIL_RECEIVER", "boss@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, testCreds, creds)

	t.Setenv("EMAIL_PASSWORD", "")
	_, err = CredentialsFromEnv()
	assert.Error(t, err)
}

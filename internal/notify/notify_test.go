// internal/notify/notify_test.go
package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nexoprec/internal/common/config"
	"nexoprec/internal/common/logger"
	"nexoprec/internal/models"
)

type mockSES struct {
	calls     int
	lastInput *ses.SendEmailInput
	err       error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	calls     int
	lastInput *sns.PublishInput
	err       error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	m.lastInput = params
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func testConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "noreply@nexoprec.io"
	cfg.Email.ToEmail = "organizer@nexoprec.io"
	cfg.SMS.Enabled = true
	cfg.SMS.PhoneNumber = "+15550001111"
	cfg.AWS.Region = "us-east-1"
	return cfg
}

func testFixture() (*models.Event, *models.Submission) {
	event := &models.Event{ID: "event-1", Title: "Open Recruitment 2026"}
	sub := &models.Submission{
		ID:        "sub-1",
		EventID:   "event-1",
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	return event, sub
}

func TestNotifier_SubmissionReceived_BothChannels(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	notifier := NewNotifierWithClients(testConfig(), sesMock, snsMock, createTestLogger(t))

	event, sub := testFixture()
	notifier.SubmissionReceived(context.Background(), event, sub)

	assert.Equal(t, 1, sesMock.calls)
	assert.Equal(t, 1, snsMock.calls)

	require.NotNil(t, sesMock.lastInput)
	assert.Equal(t, "organizer@nexoprec.io", sesMock.lastInput.Destination.ToAddresses[0])
	assert.Equal(t, "noreply@nexoprec.io", *sesMock.lastInput.Source)
	assert.Contains(t, *sesMock.lastInput.Message.Subject.Data, "Open Recruitment 2026")

	require.NotNil(t, snsMock.lastInput)
	assert.Equal(t, "+15550001111", *snsMock.lastInput.PhoneNumber)
}

func TestNotifier_SubmissionReceived_EmailDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Email.Enabled = false

	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	notifier := NewNotifierWithClients(cfg, sesMock, snsMock, createTestLogger(t))

	event, sub := testFixture()
	notifier.SubmissionReceived(context.Background(), event, sub)

	assert.Equal(t, 0, sesMock.calls)
	assert.Equal(t, 1, snsMock.calls)
}

func TestNotifier_SubmissionReceived_SendFailureDoesNotPanic(t *testing.T) {
	sesMock := &mockSES{err: errors.New("throttled")}
	snsMock := &mockSNS{err: errors.New("throttled")}
	notifier := NewNotifierWithClients(testConfig(), sesMock, snsMock, createTestLogger(t))

	event, sub := testFixture()
	notifier.SubmissionReceived(context.Background(), event, sub)

	assert.Equal(t, 1, sesMock.calls)
	assert.Equal(t, 1, snsMock.calls)
}

func TestNotifier_AllDisabledIsNoOp(t *testing.T) {
	var cfg config.NotificationConfig
	notifier := NewNotifier(aws.Config{}, cfg, createTestLogger(t))

	event, sub := testFixture()
	notifier.SubmissionReceived(context.Background(), event, sub)
}

func TestNewNotifier_BuildsClientsFromSharedConfig(t *testing.T) {
	notifier := NewNotifier(aws.Config{Region: "us-east-1"}, testConfig(), createTestLogger(t))

	require.NotNil(t, notifier.sesClient)
	require.NotNil(t, notifier.snsClient)
}

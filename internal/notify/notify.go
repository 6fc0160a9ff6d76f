// internal/notify/notify.go
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonaws "nexoprec/internal/common/aws"
	"nexoprec/internal/common/config"
	"nexoprec/internal/common/logger"
	"nexoprec/internal/models"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

var (
	_ SESService = (*commonaws.SESClient)(nil)
	_ SNSService = (*commonaws.SNSClient)(nil)
)

// Notifier tells organizers about new submissions. Sends are
// best-effort; intake never fails because a notification did.
type Notifier struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewNotifier(awsCfg aws.Config, cfg config.NotificationConfig, log logger.Logger) *Notifier {
	n := &Notifier{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}

	if !cfg.Email.Enabled && !cfg.SMS.Enabled {
		return n
	}

	n.sesClient = commonaws.NewSESClient(awsCfg)
	n.snsClient = commonaws.NewSNSClient(awsCfg)
	return n
}

// NewNotifierWithClients wires explicit clients, used by tests.
func NewNotifierWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// SubmissionReceived notifies the organizer about one accepted
// submission over every enabled channel.
func (n *Notifier) SubmissionReceived(ctx context.Context, event *models.Event, sub *models.Submission) {
	subject := fmt.Sprintf("New submission for %s", event.Title)
	body := fmt.Sprintf("A new registration for %q was received at %s (submission %s).",
		event.Title, sub.CreatedAt.Format("2006-01-02 15:04:05"), sub.ID)

	if n.cfg.Email.Enabled && n.cfg.Email.ToEmail != "" {
		if err := n.sendEmail(ctx, n.cfg.Email.ToEmail, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"eventId": event.ID,
				"error":   err.Error(),
			})
		}
	}

	if n.cfg.SMS.Enabled && n.cfg.SMS.PhoneNumber != "" {
		if err := n.sendSMS(ctx, n.cfg.SMS.PhoneNumber, body); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"eventId": event.ID,
				"error":   err.Error(),
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	if n.sesClient == nil {
		return fmt.Errorf("%w: ses client not configured", ErrNotificationSendFailed)
	}
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	if n.snsClient == nil {
		return fmt.Errorf("%w: sns client not configured", ErrNotificationSendFailed)
	}
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

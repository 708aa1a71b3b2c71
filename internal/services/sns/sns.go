// Package sns delivers SMS notifications through AWS SNS.
package sns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"

	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/utils"
)

// ErrInvalidPhone is returned for numbers that cannot be normalized to E.164.
var ErrInvalidPhone = errors.New("invalid phone number")

// Publisher is the subset of the SNS client the sender uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sender implements notifier.Sender for the SMS channel.
type Sender struct {
	client        Publisher
	defaultRegion string
	senderID      string
	logger        *zap.Logger
}

// NewSender creates a Sender backed by a new SNS client.
func NewSender(ctx context.Context, awsRegion, defaultRegion, senderID string) (*Sender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSenderWithClient(sns.NewFromConfig(cfg), defaultRegion, senderID), nil
}

// NewSenderWithClient wraps an existing publisher.
func NewSenderWithClient(client Publisher, defaultRegion, senderID string) *Sender {
	return &Sender{
		client:        client,
		defaultRegion: strings.ToUpper(defaultRegion),
		senderID:      senderID,
		logger:        utils.Component("sns"),
	}
}

// NormalizeE164 parses input in defaultRegion and formats it as E.164.
func NormalizeE164(input, defaultRegion string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidPhone
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, trimmed)
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// Send renders msg as text and publishes it to the recipient phone.
func (s *Sender) Send(ctx context.Context, msg notifier.Message) error {
	phone, err := NormalizeE164(msg.Recipient.Phone, s.defaultRegion)
	if err != nil {
		return err
	}

	rendered, err := notifier.Render(msg)
	if err != nil {
		return err
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(rendered.Text),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish sms: %w", err)
	}

	s.logger.Info("SMS sent",
		zap.String("message_id", msg.ID),
		zap.String("sns_message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

// Package ses delivers email notifications through Amazon SES.
package ses

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/utils"
)

const charset = "UTF-8"

// API is the subset of the SES client the service uses.
type API interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error)
}

var (
	// ErrNoSender is returned when the service has no verified sender address.
	ErrNoSender = errors.New("SES sender email is not configured")
	// ErrQuotaExhausted is reported by HealthCheck once the 24h send quota is used up.
	ErrQuotaExhausted = errors.New("SES 24 hour send quota exhausted")
)

// Options configures a Service.
type Options struct {
	FromEmail string
	// ConfigurationSet routes delivery events (bounces, complaints) to the
	// set's event destinations.
	ConfigurationSet string
	Logger           *zap.Logger
}

// Service sends rendered notifications as SES emails.
type Service struct {
	client API
	opts   Options
	logger *zap.Logger
}

// NewService creates a Service using the default AWS credential chain.
func NewService(ctx context.Context, region string, opts Options) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewServiceWithClient(ses.NewFromConfig(cfg), opts), nil
}

// NewServiceWithClient wraps an existing SES client.
func NewServiceWithClient(client API, opts Options) *Service {
	return &Service{
		client: client,
		opts:   opts,
		logger: utils.OrDefault(opts.Logger, "ses"),
	}
}

// Send renders msg and delivers it to the recipient's email address. The
// message is tagged with its template so SES event destinations can tell lead
// invitations from quote invitations.
func (s *Service) Send(ctx context.Context, msg notifier.Message) error {
	if s.opts.FromEmail == "" {
		return ErrNoSender
	}

	rendered, err := notifier.Render(msg)
	if err != nil {
		return err
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(s.opts.FromEmail),
		Destination: &types.Destination{ToAddresses: []string{msg.Recipient.Address}},
		Message: &types.Message{
			Subject: content(rendered.Subject),
			Body: &types.Body{
				Html: content(rendered.HTML),
				Text: content(rendered.Text),
			},
		},
		Tags: messageTags(msg),
	}
	if s.opts.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(s.opts.ConfigurationSet)
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", msg.Recipient.Address),
			zap.String("template", msg.TemplateID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.String("to", msg.Recipient.Address),
		zap.String("template", msg.TemplateID),
		zap.String("messageId", aws.ToString(out.MessageId)),
	)
	return nil
}

// HealthCheck fails when SES is unreachable or the daily quota is used up.
func (s *Service) HealthCheck(ctx context.Context) error {
	q, err := s.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{})
	if err != nil {
		return fmt.Errorf("failed to get send quota: %w", err)
	}
	if q.Max24HourSend > 0 && q.SentLast24Hours >= q.Max24HourSend {
		return fmt.Errorf("%w: %.0f of %.0f sent", ErrQuotaExhausted, q.SentLast24Hours, q.Max24HourSend)
	}
	return nil
}

func content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String(charset)}
}

// SES tag values allow only ASCII letters, digits, '_' and '-'.
var tagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func messageTags(msg notifier.Message) []types.MessageTag {
	tags := []types.MessageTag{{
		Name:  aws.String("template"),
		Value: aws.String(tagUnsafe.ReplaceAllString(msg.TemplateID, "_")),
	}}
	if msg.ID != "" {
		tags = append(tags, types.MessageTag{
			Name:  aws.String("notification_id"),
			Value: aws.String(tagUnsafe.ReplaceAllString(msg.ID, "_")),
		})
	}
	return tags
}

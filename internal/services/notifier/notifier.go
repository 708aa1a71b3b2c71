// Package notifier delivers builder notifications over email and SMS.
//
// Callers build Messages that name a template and carry flat string data.
// A Mux renders nothing itself; it hands each message to the Sender
// registered for the message channel. Queues (Dispatcher, Inline) sit in
// front of a Notifier and fan a batch of messages out.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stand-lead-engine/internal/metrics"
	"stand-lead-engine/internal/utils"
)

// Channel is a delivery medium.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Recipient identifies who receives a message. Email uses Address, SMS uses Phone.
type Recipient struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Message is one notification to deliver.
type Message struct {
	ID         string            `json:"id"`
	Channel    Channel           `json:"channel"`
	Recipient  Recipient         `json:"recipient"`
	TemplateID string            `json:"template_id"`
	Data       map[string]string `json:"data"`
}

// Destination returns the channel-specific address of the recipient.
func (m Message) Destination() string {
	if m.Channel == ChannelSMS {
		return m.Recipient.Phone
	}
	return m.Recipient.Address
}

// Result reports the outcome of one delivery.
type Result struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Notifier delivers a single message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) Result
}

// Sender is a channel-specific transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Queue delivers a batch of messages and returns one result per message, in order.
type Queue interface {
	Dispatch(ctx context.Context, msgs []Message) []Result
}

var (
	ErrNoSender        = errors.New("no sender registered for channel")
	ErrNoDestination   = errors.New("recipient has no address for channel")
	ErrUnknownTemplate = errors.New("unknown notification template")
)

// Mux routes messages to the Sender registered for their channel.
type Mux struct {
	senders map[Channel]Sender
	logger  *zap.Logger
}

// NewMux creates an empty Mux.
func NewMux(logger *zap.Logger) *Mux {
	return &Mux{
		senders: make(map[Channel]Sender),
		logger:  utils.OrDefault(logger, "notifier"),
	}
}

// Handle registers s for ch, replacing any previous sender.
func (m *Mux) Handle(ch Channel, s Sender) {
	m.senders[ch] = s
}

// Notify sends msg through its channel sender. It never panics on a missing
// sender; the failure is reported in the Result.
func (m *Mux) Notify(ctx context.Context, msg Message) Result {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	err := m.send(ctx, msg)

	status := "sent"
	if err != nil {
		status = "failed"
	}
	metrics.Notifications.WithLabelValues(string(msg.Channel), status).Inc()

	if err != nil {
		m.logger.Warn("Notification failed",
			zap.String("message_id", msg.ID),
			zap.String("channel", string(msg.Channel)),
			zap.String("template", msg.TemplateID),
			zap.String("to", msg.Destination()),
			zap.Error(err),
		)
		return Result{MessageID: msg.ID, Error: err.Error()}
	}

	m.logger.Debug("Notification sent",
		zap.String("message_id", msg.ID),
		zap.String("channel", string(msg.Channel)),
		zap.String("template", msg.TemplateID),
	)
	return Result{MessageID: msg.ID, Success: true}
}

func (m *Mux) send(ctx context.Context, msg Message) error {
	s, ok := m.senders[msg.Channel]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSender, msg.Channel)
	}
	if msg.Destination() == "" {
		return ErrNoDestination
	}
	return s.Send(ctx, msg)
}

// Inline delivers a batch synchronously, one message after another.
type Inline struct {
	Notifier Notifier
}

// Dispatch implements Queue.
func (q Inline) Dispatch(ctx context.Context, msgs []Message) []Result {
	results := make([]Result, len(msgs))
	for i, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if err := ctx.Err(); err != nil {
			results[i] = Result{MessageID: msg.ID, Error: err.Error()}
			continue
		}
		results[i] = q.Notifier.Notify(ctx, msg)
	}
	return results
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Logger *zap.Logger
}

// Send implements Sender.
func (s LogSender) Send(_ context.Context, msg Message) error {
	r, err := Render(msg)
	if err != nil {
		return err
	}

	utils.OrDefault(s.Logger, "notifier").Info("Notification (log only)",
		zap.String("message_id", msg.ID),
		zap.String("channel", string(msg.Channel)),
		zap.String("to", msg.Destination()),
		zap.String("subject", r.Subject),
		zap.String("body", r.Text),
	)
	return nil
}

package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func leadMessage(to string) Message {
	return Message{
		Channel:    ChannelEmail,
		Recipient:  Recipient{Address: to, Name: "Spree Messebau"},
		TemplateID: TemplateLeadNotification,
		Data: map[string]string{
			"projectName":   "IFA Berlin 2025",
			"clientCompany": "Acme Audio",
			"location":      "Berlin, Germany",
			"budget":        "mid-range",
			"standSize":     "120",
			"matchScore":    "96",
			"leadUrl":       "http://localhost:3000/builder/leads/lead-1",
			"leadId":        "lead-1",
		},
	}
}

func TestMuxRoutesByChannel(t *testing.T) {
	email := &fakeSender{}
	sms := &fakeSender{}
	mux := NewMux(zap.NewNop())
	mux.Handle(ChannelEmail, email)
	mux.Handle(ChannelSMS, sms)

	res := mux.Notify(context.Background(), leadMessage("a@example.com"))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.MessageID)

	smsMsg := Message{Channel: ChannelSMS, Recipient: Recipient{Phone: "+4930123456"}, TemplateID: TemplateLeadSMS}
	res = mux.Notify(context.Background(), smsMsg)
	assert.True(t, res.Success)

	assert.Equal(t, 1, email.count())
	assert.Equal(t, 1, sms.count())
}

func TestMuxFailures(t *testing.T) {
	mux := NewMux(zap.NewNop())

	res := mux.Notify(context.Background(), leadMessage("a@example.com"))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, ErrNoSender.Error())

	mux.Handle(ChannelEmail, &fakeSender{err: errors.New("throttled")})
	res = mux.Notify(context.Background(), leadMessage("a@example.com"))
	assert.False(t, res.Success)
	assert.Equal(t, "throttled", res.Error)

	res = mux.Notify(context.Background(), leadMessage(""))
	assert.False(t, res.Success)
	assert.Equal(t, ErrNoDestination.Error(), res.Error)
}

func TestInlineDispatch(t *testing.T) {
	sender := &fakeSender{}
	mux := NewMux(zap.NewNop())
	mux.Handle(ChannelEmail, sender)

	results := Inline{Notifier: mux}.Dispatch(context.Background(), []Message{leadMessage("a@example.com"), leadMessage("")})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, 1, sender.count())
}

func TestInlineDispatchCancelled(t *testing.T) {
	sender := &fakeSender{}
	mux := NewMux(zap.NewNop())
	mux.Handle(ChannelEmail, sender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Inline{Notifier: mux}.Dispatch(ctx, []Message{leadMessage("a@example.com")})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, 0, sender.count())
}

func TestRenderLeadNotification(t *testing.T) {
	r, err := Render(leadMessage("a@example.com"))
	require.NoError(t, err)

	assert.Equal(t, "New Exhibition Lead: IFA Berlin 2025 in Berlin, Germany", r.Subject)
	assert.Contains(t, r.HTML, "Acme Audio")
	assert.Contains(t, r.HTML, `href="http://localhost:3000/builder/leads/lead-1"`)
	assert.Contains(t, r.Text, "Match score: 96%")
	assert.Contains(t, r.Text, "Event date: \n")
}

func TestRenderEscapesHTML(t *testing.T) {
	msg := leadMessage("a@example.com")
	msg.Data["clientCompany"] = "<script>alert(1)</script>"

	r, err := Render(msg)
	require.NoError(t, err)
	assert.NotContains(t, r.HTML, "<script>")
	assert.Contains(t, r.Text, "<script>")
}

func TestRenderSMS(t *testing.T) {
	r, err := Render(Message{
		Channel:    ChannelSMS,
		TemplateID: TemplateLeadSMS,
		Data:       map[string]string{"clientCompany": "Acme", "location": "Berlin, Germany", "budget": "premium", "leadUrl": "https://x/l/1"},
	})
	require.NoError(t, err)

	assert.Empty(t, r.Subject)
	assert.Empty(t, r.HTML)
	assert.Equal(t, "NEW LEAD: Acme needs an exhibition stand in Berlin, Germany. Budget: premium. Log in to respond: https://x/l/1", r.Text)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(Message{TemplateID: "welcome"})
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{Logger: zap.NewNop()}.Send(context.Background(), leadMessage("a@example.com")))
	assert.Error(t, LogSender{Logger: zap.NewNop()}.Send(context.Background(), Message{TemplateID: "nope"}))
}

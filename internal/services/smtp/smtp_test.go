package smtp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stand-lead-engine/internal/services/notifier"
)

func TestNewSenderRequiresHost(t *testing.T) {
	_, err := NewSender(Options{FromEmail: "leads@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	s, err := NewSender(Options{Host: "smtp.example.com", FromEmail: "leads@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.opts.Port)
}

func TestBuildMessage(t *testing.T) {
	s, err := NewSender(Options{Host: "smtp.example.com", FromEmail: "leads@example.com", FromName: "Stand Leads"})
	require.NoError(t, err)

	m, err := s.build(notifier.Message{
		Channel:    notifier.ChannelEmail,
		Recipient:  notifier.Recipient{Address: "builder@example.com", Name: "Spree Messebau"},
		TemplateID: notifier.TemplateLeadNotification,
		Data:       map[string]string{"projectName": "IFA Berlin", "location": "Berlin, Germany"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: New Exhibition Lead: IFA Berlin in Berlin, Germany")
	assert.Contains(t, raw, "builder@example.com")
	assert.Contains(t, raw, "text/html")
}

func TestBuildRejectsBadAddress(t *testing.T) {
	s, err := NewSender(Options{Host: "smtp.example.com", FromEmail: "leads@example.com"})
	require.NoError(t, err)

	_, err = s.build(notifier.Message{
		Recipient:  notifier.Recipient{Address: "not an address"},
		TemplateID: notifier.TemplateLeadNotification,
	})
	assert.Error(t, err)
}

package notifier

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// Template IDs.
const (
	TemplateLeadNotification = "lead_notification"
	TemplateQuoteMatch       = "quote_match"
	TemplateLeadSMS          = "lead_sms"
)

// Rendered is a message rendered for delivery. SMS templates leave Subject and HTML empty.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type messageTemplate struct {
	subject *template.Template
	html    *htmltemplate.Template
	text    *template.Template
}

const emailStyle = `body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f3b57; color: white; padding: 24px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        .detail-label { font-size: 12px; color: #999; }
        .detail-value { font-weight: bold; color: #333; margin-bottom: 10px; }
        .score-badge { display: inline-block; background: #28a745; color: white; padding: 5px 12px; border-radius: 20px; font-weight: bold; }
        .cta-button { display: inline-block; background: #1f3b57; color: white; padding: 14px 28px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 20px; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }`

const leadNotificationHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>New Exhibition Lead</h1>
        <p>Hi {{.builderName}}, a client is looking for a stand builder in {{.location}}</p>
    </div>
    <div class="content">
        <div class="detail-label">Project</div>
        <div class="detail-value">{{.projectName}}</div>
        <div class="detail-label">Client</div>
        <div class="detail-value">{{.clientCompany}}</div>
        <div class="detail-label">Event date</div>
        <div class="detail-value">{{.eventDate}}</div>
        <div class="detail-label">Stand size</div>
        <div class="detail-value">{{.standSize}} sqm</div>
        <div class="detail-label">Budget</div>
        <div class="detail-value">{{.budget}}</div>
        <div class="detail-label">Match score</div>
        <div class="detail-value"><span class="score-badge">{{.matchScore}}%</span></div>
        <div style="text-align: center;">
            <a href="{{.leadUrl}}" class="cta-button">View Lead</a>
        </div>
    </div>
    <div class="footer">
        <p>Lead {{.leadId}}. Manage all your leads from the <a href="{{.dashboardUrl}}">builder dashboard</a>.</p>
    </div>
</body>
</html>`

const leadNotificationText = `Hi {{.builderName}},

A new exhibition lead matches your profile.

Project: {{.projectName}}
Client: {{.clientCompany}}
Location: {{.location}}
Event date: {{.eventDate}}
Stand size: {{.standSize}} sqm
Budget: {{.budget}}
Match score: {{.matchScore}}%

View the lead: {{.leadUrl}}
Dashboard: {{.dashboardUrl}}
`

const quoteMatchHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>New Quote Request</h1>
        <p>Hi {{.builderName}}, {{.clientCompany}} is requesting quotes for {{.tradeShow}}</p>
    </div>
    <div class="content">
        <div class="detail-label">Stand size</div>
        <div class="detail-value">{{.standSize}} sqm</div>
        <div class="detail-label">Budget</div>
        <div class="detail-value">{{.budget}}</div>
        <div class="detail-label">Match score</div>
        <div class="detail-value"><span class="score-badge">{{.matchScore}}%</span></div>
        <div class="detail-label">Estimated project cost</div>
        <div class="detail-value">{{.estimatedCost}}</div>
        <div style="text-align: center;">
            <a href="{{.dashboardUrl}}" class="cta-button">Respond to Request</a>
        </div>
    </div>
    <div class="footer">
        <p>Request {{.requestId}}</p>
    </div>
</body>
</html>`

const quoteMatchText = `Hi {{.builderName}},

{{.clientCompany}} is requesting quotes for {{.tradeShow}}.

Stand size: {{.standSize}} sqm
Budget: {{.budget}}
Match score: {{.matchScore}}%
Estimated project cost: {{.estimatedCost}}

Respond from your dashboard: {{.dashboardUrl}}
Request {{.requestId}}
`

const leadSMSText = `NEW LEAD: {{.clientCompany}} needs an exhibition stand in {{.location}}. Budget: {{.budget}}. Log in to respond: {{.leadUrl}}`

var templates = map[string]messageTemplate{
	TemplateLeadNotification: {
		subject: mustText("lead_notification.subject", "New Exhibition Lead: {{.projectName}} in {{.location}}"),
		html:    mustHTML("lead_notification.html", leadNotificationHTML),
		text:    mustText("lead_notification.text", leadNotificationText),
	},
	TemplateQuoteMatch: {
		subject: mustText("quote_match.subject", "Quote request for {{.tradeShow}} from {{.clientCompany}}"),
		html:    mustHTML("quote_match.html", quoteMatchHTML),
		text:    mustText("quote_match.text", quoteMatchText),
	},
	TemplateLeadSMS: {
		text: mustText("lead_sms.text", leadSMSText),
	},
}

func mustText(name, body string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=zero").Parse(body))
}

func mustHTML(name, body string) *htmltemplate.Template {
	return htmltemplate.Must(htmltemplate.New(name).Option("missingkey=zero").Parse(body))
}

// Render renders msg with its named template. Missing data keys render empty.
func Render(msg Message) (Rendered, error) {
	t, ok := templates[msg.TemplateID]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, msg.TemplateID)
	}

	data := msg.Data
	if data == nil {
		data = map[string]string{}
	}

	var out Rendered
	var err error

	if t.subject != nil {
		if out.Subject, err = execText(t.subject, data); err != nil {
			return Rendered{}, err
		}
	}
	if t.html != nil {
		var buf bytes.Buffer
		if err := t.html.Execute(&buf, data); err != nil {
			return Rendered{}, fmt.Errorf("failed to render %s: %w", t.html.Name(), err)
		}
		out.HTML = buf.String()
	}
	if out.Text, err = execText(t.text, data); err != nil {
		return Rendered{}, err
	}

	return out, nil
}

func execText(t *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/octobees/crm-automations/api/internal/entity"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewSMTPSender builds an SMTPSender.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, password: password, from: from}
}

// Send dials the relay and delivers one message.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail via smtp: %w", err)
	}
	return nil
}

var _ Sender = (*SMTPSender)(nil)

var followUpTemplate = template.Must(template.New("follow_up").Parse(`
<p>Hi {{.Name}},</p>
<p>Thanks again for reaching out to us{{if .Company}} on behalf of {{.Company}}{{end}}.
We wanted to check in and see whether you have any questions we can help with.</p>
<p>Just reply to this email and we will pick it up from there.</p>
<p>The Octobees team</p>
`))

var escalationTemplate = template.Must(template.New("escalation").Parse(`
<p>Lead <strong>{{.Name}}</strong> ({{.Email}}) has been waiting without
progress since {{.StaleSince}}.</p>
<p>Status: {{.Status}}, score: {{.Score}}{{if .Owner}}, owner: {{.Owner}}{{end}}.</p>
<p>Please review and take over the conversation.</p>
`))

// FollowUpEmail renders the check-in mail for a quiet lead.
func FollowUpEmail(lead *entity.Lead) (subject, body string, err error) {
	data := struct {
		Name    string
		Company string
	}{
		Name: lead.FullName(),
	}
	if lead.Company != nil {
		data.Company = *lead.Company
	}

	var buf bytes.Buffer
	if err := followUpTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render follow-up mail: %w", err)
	}
	return fmt.Sprintf("Checking in, %s", lead.FullName()), buf.String(), nil
}

// EscalationEmail renders the stale-lead alert sent to the sales admin.
func EscalationEmail(lead *entity.Lead) (subject, body string, err error) {
	data := struct {
		Name       string
		Email      string
		Status     string
		Score      int
		Owner      string
		StaleSince string
	}{
		Name:       lead.FullName(),
		Email:      lead.Email,
		Status:     lead.Status,
		Score:      lead.Score,
		StaleSince: lead.UpdatedAt.Format("2006-01-02 15:04 MST"),
	}
	if lead.AssignedTo != nil {
		data.Owner = *lead.AssignedTo
	}

	var buf bytes.Buffer
	if err := escalationTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render escalation mail: %w", err)
	}
	return fmt.Sprintf("Stale lead needs attention: %s", lead.FullName()), buf.String(), nil
}

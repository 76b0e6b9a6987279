package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// Message is a single outgoing email
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

var resetHTML = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>A password reset was requested for roll number <strong>{{.RollNo}}</strong>.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>The link expires in {{.Expiry}}. If you did not ask for a reset you can ignore this email.</p>
`))

// PasswordResetMessage builds the reset email for one student
func PasswordResetMessage(to, name, rollNo, link string, expiry time.Duration) (*Message, error) {
	data := struct {
		Name   string
		RollNo string
		Link   string
		Expiry time.Duration
	}{name, rollNo, link, expiry}

	var html bytes.Buffer
	if err := resetHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render reset email: %w", err)
	}

	text := fmt.Sprintf("Hello %s,\n\nA password reset was requested for roll number %s.\nOpen this link to choose a new password:\n%s\n\nThe link expires in %s.\n",
		name, rollNo, link, expiry)

	return &Message{
		To:      to,
		ToName:  name,
		Subject: "Reset your portal password",
		Text:    text,
		HTML:    html.String(),
	}, nil
}

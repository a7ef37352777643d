package alert

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// Message is the rendered content shared by both channels.
type Message struct {
	Subject string
	Body    string
}

type templateData struct {
	Identity string
	Time     string
}

var (
	subjectTmpl = template.Must(template.New("subject").Parse(
		`LockGuard - Intrusion alert for {{.Identity}}`))

	bodyTmpl = template.Must(template.New("body").Parse(
		`Hello {{.Identity}},

Your LockGuard door lock reported a possible intrusion at {{.Time}}.

If this was not you, check the door and review recent access attempts on
your dashboard. You can change your access code from the dashboard at any
time.

LockGuard
`))
)

// Render produces the alert text for identity at the given time.
func Render(identity string, at time.Time) (Message, error) {
	data := templateData{Identity: identity, Time: at.UTC().Format(time.RFC1123)}

	var subject, body bytes.Buffer
	if err := subjectTmpl.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("rendering subject: %w", err)
	}
	if err := bodyTmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("rendering body: %w", err)
	}
	return Message{Subject: subject.String(), Body: body.String()}, nil
}

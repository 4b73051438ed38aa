package mailer

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	gomail "gopkg.in/mail.v2"
)

type SMTPMailer struct {
	fromEmail string
	host      string
	port      int
	username  string
	password  string
}

func NewSMTP(fromEmail, host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		fromEmail: fromEmail,
		host:      host,
		port:      port,
		username:  username,
		password:  password,
	}
}

// Send renders the named template and delivers it, retrying transient
// failures a few times before giving up. The template must define
// "subject" and "body" blocks.
func (m *SMTPMailer) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", fmt.Sprintf("%s <%s>", FromName, m.fromEmail))
	message.SetHeader("To", email)
	message.SetHeader("Subject", subject.String())
	message.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	var retryErr error
	for i := 0; i < maxRetries; i++ {
		retryErr = dialer.DialAndSend(message)
		if retryErr == nil {
			return 200, nil
		}
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return -1, fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, retryErr)
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-content-backend/models"
)

// Notifier tells the site owner about a new contact submission.
type Notifier interface {
	Notify(ctx context.Context, submission models.ContactSubmission) error
}

var contactEmailTemplate = template.Must(template.New("contact").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<h2>New Contact Form Submission</h2>
<p><strong>From:</strong> {{.Name}} ({{.Email}})</p>
{{if .Company}}<p><strong>Company:</strong> {{.Company}}</p>
{{end}}<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{range $i, $line := lines .Message}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
<hr>
<p>Submitted at: {{.CreatedAt.Format "2006-01-02 15:04:05 MST"}}</p>
`))

// EmailNotifier mails each submission to the owner with Reply-To set to the sender.
type EmailNotifier struct {
	mailer Mailer
	to     []string
}

func NewEmailNotifier(mailer Mailer, to ...string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, to: to}
}

func (n *EmailNotifier) Notify(ctx context.Context, submission models.ContactSubmission) error {
	var body bytes.Buffer
	if err := contactEmailTemplate.Execute(&body, submission); err != nil {
		return eris.Wrap(err, "rendering contact email")
	}
	_, err := n.mailer.Send(ctx, Email{
		To:      n.to,
		Subject: "Portfolio Contact: " + submission.Subject,
		HTML:    body.String(),
		ReplyTo: submission.Email,
	})
	return err
}

// MessageCreator is the part of the Twilio API used to send SMS.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// NewTwilioClient returns the Twilio messaging API for cfg.
func NewTwilioClient(cfg TwilioConfig) MessageCreator {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return client.Api
}

// SMSNotifier texts a one-line summary of each submission.
type SMSNotifier struct {
	api  MessageCreator
	from string
	to   string
}

func NewSMSNotifier(api MessageCreator, from, to string) *SMSNotifier {
	return &SMSNotifier{api: api, from: from, to: to}
}

const maxSMSLength = 320

func (n *SMSNotifier) Notify(ctx context.Context, submission models.ContactSubmission) error {
	body := fmt.Sprintf("New contact from %s <%s>: %s", submission.Name, submission.Email, submission.Subject)
	if r := []rune(body); len(r) > maxSMSLength {
		body = string(r[:maxSMSLength])
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)

	// The Twilio client takes no context, so the call is raced against ctx.
	done := make(chan error, 1)
	go func() {
		_, err := n.api.CreateMessage(params)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return eris.Wrap(err, "sending contact SMS")
		}
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "sending contact SMS")
	}
}

// MultiNotifier fans a submission out to every notifier concurrently and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, submission models.ContactSubmission) error {
	var (
		mu       sync.Mutex
		failures []error
		g        errgroup.Group
	)
	for _, n := range m {
		n := n
		g.Go(func() error {
			if err := n.Notify(ctx, submission); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(failures...)
}

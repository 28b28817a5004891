package results

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/abhisek/secprep/internal/exam"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailReporter mails the candidate a copy of their result through SendGrid.
type EmailReporter struct {
	key  string
	host string
	from *sgmail.Email
}

// NewEmailReporter creates a reporter sending from fromAddr. host overrides
// the SendGrid API host; empty uses the public API.
func NewEmailReporter(key, fromName, fromAddr, host string) *EmailReporter {
	if host == "" {
		host = sendgridHost
	}
	return &EmailReporter{
		key:  key,
		host: host,
		from: sgmail.NewEmail(fromName, fromAddr),
	}
}

// Report implements exam.Reporter.
func (r *EmailReporter) Report(ctx context.Context, p exam.Payload) (*exam.Receipt, error) {
	req := sendgrid.GetRequest(r.key, sendgridEndpoint, r.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(r.prepare(p))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return &exam.Receipt{Message: res.Body}, fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	return &exam.Receipt{Success: true, Message: "receipt emailed to " + p.Email}, nil
}

func (r *EmailReporter) prepare(p exam.Payload) *sgmail.SGMailV3 {
	pers := sgmail.NewPersonalization()
	pers.Subject = fmt.Sprintf("[secprep] Your %s result: %d/%d", p.TestType, p.Score, p.TotalQuestions)
	pers.AddTos(sgmail.NewEmail(p.Name, p.Email))

	text := fmt.Sprintf("Hi %s,\n\nYou scored %d out of %d on %s in %s.\n",
		p.Name, p.Score, p.TotalQuestions, p.TestType, formatSeconds(p.TimeTaken))
	htmlBody := fmt.Sprintf("<p>Hi %s,</p><p>You scored <strong>%d out of %d</strong> on %s in %s.</p>",
		html.EscapeString(p.Name), p.Score, p.TotalQuestions, html.EscapeString(p.TestType), formatSeconds(p.TimeTaken))

	m := sgmail.NewV3Mail()
	m.SetFrom(r.from)
	m.AddPersonalizations(pers)
	m.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", htmlBody),
	)
	return m
}

func formatSeconds(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

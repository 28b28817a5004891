package results

import (
	"time"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/store"
)

// Options selects and configures the reporters built by New.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	SendgridKey  string
	SendgridHost string
	FromName     string
	FromAddress  string
}

// Reporter names recorded with result events.
const (
	NameAPI   = "api"
	NameLocal = "local"
	NameEmail = "email"
)

// New builds the reporter chain: the course API when BaseURL is set,
// otherwise local-only storage, plus an email receipt when a SendGrid key
// and sender are configured. Every reporter is recorded in events.
func New(opts Options, events store.EventRepo) exam.Reporter {
	var primary exam.Reporter
	if opts.BaseURL != "" {
		primary = WithRecording(NewHTTPReporter(opts.BaseURL, opts.Token, opts.Timeout), NameAPI, events)
	} else {
		primary = WithRecording(Offline{}, NameLocal, events)
	}

	f := &Fanout{Primary: primary}
	if opts.SendgridKey != "" && opts.FromAddress != "" {
		email := NewEmailReporter(opts.SendgridKey, opts.FromName, opts.FromAddress, opts.SendgridHost)
		f.Secondary = append(f.Secondary, WithRecording(email, NameEmail, events))
	}
	return f
}

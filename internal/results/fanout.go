package results

import (
	"context"
	"strings"

	"github.com/abhisek/secprep/internal/exam"
)

// Fanout delivers to a primary reporter and, once it succeeds, to any
// secondary reporters. Only the primary decides success; secondary
// failures are appended to the receipt message as warnings.
type Fanout struct {
	Primary   exam.Reporter
	Secondary []exam.Reporter
}

// Report implements exam.Reporter.
func (f *Fanout) Report(ctx context.Context, p exam.Payload) (*exam.Receipt, error) {
	receipt, err := f.Primary.Report(ctx, p)
	if err != nil || receipt == nil || !receipt.Success {
		return receipt, err
	}

	var warnings []string
	for _, r := range f.Secondary {
		rc, err := r.Report(ctx, p)
		switch {
		case err != nil:
			warnings = append(warnings, err.Error())
		case rc == nil || !rc.Success:
			msg := "rejected"
			if rc != nil && rc.Message != "" {
				msg = rc.Message
			}
			warnings = append(warnings, msg)
		}
	}
	if len(warnings) == 0 {
		return receipt, nil
	}

	return withWarning(receipt, strings.Join(warnings, "; ")), nil
}

// withWarning returns a copy of receipt with note appended to its message.
func withWarning(receipt *exam.Receipt, note string) *exam.Receipt {
	out := *receipt
	note = "warning: " + note
	if out.Message == "" {
		out.Message = note
	} else {
		out.Message += " (" + note + ")"
	}
	return &out
}

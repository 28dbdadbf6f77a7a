package port

import "context"

// ReportEmail is a rendered analysis report addressed to one recipient.
type ReportEmail struct {
	ToEmail  string
	Subject  string
	HTMLBody string
	TextBody string
}

// ReportMailer delivers rendered analysis reports.
type ReportMailer interface {
	SendReport(ctx context.Context, email ReportEmail) error
}

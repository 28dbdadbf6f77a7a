// Package noop provides a ReportMailer that only logs.
package noop

import (
	"context"

	"github.com/sirupsen/logrus"

	"ppm/internal/port"
)

type reportMailer struct{}

// NewReportMailer creates a ReportMailer that logs the report instead of sending it.
func NewReportMailer() port.ReportMailer {
	return reportMailer{}
}

func (reportMailer) SendReport(_ context.Context, email port.ReportEmail) error {
	logrus.WithFields(logrus.Fields{
		"to":      email.ToEmail,
		"subject": email.Subject,
		"bytes":   len(email.HTMLBody),
	}).Info("[NOOP EMAIL] analysis report")
	return nil
}

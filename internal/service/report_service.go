package service

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/sirupsen/logrus"

	"ppm/internal/domain"
	"ppm/internal/port"
	"ppm/internal/render"
	"ppm/internal/session"
)

// StoredReport is the analysis currently held by a session.
type StoredReport struct {
	FileName string
	Analysis *domain.AnalysisResult
}

// ReportService exposes the session's analysis for export and sharing.
type ReportService interface {
	Load(ctx context.Context, sessionID string) (*StoredReport, error)
	Share(ctx context.Context, sessionID, toEmail string) error
}

type reportService struct {
	store  port.SessionStore
	mailer port.ReportMailer
}

// NewReportService creates a new ReportService implementation.
func NewReportService(store port.SessionStore, mailer port.ReportMailer) ReportService {
	return &reportService{store: store, mailer: mailer}
}

func (s *reportService) Load(ctx context.Context, sessionID string) (*StoredReport, error) {
	state := session.NewState(s.store, sessionID)
	analysis, err := state.Analysis(ctx)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, domain.ErrNotFound
	}
	name, err := state.FileName(ctx)
	if err != nil {
		return nil, err
	}
	return &StoredReport{FileName: name, Analysis: analysis}, nil
}

func (s *reportService) Share(ctx context.Context, sessionID, toEmail string) error {
	addr, err := mail.ParseAddress(toEmail)
	if err != nil {
		return domain.ErrInvalidEmail
	}

	stored, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	report := render.Render(stored.Analysis)
	if report.Details != nil {
		report.Details.Visible = true
	}
	title := "Analysis report"
	if stored.FileName != "" {
		title += " - " + stored.FileName
	}
	htmlBody, err := render.EmailHTML(title, report)
	if err != nil {
		return err
	}

	if err := s.mailer.SendReport(ctx, port.ReportEmail{
		ToEmail:  addr.Address,
		Subject:  title,
		HTMLBody: htmlBody,
		TextBody: render.Text(report),
	}); err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	logrus.Infof("reportService.Share: sent report for session %s to %s", sessionID, addr.Address)
	return nil
}

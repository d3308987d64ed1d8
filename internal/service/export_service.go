package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/scholarship-portal-api/internal/models"
	appErrors "github.com/noah-isme/scholarship-portal-api/pkg/errors"
	"github.com/noah-isme/scholarship-portal-api/pkg/export"
)

// ExportFormat identifies a rendered export type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type applicationLister interface {
	ListByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.Application, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type letterArchive interface {
	Save(filename string, data []byte) error
	Read(filename string) ([]byte, error)
}

type letterLinkSigner interface {
	Generate(refID, filename string) (string, time.Time, error)
	Parse(token string) (refID, filename string, err error)
}

// ExportService renders application listings and sanction letters for the
// bureaus. With an archive attached it also keeps a copy of every issued
// letter and hands out signed, time-limited download links.
type ExportService struct {
	applications applicationLister
	csv          csvRenderer
	pdf          pdfRenderer
	archive      letterArchive
	signer       letterLinkSigner
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(applications applicationLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{applications: applications, csv: csv, pdf: pdf, logger: logger}
}

// EnableLetterArchive attaches persistent letter storage and a link signer.
func (s *ExportService) EnableLetterArchive(archive letterArchive, signer letterLinkSigner) {
	s.archive = archive
	s.signer = signer
}

var exportHeaders = []string{"URN", "Applicant", "Scholarship", "Status", "Amount", "Transfer Amount", "Submitted"}

// Applications renders a status-scoped listing as CSV or PDF bytes plus the
// matching content type.
func (s *ExportService) Applications(ctx context.Context, status models.ApplicationStatus, format ExportFormat) ([]byte, string, error) {
	if !status.Valid() {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}

	apps, err := s.applications.ListByStatus(ctx, status)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	dataset := export.Dataset{Headers: exportHeaders}
	for _, app := range apps {
		row := map[string]string{
			"URN":             app.URN,
			"Applicant":       app.Details.FullName,
			"Status":          string(app.Status),
			"Transfer Amount": formatAmount(app.TransferAmount),
			"Submitted":       app.CreatedAt.Format("2006-01-02"),
		}
		if app.Scholarship != nil {
			row["Scholarship"] = app.Scholarship.Title
			row["Amount"] = strconv.FormatInt(app.Scholarship.Amount, 10)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	switch format {
	case FormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case FormatPDF:
		title := fmt.Sprintf("%s applications", strings.ToLower(string(status)))
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
}

// SanctionLetter renders the disbursement letter for a funded application.
// When an archive is attached the rendered letter is persisted alongside.
func (s *ExportService) SanctionLetter(ctx context.Context, applicationID string) ([]byte, error) {
	app, err := s.loadFunded(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	payload, err := s.renderLetter(app)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.Save(letterFilename(app.URN), payload); err != nil {
			s.logger.Warn("failed to archive sanction letter", zap.String("urn", app.URN), zap.Error(err))
		}
	}
	return payload, nil
}

// SanctionLetterLink issues a signed download token for a funded
// application's letter, archiving the letter first if needed.
func (s *ExportService) SanctionLetterLink(ctx context.Context, applicationID string) (string, time.Time, error) {
	if s.archive == nil || s.signer == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "letter downloads by link are not enabled")
	}

	app, err := s.loadFunded(ctx, applicationID)
	if err != nil {
		return "", time.Time{}, err
	}

	filename := letterFilename(app.URN)
	if _, err := s.archive.Read(filename); err != nil {
		payload, err := s.renderLetter(app)
		if err != nil {
			return "", time.Time{}, err
		}
		if err := s.archive.Save(filename, payload); err != nil {
			return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive sanction letter")
		}
	}

	token, expiresAt, err := s.signer.Generate(app.ID, filename)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign letter link")
	}
	return token, expiresAt, nil
}

// OpenLetter resolves a signed token to the archived letter bytes.
func (s *ExportService) OpenLetter(token string) ([]byte, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
	}

	_, filename, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired letter link")
	}

	payload, err := s.archive.Read(filename)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "letter not found")
	}
	return payload, nil
}

func (s *ExportService) loadFunded(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch application")
	}
	if app.Status != models.StatusFundingApproved {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "sanction letter is only available for funded applications")
	}
	return app, nil
}

func (s *ExportService) renderLetter(app *models.Application) ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"Field", "Value"},
		Rows: []map[string]string{
			{"Field": "Reference Number", "Value": app.URN},
			{"Field": "Applicant", "Value": app.Details.FullName},
			{"Field": "Institution", "Value": app.Details.Institution},
			{"Field": "Bank Account", "Value": app.Details.BankAccount},
			{"Field": "IFSC", "Value": app.Details.IFSCCode},
			{"Field": "Sanctioned Amount", "Value": formatAmount(app.TransferAmount)},
		},
	}
	if app.Scholarship != nil {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Field": "Scholarship", "Value": app.Scholarship.Title,
		})
	}
	if app.FundingDecidedAt != nil {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Field": "Sanctioned On", "Value": app.FundingDecidedAt.Format("2006-01-02"),
		})
	}

	payload, err := s.pdf.Render(dataset, fmt.Sprintf("Sanction Letter %s", app.URN))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render sanction letter")
	}
	return payload, nil
}

func letterFilename(urn string) string {
	return urn + ".pdf"
}

func formatAmount(amount *int64) string {
	if amount == nil {
		return ""
	}
	return strconv.FormatInt(*amount, 10)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/export"
)

type enrollmentDetailReader interface {
	ListDetailsForStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// TranscriptFormat names a supported transcript document format.
type TranscriptFormat string

const (
	TranscriptFormatCSV TranscriptFormat = "csv"
	TranscriptFormatPDF TranscriptFormat = "pdf"
)

// Transcript is a rendered transcript document ready to serve.
type Transcript struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// TranscriptService renders a student's enrollment history as a document.
type TranscriptService struct {
	enrollments enrollmentDetailReader
	users       userReader
	renderers   map[TranscriptFormat]export.Renderer
	logger      *zap.Logger
}

// NewTranscriptService constructs TranscriptService with the default CSV and
// PDF renderers.
func NewTranscriptService(enrollments enrollmentDetailReader, users userReader, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		enrollments: enrollments,
		users:       users,
		renderers: map[TranscriptFormat]export.Renderer{
			TranscriptFormatCSV: export.NewCSVRenderer(),
			TranscriptFormatPDF: export.NewPDFRenderer(),
		},
		logger: logger,
	}
}

// Generate renders the transcript of one student in the requested format.
func (s *TranscriptService) Generate(ctx context.Context, studentID string, format TranscriptFormat) (*Transcript, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported transcript format %q", format))
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	details, err := s.enrollments.ListDetailsForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	dataset := export.Dataset{
		Headers: []string{"Course", "Status", "Enrolled At", "Final Grade"},
		Rows:    make([]map[string]string, 0, len(details)),
	}
	for _, detail := range details {
		grade := "-"
		if detail.FinalGrade != nil {
			grade = strconv.Itoa(*detail.FinalGrade)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course":      detail.CourseTitle,
			"Status":      string(detail.Status),
			"Enrolled At": detail.EnrolledAt.Format("2006-01-02"),
			"Final Grade": grade,
		})
	}

	title := fmt.Sprintf("Transcript - %s", student.FullName)
	payload, err := renderer.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}

	s.logger.Info("transcript generated",
		zap.String("student_id", studentID),
		zap.String("format", string(format)),
		zap.Int("courses", len(details)))

	return &Transcript{
		Filename:    fmt.Sprintf("transcript-%s.%s", slug(student.FullName), format),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func slug(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, name)
	return strings.Trim(cleaned, "-")
}

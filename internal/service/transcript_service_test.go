package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockEnrollmentDetailReader struct {
	details []models.EnrollmentDetail
}

func (m *mockEnrollmentDetailReader) ListDetailsForStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return m.details, nil
}

func newTranscriptFixture() *TranscriptService {
	grade := 87
	details := &mockEnrollmentDetailReader{details: []models.EnrollmentDetail{
		{
			Enrollment: models.Enrollment{
				ID:         "e1",
				StudentID:  "s1",
				CourseID:   "c1",
				EnrolledAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
				Status:     models.EnrollmentStatusActive,
				FinalGrade: &grade,
			},
			StudentName: "Ada Lovelace",
			CourseTitle: "Databases",
		},
		{
			Enrollment: models.Enrollment{
				ID:         "e2",
				StudentID:  "s1",
				CourseID:   "c2",
				EnrolledAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
				Status:     models.EnrollmentStatusCancelled,
			},
			StudentName: "Ada Lovelace",
			CourseTitle: "Networking",
		},
	}}
	users := &mockUserReader{users: map[string]*models.User{
		"s1": {ID: "s1", FullName: "Ada Lovelace", Role: models.RoleStudent},
	}}
	return NewTranscriptService(details, users, zap.NewNop())
}

func TestTranscriptServiceGenerateCSV(t *testing.T) {
	svc := newTranscriptFixture()

	doc, err := svc.Generate(context.Background(), "s1", TranscriptFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "transcript-ada-lovelace.csv", doc.Filename)
	assert.Equal(t, "text/csv", doc.ContentType)

	body := string(doc.Payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course,Status,Enrolled At,Final Grade", lines[0])
	assert.Equal(t, "Databases,ACTIVE,2025-09-01,87", lines[1])
	assert.Equal(t, "Networking,CANCELLED,2026-01-15,-", lines[2])
}

func TestTranscriptServiceGeneratePDF(t *testing.T) {
	svc := newTranscriptFixture()

	doc, err := svc.Generate(context.Background(), "s1", TranscriptFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, strings.HasPrefix(string(doc.Payload), "%PDF"))
}

func TestTranscriptServiceUnknownFormat(t *testing.T) {
	svc := newTranscriptFixture()

	_, err := svc.Generate(context.Background(), "s1", TranscriptFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTranscriptServiceUnknownStudent(t *testing.T) {
	svc := newTranscriptFixture()

	_, err := svc.Generate(context.Background(), "ghost", TranscriptFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

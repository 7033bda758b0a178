package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-teachers-api/internal/dto"
	"github.com/noah-isme/school-teachers-api/internal/models"
	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
)

type stubTeacherLister struct {
	teachers []dto.TeacherReadOnly
	err      error
	filters  *models.TeacherFilters
}

func (s *stubTeacherLister) GetTeachersFiltered(ctx context.Context, filters *models.TeacherFilters) ([]dto.TeacherReadOnly, error) {
	s.filters = filters
	return s.teachers, s.err
}

func newExportFixture() (*ExportService, *stubTeacherLister) {
	lister := &stubTeacherLister{teachers: []dto.TeacherReadOnly{
		{
			ID: 1, UUID: "uuid-1", IsActive: true,
			User:         dto.UserReadOnly{Firstname: "Maria", Lastname: "Papadopoulou", Afm: "123456789"},
			PersonalInfo: dto.PersonalInfoReadOnly{Amka: "12345678901", IdentityNumber: "AB1", AmkaFile: &dto.AttachmentReadOnly{Filename: "amka.pdf"}},
		},
		{
			ID: 2, UUID: "uuid-2",
			User:         dto.UserReadOnly{Firstname: "Nikos", Lastname: "Georgiou", Afm: "987654321"},
			PersonalInfo: dto.PersonalInfoReadOnly{Amka: "10987654321", IdentityNumber: "CD2"},
		},
	}}
	svc := NewExportService(lister, nil)
	svc.now = func() time.Time { return time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC) }
	return svc, lister
}

func TestExportTeachersCSV(t *testing.T) {
	svc, lister := newExportFixture()
	filters := &models.TeacherFilters{UserAfm: strPtr("123456789")}

	out, err := svc.ExportTeachers(context.Background(), filters, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "teachers-20240901T083000.csv", out.Filename)
	assert.Equal(t, "text/csv", out.ContentType)
	assert.Same(t, filters, lister.filters)

	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,UUID,Firstname,Lastname,AFM,AMKA,Identity Number,Active,AMKA File", lines[0])
	assert.Equal(t, "1,uuid-1,Maria,Papadopoulou,123456789,12345678901,AB1,true,amka.pdf", lines[1])
	assert.Equal(t, "2,uuid-2,Nikos,Georgiou,987654321,10987654321,CD2,false,", lines[2])
}

func TestExportTeachersPDF(t *testing.T) {
	svc, _ := newExportFixture()

	out, err := svc.ExportTeachers(context.Background(), nil, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, strings.HasSuffix(out.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))
}

func TestExportTeachersErrors(t *testing.T) {
	svc, lister := newExportFixture()

	_, err := svc.ExportTeachers(context.Background(), nil, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrInvalidArgument)

	lister.err = appErrors.Internal(errors.New("db"), "failed to list teachers")
	_, err = svc.ExportTeachers(context.Background(), nil, "csv")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

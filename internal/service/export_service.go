package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-teachers-api/internal/dto"
	"github.com/noah-isme/school-teachers-api/internal/models"
	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
	"github.com/noah-isme/school-teachers-api/pkg/export"
)

type teacherLister interface {
	GetTeachersFiltered(ctx context.Context, filters *models.TeacherFilters) ([]dto.TeacherReadOnly, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

var teacherExportHeaders = []string{"ID", "UUID", "Firstname", "Lastname", "AFM", "AMKA", "Identity Number", "Active", "AMKA File"}

// ExportResult is a rendered export ready to be sent to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders filtered teacher lists as downloadable tables.
type ExportService struct {
	teachers  teacherLister
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with csv and pdf renderers.
func NewExportService(teachers teacherLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		teachers: teachers,
		renderers: map[string]renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// ExportTeachers renders every teacher matching filters in the requested format.
func (s *ExportService) ExportTeachers(ctx context.Context, filters *models.TeacherFilters, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("unsupported export format %q", format))
	}

	teachers, err := s.teachers.GetTeachersFiltered(ctx, filters)
	if err != nil {
		return nil, err
	}

	data, err := r.Render(teacherDataset(teachers))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	s.logger.Info("teachers exported", zap.String("format", format), zap.Int("rows", len(teachers)))
	return &ExportResult{
		Filename:    "teachers-" + s.now().UTC().Format("20060102T150405") + r.Extension(),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

func teacherDataset(teachers []dto.TeacherReadOnly) export.Dataset {
	rows := make([][]string, 0, len(teachers))
	for _, t := range teachers {
		file := ""
		if t.PersonalInfo.AmkaFile != nil {
			file = t.PersonalInfo.AmkaFile.Filename
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.UUID,
			t.User.Firstname,
			t.User.Lastname,
			t.User.Afm,
			t.PersonalInfo.Amka,
			t.PersonalInfo.IdentityNumber,
			strconv.FormatBool(t.IsActive),
			file,
		})
	}
	return export.Dataset{Title: "Teachers", Headers: teacherExportHeaders, Rows: rows}
}

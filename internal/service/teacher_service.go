package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-teachers-api/internal/dto"
	"github.com/noah-isme/school-teachers-api/internal/models"
	"github.com/noah-isme/school-teachers-api/internal/repository"
	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
	"github.com/noah-isme/school-teachers-api/pkg/storage"
)

const (
	defaultSortField = "id"
	defaultPageSize  = 5
)

type teacherRepository interface {
	FindAll(ctx context.Context, spec repository.TeacherSpecification) ([]models.Teacher, error)
	FindPage(ctx context.Context, spec repository.TeacherSpecification, pageable models.Pageable) ([]models.Teacher, int64, error)
	FindByUUID(ctx context.Context, id string) (*models.Teacher, error)
	WithinTx(ctx context.Context, fn func(tx repository.TeacherTx) error) error
}

type attachmentStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
}

type downloadSigner interface {
	Generate(owner, savedName string) (string, time.Time, error)
	Verify(owner, token string) (storage.DownloadClaims, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type saveRecorder interface {
	RecordTeacherSave(result string)
}

// TeacherServiceConfig tunes paging defaults and link generation.
type TeacherServiceConfig struct {
	APIPrefix       string
	DefaultPageSize int
}

// RequestMeta carries caller details recorded in the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// TeacherService orchestrates teacher registration and queries.
type TeacherService struct {
	repo      teacherRepository
	files     attachmentStorage
	signer    downloadSigner
	audit     auditRecorder
	metrics   saveRecorder
	mapper    *TeacherMapper
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TeacherServiceConfig
}

// NewTeacherService constructs a TeacherService. audit, metrics and signer may be nil.
func NewTeacherService(
	repo teacherRepository,
	files attachmentStorage,
	signer downloadSigner,
	audit auditRecorder,
	metrics saveRecorder,
	mapper *TeacherMapper,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TeacherServiceConfig,
) *TeacherService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if mapper == nil {
		mapper = NewTeacherMapper(nil)
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultPageSize
	}
	return &TeacherService{
		repo:      repo,
		files:     files,
		signer:    signer,
		audit:     audit,
		metrics:   metrics,
		mapper:    mapper,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SaveTeacher registers a teacher with its account, personal info and optional AMKA file
// in a single transaction. A file written before a failed commit is removed again.
func (s *TeacherService) SaveTeacher(ctx context.Context, req dto.TeacherInsertRequest, upload *AttachmentUpload, meta RequestMeta) (*dto.TeacherReadOnly, error) {
	result, err := s.saveTeacher(ctx, req, upload)
	if s.metrics != nil {
		s.metrics.RecordTeacherSave(saveResultLabel(err))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("teacher saved",
		zap.String("uuid", result.UUID),
		zap.Int64("id", result.ID),
		zap.Bool("has_amka_file", result.PersonalInfo.AmkaFile != nil),
	)
	s.recordAudit(ctx, models.AuditActionTeacherCreate, "teacher", result, meta)
	return result, nil
}

func (s *TeacherService) saveTeacher(ctx context.Context, req dto.TeacherInsertRequest, upload *AttachmentUpload) (*dto.TeacherReadOnly, error) {
	req.User.Username = strings.TrimSpace(req.User.Username)
	req.User.Afm = strings.TrimSpace(req.User.Afm)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid teacher payload")
	}
	if !upload.Empty() {
		if err := upload.validate(); err != nil {
			return nil, err
		}
	}

	var (
		saved   *models.Teacher
		written string
	)
	err := s.repo.WithinTx(ctx, func(tx repository.TeacherTx) error {
		exists, err := tx.ExistsUserByAfm(ctx, req.User.Afm)
		if err != nil {
			return appErrors.Internal(err, "failed to check afm")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrAlreadyExists, fmt.Sprintf("teacher with afm %s already exists", req.User.Afm))
		}
		exists, err = tx.ExistsUserByUsername(ctx, req.User.Username)
		if err != nil {
			return appErrors.Internal(err, "failed to check username")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrAlreadyExists, fmt.Sprintf("teacher with username %s already exists", req.User.Username))
		}

		teacher, err := s.mapper.ToTeacher(req)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid teacher payload")
		}

		if !upload.Empty() {
			attachment := newAttachment(upload)
			path, err := s.files.Save(attachment.SavedName, upload.Content)
			if err != nil {
				return appErrors.Internal(err, "failed to store amka file")
			}
			written = attachment.SavedName
			attachment.FilePath = path
			teacher.PersonalInfo.AmkaFile = attachment
		}

		if err := tx.Save(ctx, teacher); err != nil {
			if repository.IsUniqueViolation(err) {
				return appErrors.Wrap(err, appErrors.ErrAlreadyExists.Code, appErrors.ErrAlreadyExists.Status, "teacher already exists")
			}
			return appErrors.Internal(err, "failed to save teacher")
		}
		saved = teacher
		return nil
	})
	if err != nil {
		if written != "" {
			if delErr := s.files.Delete(written); delErr != nil {
				s.logger.Warn("failed to remove orphaned amka file", zap.String("saved_name", written), zap.Error(delErr))
			}
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Internal(err, "failed to save teacher")
	}

	out := s.mapper.ToReadOnly(*saved)
	return &out, nil
}

// GetPaginatedTeachers returns a page of all teachers ordered by id.
func (s *TeacherService) GetPaginatedTeachers(ctx context.Context, page, size int) (*dto.Paginated[dto.TeacherReadOnly], error) {
	return s.GetPaginatedSortedTeachers(ctx, page, size, defaultSortField, string(models.SortAsc))
}

// GetPaginatedSortedTeachers returns a page of all teachers in the requested order.
func (s *TeacherService) GetPaginatedSortedTeachers(ctx context.Context, page, size int, sortBy, sortDirection string) (*dto.Paginated[dto.TeacherReadOnly], error) {
	pageable, err := newPageable(page, size, sortBy, sortDirection)
	if err != nil {
		return nil, err
	}
	return s.findPage(ctx, repository.AllOf(), pageable)
}

// GetTeachersFiltered returns every teacher matching filters in store order. nil filters match all.
func (s *TeacherService) GetTeachersFiltered(ctx context.Context, filters *models.TeacherFilters) ([]dto.TeacherReadOnly, error) {
	teachers, err := s.repo.FindAll(ctx, teacherSpecification(filters))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	return s.mapper.ToReadOnlyList(teachers), nil
}

// GetTeachersFilteredPaginated returns one page of teachers matching filters.
func (s *TeacherService) GetTeachersFilteredPaginated(ctx context.Context, filters *models.TeacherFilters) (*dto.Paginated[dto.TeacherReadOnly], error) {
	if filters == nil {
		filters = &models.TeacherFilters{}
	}
	page, size := 0, s.cfg.DefaultPageSize
	if filters.Page != nil {
		page = *filters.Page
	}
	if filters.PageSize != nil {
		size = *filters.PageSize
	}
	sortBy, direction := "", ""
	if filters.SortBy != nil {
		sortBy = *filters.SortBy
	}
	if filters.SortDirection != nil {
		direction = *filters.SortDirection
	}

	pageable, err := newPageable(page, size, sortBy, direction)
	if err != nil {
		return nil, err
	}
	return s.findPage(ctx, teacherSpecification(filters), pageable)
}

func (s *TeacherService) findPage(ctx context.Context, spec repository.TeacherSpecification, pageable models.Pageable) (*dto.Paginated[dto.TeacherReadOnly], error) {
	teachers, total, err := s.repo.FindPage(ctx, spec, pageable)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidSort) {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid sort")
		}
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	page := dto.NewPaginated(s.mapper.ToReadOnlyList(teachers), total, pageable.Page, pageable.Size)
	return &page, nil
}

// AttachmentLink issues a signed, expiring download URL for a teacher's AMKA file.
func (s *TeacherService) AttachmentLink(ctx context.Context, teacherUUID string) (*dto.AttachmentLinkResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "attachment links are not configured")
	}
	attachment, err := s.findAttachment(ctx, teacherUUID)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(teacherUUID, attachment.SavedName)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	link := fmt.Sprintf("%s/teachers/%s/amka-file?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), teacherUUID, url.QueryEscape(token))
	return &dto.AttachmentLinkResponse{URL: link, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)}, nil
}

// DownloadAttachment verifies token and loads the teacher's AMKA file.
func (s *TeacherService) DownloadAttachment(ctx context.Context, teacherUUID, token string) (*AttachmentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "attachment links are not configured")
	}
	claims, err := s.signer.Verify(teacherUUID, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "download link expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	attachment, err := s.findAttachment(ctx, teacherUUID)
	if err != nil {
		return nil, err
	}
	if attachment.SavedName != claims.SavedName {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}
	data, err := s.files.Read(attachment.SavedName)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to read amka file")
	}
	return &AttachmentDownload{Filename: attachment.Filename, ContentType: attachment.ContentType, Data: data}, nil
}

func (s *TeacherService) findAttachment(ctx context.Context, teacherUUID string) (*models.Attachment, error) {
	if _, err := uuid.Parse(teacherUUID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	teacher, err := s.repo.FindByUUID(ctx, teacherUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Internal(err, "failed to load teacher")
	}
	if teacher.PersonalInfo.AmkaFile == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher has no amka file")
	}
	return teacher.PersonalInfo.AmkaFile, nil
}

func (s *TeacherService) recordAudit(ctx context.Context, action, resource string, teacher *dto.TeacherReadOnly, meta RequestMeta) {
	if s.audit == nil {
		return
	}
	values, err := json.Marshal(teacher)
	if err != nil {
		s.logger.Warn("failed to encode audit payload", zap.Error(err))
		values = nil
	}
	resourceID := teacher.UUID
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		NewValues:  values,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record teacher audit log", zap.Error(err))
	}
}

// teacherSpecification ANDs the four optional criteria.
func teacherSpecification(filters *models.TeacherFilters) repository.TeacherSpecification {
	if filters == nil {
		return repository.AllOf()
	}
	return repository.AllOf(
		repository.TeacherStringFieldLike(repository.TeacherFieldUUID, deref(filters.UUID)),
		repository.TeacherUserAfmIs(deref(filters.UserAfm)),
		repository.TeacherPersonalInfoAmkaIs(deref(filters.UserAmka)),
		repository.TeacherIsActive(filters.IsActive),
	)
}

func newPageable(page, size int, sortBy, direction string) (models.Pageable, error) {
	if page < 0 {
		return models.Pageable{}, appErrors.Clone(appErrors.ErrInvalidArgument, "page must not be negative")
	}
	if size < 1 {
		return models.Pageable{}, appErrors.Clone(appErrors.ErrInvalidArgument, "page size must be at least 1")
	}
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		sortBy = defaultSortField
	}
	if !repository.TeacherSortable(sortBy) {
		return models.Pageable{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("cannot sort by %q", sortBy))
	}
	dir := models.SortDirection(strings.ToUpper(strings.TrimSpace(direction)))
	if dir == "" {
		dir = models.SortAsc
	}
	if dir != models.SortAsc && dir != models.SortDesc {
		return models.Pageable{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid sort direction %q", direction))
	}
	return models.Pageable{Page: page, Size: size, SortBy: sortBy, SortDirection: dir}, nil
}

func saveResultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(appErrors.FromError(err).Code)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

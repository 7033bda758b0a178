package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-teachers-api/internal/dto"
	"github.com/noah-isme/school-teachers-api/internal/models"
	"github.com/noah-isme/school-teachers-api/internal/service"
	appErrors "github.com/noah-isme/school-teachers-api/pkg/errors"
	"github.com/noah-isme/school-teachers-api/pkg/response"
)

const (
	teacherPartName  = "teacher"
	amkaFilePartName = "amkaFile"
)

type teacherService interface {
	SaveTeacher(ctx context.Context, req dto.TeacherInsertRequest, upload *service.AttachmentUpload, meta service.RequestMeta) (*dto.TeacherReadOnly, error)
	GetPaginatedTeachers(ctx context.Context, page, size int) (*dto.Paginated[dto.TeacherReadOnly], error)
	GetPaginatedSortedTeachers(ctx context.Context, page, size int, sortBy, sortDirection string) (*dto.Paginated[dto.TeacherReadOnly], error)
	GetTeachersFiltered(ctx context.Context, filters *models.TeacherFilters) ([]dto.TeacherReadOnly, error)
	GetTeachersFilteredPaginated(ctx context.Context, filters *models.TeacherFilters) (*dto.Paginated[dto.TeacherReadOnly], error)
	AttachmentLink(ctx context.Context, teacherUUID string) (*dto.AttachmentLinkResponse, error)
	DownloadAttachment(ctx context.Context, teacherUUID, token string) (*service.AttachmentDownload, error)
}

type teacherExporter interface {
	ExportTeachers(ctx context.Context, filters *models.TeacherFilters, format string) (*service.ExportResult, error)
}

// TeacherHandlerConfig tunes request parsing.
type TeacherHandlerConfig struct {
	MaxFileSize     int64
	DefaultPageSize int
}

// TeacherHandler wires teacher services to HTTP routes.
type TeacherHandler struct {
	teachers teacherService
	exporter teacherExporter
	cfg      TeacherHandlerConfig
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers teacherService, exporter teacherExporter, cfg TeacherHandlerConfig) *TeacherHandler {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 5
	}
	return &TeacherHandler{teachers: teachers, exporter: exporter, cfg: cfg}
}

// Save godoc
// @Summary Register a teacher
// @Description Creates the user account, personal information and teacher record, optionally storing the AMKA file
// @Tags Teachers
// @Accept multipart/form-data
// @Produce json
// @Param teacher formData string true "TeacherInsertRequest as JSON"
// @Param amkaFile formData file false "AMKA document"
// @Success 201 {object} dto.TeacherReadOnly
// @Failure 400 {object} appErrors.Error
// @Failure 409 {object} appErrors.Error
// @Router /teachers/save [post]
func (h *TeacherHandler) Save(c *gin.Context) {
	req, upload, err := h.bindSaveRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	teacher, err := h.teachers.SaveTeacher(c.Request.Context(), req, upload, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

func (h *TeacherHandler) bindSaveRequest(c *gin.Context) (dto.TeacherInsertRequest, *service.AttachmentUpload, error) {
	var req dto.TeacherInsertRequest

	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "invalid teacher payload")
		}
		return req, nil, nil
	}

	raw, err := teacherPart(c)
	if err != nil {
		return req, nil, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "invalid teacher payload")
	}

	header, err := c.FormFile(amkaFilePartName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, nil
		}
		return req, nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "invalid amka file")
	}
	upload, err := h.readUpload(header)
	if err != nil {
		return req, nil, err
	}
	return req, upload, nil
}

// teacherPart reads the JSON part either as a plain form value or as a file part.
func teacherPart(c *gin.Context) ([]byte, error) {
	if value, ok := c.GetPostForm(teacherPartName); ok && strings.TrimSpace(value) != "" {
		return []byte(value), nil
	}
	header, err := c.FormFile(teacherPartName)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "missing teacher part")
	}
	f, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "unreadable teacher part")
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *TeacherHandler) readUpload(header *multipart.FileHeader) (*service.AttachmentUpload, error) {
	if h.cfg.MaxFileSize > 0 && header.Size > h.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("amka file exceeds %d bytes", h.cfg.MaxFileSize))
	}
	f, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "unreadable amka file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "unreadable amka file")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &service.AttachmentUpload{Filename: header.Filename, ContentType: contentType, Content: content}, nil
}

// Paginated godoc
// @Summary List teachers page by page
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(5)
// @Success 200 {object} dto.Paginated[dto.TeacherReadOnly]
// @Failure 400 {object} appErrors.Error
// @Router /teachers/paginated [get]
func (h *TeacherHandler) Paginated(c *gin.Context) {
	page, size, err := h.pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.teachers.GetPaginatedTeachers(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// PaginatedSorted godoc
// @Summary List teachers page by page in a chosen order
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(5)
// @Param sortBy query string false "Sort field" default(id)
// @Param sortDirection query string false "ASC or DESC" default(ASC)
// @Success 200 {object} dto.Paginated[dto.TeacherReadOnly]
// @Failure 400 {object} appErrors.Error
// @Router /teachers/paginated/sorted [get]
func (h *TeacherHandler) PaginatedSorted(c *gin.Context) {
	page, size, err := h.pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.teachers.GetPaginatedSortedTeachers(c.Request.Context(), page, size, c.DefaultQuery("sortBy", "id"), c.DefaultQuery("sortDirection", "ASC"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Filtered godoc
// @Summary List every teacher matching the filters
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param filters body models.TeacherFilters false "Filters"
// @Success 200 {array} dto.TeacherReadOnly
// @Router /teachers/filtered [post]
func (h *TeacherHandler) Filtered(c *gin.Context) {
	filters, err := bindFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.teachers.GetTeachersFiltered(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// FilteredPaginated godoc
// @Summary List one page of teachers matching the filters
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param filters body models.TeacherFilters false "Filters with paging"
// @Success 200 {object} dto.Paginated[dto.TeacherReadOnly]
// @Failure 400 {object} appErrors.Error
// @Router /teachers/filtered/paginated [post]
func (h *TeacherHandler) FilteredPaginated(c *gin.Context) {
	filters, err := bindFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.teachers.GetTeachersFilteredPaginated(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download the filtered teacher list
// @Tags Teachers
// @Accept json
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Param filters body models.TeacherFilters false "Filters"
// @Success 200 {file} file
// @Failure 400 {object} appErrors.Error
// @Router /teachers/filtered/export [post]
func (h *TeacherHandler) Export(c *gin.Context) {
	filters, err := bindFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exporter.ExportTeachers(c.Request.Context(), filters, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}

// AttachmentLink godoc
// @Summary Issue a signed download link for the teacher's AMKA file
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Teacher UUID"
// @Success 200 {object} dto.AttachmentLinkResponse
// @Failure 404 {object} appErrors.Error
// @Router /teachers/{uuid}/amka-file/link [get]
func (h *TeacherHandler) AttachmentLink(c *gin.Context) {
	link, err := h.teachers.AttachmentLink(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link)
}

// DownloadAttachment godoc
// @Summary Download the teacher's AMKA file with a signed token
// @Tags Teachers
// @Produce octet-stream
// @Param uuid path string true "Teacher UUID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} appErrors.Error
// @Failure 404 {object} appErrors.Error
// @Router /teachers/{uuid}/amka-file [get]
func (h *TeacherHandler) DownloadAttachment(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing download token"))
		return
	}
	file, err := h.teachers.DownloadAttachment(c.Request.Context(), c.Param("uuid"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func (h *TeacherHandler) pageParams(c *gin.Context) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrInvalidArgument, "page must be an integer")
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(h.cfg.DefaultPageSize)))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrInvalidArgument, "size must be an integer")
	}
	return page, size, nil
}

// bindFilters decodes an optional filters body. An empty body yields nil, which matches every teacher.
func bindFilters(c *gin.Context) (*models.TeacherFilters, error) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, nil
	}
	var filters models.TeacherFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "invalid filters payload")
	}
	return &filters, nil
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
